// Package goalcmder provides the goal command for tracking active goals.
package goalcmder

import (
	"github.com/spf13/cobra"
)

const goalLongDesc string = `Track goals.

Goals are short statements of what you are working toward. Active goals
are pulled into chat context and the morning briefing so conversations
stay pointed at them.

Use subcommands to add, list, or complete goals:
  engram goal add <text>       Add an active goal
  engram goal list             List active goals
  engram goal done <id>        Mark a goal done

Examples:
  engram goal add "run a 10k by June" --target 2026-06-01
  engram goal list
  engram goal done 3`

const goalShortDesc string = "Track goals"

func NewGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: goalShortDesc,
		Long:  goalLongDesc,
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDoneCmd())

	return cmd
}
