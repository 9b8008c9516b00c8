// Package learncmder provides the learn command for managing skills,
// learning items, study sessions, and milestones.
package learncmder

import (
	"github.com/spf13/cobra"
)

const learnLongDesc string = `Manage skills and learning material.

A skill is something you are learning (rust, spanish, chess). Learning
items are the reviewable prompt/answer pairs attached to a skill; the
review command schedules them with spaced repetition. Sessions log study
time and milestones mark notable progress.

Use subcommands to manage the pieces:
  engram learn skill add <name>        Add a skill
  engram learn skill list              List skills
  engram learn item add <skill>        Add a reviewable item
  engram learn item list <skill>       List a skill's items
  engram learn session <skill>         Log a study session
  engram learn milestone add <skill>   Record a milestone

Examples:
  engram learn skill add rust --category programming --level beginner
  engram learn item add rust --prompt "What does Box<T> do?" --answer "Heap-allocates T"
  engram learn session rust --minutes 45 --topic ownership
  engram learn milestone add rust "First CLI shipped"`

const learnShortDesc string = "Manage skills and learning material"

func NewLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: learnShortDesc,
		Long:  learnLongDesc,
	}

	cmd.AddCommand(newSkillCmd())
	cmd.AddCommand(newItemCmd())
	cmd.AddCommand(newSessionCmd())
	cmd.AddCommand(newMilestoneCmd())

	return cmd
}
