package goalcmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const addLongDesc string = `Add an active goal.

The goal text is everything after "add". An optional target date gives
the goal a deadline shown in listings and the briefing.

Examples:
  engram goal add "run a 10k by June" --target 2026-06-01
  engram goal add ship the side project`

const addShortDesc string = "Add an active goal"

type addCommander struct {
	sqlitePath string
	target     string
}

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: addShortDesc,
		Long:  addLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVarP(&cmder.target, "target", "t", "", "Target date (YYYY-MM-DD)")

	return cmd
}

func (c *addCommander) run(ctx context.Context, text string) error {
	var targetDate *time.Time
	if c.target != "" {
		parsed, err := time.Parse("2006-01-02", c.target)
		if err != nil {
			return fmt.Errorf("invalid target date %q (expected YYYY-MM-DD): %w", c.target, err)
		}
		targetDate = &parsed
	}

	path, err := dbpath.ResolveOrInit(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	goal, err := store.CreateGoal(ctx, text, targetDate)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Added goal %s %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", goal.ID)),
		cliui.ValueStyle.Render(text),
	)
	if targetDate != nil {
		fmt.Printf("    %s\n", cliui.DimStyle.Render("target "+targetDate.Format("2006-01-02")))
	}
	fmt.Println()

	return nil
}
