package goalcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const listLongDesc string = `List goals.

Shows active goals by default. Pass --all to include completed goals.

Examples:
  engram goal list
  engram goal list --all`

const listShortDesc string = "List goals"

type listCommander struct {
	sqlitePath string
	all        bool
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVarP(&cmder.all, "all", "a", false, "Include completed goals")

	return cmd
}

func (c *listCommander) run(ctx context.Context) error {
	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	var goals []*storage.Goal
	if c.all {
		goals, err = store.ListGoals(ctx)
	} else {
		goals, err = store.ActiveGoals(ctx, 0)
	}
	if err != nil {
		return err
	}

	if len(goals) == 0 {
		fmt.Printf("\n  %s No goals. Add one with 'engram goal add <text>'.\n\n",
			cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, goal := range goals {
		mark := cliui.DimStyle.Render("●")
		if goal.Status == storage.GoalStatusDone {
			mark = cliui.SuccessMark
		}

		fmt.Printf("  %s %s  %s\n",
			mark,
			cliui.NameStyle.Render(fmt.Sprintf("#%d", goal.ID)),
			cliui.ValueStyle.Render(goal.Text),
		)
		if goal.TargetDate != nil {
			fmt.Printf("      %s\n", cliui.DimStyle.Render("target "+goal.TargetDate.Format("2006-01-02")))
		}
	}
	fmt.Println()

	return nil
}
