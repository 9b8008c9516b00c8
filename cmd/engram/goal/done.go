package goalcmder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const doneLongDesc string = `Mark a goal done.

Takes the goal id shown by "engram goal list".

Examples:
  engram goal done 3`

const doneShortDesc string = "Mark a goal done"

type doneCommander struct {
	sqlitePath string
}

func newDoneCmd() *cobra.Command {
	cmder := &doneCommander{}

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: doneShortDesc,
		Long:  doneLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid goal id %q", args[0])
			}
			return cmder.run(cmd.Context(), id)
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *doneCommander) run(ctx context.Context, id int64) error {
	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	if err := store.CompleteGoal(ctx, id); err != nil {
		return err
	}

	fmt.Printf("\n  %s Goal %s done.\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", id)),
	)

	return nil
}
