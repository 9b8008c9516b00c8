package challengecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

type startCommander struct {
	sqlitePath string
}

func newStartCmd() *cobra.Command {
	cmder := &startCommander{}

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start an available challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *startCommander) run(ctx context.Context, rawID string) error {
	id, err := parseChallengeID(rawID)
	if err != nil {
		return err
	}

	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	ch, err := challenge.NewService(store).Start(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Started %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", ch.ID)),
		cliui.ValueStyle.Render(ch.Title),
	)

	return nil
}
