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

const progressLongDesc string = `Log progress on an in-progress challenge.

--pct replaces the stored completion percentage; --minutes adds to the
total time spent. Either update marks today's practice streak.

Examples:
  engram challenge progress 3 --pct 60
  engram challenge progress 3 --pct 75 --minutes 45`

type progressCommander struct {
	sqlitePath string
	pct        int
	minutes    int
}

func newProgressCmd() *cobra.Command {
	cmder := &progressCommander{}

	cmd := &cobra.Command{
		Use:   "progress <id>",
		Short: "Log progress on a challenge",
		Long:  progressLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().IntVarP(&cmder.pct, "pct", "p", 0, "Completion percentage (0-100)")
	cmd.Flags().IntVarP(&cmder.minutes, "minutes", "m", 0, "Minutes worked this session")
	_ = cmd.MarkFlagRequired("pct")

	return cmd
}

func (c *progressCommander) run(ctx context.Context, rawID string) error {
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

	ch, err := challenge.NewService(store).UpdateProgress(ctx, id, c.pct, c.minutes)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s %s at %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(ch.Title),
		cliui.NameStyle.Render(fmt.Sprintf("%d%%", ch.ProgressPct)),
	)
	if c.minutes > 0 {
		fmt.Printf("    %s\n", cliui.DimStyle.Render(fmt.Sprintf("+%dm this session, %dm total", c.minutes, ch.MinutesSpent)))
	}
	fmt.Printf("    %s\n\n", cliui.DimStyle.Render("practice streak marked for today"))

	return nil
}
