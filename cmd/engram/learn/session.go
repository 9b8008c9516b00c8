package learncmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const sessionLongDesc string = `Log a study session.

Records minutes studied against a skill and marks today in the practice
streak. Logging twice on the same day extends the session log but counts
the streak day once.

Examples:
  engram learn session rust --minutes 45 --topic ownership
  engram learn session spanish -m 20 --notes "subjunctive drills"`

const sessionShortDesc string = "Log a study session"

type sessionCommander struct {
	sqlitePath string
	minutes    int
	topic      string
	notes      string
}

func newSessionCmd() *cobra.Command {
	cmder := &sessionCommander{}

	cmd := &cobra.Command{
		Use:   "session <skill>",
		Short: sessionShortDesc,
		Long:  sessionLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().IntVarP(&cmder.minutes, "minutes", "m", 0, "Minutes studied")
	cmd.Flags().StringVarP(&cmder.topic, "topic", "t", "", "What the session covered")
	cmd.Flags().StringVarP(&cmder.notes, "notes", "n", "", "Free-form notes")

	_ = cmd.MarkFlagRequired("minutes")

	return cmd
}

func (c *sessionCommander) run(ctx context.Context, skillRef string) error {
	if c.minutes <= 0 {
		return fmt.Errorf("minutes must be positive, got %d", c.minutes)
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

	svc := learning.NewService(store)

	skill, err := resolveSkill(ctx, svc, skillRef)
	if err != nil {
		return err
	}

	session, err := svc.LogSession(ctx, skill.ID, c.topic, c.minutes, c.notes)
	if err != nil {
		return err
	}

	// Study time counts toward the daily practice streak.
	if err := challenge.NewService(store).MarkToday(ctx); err != nil {
		return err
	}

	fmt.Printf("\n  %s Logged %s on %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("%dm", session.Minutes)),
		cliui.NameStyle.Render(skill.Name),
		cliui.DimStyle.Render(fmt.Sprintf("(session %d)", session.ID)),
	)

	return nil
}
