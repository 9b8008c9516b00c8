package challengecmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

// A year of streak days is plenty to count the current run.
const statusStreakWindow = 365

type statusCommander struct {
	sqlitePath string
}

func newStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status <skill>",
		Short: "Show progression and practice streak",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *statusCommander) run(ctx context.Context, skillRef string) error {
	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	skill, err := resolveSkill(ctx, learning.NewService(store), skillRef)
	if err != nil {
		return err
	}

	svc := challenge.NewService(store)

	progress, err := svc.SkillProgression(ctx, skill.ID)
	if err != nil {
		return err
	}

	inProgress, err := svc.ChallengesByStatus(ctx, skill.ID, storage.ChallengeStatusInProgress)
	if err != nil {
		return err
	}

	days, err := svc.StreakDays(ctx, statusStreakWindow)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render(skill.Name))
	fmt.Printf("  %s %s %s\n",
		cliui.KeyStyle.Render("level"),
		cliui.NameStyle.Render(string(progress.Level)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d challenges shipped)", progress.Completed)),
	)
	fmt.Printf("  %s %s %d%%\n",
		cliui.KeyStyle.Render("     "),
		renderBar(progress.Percent, 20),
		progress.Percent,
	)

	streak := currentStreak(days, time.Now())
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("streak"),
		streakLine(streak),
	)

	if len(inProgress) > 0 {
		fmt.Println()
		for _, ch := range inProgress {
			fmt.Printf("  %s %s %s\n",
				cliui.WarnStyle.Render("▸"),
				cliui.ValueStyle.Render(ch.Title),
				cliui.DimStyle.Render(fmt.Sprintf("%d%%", ch.ProgressPct)),
			)
		}
	}
	fmt.Println()

	return nil
}

func renderBar(pct, width int) string {
	filled := pct * width / 100
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return cliui.ValueStyle.Render(bar)
}

func streakLine(days int) string {
	switch days {
	case 0:
		return cliui.DimStyle.Render("no active streak")
	case 1:
		return cliui.ValueStyle.Render("1 day")
	default:
		return cliui.ValueStyle.Render(fmt.Sprintf("%d days", days))
	}
}

// currentStreak counts consecutive practice days ending today or yesterday.
// A streak survives overnight until a full calendar day is missed.
func currentStreak(days []*storage.DailyStreak, now time.Time) int {
	recorded := make(map[string]bool, len(days))
	for _, day := range days {
		if day.Active {
			recorded[day.Date] = true
		}
	}

	day := now
	if !recorded[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
		if !recorded[day.Format("2006-01-02")] {
			return 0
		}
	}

	streak := 0
	for recorded[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
