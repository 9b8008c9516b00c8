// Package statscmder provides the stats command for showing knowledge and
// learning aggregates.
package statscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const statsLongDesc string = `Show knowledge and learning statistics.

The overview covers stored facts by entity, the review queue and its
accuracy over the trailing window, study minutes per skill, and the
practice streak chain.

Examples:
  engram stats
  engram stats --window 7`

const statsShortDesc string = "Show knowledge and learning statistics"

type statsCommander struct {
	sqlitePath string
	windowDays int
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().IntVarP(&cmder.windowDays, "window", "w", stats.DefaultWindowDays, "Trailing window in days for review and study figures")

	return cmd
}

func (c *statsCommander) run(ctx context.Context) error {
	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	overview, err := stats.NewService(store).Overview(ctx, c.windowDays)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.HeaderStyle.Render("Knowledge & learning"),
		cliui.DimStyle.Render(fmt.Sprintf("(last %d days)", overview.WindowDays)),
	)

	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Facts:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d stored", overview.TotalFacts)),
	)
	for _, entity := range overview.TopEntities {
		fmt.Printf("    %s %s\n",
			cliui.EntityStyle.Render(entity.Entity),
			cliui.DimStyle.Render(fmt.Sprintf("× %d", entity.Count)),
		)
	}
	fmt.Println()

	fmt.Printf("  %s %s due now, %s in the window",
		cliui.KeyStyle.Render("Reviews:"),
		cliui.NameStyle.Render(fmt.Sprintf("%d", overview.DueReviews)),
		cliui.ValueStyle.Render(fmt.Sprintf("%d", overview.TotalReviews)),
	)
	if overview.TotalReviews > 0 {
		fmt.Printf(" %s", cliui.DimStyle.Render(fmt.Sprintf("(%.1f%% correct)", overview.ReviewAccuracy)))
	}
	fmt.Println()
	for _, skill := range overview.AccuracyBySkill {
		pct := 0.0
		if skill.Reviews > 0 {
			pct = float64(skill.Correct) / float64(skill.Reviews) * 100
		}
		fmt.Printf("    %s %s\n",
			cliui.EntityStyle.Render(skill.SkillName),
			cliui.DimStyle.Render(fmt.Sprintf("%d reviews, %.0f%% correct", skill.Reviews, pct)),
		)
	}
	fmt.Println()

	fmt.Printf("  %s %s %s\n",
		cliui.KeyStyle.Render("Study:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%.1f hours", overview.TotalHours)),
		cliui.DimStyle.Render(fmt.Sprintf("(%.1f min/day)", overview.AvgMinutesPerDay)),
	)
	for _, skill := range overview.StudyBySkill {
		fmt.Printf("    %s %s\n",
			cliui.EntityStyle.Render(skill.SkillName),
			cliui.DimStyle.Render(fmt.Sprintf("%d sessions, %d min", skill.Sessions, skill.Minutes)),
		)
	}
	fmt.Println()

	fmt.Printf("  %s current %s, longest %s, %s practice days total\n\n",
		cliui.KeyStyle.Render("Streak:"),
		cliui.NameStyle.Render(fmt.Sprintf("%d", overview.Streak.Current)),
		cliui.ValueStyle.Render(fmt.Sprintf("%d", overview.Streak.Longest)),
		cliui.ValueStyle.Render(fmt.Sprintf("%d", overview.Streak.Total)),
	)

	return nil
}
