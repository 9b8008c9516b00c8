package learncmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const milestoneLongDesc string = `Record and list skill milestones.

Milestones mark notable progress: first project shipped, first
conversation held, a level-up. They feed the stats overview and the
morning briefing.

Examples:
  engram learn milestone add rust "First CLI shipped"
  engram learn milestone list rust`

const milestoneShortDesc string = "Record and list skill milestones"

func newMilestoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: milestoneShortDesc,
		Long:  milestoneLongDesc,
	}

	cmd.AddCommand(newMilestoneAddCmd())
	cmd.AddCommand(newMilestoneListCmd())

	return cmd
}

type milestoneAddCommander struct {
	sqlitePath  string
	description string
}

func newMilestoneAddCmd() *cobra.Command {
	cmder := &milestoneAddCommander{}

	cmd := &cobra.Command{
		Use:   "add <skill> <title>...",
		Short: "Record a milestone",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVarP(&cmder.description, "description", "D", "", "Longer description")

	return cmd
}

func (c *milestoneAddCommander) run(ctx context.Context, skillRef, title string) error {
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

	milestone, err := svc.AddMilestone(ctx, skill.ID, title, c.description)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Milestone for %s: %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(skill.Name),
		cliui.ValueStyle.Render(milestone.Title),
		cliui.DimStyle.Render(milestone.AchievedAt.Format("2006-01-02")),
	)

	return nil
}

type milestoneListCommander struct {
	sqlitePath string
}

func newMilestoneListCmd() *cobra.Command {
	cmder := &milestoneListCommander{}

	cmd := &cobra.Command{
		Use:   "list <skill>",
		Short: "List a skill's milestones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *milestoneListCommander) run(ctx context.Context, skillRef string) error {
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

	milestones, err := svc.Milestones(ctx, skill.ID)
	if err != nil {
		return err
	}

	if len(milestones) == 0 {
		fmt.Printf("\n  %s No milestones for %s yet.\n\n",
			cliui.DimStyle.Render("●"),
			cliui.NameStyle.Render(skill.Name),
		)
		return nil
	}

	fmt.Println()
	for _, m := range milestones {
		fmt.Printf("  %s %s  %s\n",
			cliui.SuccessMark,
			cliui.ValueStyle.Render(m.Title),
			cliui.DimStyle.Render(m.AchievedAt.Format("2006-01-02")),
		)
		if m.Description != "" {
			fmt.Printf("      %s\n", cliui.PreviewStyle.Render(m.Description))
		}
	}
	fmt.Println()

	return nil
}
