package learncmder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const skillLongDesc string = `Manage skills.

Examples:
  engram learn skill add rust --category programming --level beginner
  engram learn skill list
  engram learn skill rm 2`

const skillShortDesc string = "Manage skills"

func newSkillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: skillShortDesc,
		Long:  skillLongDesc,
	}

	cmd.AddCommand(newSkillAddCmd())
	cmd.AddCommand(newSkillListCmd())
	cmd.AddCommand(newSkillRmCmd())

	return cmd
}

type skillAddCommander struct {
	sqlitePath string
	category   string
	level      string
	roadmap    string
}

func newSkillAddCmd() *cobra.Command {
	cmder := &skillAddCommander{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVarP(&cmder.category, "category", "c", "", "Skill category (e.g. programming, language)")
	cmd.Flags().StringVarP(&cmder.level, "level", "l", "beginner", "Current level")
	cmd.Flags().StringVar(&cmder.roadmap, "context", "", "Roadmap context carried into explanations")

	return cmd
}

func (c *skillAddCommander) run(ctx context.Context, name string) error {
	path, err := dbpath.ResolveOrInit(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	svc := learning.NewService(store)

	skill, err := svc.CreateSkill(ctx, name, c.category, c.level, c.roadmap)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Added skill %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(skill.Name),
		cliui.DimStyle.Render(fmt.Sprintf("(#%d, %s)", skill.ID, skill.CurrentLevel)),
	)

	return nil
}

type skillListCommander struct {
	sqlitePath string
}

func newSkillListCmd() *cobra.Command {
	cmder := &skillListCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *skillListCommander) run(ctx context.Context) error {
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

	skills, err := svc.Skills(ctx)
	if err != nil {
		return err
	}

	if len(skills) == 0 {
		fmt.Printf("\n  %s No skills. Add one with 'engram learn skill add <name>'.\n\n",
			cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, skill := range skills {
		items, err := svc.ItemsBySkill(ctx, skill.ID)
		if err != nil {
			return err
		}

		detail := skill.CurrentLevel
		if skill.Category != "" {
			detail = skill.Category + ", " + detail
		}

		fmt.Printf("  %s %s  %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("#%d", skill.ID)),
			cliui.ValueStyle.Render(skill.Name),
			cliui.DimStyle.Render(fmt.Sprintf("(%s, %d items)", detail, len(items))),
		)
	}
	fmt.Println()

	return nil
}

type skillRmCommander struct {
	sqlitePath string
}

func newSkillRmCmd() *cobra.Command {
	cmder := &skillRmCommander{}

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a skill and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid skill id %q", args[0])
			}
			return cmder.run(cmd.Context(), id)
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *skillRmCommander) run(ctx context.Context, id int64) error {
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

	if err := svc.DeleteSkill(ctx, id); err != nil {
		return err
	}

	fmt.Printf("\n  %s Deleted skill %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", id)),
	)

	return nil
}

// resolveSkill accepts a skill name or numeric id.
func resolveSkill(ctx context.Context, svc *learning.Service, ref string) (*storage.Skill, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return svc.Skill(ctx, id)
	}
	return svc.SkillByName(ctx, ref)
}
