package challengecmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const addLongDesc string = `Create a challenge under a skill.

The skill may be given by name or id. New challenges start available;
use 'engram challenge start' to begin working.

Examples:
  engram challenge add rust "Build a CLI task tracker"
  engram challenge add rust "Write a TCP chat server" --difficulty intermediate --hours 8`

type addCommander struct {
	sqlitePath  string
	description string
	difficulty  string
	hours       float64
}

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <skill> <title>...",
		Short: "Create a challenge",
		Long:  addLongDesc,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVarP(&cmder.description, "description", "D", "", "What to build and why")
	cmd.Flags().StringVar(&cmder.difficulty, "difficulty", "beginner", "beginner, intermediate, or advanced")
	cmd.Flags().Float64Var(&cmder.hours, "hours", 0, "Estimated hours of work")

	return cmd
}

func (c *addCommander) run(ctx context.Context, skillRef, title string) error {
	difficulty, err := parseDifficulty(c.difficulty)
	if err != nil {
		return err
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

	skill, err := resolveSkill(ctx, learning.NewService(store), skillRef)
	if err != nil {
		return err
	}

	ch, err := challenge.NewService(store).Create(ctx, skill.ID, title, c.description, difficulty, c.hours)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Added challenge %s %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", ch.ID)),
		cliui.ValueStyle.Render(ch.Title),
	)
	fmt.Printf("    %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%s · %s · available", skill.Name, ch.Difficulty)))

	return nil
}
