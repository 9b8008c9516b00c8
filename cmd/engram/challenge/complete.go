package challengecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/git"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const completeLongDesc string = `Mark an in-progress challenge as shipped.

Open obstacles are allowed to remain; an unsolved problem doesn't
un-ship a project. Pass --repo to attach the current git repository's
origin URL as the completion link.

Examples:
  engram challenge complete 3
  engram challenge complete 3 --notes "harder than expected" --repo
  engram challenge complete 3 --link https://github.com/me/tracker`

type completeCommander struct {
	sqlitePath string
	notes      string
	link       string
	repo       bool
}

func newCompleteCmd() *cobra.Command {
	cmder := &completeCommander{}

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a challenge as shipped",
		Long:  completeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVarP(&cmder.notes, "notes", "N", "", "Completion notes")
	cmd.Flags().StringVarP(&cmder.link, "link", "l", "", "Link to the finished work")
	cmd.Flags().BoolVar(&cmder.repo, "repo", false, "Use the current git repo's origin URL as the link")

	return cmd
}

func (c *completeCommander) run(ctx context.Context, rawID string) error {
	id, err := parseChallengeID(rawID)
	if err != nil {
		return err
	}

	link := c.link
	if link == "" && c.repo {
		link = git.RemoteURL()
		if link == "" {
			fmt.Printf("\n  %s No git origin found; completing without a link.\n", cliui.WarnStyle.Render("!"))
		}
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

	svc := challenge.NewService(store)

	ch, err := svc.Complete(ctx, id, c.notes, link)
	if err != nil {
		return err
	}

	progress, err := svc.SkillProgression(ctx, ch.SkillID)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Completed %s %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", ch.ID)),
		cliui.ValueStyle.Render(ch.Title),
	)
	if ch.CompletionLink != "" {
		fmt.Printf("    %s\n", cliui.DimStyle.Render(ch.CompletionLink))
	}
	fmt.Printf("    %s\n\n", cliui.DimStyle.Render(fmt.Sprintf(
		"skill now %s (%d%%, %d completed)", progress.Level, progress.Percent, progress.Completed,
	)))

	return nil
}
