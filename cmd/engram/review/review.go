// Package reviewcmder provides the review command for spaced-repetition
// flashcard reviews.
package reviewcmder

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
	"github.com/quietmindco/engram/pkg/utils"
)

const reviewLongDesc string = `Review due learning items.

Runs a flashcard TUI over everything due right now: reveal the answer,
say whether you got it right, and rate your confidence 1-5. Wrong
answers come back in 4 hours; correct answers are pushed out between
1 and 30 days depending on confidence.

Pass --list to just print what is due. Pass --item with --correct or
--wrong to record a single review without the TUI.

Examples:
  engram review
  engram review --list
  engram review --item 12 --correct --confidence 4
  engram review --item 12 --wrong`

const reviewShortDesc string = "Review due learning items"

type reviewCommander struct {
	sqlitePath string
	limit      int
	list       bool
	itemID     int64
	correct    bool
	wrong      bool
	confidence int
}

func NewReviewCmd() *cobra.Command {
	cmder := &reviewCommander{}

	cmd := &cobra.Command{
		Use:   "review",
		Short: reviewShortDesc,
		Long:  reviewLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Maximum items per review run")
	cmd.Flags().BoolVarP(&cmder.list, "list", "l", false, "Print due items instead of reviewing")
	cmd.Flags().Int64Var(&cmder.itemID, "item", 0, "Record a review for one item id")
	cmd.Flags().BoolVar(&cmder.correct, "correct", false, "The answer was correct (with --item)")
	cmd.Flags().BoolVar(&cmder.wrong, "wrong", false, "The answer was wrong (with --item)")
	cmd.Flags().IntVar(&cmder.confidence, "confidence", 3, "Confidence 1-5 (with --item)")

	return cmd
}

func (c *reviewCommander) run(ctx context.Context) error {
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

	if c.itemID > 0 {
		return c.recordOne(ctx, svc)
	}

	due, err := svc.DueItems(ctx, time.Now(), c.limit)
	if err != nil {
		return err
	}

	if c.list {
		return printDue(due)
	}

	if len(due) == 0 {
		fmt.Printf("\n  %s Nothing due. Come back later.\n\n", cliui.SuccessMark)
		return nil
	}

	return runReviewTUI(ctx, svc, due)
}

func (c *reviewCommander) recordOne(ctx context.Context, svc *learning.Service) error {
	if c.correct == c.wrong {
		return fmt.Errorf("pass exactly one of --correct or --wrong with --item")
	}

	item, err := svc.RecordReview(ctx, c.itemID, c.correct, c.confidence)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Recorded review for item %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", item.ID)),
		cliui.DimStyle.Render("next due "+formatDue(item.NextReviewAt)),
	)

	return nil
}

func printDue(due []*storage.LearningItem) error {
	if len(due) == 0 {
		fmt.Printf("\n  %s Nothing due.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render(fmt.Sprintf("Due now (%d)", len(due))))
	for _, item := range due {
		fmt.Printf("  %s %s %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("#%d", item.ID)),
			cliui.ValueStyle.Render(utils.Truncate(item.Prompt, 64)),
			cliui.DimStyle.Render(fmt.Sprintf("(%s, due %s)", item.Type, formatDue(item.NextReviewAt))),
		)
	}
	fmt.Println()

	return nil
}

// formatDue renders an absolute review time as a coarse relative offset.
func formatDue(at time.Time) string {
	d := time.Until(at)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("in %dd", int(d.Hours()/24))
	}
}
