package learncmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
	"github.com/quietmindco/engram/pkg/utils"
)

const itemLongDesc string = `Manage a skill's learning items.

Items are the prompt/answer pairs the review command schedules. A fresh
item is due immediately. Types: concept, fact, qa, example.

Examples:
  engram learn item add rust --prompt "What does Box<T> do?" --answer "Heap-allocates T"
  engram learn item add rust --type example --prompt "Lifetime elision" --answer "fn f(x: &str) -> &str"
  engram learn item list rust`

const itemShortDesc string = "Manage learning items"

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: itemShortDesc,
		Long:  itemLongDesc,
	}

	cmd.AddCommand(newItemAddCmd())
	cmd.AddCommand(newItemListCmd())

	return cmd
}

type itemAddCommander struct {
	sqlitePath string
	itemType   string
	prompt     string
	answer     string
	tags       []string
}

func newItemAddCmd() *cobra.Command {
	cmder := &itemAddCommander{}

	cmd := &cobra.Command{
		Use:   "add <skill>",
		Short: "Add a learning item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVarP(&cmder.itemType, "type", "t", "qa", "Item type (concept, fact, qa, example)")
	cmd.Flags().StringVarP(&cmder.prompt, "prompt", "p", "", "Prompt shown at review time")
	cmd.Flags().StringVarP(&cmder.answer, "answer", "a", "", "Expected answer")
	cmd.Flags().StringSliceVar(&cmder.tags, "tags", nil, "Comma-separated tags")

	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("answer")

	return cmd
}

func (c *itemAddCommander) run(ctx context.Context, skillRef string) error {
	itemType, err := parseItemType(c.itemType)
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

	svc := learning.NewService(store)

	skill, err := resolveSkill(ctx, svc, skillRef)
	if err != nil {
		return err
	}

	item, err := svc.AddItem(ctx, skill.ID, itemType, c.prompt, c.answer, c.tags)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Added %s item %s to %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(string(item.Type)),
		cliui.NameStyle.Render(fmt.Sprintf("#%d", item.ID)),
		cliui.NameStyle.Render(skill.Name),
	)
	fmt.Printf("    %s\n\n", cliui.PreviewStyle.Render(utils.Truncate(item.Prompt, 72)))

	return nil
}

type itemListCommander struct {
	sqlitePath string
}

func newItemListCmd() *cobra.Command {
	cmder := &itemListCommander{}

	cmd := &cobra.Command{
		Use:   "list <skill>",
		Short: "List a skill's items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *itemListCommander) run(ctx context.Context, skillRef string) error {
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

	items, err := svc.ItemsBySkill(ctx, skill.ID)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Printf("\n  %s No items for %s yet.\n\n",
			cliui.DimStyle.Render("●"),
			cliui.NameStyle.Render(skill.Name),
		)
		return nil
	}

	fmt.Println()
	for _, item := range items {
		fmt.Printf("  %s %s  %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("#%d", item.ID)),
			cliui.KeyStyle.Render(string(item.Type)),
			cliui.ValueStyle.Render(utils.Truncate(item.Prompt, 64)),
		)
		fmt.Printf("      %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("reviews %d, correct %d, next due %s",
				item.ReviewCount, item.CorrectCount, item.NextReviewAt.Format("2006-01-02 15:04"))),
		)
	}
	fmt.Println()

	return nil
}

func parseItemType(raw string) (storage.ItemType, error) {
	switch storage.ItemType(strings.ToLower(raw)) {
	case storage.ItemTypeConcept:
		return storage.ItemTypeConcept, nil
	case storage.ItemTypeFact:
		return storage.ItemTypeFact, nil
	case storage.ItemTypeQA:
		return storage.ItemTypeQA, nil
	case storage.ItemTypeExample:
		return storage.ItemTypeExample, nil
	default:
		return "", fmt.Errorf("unknown item type %q (expected concept, fact, qa, or example)", raw)
	}
}
