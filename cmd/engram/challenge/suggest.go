package challengecmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/storage"
)

type suggestCommander struct {
	difficulty string
	search     string
}

func newSuggestCmd() *cobra.Command {
	cmder := &suggestCommander{}

	cmd := &cobra.Command{
		Use:   "suggest [category]",
		Short: "Browse the curated challenge library",
		Long: `Browse curated challenges to pick your next project.

The library groups predefined challenges by skill category (python,
data_analysis, machine_learning, digitalization). Pick one and create it
with 'engram challenge add'.

Examples:
  engram challenge suggest
  engram challenge suggest python --difficulty beginner
  engram challenge suggest --search pandas`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := ""
			if len(args) > 0 {
				category = args[0]
			}
			return cmder.run(category)
		},
	}

	cmd.Flags().StringVar(&cmder.difficulty, "difficulty", "", "Filter by difficulty (beginner, intermediate, advanced)")
	cmd.Flags().StringVar(&cmder.search, "search", "", "Search titles, descriptions, and taught skills")

	return cmd
}

func (c *suggestCommander) run(category string) error {
	var difficulty storage.Difficulty
	if c.difficulty != "" {
		var err error
		if difficulty, err = parseDifficulty(c.difficulty); err != nil {
			return err
		}
	}

	var suggestions []challenge.Suggestion
	switch {
	case c.search != "":
		suggestions = challenge.SearchSuggestions(c.search)
	case category != "":
		suggestions = challenge.SuggestionsFor(category, difficulty)
	default:
		for _, s := range challenge.Library() {
			if difficulty != "" && s.Difficulty != difficulty {
				continue
			}
			suggestions = append(suggestions, s)
		}
	}

	if len(suggestions) == 0 {
		fmt.Printf("\n  %s No matching challenges in the library.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, s := range suggestions {
		fmt.Printf("  %s %s\n",
			cliui.DimStyle.Render("●"),
			cliui.NameStyle.Render(s.Title),
		)
		fmt.Printf("      %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%s · %s · ~%.0fh", s.Category, s.Difficulty, s.EstimatedHours)),
		)
		fmt.Printf("      %s\n", cliui.ValueStyle.Render(s.Description))
		fmt.Printf("      %s %s\n",
			cliui.KeyStyle.Render("teaches:"),
			cliui.DimStyle.Render(strings.Join(s.Teaches, ", ")),
		)
	}
	fmt.Println()

	return nil
}
