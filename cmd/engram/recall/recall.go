// Package recallcmder provides the recall command for searching stored facts.
package recallcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/config"
	"github.com/quietmindco/engram/pkg/logger"
	"github.com/quietmindco/engram/pkg/memory"
	memoryutils "github.com/quietmindco/engram/pkg/memory/utils"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const recallLongDesc string = `Search stored facts.

Recall blends vector similarity with exact substring matches and a few
recent facts. When the vector index or embedding provider is unreachable,
recall still answers from exact matches and says so.

Examples:
  engram recall "what does my wife like"
  engram recall peonies
  engram recall boss --limit 5`

const recallShortDesc string = "Search stored facts"

type recallCommander struct {
	sqlitePath string
	limit      int
	debug      bool

	cfg *config.Config
}

func NewRecallCmd() *cobra.Command {
	cmder := &recallCommander{}

	cmd := &cobra.Command{
		Use:   "recall <query>...",
		Short: recallShortDesc,
		Long:  recallLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.cfg, err = cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 10, "Maximum facts to return")

	return cmd
}

func (c *recallCommander) run(ctx context.Context, query string) error {
	lg := logger.NewLogger(c.debug)
	defer func() { _ = lg.Sync() }()

	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	engine := memoryutils.NewEngine(&memoryutils.NewEngineOpts{
		Store:             store,
		Enabled:           c.cfg.Memory.Enabled,
		VectorProvider:    c.cfg.VectorStore.Provider,
		VectorTarget:      c.cfg.VectorStore.Target,
		EmbeddingProvider: c.cfg.Embedding.Provider,
		EmbeddingTarget:   c.cfg.Embedding.Target,
		EmbeddingModel:    c.cfg.Embedding.Model,
		Dimensions:        c.cfg.Embedding.Dimensions,
		Logger:            lg,
	})
	defer engine.Close()

	result, err := engine.Recall(ctx, query, c.limit)
	if err != nil {
		return err
	}

	fmt.Println()

	if c.cfg.Memory.Enabled && result.Mode == memory.ModeExactOnly {
		fmt.Printf("  %s Vector index unavailable; showing exact matches only.\n\n",
			cliui.WarnStyle.Render("!"))
	}

	if len(result.Facts) == 0 {
		fmt.Printf("  %s No matching facts.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	for _, fact := range result.Facts {
		fmt.Printf("  %s  %s\n",
			cliui.EntityStyle.Render(fact.Entity),
			cliui.ValueStyle.Render(fact.Text),
		)
		fmt.Printf("      %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("fact %d · %s", fact.ID, fact.CreatedAt.Format("2006-01-02 15:04"))),
		)
	}
	fmt.Println()

	return nil
}
