// Package remembercmder provides the remember command for storing a fact
// about an entity.
package remembercmder

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

const rememberLongDesc string = `Store a fact about an entity.

The entity is who or what the fact is about (wife, boss, health, the
project name). Everything after the entity is the fact text. The fact is
written to the SQLite database and indexed for vector recall when the
embedding provider is reachable; otherwise it is still stored and found
by exact matching.

Examples:
  engram remember wife "loves peonies, hates roses"
  engram remember boss prefers async updates over meetings
  engram remember health "physical therapy every Tuesday"`

const rememberShortDesc string = "Store a fact about an entity"

type rememberCommander struct {
	sqlitePath string
	debug      bool

	cfg *config.Config
}

func NewRememberCmd() *cobra.Command {
	cmder := &rememberCommander{}

	cmd := &cobra.Command{
		Use:   "remember <entity> <fact>...",
		Short: rememberShortDesc,
		Long:  rememberLongDesc,
		Args:  cobra.MinimumNArgs(2),
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

			return cmder.run(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *rememberCommander) run(ctx context.Context, entity, text string) error {
	lg := logger.NewLogger(c.debug)
	defer func() { _ = lg.Sync() }()

	path, err := dbpath.ResolveOrInit(c.sqlitePath)
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

	fact, err := engine.Store(ctx, entity, text)
	if err != nil {
		return err
	}

	// One-shot command, so index inline instead of handing off to a pool.
	// An index failure is not a storage failure; the fact is already saved.
	indexErr := engine.Index(ctx, fact)

	fmt.Printf("\n  %s Remembered %s %s\n",
		cliui.SuccessMark,
		cliui.EntityStyle.Render(entity),
		cliui.DimStyle.Render(fmt.Sprintf("(fact %d)", fact.ID)),
	)
	fmt.Printf("    %s\n\n", cliui.ValueStyle.Render(text))

	if indexErr != nil {
		fmt.Printf("  %s Vector indexing failed; the fact is stored and will match exact recall.\n\n",
			cliui.WarnStyle.Render("!"))
	} else if c.cfg.Memory.Enabled && engine.Mode() == memory.ModeExactOnly {
		fmt.Printf("  %s Vector index unavailable; the fact is stored and will match exact recall.\n\n",
			cliui.DimStyle.Render("●"))
	}

	return nil
}
