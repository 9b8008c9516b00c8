// Package watchcmder provides the notes watcher command.
package watchcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/cmd/engram/llmconf"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/config"
	"github.com/quietmindco/engram/pkg/logger"
	memoryutils "github.com/quietmindco/engram/pkg/memory/utils"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
	"github.com/quietmindco/engram/pkg/watcher"
)

const watchLongDesc string = `Watch a notes directory and ingest changed files as facts.

Each markdown or text file that settles after a change is summarized
(when a completion backend is configured) and stored as a fact under the
"notes" entity, indexed for recall like anything else. Without a
completion backend the head of the file is stored instead.

The directory comes from notes.dir in the config, or --dir.

Examples:
  engram watch
  engram watch --dir ~/notes
  engram watch --settle 5s`

const watchShortDesc string = "Watch a notes directory for facts"

type watchCommander struct {
	sqlitePath string
	dir        string
	settle     time.Duration
	configDir  string
	cfg        *config.Config
}

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			if !cmd.Flags().Changed("config-dir") {
				configDir = ""
			}
			cmder.configDir = configDir

			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return err
			}
			cmder.cfg, err = cfger.LoadConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.dir, "dir", "", "Notes directory to watch (defaults to notes.dir)")
	cmd.Flags().DurationVar(&cmder.settle, "settle", watcher.DefaultSettle, "Quiet window before a changed file is read")

	return cmd
}

func (c *watchCommander) run(ctx context.Context, debug bool) error {
	lg := logger.NewLogger(debug)
	defer func() { _ = lg.Sync() }()

	dir := c.dir
	if dir == "" {
		dir = c.cfg.Notes.Dir
	}
	if dir == "" {
		return fmt.Errorf("no notes directory configured; set notes.dir or pass --dir")
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

	var call completion.CallFunc
	ccfg := llmconf.Completion(c.cfg, c.configDir)
	if completion.HasCredentials(ccfg) {
		if caller, err := completion.NewCaller(ccfg); err == nil {
			call = caller
		}
	}

	w, err := watcher.New(watcher.Config{
		Dir:    dir,
		Sink:   engine,
		Call:   call,
		Settle: c.settle,
		Logger: lg,
	})
	if err != nil {
		return err
	}

	mode := "summarized"
	if call == nil {
		mode = "head-only"
	}
	fmt.Printf("\n  %s Watching %s %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(dir),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, ctrl+c to stop)", mode)),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		// Cancellation is the intended stop mechanism, not a failure.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		<-errChan
		return nil
	}
}
