// Package servecmder provides the serve command for running the engram API
// and MCP server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/api"
	"github.com/quietmindco/engram/api/mcp"
	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/cmd/engram/llmconf"
	"github.com/quietmindco/engram/pkg/briefing"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/config"
	"github.com/quietmindco/engram/pkg/eventstream"
	kafkastream "github.com/quietmindco/engram/pkg/eventstream/kafka"
	nopstream "github.com/quietmindco/engram/pkg/eventstream/nop"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/logger"
	memoryutils "github.com/quietmindco/engram/pkg/memory/utils"
	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/postgres"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
	"github.com/quietmindco/engram/pkg/worker"
)

const serveLongDesc string = `Run the engram API server.

The server exposes the REST API and, unless disabled, mounts the MCP tool
server at /mcp so editor agents can remember facts, record reviews, and
drive challenges over the same store the CLI uses.

Examples:
  engram serve
  engram serve --listen :9090
  engram serve --no-mcp`

const serveShortDesc string = "Run the engram API server"

type serveCommander struct {
	listen     string
	sqlitePath string
	noMCP      bool
	noIndex    bool
	debug      bool

	configDir string
	cfg       *config.Config
	logger    *zap.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.configDir = configDir

			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg, err = cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("listen") && cmder.cfg.API.Listen != "" {
				cmder.listen = cmder.cfg.API.Listen
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", ":8081", "Address for the API server to listen on")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP tool server")
	cmd.Flags().BoolVar(&cmder.noIndex, "no-index", false, "Do not index stored facts in the background")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	store, err := c.openStore(ctx)
	if err != nil {
		return err
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
		Logger:            c.logger,
	})
	defer engine.Close()

	learningSvc := learning.NewService(store)
	challengeSvc := challenge.NewService(store)
	statsSvc := stats.NewService(store)

	var call completion.CallFunc
	ccfg := llmconf.Completion(c.cfg, c.configDir)
	if completion.HasCredentials(ccfg) {
		if caller, err := completion.NewCaller(ccfg); err == nil {
			call = caller
		}
	}
	briefingSvc := briefing.NewService(store, call)

	var index *worker.Pool
	if !c.noIndex {
		index, err = worker.NewPool(&worker.Config{
			Indexer: engine,
			Logger:  c.logger,
		})
		if err != nil {
			return fmt.Errorf("starting index workers: %w", err)
		}
		defer index.Close()
	}

	events, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	services := api.Services{
		Storer:     store,
		Memory:     engine,
		Learning:   learningSvc,
		Challenges: challengeSvc,
		Stats:      statsSvc,
		Briefing:   briefingSvc,
		Index:      index,
		Events:     events,
	}

	if !c.noMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Storer:     store,
			Memory:     engine,
			Learning:   learningSvc,
			Challenges: challengeSvc,
			Briefing:   briefingSvc,
			Index:      index,
			Logger:     c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
		services.MCP = mcpServer.Handler()
	}

	server, err := api.NewServer(api.Config{ListenAddr: c.listen}, services, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

// engramStore is the full store surface the server wires. Both SQL backends
// satisfy it through the shared sqldriver.
type engramStore interface {
	storage.Driver
	storage.LearningStore
	storage.ChallengeStore
	stats.Store
}

func (c *serveCommander) openStore(ctx context.Context) (engramStore, error) {
	if strings.EqualFold(c.cfg.Storage.Provider, "postgres") && c.cfg.Storage.PostgresURL != "" {
		driver, err := postgres.NewDriver(ctx, c.cfg.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		c.logger.Info("using postgres storage")
		return driver, nil
	}

	path, err := dbpath.ResolveOrInit(c.sqlitePath)
	if err != nil {
		return nil, err
	}
	driver, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	c.logger.Info("using SQLite storage", zap.String("path", path))
	return driver, nil
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	if !strings.EqualFold(c.cfg.Events.Provider, "kafka") {
		return nopstream.NewPublisher(), nil
	}

	brokers := strings.Split(c.cfg.Events.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	pub, err := kafkastream.NewPublisher(kafkastream.Config{
		Brokers: brokers,
		Topic:   c.cfg.Events.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing knowledge events to kafka",
		zap.Strings("brokers", brokers),
		zap.String("topic", c.cfg.Events.Topic),
	)
	return pub, nil
}
