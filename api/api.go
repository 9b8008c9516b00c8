package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/pkg/briefing"
	"github.com/quietmindco/engram/pkg/bundle"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/eventstream"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/memory"
	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/worker"
)

// Services are the engine handles the server exposes. They are injected so
// the server shares them with the MCP layer and the CLI instead of opening
// its own stores. Index and MCP are optional; everything else is required.
type Services struct {
	Storer     storage.Driver
	Memory     memory.Driver
	Learning   *learning.Service
	Challenges *challenge.Service
	Stats      *stats.Service
	Briefing   *briefing.Service

	// Index queues stored facts for vector indexing. Nil means new facts
	// stay exact-searchable only.
	Index *worker.Pool

	// Events receives knowledge events after mutations land. Nil disables
	// publishing.
	Events eventstream.Publisher

	// MCP is the MCP streamable HTTP handler, mounted at /mcp when set.
	MCP http.Handler
}

// Server is the HTTP API server.
type Server struct {
	config    Config
	services  Services
	assembler *bundle.Assembler
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server over the given services.
func NewServer(config Config, services Services, logger *zap.Logger) (*Server, error) {
	if services.Storer == nil {
		return nil, errors.New("storage driver is required")
	}
	if services.Memory == nil {
		return nil, errors.New("memory driver is required")
	}
	if services.Learning == nil {
		return nil, errors.New("learning service is required")
	}
	if services.Challenges == nil {
		return nil, errors.New("challenge service is required")
	}
	if services.Stats == nil {
		return nil, errors.New("stats service is required")
	}
	if services.Briefing == nil {
		return nil, errors.New("briefing service is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		services:  services,
		assembler: bundle.NewAssembler(bundle.Budget{}),
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Post("/facts", s.handleCreateFact)
	v1.Get("/facts", s.handleRecentFacts)
	v1.Get("/recall", s.handleRecall)
	v1.Post("/bundle", s.handleBundle)

	v1.Post("/goals", s.handleCreateGoal)
	v1.Get("/goals", s.handleListGoals)
	v1.Post("/goals/:id/done", s.handleCompleteGoal)

	v1.Get("/reviews/due", s.handleDueReviews)
	v1.Post("/reviews", s.handleRecordReview)
	v1.Post("/items", s.handleAddItem)
	v1.Get("/skills/:id/progression", s.handleProgression)

	v1.Get("/challenges", s.handleListChallenges)
	v1.Post("/challenges", s.handleCreateChallenge)
	v1.Get("/challenges/:id", s.handleGetChallenge)
	v1.Post("/challenges/:id/start", s.handleStartChallenge)
	v1.Post("/challenges/:id/progress", s.handleUpdateProgress)
	v1.Post("/challenges/:id/obstacles", s.handleLogObstacle)
	v1.Post("/challenges/:id/complete", s.handleCompleteChallenge)
	v1.Post("/obstacles/:id/solve", s.handleSolveObstacle)
	v1.Get("/obstacles", s.handleSearchObstacles)

	v1.Get("/briefing", s.handleBriefing)
	v1.Get("/streaks", s.handleStreaks)
	v1.Get("/stats", s.handleStats)

	if services.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(services.MCP))
		app.All("/mcp/*", adaptor.HTTPHandler(services.MCP))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
