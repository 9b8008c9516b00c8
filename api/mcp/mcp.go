// Package mcp provides an MCP (Model Context Protocol) server for the engram system.
package mcp

import (
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/pkg/briefing"
	"github.com/quietmindco/engram/pkg/bundle"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/memory"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/utils"
	"github.com/quietmindco/engram/pkg/worker"
)

type Config struct {
	// Storer backs goals, conversations, and the context bundle reads
	Storer storage.Driver

	// Memory for fact storage and recall
	Memory memory.Driver

	// Learning for the spaced review schedule
	Learning *learning.Service

	// Challenges for the challenge lifecycle and skill progression
	Challenges *challenge.Service

	// Briefing for the morning briefing tool
	Briefing *briefing.Service

	// Index queues stored facts for background embedding (optional)
	Index *worker.Pool

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	assembler *bundle.Assembler
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the engram tool set.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config:    c,
		assembler: bundle.NewAssembler(bundle.Budget{}),
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "engram",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// return the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.mcpServer = mcpServer
		return s, nil
	}

	if c.Storer == nil {
		return nil, errors.New("storage driver is required")
	}
	if c.Memory == nil {
		return nil, errors.New("memory driver is required")
	}
	if c.Learning == nil {
		return nil, errors.New("learning service is required")
	}
	if c.Challenges == nil {
		return nil, errors.New("challenge service is required")
	}
	if c.Briefing == nil {
		return nil, errors.New("briefing service is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	// Memory tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        rememberFactToolName,
		Description: rememberFactDescription,
	}, s.handleRememberFact)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        recallMemoryToolName,
		Description: recallMemoryDescription,
	}, s.handleRecallMemory)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        contextBundleToolName,
		Description: contextBundleDescription,
	}, s.handleContextBundle)

	// Goal tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        addGoalToolName,
		Description: addGoalDescription,
	}, s.handleAddGoal)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listGoalsToolName,
		Description: listGoalsDescription,
	}, s.handleListGoals)

	// Review tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        dueReviewsToolName,
		Description: dueReviewsDescription,
	}, s.handleDueReviews)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        recordReviewToolName,
		Description: recordReviewDescription,
	}, s.handleRecordReview)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        addLearningItemToolName,
		Description: addLearningItemDescription,
	}, s.handleAddLearningItem)

	// Challenge tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        startChallengeToolName,
		Description: startChallengeDescription,
	}, s.handleStartChallenge)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        updateChallengeProgressToolName,
		Description: updateChallengeProgressDescription,
	}, s.handleUpdateChallengeProgress)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        logObstacleToolName,
		Description: logObstacleDescription,
	}, s.handleLogObstacle)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        solveObstacleToolName,
		Description: solveObstacleDescription,
	}, s.handleSolveObstacle)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        completeChallengeToolName,
		Description: completeChallengeDescription,
	}, s.handleCompleteChallenge)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        skillProgressionToolName,
		Description: skillProgressionDescription,
	}, s.handleSkillProgression)

	// Briefing tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        morningBriefingToolName,
		Description: morningBriefingDescription,
	}, s.handleMorningBriefing)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server, or nil when the
// server was built in noop mode.
func (s *Server) Handler() http.Handler {
	if s.handler == nil {
		return nil
	}
	return s.handler
}
