package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/pkg/bundle"
	"github.com/quietmindco/engram/pkg/memory"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/worker"
)

var (
	rememberFactToolName    = "remember_fact"
	rememberFactDescription = "Store a durable fact about an entity (a person, project, topic, or the user themselves). Use this when the user shares something worth remembering across conversations."

	recallMemoryToolName    = "recall_memory"
	recallMemoryDescription = "Recall stored facts relevant to a query. Blends semantic similarity with exact matches and recent facts; the mode field reports whether the vector index was available."

	contextBundleToolName    = "context_bundle"
	contextBundleDescription = "Assemble a budgeted context bundle for a query: relevant facts, active goals, and excerpts from related past conversations, plus the rendered prompt block."
)

// RememberFactInput represents the input arguments for the remember_fact tool.
type RememberFactInput struct {
	Entity string `json:"entity" jsonschema:"the entity the fact is about"`
	Text   string `json:"text" jsonschema:"the fact text, one short declarative statement"`
}

// RememberFactOutput carries the stored fact.
type RememberFactOutput struct {
	Fact *storage.Fact `json:"fact"`
}

// handleRememberFact stores a fact and queues it for indexing.
func (s *Server) handleRememberFact(ctx context.Context, _ *mcp.CallToolRequest, input RememberFactInput) (*mcp.CallToolResult, RememberFactOutput, error) {
	entity := strings.TrimSpace(input.Entity)
	text := strings.TrimSpace(input.Text)
	if entity == "" || text == "" {
		return errorResult[RememberFactOutput]("entity and text are required")
	}

	fact, err := s.config.Memory.Store(ctx, entity, text)
	if err != nil {
		return errorResult[RememberFactOutput](fmt.Sprintf("Failed to store fact: %v", err))
	}

	if s.config.Index != nil {
		if !s.config.Index.Enqueue(worker.Job{Fact: fact}) {
			s.config.Logger.Warn("index queue full, fact stored unindexed",
				zap.Int64("fact_id", fact.ID),
			)
		}
	}

	return jsonResult(RememberFactOutput{Fact: fact})
}

// RecallMemoryInput represents the input arguments for the recall_memory tool.
type RecallMemoryInput struct {
	Query string `json:"query" jsonschema:"the query text to recall facts for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum facts to return (default: 10)"`
}

// RecallMemoryOutput carries recalled facts plus the mode that produced them.
type RecallMemoryOutput struct {
	Facts []*storage.Fact `json:"facts"`
	Mode  memory.Mode     `json:"mode"`
	Count int             `json:"count"`
}

// handleRecallMemory processes a memory recall request via MCP.
func (s *Server) handleRecallMemory(ctx context.Context, _ *mcp.CallToolRequest, input RecallMemoryInput) (*mcp.CallToolResult, RecallMemoryOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult[RecallMemoryOutput]("query is required")
	}

	result, err := s.config.Memory.Recall(ctx, input.Query, input.Limit)
	if err != nil {
		return errorResult[RecallMemoryOutput](fmt.Sprintf("Memory recall failed: %v", err))
	}

	facts := result.Facts
	if facts == nil {
		facts = []*storage.Fact{}
	}

	return jsonResult(RecallMemoryOutput{
		Facts: facts,
		Mode:  result.Mode,
		Count: len(facts),
	})
}

// ContextBundleInput represents the input arguments for the context_bundle tool.
type ContextBundleInput struct {
	Query string `json:"query" jsonschema:"the topic or message to assemble context for"`
}

// ContextBundleOutput is the assembled bundle. Rendered is the prompt block
// ready to prepend to a conversation.
type ContextBundleOutput struct {
	Facts    []*storage.Fact  `json:"facts"`
	Goals    []*storage.Goal  `json:"goals"`
	Excerpts []bundle.Excerpt `json:"excerpts"`
	Mode     memory.Mode      `json:"mode"`
	Rendered string           `json:"rendered"`
}

// handleContextBundle assembles a context bundle. Assembly is pure over
// stored state, so a failed call can simply be retried.
func (s *Server) handleContextBundle(ctx context.Context, _ *mcp.CallToolRequest, input ContextBundleInput) (*mcp.CallToolResult, ContextBundleOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult[ContextBundleOutput]("query is required")
	}

	recalled, err := s.config.Memory.Recall(ctx, input.Query, 0)
	if err != nil {
		return errorResult[ContextBundleOutput](fmt.Sprintf("Memory recall failed: %v", err))
	}

	goals, err := s.config.Storer.ActiveGoals(ctx, 0)
	if err != nil {
		return errorResult[ContextBundleOutput](fmt.Sprintf("Failed to load goals: %v", err))
	}

	past, err := s.config.Storer.RecentConversations(ctx, 5)
	if err != nil {
		return errorResult[ContextBundleOutput](fmt.Sprintf("Failed to load conversations: %v", err))
	}

	b := s.assembler.Assemble(recalled.Facts, goals, past, nil)

	return jsonResult(ContextBundleOutput{
		Facts:    b.Facts,
		Goals:    b.Goals,
		Excerpts: b.Excerpts,
		Mode:     recalled.Mode,
		Rendered: b.Render(),
	})
}
