package api

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/pkg/bundle"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/eventstream"
	"github.com/quietmindco/engram/pkg/llm"
	"github.com/quietmindco/engram/pkg/memory"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/worker"
)

// ErrorResponse is the JSON error envelope every handler returns on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// domainError maps engine errors onto HTTP statuses: missing rows are 404,
// rejected transitions 409, store failures 500.
func (s *Server) domainError(c *fiber.Ctx, err error) error {
	var notFound storage.ErrNotFound
	if errors.As(err, &notFound) {
		return fail(c, fiber.StatusNotFound, notFound.Error())
	}

	var invalid challenge.InvalidTransitionError
	if errors.As(err, &invalid) {
		return fail(c, fiber.StatusConflict, invalid.Error())
	}

	var solved challenge.AlreadySolvedError
	if errors.As(err, &solved) {
		return fail(c, fiber.StatusConflict, solved.Error())
	}

	s.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return fail(c, fiber.StatusInternalServerError, err.Error())
}

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return id, nil
}

// announce publishes a knowledge event when a publisher is configured.
// Publish failures are logged, never surfaced; the mutation already landed.
func (s *Server) announce(ctx context.Context, event *eventstream.Event) {
	if s.services.Events == nil {
		return
	}
	if err := s.services.Events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

type createFactRequest struct {
	Entity string `json:"entity"`
	Text   string `json:"text"`
}

// handleCreateFact stores a fact and queues it for vector indexing.
func (s *Server) handleCreateFact(c *fiber.Ctx) error {
	var req createFactRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Entity) == "" || strings.TrimSpace(req.Text) == "" {
		return fail(c, fiber.StatusBadRequest, "entity and text are required")
	}

	fact, err := s.services.Memory.Store(c.Context(), req.Entity, req.Text)
	if err != nil {
		return s.domainError(c, err)
	}

	if s.services.Index != nil {
		if !s.services.Index.Enqueue(worker.Job{Fact: fact}) {
			s.logger.Warn("index queue full, fact stored unindexed",
				zap.Int64("fact_id", fact.ID),
			)
		}
	}

	s.announce(c.Context(), eventstream.NewEvent(eventstream.EventTypeFactStored, fact.Entity, map[string]any{
		"fact_id": fact.ID,
	}))

	return c.Status(fiber.StatusCreated).JSON(fact)
}

// handleRecentFacts returns the most recently stored facts.
func (s *Server) handleRecentFacts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	facts, err := s.services.Storer.RecentFacts(c.Context(), limit)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(facts),
		"facts": facts,
	})
}

// handleRecall runs hybrid recall. The response carries the recall mode so
// clients can tell a degraded answer from a full one.
func (s *Server) handleRecall(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return fail(c, fiber.StatusBadRequest, "query parameter is required")
	}

	limit := c.QueryInt("limit", 0)

	result, err := s.services.Memory.Recall(c.Context(), query, limit)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(result)
}

type bundleRequest struct {
	Query      string        `json:"query"`
	Transcript []llm.Message `json:"transcript,omitempty"`
}

type bundleResponse struct {
	Facts      []*storage.Fact  `json:"facts"`
	Goals      []*storage.Goal  `json:"goals"`
	Excerpts   []bundle.Excerpt `json:"excerpts"`
	Transcript []llm.Message    `json:"transcript"`
	Mode       memory.Mode      `json:"mode"`
	Rendered   string           `json:"rendered"`
}

// handleBundle assembles a context bundle for the query. Assembly is pure
// over stored state, so a failed call can simply be retried.
func (s *Server) handleBundle(c *fiber.Ctx) error {
	var req bundleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return fail(c, fiber.StatusBadRequest, "query is required")
	}

	ctx := c.Context()

	recalled, err := s.services.Memory.Recall(ctx, req.Query, 0)
	if err != nil {
		return s.domainError(c, err)
	}

	goals, err := s.services.Storer.ActiveGoals(ctx, 0)
	if err != nil {
		return s.domainError(c, err)
	}

	past, err := s.services.Storer.RecentConversations(ctx, 5)
	if err != nil {
		return s.domainError(c, err)
	}

	b := s.assembler.Assemble(recalled.Facts, goals, past, req.Transcript)

	return c.JSON(bundleResponse{
		Facts:      b.Facts,
		Goals:      b.Goals,
		Excerpts:   b.Excerpts,
		Transcript: b.Transcript,
		Mode:       recalled.Mode,
		Rendered:   b.Render(),
	})
}

type createGoalRequest struct {
	Text string `json:"text"`
	// TargetDate is an optional YYYY-MM-DD date.
	TargetDate string `json:"target_date,omitempty"`
}

// handleCreateGoal stores a new active goal.
func (s *Server) handleCreateGoal(c *fiber.Ctx) error {
	var req createGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fail(c, fiber.StatusBadRequest, "text is required")
	}

	var target *time.Time
	if req.TargetDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "target_date must be YYYY-MM-DD")
		}
		target = &parsed
	}

	goal, err := s.services.Storer.CreateGoal(c.Context(), req.Text, target)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(goal)
}

// handleListGoals returns active goals, or every goal with ?all=true.
func (s *Server) handleListGoals(c *fiber.Ctx) error {
	var (
		goals []*storage.Goal
		err   error
	)
	if c.QueryBool("all", false) {
		goals, err = s.services.Storer.ListGoals(c.Context())
	} else {
		goals, err = s.services.Storer.ActiveGoals(c.Context(), c.QueryInt("limit", 0))
	}
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(goals),
		"goals": goals,
	})
}

// handleCompleteGoal marks a goal done.
func (s *Server) handleCompleteGoal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.services.Storer.CompleteGoal(c.Context(), id); err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(fiber.Map{"done": true})
}
