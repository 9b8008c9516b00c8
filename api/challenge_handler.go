package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/eventstream"
	"github.com/quietmindco/engram/pkg/storage"
)

type createChallengeRequest struct {
	SkillID        int64   `json:"skill_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Difficulty     string  `json:"difficulty,omitempty"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
}

// handleCreateChallenge adds a challenge in the available state.
func (s *Server) handleCreateChallenge(c *fiber.Ctx) error {
	var req createChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.SkillID <= 0 {
		return fail(c, fiber.StatusBadRequest, "skill_id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return fail(c, fiber.StatusBadRequest, "title is required")
	}

	difficulty := storage.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = storage.DifficultyBeginner
	}

	created, err := s.services.Challenges.Create(c.Context(), req.SkillID, req.Title, req.Description, difficulty, req.EstimatedHours)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// handleListChallenges filters challenges by skill and/or status.
func (s *Server) handleListChallenges(c *fiber.Ctx) error {
	skillID := int64(c.QueryInt("skill_id", 0))
	status := c.Query("status")

	if status == "" && skillID <= 0 {
		return fail(c, fiber.StatusBadRequest, "skill_id or status is required")
	}

	var (
		challenges []*storage.Challenge
		err        error
	)
	if status != "" {
		switch storage.ChallengeStatus(status) {
		case storage.ChallengeStatusAvailable, storage.ChallengeStatusInProgress, storage.ChallengeStatusCompleted:
		default:
			return fail(c, fiber.StatusBadRequest, "status must be available, in_progress, or completed")
		}
		challenges, err = s.services.Challenges.ChallengesByStatus(c.Context(), skillID, storage.ChallengeStatus(status))
	} else {
		challenges, err = s.services.Challenges.ChallengesBySkill(c.Context(), skillID)
	}
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"count":      len(challenges),
		"challenges": challenges,
	})
}

// handleGetChallenge returns one challenge with its obstacles and the
// skill's current progression.
func (s *Server) handleGetChallenge(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.Context()

	found, err := s.services.Challenges.Challenge(ctx, id)
	if err != nil {
		return s.domainError(c, err)
	}

	obstacles, err := s.services.Challenges.Obstacles(ctx, id)
	if err != nil {
		return s.domainError(c, err)
	}

	progression, err := s.services.Challenges.SkillProgression(ctx, found.SkillID)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"challenge":   found,
		"obstacles":   obstacles,
		"progression": progression,
	})
}

// handleStartChallenge moves an available challenge into progress.
func (s *Server) handleStartChallenge(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	started, err := s.services.Challenges.Start(c.Context(), id)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(started)
}

type progressRequest struct {
	ProgressPct int `json:"progress_pct"`
	Minutes     int `json:"minutes,omitempty"`
}

// handleUpdateProgress records progress on an in-progress challenge. Minutes
// accumulate; the day is marked in the practice streak.
func (s *Server) handleUpdateProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	var req progressRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	marked := s.todayMarked(c.Context())

	updated, err := s.services.Challenges.UpdateProgress(c.Context(), id, req.ProgressPct, req.Minutes)
	if err != nil {
		return s.domainError(c, err)
	}

	if !marked {
		s.announce(c.Context(), eventstream.NewEvent(eventstream.EventTypeStreakMarked, "", map[string]any{
			"date": challenge.Today(),
		}))
	}

	return c.JSON(updated)
}

// todayMarked reports whether the practice streak already counts today.
// Checked before the mutation so the first mark of the day is observable.
func (s *Server) todayMarked(ctx context.Context) bool {
	days, err := s.services.Challenges.StreakDays(ctx, 1)
	if err != nil || len(days) == 0 {
		return false
	}
	return days[0].Date == challenge.Today()
}

type obstacleRequest struct {
	Problem string `json:"problem"`
}

// handleLogObstacle records a blocking problem on an in-progress challenge.
func (s *Server) handleLogObstacle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	var req obstacleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Problem) == "" {
		return fail(c, fiber.StatusBadRequest, "problem is required")
	}

	obstacle, err := s.services.Challenges.LogObstacle(c.Context(), id, req.Problem)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(obstacle)
}

type solveRequest struct {
	Solution string `json:"solution"`
	Insight  string `json:"insight,omitempty"`
	Minutes  int    `json:"minutes,omitempty"`
}

// handleSolveObstacle records a solution on an open obstacle. Solving twice
// is rejected.
func (s *Server) handleSolveObstacle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	var req solveRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Solution) == "" {
		return fail(c, fiber.StatusBadRequest, "solution is required")
	}

	obstacle, err := s.services.Challenges.SolveObstacle(c.Context(), id, req.Solution, req.Insight, req.Minutes)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(obstacle)
}

type completeRequest struct {
	Notes string `json:"notes,omitempty"`
	Link  string `json:"link,omitempty"`
}

// handleCompleteChallenge completes an in-progress challenge. Open obstacles
// do not block completion.
func (s *Server) handleCompleteChallenge(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	var req completeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	completed, err := s.services.Challenges.Complete(c.Context(), id, req.Notes, req.Link)
	if err != nil {
		return s.domainError(c, err)
	}

	s.announce(c.Context(), eventstream.NewEvent(eventstream.EventTypeChallengeCompleted, completed.Title, map[string]any{
		"challenge_id": completed.ID,
		"skill_id":     completed.SkillID,
	}))

	return c.JSON(completed)
}

// handleSearchObstacles searches obstacle problems, solutions, and insights.
func (s *Server) handleSearchObstacles(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return fail(c, fiber.StatusBadRequest, "query parameter is required")
	}

	skillID := int64(c.QueryInt("skill_id", 0))
	limit := c.QueryInt("limit", 20)

	obstacles, err := s.services.Challenges.SearchObstacles(c.Context(), query, skillID, limit)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"count":     len(obstacles),
		"obstacles": obstacles,
	})
}
