package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
)

// handleBriefing assembles the morning briefing snapshot.
func (s *Server) handleBriefing(c *fiber.Ctx) error {
	b, err := s.services.Briefing.Assemble(c.Context(), time.Now())
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(b)
}

type streaksResponse struct {
	stats.StreakStats
	Days []*storage.DailyStreak `json:"days"`
}

// handleStreaks returns streak figures with the recorded days behind them.
// The figures always cover every recorded day; limit only trims the list in
// the response.
func (s *Server) handleStreaks(c *fiber.Ctx) error {
	days, err := s.services.Challenges.StreakDays(c.Context(), 0)
	if err != nil {
		return s.domainError(c, err)
	}

	figures := stats.Streaks(days, challenge.Today())

	if limit := c.QueryInt("limit", 0); limit > 0 && len(days) > limit {
		days = days[:limit]
	}

	return c.JSON(streaksResponse{
		StreakStats: figures,
		Days:        days,
	})
}

// handleStats returns the aggregate overview for the requested window.
func (s *Server) handleStats(c *fiber.Ctx) error {
	window := c.QueryInt("window", 0)

	overview, err := s.services.Stats.Overview(c.Context(), window)
	if err != nil {
		return s.domainError(c, err)
	}

	return c.JSON(overview)
}
