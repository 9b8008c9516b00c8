// Package challenge drives the project-challenge lifecycle: available
// challenges are started, worked on with logged progress and obstacles, and
// completed. Completions feed the progression evaluator, which rates a skill
// by what was actually built.
package challenge

import (
	"context"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

// Service enforces the challenge state machine on top of a challenge store.
// All transition validation happens here; the store persists whole rows
// atomically.
type Service struct {
	store storage.ChallengeStore
}

// NewService creates a challenge service over the given store.
func NewService(store storage.ChallengeStore) *Service {
	return &Service{store: store}
}

// Create registers a new challenge under a skill. New challenges start
// available.
func (s *Service) Create(ctx context.Context, skillID int64, title, description string, difficulty storage.Difficulty, estimatedHours float64) (*storage.Challenge, error) {
	if difficulty == "" {
		difficulty = storage.DifficultyBeginner
	}

	return s.store.CreateChallenge(ctx, &storage.Challenge{
		SkillID:        skillID,
		Title:          title,
		Description:    description,
		Difficulty:     difficulty,
		EstimatedHours: estimatedHours,
		Status:         storage.ChallengeStatusAvailable,
	})
}

// Challenge retrieves a challenge by id.
func (s *Service) Challenge(ctx context.Context, id int64) (*storage.Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

// ChallengesBySkill lists a skill's challenges in creation order.
func (s *Service) ChallengesBySkill(ctx context.Context, skillID int64) ([]*storage.Challenge, error) {
	return s.store.ChallengesBySkill(ctx, skillID)
}

// ChallengesByStatus lists challenges in a given state. skillID 0 spans all
// skills.
func (s *Service) ChallengesByStatus(ctx context.Context, skillID int64, status storage.ChallengeStatus) ([]*storage.Challenge, error) {
	return s.store.ChallengesByStatus(ctx, skillID, status)
}

// Start moves an available challenge to in_progress and stamps started_at.
func (s *Service) Start(ctx context.Context, id int64) (*storage.Challenge, error) {
	ch, err := s.store.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.Status != storage.ChallengeStatusAvailable {
		return nil, InvalidTransitionError{From: ch.Status, To: storage.ChallengeStatusInProgress}
	}

	now := time.Now().UTC()
	ch.Status = storage.ChallengeStatusInProgress
	ch.StartedAt = &now

	return s.store.UpdateChallenge(ctx, ch)
}

// UpdateProgress records work on an in_progress challenge. pct is clamped to
// [0,100] and replaces the stored value; minutes accumulate. Any progress
// update marks today's practice streak, at most once per calendar day.
func (s *Service) UpdateProgress(ctx context.Context, id int64, pct, minutes int) (*storage.Challenge, error) {
	ch, err := s.store.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.Status != storage.ChallengeStatusInProgress {
		return nil, InvalidTransitionError{From: ch.Status, To: storage.ChallengeStatusInProgress}
	}

	ch.ProgressPct = clampPct(pct)
	if minutes > 0 {
		ch.MinutesSpent += minutes
	}

	updated, err := s.store.UpdateChallenge(ctx, ch)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkStreak(ctx, Today()); err != nil {
		return nil, err
	}

	return updated, nil
}

// LogObstacle records a blocking problem on an in_progress challenge. The
// obstacle starts open (no solution).
func (s *Service) LogObstacle(ctx context.Context, challengeID int64, problem string) (*storage.Obstacle, error) {
	ch, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if ch.Status != storage.ChallengeStatusInProgress {
		return nil, InvalidTransitionError{From: ch.Status, To: storage.ChallengeStatusInProgress}
	}

	return s.store.CreateObstacle(ctx, &storage.Obstacle{
		ChallengeID: challengeID,
		Problem:     problem,
	})
}

// SolveObstacle records the solution for an open obstacle and stamps
// solved_at. insight and minutes are optional (empty / zero to omit). Solving
// an obstacle twice fails with AlreadySolvedError.
func (s *Service) SolveObstacle(ctx context.Context, obstacleID int64, solution, insight string, minutes int) (*storage.Obstacle, error) {
	ob, err := s.store.GetObstacle(ctx, obstacleID)
	if err != nil {
		return nil, err
	}
	if !ob.Open() {
		return nil, AlreadySolvedError{ObstacleID: ob.ID}
	}

	now := time.Now().UTC()
	ob.Solution = &solution
	ob.SolvedAt = &now
	if insight != "" {
		ob.Insight = &insight
	}
	if minutes > 0 {
		ob.MinutesToSolve = &minutes
	}

	return s.store.UpdateObstacle(ctx, ob)
}

// Complete moves an in_progress challenge to completed, stamps completed_at,
// and forces progress to 100. notes and link are optional. Open obstacles are
// allowed to remain; an unsolved problem doesn't un-ship a project.
func (s *Service) Complete(ctx context.Context, id int64, notes, link string) (*storage.Challenge, error) {
	ch, err := s.store.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.Status != storage.ChallengeStatusInProgress {
		return nil, InvalidTransitionError{From: ch.Status, To: storage.ChallengeStatusCompleted}
	}

	now := time.Now().UTC()
	ch.Status = storage.ChallengeStatusCompleted
	ch.CompletedAt = &now
	ch.ProgressPct = 100
	if notes != "" {
		ch.CompletionNotes = notes
	}
	if link != "" {
		ch.CompletionLink = link
	}

	return s.store.UpdateChallenge(ctx, ch)
}

// Obstacles lists a challenge's obstacles, oldest first.
func (s *Service) Obstacles(ctx context.Context, challengeID int64) ([]*storage.Obstacle, error) {
	return s.store.ObstaclesByChallenge(ctx, challengeID)
}

// SearchObstacles finds past obstacles whose problem, solution, or insight
// contains query, newest first. skillID 0 searches every skill.
func (s *Service) SearchObstacles(ctx context.Context, query string, skillID int64, limit int) ([]*storage.Obstacle, error) {
	return s.store.SearchObstacles(ctx, query, skillID, limit)
}

// SkillProgression recounts a skill's completed challenges and evaluates its
// level. Nothing is cached; a completion is reflected on the very next call.
func (s *Service) SkillProgression(ctx context.Context, skillID int64) (*Progress, error) {
	completed, err := s.store.CountCompletedChallenges(ctx, skillID)
	if err != nil {
		return nil, err
	}

	level, percent := Progression(completed)

	return &Progress{
		SkillID:   skillID,
		Completed: completed,
		Level:     level,
		Percent:   percent,
	}, nil
}

// StreakDays returns recorded practice days, most recent first.
func (s *Service) StreakDays(ctx context.Context, limit int) ([]*storage.DailyStreak, error) {
	return s.store.StreakDays(ctx, limit)
}

// MarkToday records practice activity for the current day regardless of
// challenge state. Used by session logging and manual check-ins.
func (s *Service) MarkToday(ctx context.Context) error {
	return s.store.MarkStreak(ctx, Today())
}

// Today is the streak key for the current calendar date. Streak days follow
// the user's local clock: practice at 23:30 belongs to today, not UTC
// tomorrow.
func Today() string {
	return time.Now().Format("2006-01-02")
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
