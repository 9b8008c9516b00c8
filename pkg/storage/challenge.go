package storage

import "context"

// ChallengeStore defines the interface for persisting practice challenges,
// their obstacle logs, and daily practice streaks.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, challenge *Challenge) (*Challenge, error)
	GetChallenge(ctx context.Context, id int64) (*Challenge, error)
	ChallengesBySkill(ctx context.Context, skillID int64) ([]*Challenge, error)
	ChallengesByStatus(ctx context.Context, skillID int64, status ChallengeStatus) ([]*Challenge, error)

	// UpdateChallenge persists all mutable challenge fields in a single
	// statement, so a status transition lands atomically.
	UpdateChallenge(ctx context.Context, challenge *Challenge) (*Challenge, error)

	// CountCompletedChallenges counts a skill's completed challenges.
	CountCompletedChallenges(ctx context.Context, skillID int64) (int, error)

	CreateObstacle(ctx context.Context, obstacle *Obstacle) (*Obstacle, error)
	GetObstacle(ctx context.Context, id int64) (*Obstacle, error)
	ObstaclesByChallenge(ctx context.Context, challengeID int64) ([]*Obstacle, error)
	UpdateObstacle(ctx context.Context, obstacle *Obstacle) (*Obstacle, error)

	// SearchObstacles matches query as a substring of problem, solution, or
	// insight, newest first. skillID 0 searches across all skills.
	SearchObstacles(ctx context.Context, query string, skillID int64, limit int) ([]*Obstacle, error)

	// MarkStreak records practice activity for a day (YYYY-MM-DD). Marking
	// the same day twice is a no-op.
	MarkStreak(ctx context.Context, day string) error

	// StreakDays returns recorded practice days, most recent first.
	StreakDays(ctx context.Context, limit int) ([]*DailyStreak, error)

	Close() error
}
