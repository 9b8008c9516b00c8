package storage

import (
	"context"
	"time"
)

// LearningStore defines the interface for persisting skills, learning items,
// reviews, sessions, and milestones. A LearningItem, Session, or Milestone is
// owned by its skill; deleting the skill cascades.
type LearningStore interface {
	CreateSkill(ctx context.Context, skill *Skill) (*Skill, error)
	GetSkill(ctx context.Context, id int64) (*Skill, error)
	GetSkillByName(ctx context.Context, name string) (*Skill, error)
	ListSkills(ctx context.Context) ([]*Skill, error)

	// DeleteSkill removes a skill and cascades to its items, reviews,
	// sessions, milestones, challenges, and obstacles.
	DeleteSkill(ctx context.Context, id int64) error

	// CreateItem stores a new learning item. NextReviewAt defaults to the
	// creation time when unset, so fresh items are due immediately.
	CreateItem(ctx context.Context, item *LearningItem) (*LearningItem, error)
	GetItem(ctx context.Context, id int64) (*LearningItem, error)
	ItemsBySkill(ctx context.Context, skillID int64) ([]*LearningItem, error)

	// DueItems returns items with next_review_at <= asOf, ordered by
	// next_review_at ascending (most overdue first). limit <= 0 means no limit.
	DueItems(ctx context.Context, asOf time.Time, limit int) ([]*LearningItem, error)

	// RecordReview applies one review outcome in a single transaction: the
	// item's counters and next_review_at are updated and the history row is
	// appended, or neither happens. Returns the updated item.
	RecordReview(ctx context.Context, itemID int64, reviewedAt time.Time, wasCorrect bool, confidence int, nextReviewAt time.Time) (*LearningItem, error)

	// ReviewsByItem returns an item's review history, oldest first.
	ReviewsByItem(ctx context.Context, itemID int64) ([]*ReviewRecord, error)

	LogSession(ctx context.Context, session *Session) (*Session, error)
	SessionsBySkill(ctx context.Context, skillID int64) ([]*Session, error)

	AddMilestone(ctx context.Context, milestone *Milestone) (*Milestone, error)
	MilestonesBySkill(ctx context.Context, skillID int64) ([]*Milestone, error)

	Close() error
}
