package learning

import (
	"context"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

// Service coordinates spaced-repetition reviews over a learning store. All
// review-time arithmetic lives here; the store persists what it is handed.
type Service struct {
	store storage.LearningStore
}

// NewService creates a learning service over the given store.
func NewService(store storage.LearningStore) *Service {
	return &Service{store: store}
}

// CreateSkill registers a new learning area.
func (s *Service) CreateSkill(ctx context.Context, name, category, currentLevel, roadmapContext string) (*storage.Skill, error) {
	return s.store.CreateSkill(ctx, &storage.Skill{
		Name:           name,
		Category:       category,
		CurrentLevel:   currentLevel,
		RoadmapContext: roadmapContext,
	})
}

// Skill retrieves a skill by id.
func (s *Service) Skill(ctx context.Context, id int64) (*storage.Skill, error) {
	return s.store.GetSkill(ctx, id)
}

// SkillByName retrieves a skill by its exact name.
func (s *Service) SkillByName(ctx context.Context, name string) (*storage.Skill, error) {
	return s.store.GetSkillByName(ctx, name)
}

// Skills lists all tracked skills.
func (s *Service) Skills(ctx context.Context) ([]*storage.Skill, error) {
	return s.store.ListSkills(ctx)
}

// DeleteSkill removes a skill and everything recorded under it.
func (s *Service) DeleteSkill(ctx context.Context, id int64) error {
	return s.store.DeleteSkill(ctx, id)
}

// AddItem creates a reviewable item under a skill. New items are due
// immediately.
func (s *Service) AddItem(ctx context.Context, skillID int64, itemType storage.ItemType, prompt, answer string, tags []string) (*storage.LearningItem, error) {
	return s.store.CreateItem(ctx, &storage.LearningItem{
		SkillID: skillID,
		Type:    itemType,
		Prompt:  prompt,
		Answer:  answer,
		Tags:    tags,
	})
}

// Item retrieves a learning item by id.
func (s *Service) Item(ctx context.Context, id int64) (*storage.LearningItem, error) {
	return s.store.GetItem(ctx, id)
}

// ItemsBySkill lists a skill's items.
func (s *Service) ItemsBySkill(ctx context.Context, skillID int64) ([]*storage.LearningItem, error) {
	return s.store.ItemsBySkill(ctx, skillID)
}

// DueItems returns items due for review at asOf, most overdue first. A zero
// asOf means now.
func (s *Service) DueItems(ctx context.Context, asOf time.Time, limit int) ([]*storage.LearningItem, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return s.store.DueItems(ctx, asOf, limit)
}

// RecordReview applies one review outcome. The next interval comes from the
// schedule, and the item update and its history row land in a single store
// transaction.
func (s *Service) RecordReview(ctx context.Context, itemID int64, wasCorrect bool, confidence int) (*storage.LearningItem, error) {
	confidence = ClampConfidence(confidence)
	reviewedAt := time.Now().UTC()
	nextReviewAt := reviewedAt.Add(NextInterval(wasCorrect, confidence))

	return s.store.RecordReview(ctx, itemID, reviewedAt, wasCorrect, confidence, nextReviewAt)
}

// Reviews returns an item's review history, oldest first.
func (s *Service) Reviews(ctx context.Context, itemID int64) ([]*storage.ReviewRecord, error) {
	return s.store.ReviewsByItem(ctx, itemID)
}

// LogSession records a block of study time against a skill.
func (s *Service) LogSession(ctx context.Context, skillID int64, topic string, minutes int, notes string) (*storage.Session, error) {
	return s.store.LogSession(ctx, &storage.Session{
		SkillID: skillID,
		Topic:   topic,
		Minutes: minutes,
		Notes:   notes,
	})
}

// Sessions lists a skill's study sessions, newest first.
func (s *Service) Sessions(ctx context.Context, skillID int64) ([]*storage.Session, error) {
	return s.store.SessionsBySkill(ctx, skillID)
}

// AddMilestone marks an achievement within a skill.
func (s *Service) AddMilestone(ctx context.Context, skillID int64, title, description string) (*storage.Milestone, error) {
	return s.store.AddMilestone(ctx, &storage.Milestone{
		SkillID:     skillID,
		Title:       title,
		Description: description,
	})
}

// Milestones lists a skill's milestones, newest first.
func (s *Service) Milestones(ctx context.Context, skillID int64) ([]*storage.Milestone, error) {
	return s.store.MilestonesBySkill(ctx, skillID)
}
