// Package stats aggregates the knowledge and learning stores into progress
// figures: review volume and accuracy, study time, fact distribution, and
// practice streaks.
package stats

import (
	"context"
	"math"
	"time"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/storage"
)

// DefaultWindowDays is the overview window when the caller doesn't pick one.
const DefaultWindowDays = 30

// topEntityLimit caps the per-entity fact tally in the overview.
const topEntityLimit = 10

// Store is the read surface the overview aggregates over. A single SQL
// driver satisfies all of it.
type Store interface {
	storage.StatsStore

	CountFacts(ctx context.Context) (int, error)
	DueItems(ctx context.Context, asOf time.Time, limit int) ([]*storage.LearningItem, error)
	StreakDays(ctx context.Context, limit int) ([]*storage.DailyStreak, error)
}

// Overview is one aggregate snapshot of knowledge and learning activity.
// Windowed figures cover the trailing WindowDays days; fact counts and the
// streak chain are all-time.
type Overview struct {
	WindowDays int `json:"window_days"`

	TotalFacts  int                   `json:"total_facts"`
	TopEntities []storage.EntityCount `json:"top_entities,omitempty"`

	DueReviews      int                     `json:"due_reviews"`
	TotalReviews    int                     `json:"total_reviews"`
	ReviewAccuracy  float64                 `json:"review_accuracy"`
	ReviewsPerDay   []storage.DayCount      `json:"reviews_per_day,omitempty"`
	AccuracyBySkill []storage.SkillAccuracy `json:"accuracy_by_skill,omitempty"`

	TotalMinutes     int                    `json:"total_minutes"`
	TotalHours       float64                `json:"total_hours"`
	AvgMinutesPerDay float64                `json:"avg_minutes_per_day"`
	StudyBySkill     []storage.SkillMinutes `json:"study_by_skill,omitempty"`

	Streak StreakStats `json:"streak"`
}

// Service assembles overviews. The store groups and counts; the percentage
// and rounding arithmetic happens here.
type Service struct {
	store Store
}

// NewService creates a stats service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Overview assembles the snapshot for the trailing windowDays days. Zero or
// negative means DefaultWindowDays.
func (s *Service) Overview(ctx context.Context, windowDays int) (*Overview, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -windowDays)

	o := &Overview{WindowDays: windowDays}

	var err error
	if o.TotalFacts, err = s.store.CountFacts(ctx); err != nil {
		return nil, err
	}
	if o.TopEntities, err = s.store.FactCountsByEntity(ctx, topEntityLimit); err != nil {
		return nil, err
	}

	due, err := s.store.DueItems(ctx, now, 0)
	if err != nil {
		return nil, err
	}
	o.DueReviews = len(due)

	if o.ReviewsPerDay, err = s.store.ReviewsPerDay(ctx, since); err != nil {
		return nil, err
	}
	if o.AccuracyBySkill, err = s.store.AccuracyBySkill(ctx, since); err != nil {
		return nil, err
	}

	correct := 0
	for _, skill := range o.AccuracyBySkill {
		o.TotalReviews += skill.Reviews
		correct += skill.Correct
	}
	if o.TotalReviews > 0 {
		o.ReviewAccuracy = round1(float64(correct) / float64(o.TotalReviews) * 100)
	}

	if o.StudyBySkill, err = s.store.SessionTotals(ctx, since); err != nil {
		return nil, err
	}
	for _, skill := range o.StudyBySkill {
		o.TotalMinutes += skill.Minutes
	}
	o.TotalHours = round1(float64(o.TotalMinutes) / 60)
	o.AvgMinutesPerDay = round1(float64(o.TotalMinutes) / float64(windowDays))

	// Streak days are keyed by the local calendar, so the anchor comes from
	// the local clock, not the UTC window.
	streakDays, err := s.store.StreakDays(ctx, 0)
	if err != nil {
		return nil, err
	}
	o.Streak = Streaks(streakDays, challenge.Today())

	return o, nil
}

// round1 keeps display-facing figures to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
