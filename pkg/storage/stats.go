package storage

import (
	"context"
	"time"
)

// DayCount is a per-day tally. Day is a YYYY-MM-DD key in UTC.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SkillAccuracy aggregates review outcomes for one skill.
type SkillAccuracy struct {
	SkillID   int64  `json:"skill_id"`
	SkillName string `json:"skill_name"`
	Reviews   int    `json:"reviews"`
	Correct   int    `json:"correct"`
}

// SkillMinutes aggregates study sessions for one skill.
type SkillMinutes struct {
	SkillID   int64  `json:"skill_id"`
	SkillName string `json:"skill_name"`
	Sessions  int    `json:"sessions"`
	Minutes   int    `json:"minutes"`
}

// EntityCount tallies stored facts per entity.
type EntityCount struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

// StatsStore defines the aggregate queries behind progress dashboards. The
// grouping happens in SQL; callers get finished tallies, not raw rows.
type StatsStore interface {
	// ReviewsPerDay tallies review history per UTC day since the given time,
	// oldest day first. Days with no reviews are absent.
	ReviewsPerDay(ctx context.Context, since time.Time) ([]DayCount, error)

	// AccuracyBySkill tallies review outcomes per skill since the given time,
	// most reviewed first. Skills with no reviews in the window are absent.
	AccuracyBySkill(ctx context.Context, since time.Time) ([]SkillAccuracy, error)

	// SessionTotals tallies study sessions per skill since the given time,
	// most minutes first. Skills with no sessions in the window are absent.
	SessionTotals(ctx context.Context, since time.Time) ([]SkillMinutes, error)

	// FactCountsByEntity tallies stored facts per entity, largest first.
	FactCountsByEntity(ctx context.Context, limit int) ([]EntityCount, error)
}
