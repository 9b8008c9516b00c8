package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
)

// goalLimit matches the context assembler's goal budget so the briefing and
// the chat prompt show the same slice of goals.
const goalLimit = 5

// Store is the read surface a briefing pulls from. A single SQL driver
// satisfies all of it.
type Store interface {
	ActiveGoals(ctx context.Context, limit int) ([]*storage.Goal, error)
	DueItems(ctx context.Context, asOf time.Time, limit int) ([]*storage.LearningItem, error)
	ChallengesByStatus(ctx context.Context, skillID int64, status storage.ChallengeStatus) ([]*storage.Challenge, error)
	StreakDays(ctx context.Context, limit int) ([]*storage.DailyStreak, error)
	SessionTotals(ctx context.Context, since time.Time) ([]storage.SkillMinutes, error)
}

// Service assembles briefings. call may be nil; the briefing then carries no
// kickoff note but everything store-backed still appears.
type Service struct {
	store Store
	call  completion.CallFunc
}

// NewService creates a briefing service over the given store.
func NewService(store Store, call completion.CallFunc) *Service {
	return &Service{store: store, call: call}
}

// Assemble builds the briefing for now. A zero now means the current time.
// A failed kickoff call degrades to an empty Kickoff, never a failed
// briefing.
func (s *Service) Assemble(ctx context.Context, now time.Time) (*Briefing, error) {
	if now.IsZero() {
		now = time.Now()
	}

	b := &Briefing{Date: now.Format("Monday, January 2, 2006")}

	due, err := s.store.DueItems(ctx, now.UTC(), 0)
	if err != nil {
		return nil, err
	}
	b.DueReviews = len(due)

	if b.Goals, err = s.store.ActiveGoals(ctx, goalLimit); err != nil {
		return nil, err
	}
	if b.InProgress, err = s.store.ChallengesByStatus(ctx, 0, storage.ChallengeStatusInProgress); err != nil {
		return nil, err
	}

	days, err := s.store.StreakDays(ctx, 0)
	if err != nil {
		return nil, err
	}
	b.Streak = stats.Streaks(days, now.Format("2006-01-02"))

	totals, err := s.store.SessionTotals(ctx, now.UTC().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	for _, t := range totals {
		b.WeekSessions += t.Sessions
		b.WeekMinutes += t.Minutes
	}

	if s.call != nil {
		note, err := s.call(ctx, kickoffSystem, kickoffPrompt(b))
		if err != nil {
			slog.Warn("briefing: kickoff unavailable", "error", err)
		} else {
			b.Kickoff = strings.TrimSpace(note)
		}
	}

	return b, nil
}

const kickoffSystem = "You are a personal morning assistant. Keep it concise and actionable."

// kickoffPrompt carries the day's state into the model so the note has
// something concrete to work with.
func kickoffPrompt(b *Briefing) string {
	var sb strings.Builder

	sb.WriteString("It's the start of a new day.\n")

	if len(b.Goals) > 0 {
		sb.WriteString("Active goals:\n")
		for _, goal := range b.Goals {
			sb.WriteString("- " + goal.Text + "\n")
		}
	}
	if b.DueReviews > 0 {
		fmt.Fprintf(&sb, "%d review items are due today.\n", b.DueReviews)
	}
	if len(b.InProgress) > 0 {
		sb.WriteString("Challenges in progress:\n")
		for _, ch := range b.InProgress {
			sb.WriteString("- " + ch.Title + "\n")
		}
	}
	if b.Streak.Current > 0 {
		fmt.Fprintf(&sb, "Practice streak: %d days.\n", b.Streak.Current)
	}

	sb.WriteString("\nPlease:\n")
	sb.WriteString("1. Review my active goals\n")
	sb.WriteString("2. Suggest 3 priorities for today\n")
	sb.WriteString("3. Give me a brief motivational message\n")

	return sb.String()
}
