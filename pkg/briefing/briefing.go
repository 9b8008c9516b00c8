// Package briefing assembles the morning snapshot: reviews due, active
// goals, running challenges, the practice streak, and an optional generated
// kickoff note.
package briefing

import (
	"fmt"
	"strings"

	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
)

// Briefing is one morning's snapshot. Kickoff is empty when no completion
// backend is configured or the call failed; everything else comes straight
// from the store.
type Briefing struct {
	Date         string               `json:"date"`
	DueReviews   int                  `json:"due_reviews"`
	Goals        []*storage.Goal      `json:"goals,omitempty"`
	InProgress   []*storage.Challenge `json:"in_progress,omitempty"`
	Streak       stats.StreakStats    `json:"streak"`
	WeekSessions int                  `json:"week_sessions"`
	WeekMinutes  int                  `json:"week_minutes"`
	Kickoff      string               `json:"kickoff,omitempty"`
}

// Markdown renders the briefing as a markdown document for terminal display.
func (b *Briefing) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Good morning\n\n%s\n\n", b.Date)
	fmt.Fprintf(&sb, "- **Reviews due:** %d\n", b.DueReviews)
	fmt.Fprintf(&sb, "- **Streak:** current %d, longest %d\n", b.Streak.Current, b.Streak.Longest)
	fmt.Fprintf(&sb, "- **This week:** %d sessions, %d minutes\n", b.WeekSessions, b.WeekMinutes)

	if len(b.Goals) > 0 {
		sb.WriteString("\n## Goals\n\n")
		for _, goal := range b.Goals {
			if goal.TargetDate != nil {
				fmt.Fprintf(&sb, "- %s (by %s)\n", goal.Text, goal.TargetDate.Format("2006-01-02"))
				continue
			}
			fmt.Fprintf(&sb, "- %s\n", goal.Text)
		}
	}

	if len(b.InProgress) > 0 {
		sb.WriteString("\n## Challenges in progress\n\n")
		for _, ch := range b.InProgress {
			fmt.Fprintf(&sb, "- %s (%d%%)\n", ch.Title, ch.ProgressPct)
		}
	}

	if b.Kickoff != "" {
		sb.WriteString("\n## Today\n\n")
		sb.WriteString(strings.TrimSpace(b.Kickoff))
		sb.WriteString("\n")
	}

	return sb.String()
}
