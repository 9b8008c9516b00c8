package stats

import (
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

const dayLayout = "2006-01-02"

// StreakStats summarizes the chain of recorded practice days.
type StreakStats struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
	Total   int `json:"total_days"`
}

// Streaks computes streak figures from recorded practice days, which must be
// ordered most recent first as StreakDays returns them. today anchors the
// current streak: it counts consecutive marked days backwards starting at
// today, so an unmarked today means a current streak of zero even when
// yesterday is marked.
func Streaks(days []*storage.DailyStreak, today string) StreakStats {
	if len(days) == 0 {
		return StreakStats{}
	}

	stats := StreakStats{Total: len(days), Longest: 1}

	if expected, err := time.Parse(dayLayout, today); err == nil {
		for _, day := range days {
			if day.Date != expected.Format(dayLayout) {
				break
			}
			stats.Current++
			expected = expected.AddDate(0, 0, -1)
		}
	}

	// A run extends while adjacent recorded days are exactly one calendar
	// day apart.
	run := 1
	for i := 1; i < len(days); i++ {
		newer, errNewer := time.Parse(dayLayout, days[i-1].Date)
		older, errOlder := time.Parse(dayLayout, days[i].Date)
		if errNewer != nil || errOlder != nil || newer.Sub(older) != 24*time.Hour {
			run = 1
			continue
		}

		run++
		if run > stats.Longest {
			stats.Longest = run
		}
	}

	return stats
}
