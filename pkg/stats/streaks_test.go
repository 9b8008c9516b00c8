package stats_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
)

var _ = Describe("Streaks", func() {
	// marked builds a streak chain most recent first, as the store returns it.
	marked := func(dates ...string) []*storage.DailyStreak {
		days := make([]*storage.DailyStreak, len(dates))
		for i, d := range dates {
			days[i] = &storage.DailyStreak{Date: d, Active: true}
		}
		return days
	}

	It("is all zeros with no recorded days", func() {
		Expect(stats.Streaks(nil, "2026-08-25")).To(Equal(stats.StreakStats{}))
	})

	It("counts a single day marked today", func() {
		s := stats.Streaks(marked("2026-08-25"), "2026-08-25")
		Expect(s).To(Equal(stats.StreakStats{Current: 1, Longest: 1, Total: 1}))
	})

	It("walks the current streak backwards from today", func() {
		s := stats.Streaks(marked("2026-08-25", "2026-08-24", "2026-08-23"), "2026-08-25")
		Expect(s.Current).To(Equal(3))
		Expect(s.Longest).To(Equal(3))
		Expect(s.Total).To(Equal(3))
	})

	It("has no current streak when today is unmarked", func() {
		s := stats.Streaks(marked("2026-08-24", "2026-08-23"), "2026-08-25")
		Expect(s.Current).To(BeZero())
		Expect(s.Longest).To(Equal(2))
		Expect(s.Total).To(Equal(2))
	})

	It("stops the current streak at the first gap", func() {
		s := stats.Streaks(marked("2026-08-25", "2026-08-24", "2026-08-22", "2026-08-21", "2026-08-20"), "2026-08-25")
		Expect(s.Current).To(Equal(2))
		Expect(s.Longest).To(Equal(3))
		Expect(s.Total).To(Equal(5))
	})

	It("finds the longest run anywhere in history", func() {
		s := stats.Streaks(marked("2026-08-25", "2026-08-24", "2026-08-10", "2026-08-09", "2026-08-08", "2026-08-07"), "2026-08-25")
		Expect(s.Current).To(Equal(2))
		Expect(s.Longest).To(Equal(4))
		Expect(s.Total).To(Equal(6))
	})

	It("follows runs across month boundaries", func() {
		s := stats.Streaks(marked("2026-09-01", "2026-08-31"), "2026-09-01")
		Expect(s.Current).To(Equal(2))
		Expect(s.Longest).To(Equal(2))
	})

	It("counts isolated days as runs of one", func() {
		s := stats.Streaks(marked("2026-08-20", "2026-08-10", "2026-08-01"), "2026-08-25")
		Expect(s.Current).To(BeZero())
		Expect(s.Longest).To(Equal(1))
		Expect(s.Total).To(Equal(3))
	})
})
