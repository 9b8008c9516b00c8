package briefing_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/briefing"
	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("Service", func() {
	var (
		ctx   context.Context
		store *sqlite.SQLiteDriver
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	staticCall := func(reply string) completion.CallFunc {
		return func(_ context.Context, _, _ string) (string, error) {
			return reply, nil
		}
	}

	It("renders an empty day without a completion backend", func() {
		service := briefing.NewService(store, nil)

		b, err := service.Assemble(ctx, time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())

		Expect(b.Date).To(Equal("Tuesday, August 25, 2026"))
		Expect(b.DueReviews).To(BeZero())
		Expect(b.Goals).To(BeEmpty())
		Expect(b.InProgress).To(BeEmpty())
		Expect(b.Streak).To(Equal(stats.StreakStats{}))
		Expect(b.WeekMinutes).To(BeZero())
		Expect(b.Kickoff).To(BeEmpty())
	})

	It("assembles due counts, goals, challenges, streak, and week totals", func() {
		skill, err := store.CreateSkill(ctx, &storage.Skill{Name: "go", Category: "programming"})
		Expect(err).NotTo(HaveOccurred())

		// Fresh items are due immediately.
		_, err = store.CreateItem(ctx, &storage.LearningItem{SkillID: skill.ID, Type: storage.ItemTypeQA, Prompt: "q"})
		Expect(err).NotTo(HaveOccurred())

		_, err = store.CreateGoal(ctx, "ship the importer", nil)
		Expect(err).NotTo(HaveOccurred())
		target := time.Now().UTC().AddDate(0, 1, 0)
		_, err = store.CreateGoal(ctx, "run a 10k", &target)
		Expect(err).NotTo(HaveOccurred())

		running, err := store.CreateChallenge(ctx, &storage.Challenge{
			SkillID: skill.ID, Title: "build a rate limiter", Difficulty: storage.DifficultyBeginner,
		})
		Expect(err).NotTo(HaveOccurred())
		running.Status = storage.ChallengeStatusInProgress
		running.ProgressPct = 40
		_, err = store.UpdateChallenge(ctx, running)
		Expect(err).NotTo(HaveOccurred())

		_, err = store.CreateChallenge(ctx, &storage.Challenge{
			SkillID: skill.ID, Title: "still waiting", Difficulty: storage.DifficultyBeginner,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(store.MarkStreak(ctx, time.Now().Format("2006-01-02"))).To(Succeed())
		Expect(store.MarkStreak(ctx, time.Now().AddDate(0, 0, -1).Format("2006-01-02"))).To(Succeed())

		now := time.Now().UTC()
		_, err = store.LogSession(ctx, &storage.Session{SkillID: skill.ID, Topic: "generics", Minutes: 30, OccurredAt: now.Add(-2 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		_, err = store.LogSession(ctx, &storage.Session{SkillID: skill.ID, Topic: "channels", Minutes: 45, OccurredAt: now.Add(-time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		_, err = store.LogSession(ctx, &storage.Session{SkillID: skill.ID, Topic: "ancient history", Minutes: 500, OccurredAt: now.AddDate(0, 0, -10)})
		Expect(err).NotTo(HaveOccurred())

		service := briefing.NewService(store, nil)
		b, err := service.Assemble(ctx, time.Time{})
		Expect(err).NotTo(HaveOccurred())

		Expect(b.DueReviews).To(Equal(1))
		Expect(b.Goals).To(HaveLen(2))
		Expect(b.InProgress).To(HaveLen(1))
		Expect(b.InProgress[0].Title).To(Equal("build a rate limiter"))
		Expect(b.Streak.Current).To(Equal(2))
		Expect(b.WeekSessions).To(Equal(2))
		Expect(b.WeekMinutes).To(Equal(75))
	})

	It("feeds the day's state into the kickoff prompt", func() {
		_, err := store.CreateGoal(ctx, "ship the importer", nil)
		Expect(err).NotTo(HaveOccurred())

		skill, err := store.CreateSkill(ctx, &storage.Skill{Name: "go", Category: "programming"})
		Expect(err).NotTo(HaveOccurred())
		_, err = store.CreateItem(ctx, &storage.LearningItem{SkillID: skill.ID, Type: storage.ItemTypeQA, Prompt: "q"})
		Expect(err).NotTo(HaveOccurred())

		var gotSystem, gotPrompt string
		call := func(_ context.Context, system, prompt string) (string, error) {
			gotSystem = system
			gotPrompt = prompt
			return "Focus on the importer today.", nil
		}

		service := briefing.NewService(store, call)
		b, err := service.Assemble(ctx, time.Time{})
		Expect(err).NotTo(HaveOccurred())

		Expect(b.Kickoff).To(Equal("Focus on the importer today."))
		Expect(gotSystem).To(ContainSubstring("morning assistant"))
		Expect(gotPrompt).To(ContainSubstring("- ship the importer"))
		Expect(gotPrompt).To(ContainSubstring("1 review items are due today."))
		Expect(gotPrompt).To(ContainSubstring("Suggest 3 priorities"))
	})

	It("keeps the briefing when the kickoff call fails", func() {
		call := func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("backend down")
		}

		service := briefing.NewService(store, call)
		b, err := service.Assemble(ctx, time.Time{})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Kickoff).To(BeEmpty())
	})

	It("trims whitespace from the kickoff note", func() {
		service := briefing.NewService(store, staticCall("\n  Start with the hard thing.  \n"))
		b, err := service.Assemble(ctx, time.Time{})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Kickoff).To(Equal("Start with the hard thing."))
	})
})

var _ = Describe("Markdown", func() {
	It("renders only the sections that have content", func() {
		b := &briefing.Briefing{
			Date:       "Tuesday, August 25, 2026",
			DueReviews: 3,
			Streak:     stats.StreakStats{Current: 2, Longest: 5},
		}

		md := b.Markdown()
		Expect(md).To(ContainSubstring("# Good morning"))
		Expect(md).To(ContainSubstring("Tuesday, August 25, 2026"))
		Expect(md).To(ContainSubstring("**Reviews due:** 3"))
		Expect(md).To(ContainSubstring("**Streak:** current 2, longest 5"))
		Expect(md).NotTo(ContainSubstring("## Goals"))
		Expect(md).NotTo(ContainSubstring("## Challenges"))
		Expect(md).NotTo(ContainSubstring("## Today"))
	})

	It("renders goals, challenges, and the kickoff when present", func() {
		target := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
		b := &briefing.Briefing{
			Date: "Tuesday, August 25, 2026",
			Goals: []*storage.Goal{
				{Text: "ship the importer"},
				{Text: "run a 10k", TargetDate: &target},
			},
			InProgress: []*storage.Challenge{
				{Title: "build a rate limiter", ProgressPct: 40},
			},
			Kickoff: "Start with the hard thing.",
		}

		md := b.Markdown()
		Expect(md).To(ContainSubstring("## Goals"))
		Expect(md).To(ContainSubstring("- ship the importer"))
		Expect(md).To(ContainSubstring("- run a 10k (by 2026-09-30)"))
		Expect(md).To(ContainSubstring("## Challenges in progress"))
		Expect(md).To(ContainSubstring("- build a rate limiter (40%)"))
		Expect(md).To(ContainSubstring("## Today"))
		Expect(md).To(ContainSubstring("Start with the hard thing."))
	})
})
