package stats_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/stats"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		store   *sqlite.SQLiteDriver
		service *stats.Service
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())

		service = stats.NewService(store)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	addSkill := func(name string) *storage.Skill {
		skill, err := store.CreateSkill(ctx, &storage.Skill{Name: name, Category: "programming"})
		Expect(err).NotTo(HaveOccurred())
		return skill
	}

	addItem := func(skillID int64) *storage.LearningItem {
		item, err := store.CreateItem(ctx, &storage.LearningItem{
			SkillID: skillID, Type: storage.ItemTypeQA, Prompt: "q", Answer: "a",
		})
		Expect(err).NotTo(HaveOccurred())
		return item
	}

	review := func(itemID int64, at time.Time, correct bool) {
		_, err := store.RecordReview(ctx, itemID, at, correct, 3, at.Add(48*time.Hour))
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("Overview", func() {
		It("reports zeros on an empty store", func() {
			o, err := service.Overview(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(o.WindowDays).To(Equal(stats.DefaultWindowDays))
			Expect(o.TotalFacts).To(BeZero())
			Expect(o.TopEntities).To(BeEmpty())
			Expect(o.DueReviews).To(BeZero())
			Expect(o.TotalReviews).To(BeZero())
			Expect(o.ReviewAccuracy).To(BeZero())
			Expect(o.TotalMinutes).To(BeZero())
			Expect(o.TotalHours).To(BeZero())
			Expect(o.Streak).To(Equal(stats.StreakStats{}))
		})

		It("assembles fact, review, study, and streak figures", func() {
			skill := addSkill("go")
			reviewed := addItem(skill.ID)

			now := time.Now().UTC()
			for i, correct := range []bool{true, true, true, false} {
				review(reviewed.ID, now.Add(-time.Duration(i+1)*time.Minute), correct)
			}

			// A fresh item is due immediately; the reviewed one was pushed out.
			addItem(skill.ID)

			_, err := store.CreateFact(ctx, "alice", "prefers espresso")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.CreateFact(ctx, "alice", "runs trails on sundays")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.CreateFact(ctx, "bob", "plays chess")
			Expect(err).NotTo(HaveOccurred())

			_, err = store.LogSession(ctx, &storage.Session{SkillID: skill.ID, Topic: "generics", Minutes: 90})
			Expect(err).NotTo(HaveOccurred())

			Expect(store.MarkStreak(ctx, time.Now().Format("2006-01-02"))).To(Succeed())
			Expect(store.MarkStreak(ctx, time.Now().AddDate(0, 0, -1).Format("2006-01-02"))).To(Succeed())

			o, err := service.Overview(ctx, 7)
			Expect(err).NotTo(HaveOccurred())

			Expect(o.WindowDays).To(Equal(7))
			Expect(o.TotalFacts).To(Equal(3))
			Expect(o.TopEntities[0]).To(Equal(storage.EntityCount{Entity: "alice", Count: 2}))

			Expect(o.DueReviews).To(Equal(1))
			Expect(o.TotalReviews).To(Equal(4))
			Expect(o.ReviewAccuracy).To(Equal(75.0))
			Expect(o.AccuracyBySkill).To(HaveLen(1))
			Expect(o.AccuracyBySkill[0].SkillName).To(Equal("go"))
			Expect(o.AccuracyBySkill[0].Correct).To(Equal(3))

			perDay := 0
			for _, day := range o.ReviewsPerDay {
				perDay += day.Count
			}
			Expect(perDay).To(Equal(4))

			Expect(o.TotalMinutes).To(Equal(90))
			Expect(o.TotalHours).To(Equal(1.5))
			Expect(o.AvgMinutesPerDay).To(Equal(12.9))
			Expect(o.StudyBySkill).To(HaveLen(1))
			Expect(o.StudyBySkill[0].Minutes).To(Equal(90))

			Expect(o.Streak.Current).To(Equal(2))
			Expect(o.Streak.Longest).To(Equal(2))
			Expect(o.Streak.Total).To(Equal(2))
		})

		It("keeps windowed figures inside the window", func() {
			skill := addSkill("go")
			item := addItem(skill.ID)

			now := time.Now().UTC()
			review(item.ID, now.AddDate(0, 0, -40), true)
			review(item.ID, now.Add(-time.Hour), false)

			_, err := store.LogSession(ctx, &storage.Session{
				SkillID: skill.ID, Topic: "old grind", Minutes: 500, OccurredAt: now.AddDate(0, 0, -40),
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = store.LogSession(ctx, &storage.Session{
				SkillID: skill.ID, Topic: "recent", Minutes: 30, OccurredAt: now.Add(-time.Hour),
			})
			Expect(err).NotTo(HaveOccurred())

			o, err := service.Overview(ctx, 30)
			Expect(err).NotTo(HaveOccurred())

			Expect(o.TotalReviews).To(Equal(1))
			Expect(o.ReviewAccuracy).To(BeZero())
			Expect(o.ReviewsPerDay).To(HaveLen(1))
			Expect(o.TotalMinutes).To(Equal(30))
			Expect(o.TotalHours).To(Equal(0.5))
			Expect(o.AvgMinutesPerDay).To(Equal(1.0))
		})
	})
})
