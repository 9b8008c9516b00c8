package learning_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		store   *sqlite.SQLiteDriver
		service *learning.Service
		skill   *storage.Skill
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())

		service = learning.NewService(store)

		skill, err = service.CreateSkill(ctx, "rust", "programming", "beginner", "ownership first, then traits")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("skills", func() {
		It("should round-trip a skill by name", func() {
			found, err := service.SkillByName(ctx, "rust")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(skill.ID))
			Expect(found.Category).To(Equal("programming"))
			Expect(found.RoadmapContext).To(Equal("ownership first, then traits"))
		})

		It("should list skills", func() {
			_, err := service.CreateSkill(ctx, "woodworking", "craft", "just_starting", "")
			Expect(err).NotTo(HaveOccurred())

			skills, err := service.Skills(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(skills).To(HaveLen(2))
		})

		It("should cascade deletes to items", func() {
			item, err := service.AddItem(ctx, skill.ID, storage.ItemTypeConcept, "what is a borrow", "a reference that does not own", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteSkill(ctx, skill.ID)).To(Succeed())

			_, err = service.Item(ctx, item.ID)
			Expect(err).To(BeAssignableToTypeOf(storage.ErrNotFound{}))
		})
	})

	Describe("AddItem", func() {
		It("should make fresh items due immediately", func() {
			item, err := service.AddItem(ctx, skill.ID, storage.ItemTypeQA, "what moves on assignment", "ownership", []string{"ownership"})
			Expect(err).NotTo(HaveOccurred())
			Expect(item.NextReviewAt).To(Equal(item.CreatedAt))

			due, err := service.DueItems(ctx, time.Time{}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(due).To(HaveLen(1))
			Expect(due[0].ID).To(Equal(item.ID))
		})
	})

	Describe("RecordReview", func() {
		var item *storage.LearningItem

		BeforeEach(func() {
			var err error
			item, err = service.AddItem(ctx, skill.ID, storage.ItemTypeConcept, "what is a lifetime", "how long a reference stays valid", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should push a correct answer out by the confidence interval", func() {
			updated, err := service.RecordReview(ctx, item.ID, true, 3)
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.ReviewCount).To(Equal(1))
			Expect(updated.CorrectCount).To(Equal(1))
			Expect(updated.LastReviewedAt).NotTo(BeNil())
			Expect(updated.NextReviewAt).To(BeTemporally("~", time.Now().Add(7*24*time.Hour), 5*time.Second))
		})

		It("should bring a wrong answer back in four hours", func() {
			updated, err := service.RecordReview(ctx, item.ID, false, 3)
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.ReviewCount).To(Equal(1))
			Expect(updated.CorrectCount).To(Equal(0))
			Expect(updated.NextReviewAt).To(BeTemporally("~", time.Now().Add(4*time.Hour), 5*time.Second))
		})

		It("should clamp confidence before scheduling and recording", func() {
			updated, err := service.RecordReview(ctx, item.ID, true, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.NextReviewAt).To(BeTemporally("~", time.Now().Add(30*24*time.Hour), 5*time.Second))

			reviews, err := service.Reviews(ctx, item.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reviews).To(HaveLen(1))
			Expect(reviews[0].Confidence).To(Equal(5))
		})

		It("should append history rows oldest first", func() {
			_, err := service.RecordReview(ctx, item.ID, false, 1)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RecordReview(ctx, item.ID, true, 4)
			Expect(err).NotTo(HaveOccurred())

			reviews, err := service.Reviews(ctx, item.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reviews).To(HaveLen(2))
			Expect(reviews[0].WasCorrect).To(BeFalse())
			Expect(reviews[1].WasCorrect).To(BeTrue())
		})

		It("should take a reviewed item out of the due queue until its interval lapses", func() {
			_, err := service.RecordReview(ctx, item.ID, true, 2)
			Expect(err).NotTo(HaveOccurred())

			due, err := service.DueItems(ctx, time.Time{}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(due).To(BeEmpty())

			due, err = service.DueItems(ctx, time.Now().Add(4*24*time.Hour), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(due).To(HaveLen(1))
		})

		It("should reject reviews of unknown items", func() {
			_, err := service.RecordReview(ctx, 9999, true, 3)
			Expect(err).To(BeAssignableToTypeOf(storage.ErrNotFound{}))
		})
	})

	Describe("sessions and milestones", func() {
		It("should log sessions with a default occurrence time", func() {
			session, err := service.LogSession(ctx, skill.ID, "traits deep dive", 45, "worked through trait objects")
			Expect(err).NotTo(HaveOccurred())
			Expect(session.OccurredAt).NotTo(BeZero())

			sessions, err := service.Sessions(ctx, skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].Minutes).To(Equal(45))
		})

		It("should record milestones", func() {
			_, err := service.AddMilestone(ctx, skill.ID, "first CLI shipped", "published to crates.io")
			Expect(err).NotTo(HaveOccurred())

			milestones, err := service.Milestones(ctx, skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(milestones).To(HaveLen(1))
			Expect(milestones[0].Title).To(Equal("first CLI shipped"))
		})
	})
})
