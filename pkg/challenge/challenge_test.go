package challenge_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		store   *sqlite.SQLiteDriver
		service *challenge.Service
		skill   *storage.Skill
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())

		service = challenge.NewService(store)

		skill, err = store.CreateSkill(ctx, &storage.Skill{Name: "go", Category: "programming"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	newChallenge := func(title string) *storage.Challenge {
		ch, err := service.Create(ctx, skill.ID, title, "", storage.DifficultyBeginner, 2)
		Expect(err).NotTo(HaveOccurred())
		return ch
	}

	startedChallenge := func(title string) *storage.Challenge {
		ch := newChallenge(title)
		started, err := service.Start(ctx, ch.ID)
		Expect(err).NotTo(HaveOccurred())
		return started
	}

	Describe("Create", func() {
		It("should create challenges as available", func() {
			ch, err := service.Create(ctx, skill.ID, "build a CLI todo app", "small scope, ship it", storage.DifficultyBeginner, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Status).To(Equal(storage.ChallengeStatusAvailable))
			Expect(ch.StartedAt).To(BeNil())
			Expect(ch.CompletedAt).To(BeNil())
		})

		It("should default an empty difficulty to beginner", func() {
			ch, err := service.Create(ctx, skill.ID, "untagged", "", "", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Difficulty).To(Equal(storage.DifficultyBeginner))
		})

		It("should reject an unknown skill", func() {
			_, err := service.Create(ctx, 9999, "orphan", "", storage.DifficultyBeginner, 1)
			Expect(err).To(BeAssignableToTypeOf(storage.ErrNotFound{}))
		})
	})

	Describe("Start", func() {
		It("should move an available challenge to in_progress and stamp started_at", func() {
			ch := newChallenge("http server from scratch")

			started, err := service.Start(ctx, ch.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(started.Status).To(Equal(storage.ChallengeStatusInProgress))
			Expect(started.StartedAt).NotTo(BeNil())
			Expect(*started.StartedAt).To(BeTemporally("~", time.Now(), 5*time.Second))
		})

		It("should refuse to start twice", func() {
			ch := startedChallenge("json parser")

			_, err := service.Start(ctx, ch.ID)
			Expect(err).To(BeAssignableToTypeOf(challenge.InvalidTransitionError{}))
		})
	})

	Describe("UpdateProgress", func() {
		It("should replace progress and accumulate minutes", func() {
			ch := startedChallenge("rate limiter")

			_, err := service.UpdateProgress(ctx, ch.ID, 30, 25)
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.UpdateProgress(ctx, ch.ID, 55, 40)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ProgressPct).To(Equal(55))
			Expect(updated.MinutesSpent).To(Equal(65))
		})

		It("should clamp percentages into [0,100]", func() {
			ch := startedChallenge("bounded queue")

			updated, err := service.UpdateProgress(ctx, ch.ID, 150, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ProgressPct).To(Equal(100))

			updated, err = service.UpdateProgress(ctx, ch.ID, -5, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ProgressPct).To(Equal(0))
		})

		It("should mark at most one streak day per calendar day", func() {
			ch := startedChallenge("log shipper")

			_, err := service.UpdateProgress(ctx, ch.ID, 10, 15)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateProgress(ctx, ch.ID, 20, 15)
			Expect(err).NotTo(HaveOccurred())

			days, err := service.StreakDays(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(1))
			Expect(days[0].Date).To(Equal(challenge.Today()))
		})

		It("should require in_progress", func() {
			ch := newChallenge("unstarted")

			_, err := service.UpdateProgress(ctx, ch.ID, 50, 10)

			var invalid challenge.InvalidTransitionError
			Expect(errors.As(err, &invalid)).To(BeTrue())
			Expect(invalid.From).To(Equal(storage.ChallengeStatusAvailable))
			Expect(invalid.To).To(Equal(storage.ChallengeStatusInProgress))
		})
	})

	Describe("obstacles", func() {
		It("should log obstacles open on an in_progress challenge", func() {
			ch := startedChallenge("tcp proxy")

			ob, err := service.LogObstacle(ctx, ch.ID, "connections leak on upstream timeout")
			Expect(err).NotTo(HaveOccurred())
			Expect(ob.Open()).To(BeTrue())
			Expect(ob.Solution).To(BeNil())
			Expect(ob.SolvedAt).To(BeNil())
		})

		It("should refuse obstacles on an available challenge", func() {
			ch := newChallenge("not started yet")

			_, err := service.LogObstacle(ctx, ch.ID, "stuck before starting")
			Expect(err).To(BeAssignableToTypeOf(challenge.InvalidTransitionError{}))
		})

		It("should solve an obstacle with insight and minutes", func() {
			ch := startedChallenge("scheduler")
			ob, err := service.LogObstacle(ctx, ch.ID, "timers drift under load")
			Expect(err).NotTo(HaveOccurred())

			solved, err := service.SolveObstacle(ctx, ob.ID, "use a monotonic clock", "wall clocks lie", 45)
			Expect(err).NotTo(HaveOccurred())
			Expect(solved.Open()).To(BeFalse())
			Expect(*solved.Solution).To(Equal("use a monotonic clock"))
			Expect(*solved.Insight).To(Equal("wall clocks lie"))
			Expect(*solved.MinutesToSolve).To(Equal(45))
			Expect(solved.SolvedAt).NotTo(BeNil())
		})

		It("should leave insight and minutes unset when omitted", func() {
			ch := startedChallenge("cache")
			ob, err := service.LogObstacle(ctx, ch.ID, "eviction thrashing")
			Expect(err).NotTo(HaveOccurred())

			solved, err := service.SolveObstacle(ctx, ob.ID, "cap the working set", "", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(solved.Insight).To(BeNil())
			Expect(solved.MinutesToSolve).To(BeNil())
		})

		It("should refuse to solve an obstacle twice", func() {
			ch := startedChallenge("migration tool")
			ob, err := service.LogObstacle(ctx, ch.ID, "schema drift between environments")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SolveObstacle(ctx, ob.ID, "checksum the applied migrations", "", 0)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SolveObstacle(ctx, ob.ID, "a different answer", "", 0)

			var already challenge.AlreadySolvedError
			Expect(errors.As(err, &already)).To(BeTrue())
			Expect(already.ObstacleID).To(Equal(ob.ID))
		})
	})

	Describe("Complete", func() {
		It("should complete an in_progress challenge with both timestamps set", func() {
			ch := startedChallenge("markdown renderer")

			completed, err := service.Complete(ctx, ch.ID, "shipped", "https://github.com/me/mdr")
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.Status).To(Equal(storage.ChallengeStatusCompleted))
			Expect(completed.StartedAt).NotTo(BeNil())
			Expect(completed.CompletedAt).NotTo(BeNil())
			Expect(completed.ProgressPct).To(Equal(100))
			Expect(completed.CompletionNotes).To(Equal("shipped"))
			Expect(completed.CompletionLink).To(Equal("https://github.com/me/mdr"))
		})

		It("should refuse to complete an available challenge", func() {
			ch := newChallenge("never started")

			_, err := service.Complete(ctx, ch.ID, "", "")

			var invalid challenge.InvalidTransitionError
			Expect(errors.As(err, &invalid)).To(BeTrue())
			Expect(invalid.From).To(Equal(storage.ChallengeStatusAvailable))
			Expect(invalid.To).To(Equal(storage.ChallengeStatusCompleted))
		})

		It("should allow open obstacles at completion", func() {
			ch := startedChallenge("game of life")
			_, err := service.LogObstacle(ctx, ch.ID, "still unsure about edge wrapping")
			Expect(err).NotTo(HaveOccurred())

			completed, err := service.Complete(ctx, ch.ID, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.Status).To(Equal(storage.ChallengeStatusCompleted))

			obstacles, err := service.Obstacles(ctx, ch.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(obstacles).To(HaveLen(1))
			Expect(obstacles[0].Open()).To(BeTrue())
		})
	})

	Describe("SkillProgression", func() {
		completeOne := func(title string) {
			ch := startedChallenge(title)
			_, err := service.Complete(ctx, ch.ID, "", "")
			Expect(err).NotTo(HaveOccurred())
		}

		It("should recompute on every read", func() {
			progress, err := service.SkillProgression(ctx, skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(progress.Completed).To(Equal(0))
			Expect(progress.Level).To(Equal(challenge.LevelJustStarting))
			Expect(progress.Percent).To(Equal(10))

			completeOne("first")
			progress, err = service.SkillProgression(ctx, skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(progress.Completed).To(Equal(1))
			Expect(progress.Level).To(Equal(challenge.LevelBeginner))

			completeOne("second")
			progress, err = service.SkillProgression(ctx, skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(progress.Completed).To(Equal(2))
			Expect(progress.Level).To(Equal(challenge.LevelBeginnerPlus))
			Expect(progress.Percent).To(Equal(50))
		})

		It("should ignore in_progress and available challenges", func() {
			newChallenge("available only")
			startedChallenge("in flight")

			progress, err := service.SkillProgression(ctx, skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(progress.Completed).To(Equal(0))
			Expect(progress.Level).To(Equal(challenge.LevelJustStarting))
		})
	})

	Describe("SearchObstacles", func() {
		It("should match substrings across problem, solution, and insight, newest first", func() {
			ch := startedChallenge("distributed lock")

			first, err := service.LogObstacle(ctx, ch.ID, "deadlock when two holders race")
			Expect(err).NotTo(HaveOccurred())
			second, err := service.LogObstacle(ctx, ch.ID, "lease expiry mid write")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SolveObstacle(ctx, first.ID, "order lock acquisition", "deadlock needs a cycle", 0)
			Expect(err).NotTo(HaveOccurred())

			hits, err := service.SearchObstacles(ctx, "deadlock", 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ID).To(Equal(first.ID))

			hits, err = service.SearchObstacles(ctx, "expiry", 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ID).To(Equal(second.ID))

			hits, err = service.SearchObstacles(ctx, "lock", 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(2))
			Expect(hits[0].ID).To(Equal(second.ID))
			Expect(hits[1].ID).To(Equal(first.ID))
		})

		It("should scope to a skill when asked", func() {
			other, err := store.CreateSkill(ctx, &storage.Skill{Name: "sql", Category: "programming"})
			Expect(err).NotTo(HaveOccurred())

			goCh := startedChallenge("worker pool")
			_, err = service.LogObstacle(ctx, goCh.ID, "goroutine leak on shutdown")
			Expect(err).NotTo(HaveOccurred())

			sqlCh, err := service.Create(ctx, other.ID, "query tuner", "", storage.DifficultyIntermediate, 4)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Start(ctx, sqlCh.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.LogObstacle(ctx, sqlCh.ID, "index scan leak of temp space")
			Expect(err).NotTo(HaveOccurred())

			hits, err := service.SearchObstacles(ctx, "leak", 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(2))

			hits, err = service.SearchObstacles(ctx, "leak", skill.ID, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].ChallengeID).To(Equal(goCh.ID))
		})
	})

	Describe("MarkToday", func() {
		It("should record today's practice day once", func() {
			Expect(service.MarkToday(ctx)).To(Succeed())
			Expect(service.MarkToday(ctx)).To(Succeed())

			days, err := service.StreakDays(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(1))
			Expect(days[0].Active).To(BeTrue())
		})
	})
})
