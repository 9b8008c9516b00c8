package seed

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("SeedDemo", func() {
	var (
		ctx    context.Context
		dbPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		baseDir, err := os.MkdirTemp("", "engram-seed-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(baseDir)
		})
		dbPath = filepath.Join(baseDir, "engram.db")
	})

	It("seeds a demo data set into a fresh database", func() {
		counts, err := SeedDemo(ctx, dbPath, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(*counts).To(Equal(Counts{
			Facts:         6,
			Goals:         4,
			Conversations: 1,
			Skills:        2,
			Items:         6,
			Reviews:       5,
			Sessions:      3,
			Milestones:    1,
			Challenges:    3,
			Obstacles:     2,
			StreakDays:    5,
		}))

		driver, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)

		// The overdue item plus the two never-reviewed ones are due now.
		due, err := driver.DueItems(ctx, time.Now(), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(due).To(HaveLen(3))

		inProgress, err := driver.ChallengesByStatus(ctx, 0, storage.ChallengeStatusInProgress)
		Expect(err).NotTo(HaveOccurred())
		Expect(inProgress).To(HaveLen(1))
		Expect(inProgress[0].ProgressPct).To(Equal(40))

		days, err := driver.StreakDays(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(days).To(HaveLen(5))
	})

	It("allows seeding when the sqlite file exists but is empty", func() {
		Expect(os.WriteFile(dbPath, []byte{}, 0o644)).To(Succeed())

		counts, err := SeedDemo(ctx, dbPath, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(counts.Facts).To(BeNumerically(">", 0))
		Expect(counts.Items).To(BeNumerically(">", 0))
	})

	It("returns an error when the database already has data", func() {
		driver, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		_, err = driver.CreateFact(ctx, "alice", "already here")
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Close()).To(Succeed())

		_, err = SeedDemo(ctx, dbPath, false)
		Expect(err).To(MatchError(ContainSubstring("already has data")))
	})

	It("recreates the database when overwrite is set", func() {
		_, err := SeedDemo(ctx, dbPath, false)
		Expect(err).NotTo(HaveOccurred())

		counts, err := SeedDemo(ctx, dbPath, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(counts.Facts).To(Equal(6))

		driver, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)

		total, err := driver.CountFacts(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(6))
	})
})
