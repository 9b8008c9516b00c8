package statscmder_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	statscmder "github.com/quietmindco/engram/cmd/engram/stats"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("NewStatsCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := statscmder.NewStatsCmd()
		Expect(cmd.Use).To(Equal("stats"))
	})

	It("rejects positional arguments", func() {
		cmd := statscmder.NewStatsCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).To(HaveOccurred())
	})

	It("defaults the window to 30 days", func() {
		cmd := statscmder.NewStatsCmd()
		flag := cmd.Flags().Lookup("window")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("30"))
	})
})

var _ = Describe("stats execution", func() {
	var dbPath string

	BeforeEach(func() {
		tmpDir := GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "engram.db")

		store, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		ctx := context.Background()
		_, err = store.CreateFact(ctx, "wife", "loves peonies")
		Expect(err).NotTo(HaveOccurred())

		skill, err := store.CreateSkill(ctx, &storage.Skill{Name: "rust", Category: "programming", CurrentLevel: "beginner"})
		Expect(err).NotTo(HaveOccurred())

		item, err := store.CreateItem(ctx, &storage.LearningItem{
			SkillID: skill.ID,
			Type:    storage.ItemTypeConcept,
			Prompt:  "ownership",
			Answer:  "one owner per value",
		})
		Expect(err).NotTo(HaveOccurred())

		now := time.Now()
		_, err = store.RecordReview(ctx, item.ID, now, true, 4, now.Add(14*24*time.Hour))
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders an overview over a populated store", func() {
		cmd := statscmder.NewStatsCmd()
		cmd.SetArgs([]string{"--sqlite", dbPath})
		Expect(cmd.Execute()).To(Succeed())
	})

	It("renders an overview over an empty store", func() {
		empty := filepath.Join(GinkgoT().TempDir(), "empty.db")
		store, err := sqlite.NewSQLiteDriver(empty)
		Expect(err).NotTo(HaveOccurred())
		store.Close()

		cmd := statscmder.NewStatsCmd()
		cmd.SetArgs([]string{"--sqlite", empty})
		Expect(cmd.Execute()).To(Succeed())
	})

	It("errors when the database cannot be found", func() {
		cmd := statscmder.NewStatsCmd()
		cmd.SetArgs([]string{"--sqlite", filepath.Join(os.TempDir(), "missing", "nope.db")})
		Expect(cmd.Execute()).To(HaveOccurred())
	})
})
