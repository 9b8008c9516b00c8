package learncmder_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	learncmder "github.com/quietmindco/engram/cmd/engram/learn"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("NewLearnCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := learncmder.NewLearnCmd()
		Expect(cmd.Use).To(Equal("learn"))
	})

	It("has skill, item, session, and milestone subcommands", func() {
		cmd := learncmder.NewLearnCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("skill", "item", "session", "milestone"))
	})
})

var _ = Describe("Learn command execution", func() {
	var (
		tmpDir string
		dbPath string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "engram-learn-test-*")
		Expect(err).NotTo(HaveOccurred())
		dbPath = filepath.Join(tmpDir, "engram.db")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	// seedSkill writes a skill directly through the service layer.
	seedSkill := func(name string) *storage.Skill {
		store, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		skill, err := learning.NewService(store).CreateSkill(
			context.Background(), name, "programming", "beginner", "")
		Expect(err).NotTo(HaveOccurred())
		return skill
	}

	Describe("skill add", func() {
		It("creates the skill", func() {
			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{"skill", "add", "rust", "--category", "programming", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			skill, err := learning.NewService(store).SkillByName(context.Background(), "rust")
			Expect(err).NotTo(HaveOccurred())
			Expect(skill.Category).To(Equal("programming"))
			Expect(skill.CurrentLevel).To(Equal("beginner"))
		})
	})

	Describe("skill rm", func() {
		It("deletes the skill", func() {
			skill := seedSkill("rust")

			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{"skill", "rm", "1", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			_, err = learning.NewService(store).Skill(context.Background(), skill.ID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("item add", func() {
		It("adds an item due immediately", func() {
			seedSkill("rust")

			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{
				"item", "add", "rust",
				"--prompt", "What does Box<T> do?",
				"--answer", "Heap-allocates T",
				"--type", "concept",
				"--sqlite", dbPath,
			})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			svc := learning.NewService(store)
			due, err := svc.DueItems(context.Background(), time.Now().Add(time.Second), 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(due).To(HaveLen(1))
			Expect(due[0].Type).To(Equal(storage.ItemTypeConcept))
		})

		It("rejects unknown item types", func() {
			seedSkill("rust")

			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{
				"item", "add", "rust",
				"--prompt", "p", "--answer", "a",
				"--type", "riddle",
				"--sqlite", dbPath,
			})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})

		It("errors for an unknown skill", func() {
			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			store.Close()

			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{
				"item", "add", "nope",
				"--prompt", "p", "--answer", "a",
				"--sqlite", dbPath,
			})
			err = cmd.Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("session", func() {
		It("logs the session and marks the streak", func() {
			seedSkill("rust")

			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{"session", "rust", "--minutes", "45", "--topic", "ownership", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			svc := learning.NewService(store)
			skill, err := svc.SkillByName(context.Background(), "rust")
			Expect(err).NotTo(HaveOccurred())

			sessions, err := svc.Sessions(context.Background(), skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].Minutes).To(Equal(45))
			Expect(sessions[0].Topic).To(Equal("ownership"))

			days, err := challenge.NewService(store).StreakDays(context.Background(), 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(1))
			Expect(days[0].Date).To(Equal(challenge.Today()))
		})

		It("rejects zero minutes", func() {
			seedSkill("rust")

			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{"session", "rust", "--minutes", "0", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("milestone add", func() {
		It("records the milestone", func() {
			seedSkill("rust")

			cmd := learncmder.NewLearnCmd()
			cmd.SetArgs([]string{"milestone", "add", "rust", "First", "CLI", "shipped", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			svc := learning.NewService(store)
			skill, err := svc.SkillByName(context.Background(), "rust")
			Expect(err).NotTo(HaveOccurred())

			milestones, err := svc.Milestones(context.Background(), skill.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(milestones).To(HaveLen(1))
			Expect(milestones[0].Title).To(Equal("First CLI shipped"))
		})
	})
})
