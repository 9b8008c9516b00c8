package goalcmder_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	goalcmder "github.com/quietmindco/engram/cmd/engram/goal"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("NewGoalCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := goalcmder.NewGoalCmd()
		Expect(cmd.Use).To(Equal("goal"))
	})

	It("has add, list, and done subcommands", func() {
		cmd := goalcmder.NewGoalCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("add", "list", "done"))
	})
})

var _ = Describe("Goal command execution", func() {
	var (
		tmpDir string
		dbPath string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "engram-goal-test-*")
		Expect(err).NotTo(HaveOccurred())
		dbPath = filepath.Join(tmpDir, "engram.db")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("add subcommand", func() {
		It("creates an active goal", func() {
			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"add", "run", "a", "10k", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			goals, err := store.ActiveGoals(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(goals).To(HaveLen(1))
			Expect(goals[0].Text).To(Equal("run a 10k"))
			Expect(goals[0].TargetDate).To(BeNil())
		})

		It("stores the target date when given", func() {
			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"add", "ship it", "--target", "2026-06-01", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			goals, err := store.ActiveGoals(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(goals).To(HaveLen(1))
			Expect(goals[0].TargetDate).NotTo(BeNil())
			Expect(goals[0].TargetDate.Format("2006-01-02")).To(Equal("2026-06-01"))
		})

		It("rejects malformed target dates", func() {
			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"add", "ship it", "--target", "June 1st", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})

		It("requires goal text", func() {
			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"add", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("done subcommand", func() {
		It("marks a goal done", func() {
			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())

			goal, err := store.CreateGoal(context.Background(), "finish the draft", nil)
			Expect(err).NotTo(HaveOccurred())
			store.Close()

			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"done", "1", "--sqlite", dbPath})
			err = cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			store, err = sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			goals, err := store.ListGoals(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(goals).To(HaveLen(1))
			Expect(goals[0].ID).To(Equal(goal.ID))
			Expect(goals[0].Status).To(Equal(storage.GoalStatusDone))
		})

		It("rejects non-numeric ids", func() {
			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"done", "abc", "--sqlite", dbPath})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})

		It("errors for a goal that does not exist", func() {
			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			store.Close()

			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"done", "99", "--sqlite", dbPath})
			err = cmd.Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("runs without error on an empty database", func() {
			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			store.Close()

			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"list", "--sqlite", dbPath})
			err = cmd.Execute()
			Expect(err).NotTo(HaveOccurred())
		})

		It("runs without error with goals present", func() {
			store, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = store.CreateGoal(context.Background(), "learn sqlite internals", nil)
			Expect(err).NotTo(HaveOccurred())
			store.Close()

			cmd := goalcmder.NewGoalCmd()
			cmd.SetArgs([]string{"list", "--all", "--sqlite", dbPath})
			err = cmd.Execute()
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
