package recallcmder_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	recallcmder "github.com/quietmindco/engram/cmd/engram/recall"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("NewRecallCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := recallcmder.NewRecallCmd()
		Expect(cmd.Use).To(Equal("recall <query>..."))
	})

	It("requires at least one argument", func() {
		cmd := recallcmder.NewRecallCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).To(HaveOccurred())
	})

	It("has a --limit flag defaulting to 10", func() {
		cmd := recallcmder.NewRecallCmd()
		f := cmd.Flags().Lookup("limit")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("10"))
	})
})

var _ = Describe("Recall command execution", func() {
	var (
		tmpDir  string
		origDir string
		dbPath  string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "engram-recall-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		engramDir := filepath.Join(tmpDir, ".engram")
		err = os.MkdirAll(engramDir, 0o755)
		Expect(err).NotTo(HaveOccurred())
		err = os.WriteFile(filepath.Join(engramDir, "config.toml"),
			[]byte("[memory]\nenabled = false\n"), 0o644)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		dbPath = filepath.Join(tmpDir, "engram.db")

		store, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, err = store.CreateFact(context.Background(), "wife", "loves peonies")
		Expect(err).NotTo(HaveOccurred())
		_, err = store.CreateFact(context.Background(), "boss", "prefers async updates")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	It("finds facts by substring", func() {
		cmd := recallcmder.NewRecallCmd()
		cmd.PersistentFlags().BoolP("debug", "d", false, "")
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetArgs([]string{"peonies", "--sqlite", dbPath})

		err := cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs without error when nothing matches", func() {
		cmd := recallcmder.NewRecallCmd()
		cmd.PersistentFlags().BoolP("debug", "d", false, "")
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetArgs([]string{"xyzzy-no-match", "--sqlite", dbPath})

		err := cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("errors when no database can be found", func() {
		cmd := recallcmder.NewRecallCmd()
		cmd.PersistentFlags().BoolP("debug", "d", false, "")
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetArgs([]string{"anything", "--sqlite", filepath.Join(tmpDir, "missing", "nope.db")})

		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
	})
})
