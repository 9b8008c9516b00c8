package importcmder_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	importcmder "github.com/quietmindco/engram/cmd/engram/importcmd"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

// archiveLog builds one conversation log in the legacy on-disk format.
func archiveLog(topic, question, answer string) string {
	eq := strings.Repeat("=", 70)
	dash := strings.Repeat("-", 70)
	return eq + "\n" +
		"PERSONAL OS CONVERSATION LOG\n" +
		eq + "\n" +
		"Date: Saturday, November 16, 2024\n" +
		"Time: 14:30:22\n" +
		"Topic: " + topic + "\n" +
		eq + "\n\n" +
		"YOU:\n" + question + "\n\n" + dash + "\n\n" +
		"CLAUDE:\n" + answer + "\n\n" + dash + "\n\n" +
		eq + "\nEND OF CONVERSATION\n" + eq + "\n"
}

var _ = Describe("NewImportCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := importcmder.NewImportCmd()
		Expect(cmd.Use).To(Equal("import <dir>"))
	})

	It("requires exactly one argument", func() {
		cmd := importcmder.NewImportCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"a", "b"})).To(HaveOccurred())
	})
})

var _ = Describe("import execution", func() {
	var (
		archiveDir string
		dbPath     string
	)

	BeforeEach(func() {
		archiveDir = GinkgoT().TempDir()
		dbPath = filepath.Join(GinkgoT().TempDir(), "engram.db")

		folder := filepath.Join(archiveDir, "2024-11-16")
		Expect(os.MkdirAll(folder, 0o755)).To(Succeed())
		Expect(os.WriteFile(
			filepath.Join(folder, "143022_rust.txt"),
			[]byte(archiveLog("rust ownership", "how does ownership work?", "One owner per value.")),
			0o644,
		)).To(Succeed())
	})

	It("imports archived logs into the store", func() {
		cmd := importcmder.NewImportCmd()
		cmd.SetArgs([]string{archiveDir, "--sqlite", dbPath})
		Expect(cmd.Execute()).To(Succeed())

		store, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		conv, err := store.GetConversation(context.Background(), "conv_2024-11-16_143022_rust")
		Expect(err).NotTo(HaveOccurred())
		Expect(conv.Topic).To(Equal("rust ownership"))
		Expect(conv.Transcript).To(HaveLen(2))
	})

	It("skips logs already in the store on re-run", func() {
		for i := 0; i < 2; i++ {
			cmd := importcmder.NewImportCmd()
			cmd.SetArgs([]string{archiveDir, "--sqlite", dbPath})
			Expect(cmd.Execute()).To(Succeed())
		}

		store, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		convs, err := store.RecentConversations(context.Background(), 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(convs).To(HaveLen(1))
	})

	It("writes nothing on --dry-run", func() {
		cmd := importcmder.NewImportCmd()
		cmd.SetArgs([]string{archiveDir, "--sqlite", dbPath, "--dry-run"})
		Expect(cmd.Execute()).To(Succeed())

		store, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		convs, err := store.RecentConversations(context.Background(), 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(convs).To(BeEmpty())
	})

	It("errors on a missing archive directory", func() {
		cmd := importcmder.NewImportCmd()
		cmd.SetArgs([]string{filepath.Join(archiveDir, "nope"), "--sqlite", dbPath})
		Expect(cmd.Execute()).To(HaveOccurred())
	})
})
