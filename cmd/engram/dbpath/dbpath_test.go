package dbpath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		origHome     string
		origXDG      string
		origEngramDB string
		origEngramSQ string
		origCwd      string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		origEngramDB = os.Getenv("ENGRAM_DB")
		origEngramSQ = os.Getenv("ENGRAM_SQLITE")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", origEngramDB)).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", origEngramSQ)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("prefers ENGRAM_SQLITE when set", func() {
		Expect(os.Setenv("ENGRAM_SQLITE", "/tmp/custom.db")).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", "")).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("resolves ~/.engram/engram.db when present", func() {
		homeDir, err := os.MkdirTemp("", "engram-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})

		tmpDir, err := os.MkdirTemp("", "engram-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		dbPath := filepath.Join(homeDir, ".engram", "engram.db")
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("falls back to a dotdir path when nothing exists", func() {
		homeDir, err := os.MkdirTemp("", "engram-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})

		tmpDir, err := os.MkdirTemp("", "engram-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		path, err := ResolveOrInit("")
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Base(path)).To(Equal(DBFileName))
		Expect(filepath.Dir(path)).To(BeADirectory())
	})
})
