// Package dbpath resolves the engram SQLite database path shared by the CLI
// commands.
package dbpath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/quietmindco/engram/pkg/dotdir"
)

// DBFileName is the default database file name inside the engram dotdir.
const DBFileName = "engram.db"

// ResolveSQLitePath returns the path to an existing engram database.
// Precedence: override flag, ENGRAM_SQLITE, ENGRAM_DB, then the first
// candidate file that exists.
func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("ENGRAM_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("ENGRAM_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.New("could not find engram SQLite database; pass --sqlite")
}

// ResolveOrInit is ResolveSQLitePath for commands that may create the
// database. When no candidate exists it falls back to engram.db inside the
// dotdir target, creating the directory on the way.
func ResolveOrInit(override string) (string, error) {
	path, err := ResolveSQLitePath(override)
	if err == nil {
		return path, nil
	}

	dir, err := dotdir.NewManager().Target("")
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, DBFileName), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		"engram.db",
		"engram.sqlite",
		filepath.Join(".engram", "engram.db"),
		filepath.Join(".engram", "engram.sqlite"),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, ".engram", "engram.db"),
			filepath.Join(home, ".engram", "engram.sqlite"),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "engram", "engram.db"),
			filepath.Join(xdgHome, "engram", "engram.sqlite"),
		}, candidates...)
	}

	return candidates
}
