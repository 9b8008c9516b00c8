// Package seedcmder provides the seed command for populating a database
// with demo data.
package seedcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/seed"
)

const seedLongDesc string = `Seed demo data into a SQLite database.

The demo dataset covers facts, goals, a saved conversation, two skills
with review items staged across the scheduling ladder, challenges in
every lifecycle state, and a running practice streak.

Examples:
  engram seed
  engram seed --demo
  engram seed --sqlite ./engram.db
  engram seed --overwrite`

const seedShortDesc string = "Seed demo data"

type seedCommander struct {
	sqlitePath string
	demo       bool
	overwrite  bool
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVarP(&cmder.demo, "demo", "m", false, "Seed into the demo database file")
	cmd.Flags().BoolVarP(&cmder.overwrite, "overwrite", "f", false, "Overwrite database before seeding")

	return cmd
}

func (c *seedCommander) run(ctx context.Context) error {
	sqlitePath := c.resolveSQLitePath()

	var counts *seed.Counts
	if err := cliui.Step(os.Stdout, "Seeding demo data", func() error {
		var seedErr error
		counts, seedErr = seed.SeedDemo(ctx, sqlitePath, c.overwrite)
		return seedErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n    %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(strings.ReplaceAll(counts.Summary(), "\n", "\n    ")),
		cliui.DimStyle.Render(sqlitePath),
	)
	return nil
}

func (c *seedCommander) resolveSQLitePath() string {
	if strings.TrimSpace(c.sqlitePath) != "" {
		return c.sqlitePath
	}

	if c.demo {
		return seed.DemoSQLitePath
	}

	path, err := dbpath.ResolveOrInit("")
	if err == nil {
		return path
	}

	return "engram.db"
}
