// Package importcmder provides the import command for replaying archived
// conversation logs into the store.
package importcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/importer"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const importLongDesc string = `Import archived conversation logs.

Scans a directory of dated conversation log folders and stores each
transcript. Imports are idempotent: a log already in the store is
skipped, so re-running over the same archive is safe. Malformed logs
are counted and skipped, never fatal.

Examples:
  engram import ~/assistant-archive
  engram import ./logs --dry-run
  engram import ./logs --verbose`

const importShortDesc string = "Import archived conversation logs"

type importCommander struct {
	sqlitePath string
	dryRun     bool
	verbose    bool
}

func NewImportCmd() *cobra.Command {
	cmder := &importCommander{}

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: importShortDesc,
		Long:  importLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Parse and count without writing anything")
	cmd.Flags().BoolVarP(&cmder.verbose, "verbose", "v", false, "Print per-file progress")

	return cmd
}

func (c *importCommander) run(ctx context.Context, dir string) error {
	path, err := dbpath.ResolveOrInit(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	imp := importer.NewImporter(store, importer.Options{
		DryRun:  c.dryRun,
		Verbose: c.verbose,
	})

	var result *importer.Result
	if c.verbose {
		// Per-file progress and the spinner fight over the same lines.
		result, err = imp.Run(ctx, dir)
	} else {
		err = cliui.Step(os.Stdout, "Importing conversation logs", func() error {
			var runErr error
			result, runErr = imp.Run(ctx, dir)
			return runErr
		})
	}
	if err != nil {
		return err
	}

	mark := cliui.SuccessMark
	if c.dryRun {
		mark = cliui.DimStyle.Render("●")
		fmt.Printf("\n  %s Dry run; nothing was written.\n", mark)
	}

	fmt.Printf("\n  %s %s\n\n", mark, cliui.ValueStyle.Render(result.Summary()))
	return nil
}
