package importer

import "fmt"

// Result contains statistics from an import run.
type Result struct {
	Files     int
	Imported  int
	Skipped   int
	Malformed int
	Messages  int
}

// Summary returns a human-readable summary of the import result.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Import complete: %d imported, %d skipped (already stored), %d malformed\n"+
			"Scanned %d archive files (%d messages)",
		r.Imported, r.Skipped, r.Malformed,
		r.Files, r.Messages,
	)
}
