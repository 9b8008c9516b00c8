// Package statuscmder provides the status command for displaying the
// current session and store state.
package statuscmder

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/dotdir"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
	"github.com/quietmindco/engram/pkg/utils"
)

const statusLongDesc string = `Show the current engram state.

Reads the local .engram/ directory (or ~/.engram/) to display the
database in use, how many facts it holds, how many reviews are due, and
any chat session waiting to be resumed.

Examples:
  engram status`

const statusShortDesc string = "Show current session and store state"

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context())
		},
	}

	return cmd
}

func runStatus(ctx context.Context) error {
	fmt.Println()

	path, err := dbpath.ResolveSQLitePath("")
	if err != nil {
		fmt.Printf("  %s No database yet. Run 'engram init' or 'engram remember' to create one.\n\n",
			cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Database:"), cliui.ValueStyle.Render(path))

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	facts, err := store.CountFacts(ctx)
	if err != nil {
		return err
	}
	due, err := store.DueItems(ctx, time.Now(), 0)
	if err != nil {
		return err
	}

	fmt.Printf("  %s  %s stored, %s reviews due\n",
		cliui.KeyStyle.Render("Facts:   "),
		cliui.NameStyle.Render(fmt.Sprintf("%d", facts)),
		cliui.NameStyle.Render(fmt.Sprintf("%d", len(due))),
	)

	state, err := dotdir.NewManager().LoadSessionState("")
	if err != nil {
		return fmt.Errorf("loading session state: %w", err)
	}

	if state == nil || len(state.Messages) == 0 {
		fmt.Printf("  %s  none. Next chat starts a new conversation.\n\n",
			cliui.KeyStyle.Render("Session: "))
		return nil
	}

	fmt.Printf("  %s  %d messages since %s\n\n",
		cliui.KeyStyle.Render("Session: "),
		len(state.Messages),
		cliui.DimStyle.Render(state.StartedAt.Format("2006-01-02 15:04")),
	)

	for i, msg := range state.Messages {
		preview := utils.Truncate(msg.Content, 72)
		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.RoleStyle.Render("["+msg.Role+"]"),
			cliui.PreviewStyle.Render(preview),
		)
	}

	fmt.Println()
	return nil
}
