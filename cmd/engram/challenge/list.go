package challengecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

type listCommander struct {
	sqlitePath string
	status     string
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list [skill]",
		Short: "List challenges",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skillRef := ""
			if len(args) > 0 {
				skillRef = args[0]
			}
			return cmder.run(cmd.Context(), skillRef)
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.status, "status", "", "Filter by status (available, in_progress, completed)")

	return cmd
}

func (c *listCommander) run(ctx context.Context, skillRef string) error {
	status, err := parseStatusFilter(c.status)
	if err != nil {
		return err
	}

	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	svc := challenge.NewService(store)

	var skillID int64
	if skillRef != "" {
		skill, err := resolveSkill(ctx, learning.NewService(store), skillRef)
		if err != nil {
			return err
		}
		skillID = skill.ID
	}

	var challenges []*storage.Challenge
	switch {
	case status != "":
		challenges, err = svc.ChallengesByStatus(ctx, skillID, status)
	case skillID != 0:
		challenges, err = svc.ChallengesBySkill(ctx, skillID)
	default:
		// No skill and no status filter: show everything still moving.
		available, aerr := svc.ChallengesByStatus(ctx, 0, storage.ChallengeStatusAvailable)
		if aerr != nil {
			return aerr
		}
		inProgress, perr := svc.ChallengesByStatus(ctx, 0, storage.ChallengeStatusInProgress)
		if perr != nil {
			return perr
		}
		challenges = append(inProgress, available...)
	}
	if err != nil {
		return err
	}

	if len(challenges) == 0 {
		fmt.Printf("\n  %s No challenges. Add one with 'engram challenge add <skill> <title>'.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, ch := range challenges {
		fmt.Printf("  %s %s %s\n",
			statusMark(ch.Status),
			cliui.NameStyle.Render(fmt.Sprintf("#%d", ch.ID)),
			cliui.ValueStyle.Render(ch.Title),
		)
		fmt.Printf("      %s\n", cliui.DimStyle.Render(challengeDetail(ch)))
	}
	fmt.Println()

	return nil
}

func parseStatusFilter(raw string) (storage.ChallengeStatus, error) {
	if raw == "" {
		return "", nil
	}
	status := storage.ChallengeStatus(raw)
	switch status {
	case storage.ChallengeStatusAvailable, storage.ChallengeStatusInProgress, storage.ChallengeStatusCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("unknown status %q (expected available, in_progress, or completed)", raw)
	}
}

func statusMark(status storage.ChallengeStatus) string {
	switch status {
	case storage.ChallengeStatusCompleted:
		return cliui.SuccessMark
	case storage.ChallengeStatusInProgress:
		return cliui.WarnStyle.Render("▸")
	default:
		return cliui.DimStyle.Render("●")
	}
}

func challengeDetail(ch *storage.Challenge) string {
	detail := fmt.Sprintf("%s · %s", ch.Difficulty, ch.Status)
	if ch.Status == storage.ChallengeStatusInProgress {
		detail += fmt.Sprintf(" · %d%%", ch.ProgressPct)
	}
	if ch.MinutesSpent > 0 {
		detail += fmt.Sprintf(" · %dm logged", ch.MinutesSpent)
	}
	if ch.EstimatedHours > 0 {
		detail += fmt.Sprintf(" · ~%.0fh estimated", ch.EstimatedHours)
	}
	return detail
}
