package challengecmder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
	"github.com/quietmindco/engram/pkg/utils"
)

const obstacleLongDesc string = `Log and solve obstacles hit during a challenge.

An obstacle is a blocking problem worth remembering. Solving one records
the fix and an optional insight, building a searchable trail of past
problems for the next time you get stuck.

Usage:
  engram challenge obstacle add <challenge-id> <problem>
  engram challenge obstacle solve <obstacle-id> <solution>
  engram challenge obstacle list <challenge-id>
  engram challenge obstacle search <query>`

func newObstacleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obstacle",
		Short: "Log and solve challenge obstacles",
		Long:  obstacleLongDesc,
	}

	cmd.AddCommand(newObstacleAddCmd())
	cmd.AddCommand(newObstacleSolveCmd())
	cmd.AddCommand(newObstacleListCmd())
	cmd.AddCommand(newObstacleSearchCmd())

	return cmd
}

type obstacleAddCommander struct {
	sqlitePath string
}

func newObstacleAddCmd() *cobra.Command {
	cmder := &obstacleAddCommander{}

	cmd := &cobra.Command{
		Use:   "add <challenge-id> <problem>...",
		Short: "Log a blocking problem",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *obstacleAddCommander) run(ctx context.Context, rawID, problem string) error {
	id, err := parseChallengeID(rawID)
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

	ob, err := challenge.NewService(store).LogObstacle(ctx, id, problem)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Logged obstacle %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", ob.ID)),
		cliui.DimStyle.Render("(open)"),
	)

	return nil
}

type obstacleSolveCommander struct {
	sqlitePath string
	insight    string
	minutes    int
}

const obstacleSolveLongDesc string = `Record how an obstacle was solved.

The solution text is required. Add --insight for the transferable lesson
and --minutes for how long the fix took. An obstacle can only be solved
once.

Examples:
  engram challenge obstacle solve 7 "pin the crate to 1.4"
  engram challenge obstacle solve 7 "use a buffered channel" --insight "unbuffered channels deadlock on same-goroutine send/recv" --minutes 90`

func newObstacleSolveCmd() *cobra.Command {
	cmder := &obstacleSolveCommander{}

	cmd := &cobra.Command{
		Use:   "solve <obstacle-id> <solution>...",
		Short: "Record an obstacle's solution",
		Long:  obstacleSolveLongDesc,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVarP(&cmder.insight, "insight", "i", "", "Transferable lesson learned")
	cmd.Flags().IntVarP(&cmder.minutes, "minutes", "m", 0, "Minutes spent solving")

	return cmd
}

func (c *obstacleSolveCommander) run(ctx context.Context, rawID, solution string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid obstacle id %q", rawID)
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

	ob, err := challenge.NewService(store).SolveObstacle(ctx, id, solution, c.insight, c.minutes)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Solved obstacle %s\n", cliui.SuccessMark, cliui.NameStyle.Render(fmt.Sprintf("#%d", ob.ID)))
	if ob.Insight != nil {
		fmt.Printf("    %s\n", cliui.PreviewStyle.Render(*ob.Insight))
	}
	fmt.Println()

	return nil
}

type obstacleListCommander struct {
	sqlitePath string
}

func newObstacleListCmd() *cobra.Command {
	cmder := &obstacleListCommander{}

	cmd := &cobra.Command{
		Use:   "list <challenge-id>",
		Short: "List a challenge's obstacles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")

	return cmd
}

func (c *obstacleListCommander) run(ctx context.Context, rawID string) error {
	id, err := parseChallengeID(rawID)
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

	obstacles, err := challenge.NewService(store).Obstacles(ctx, id)
	if err != nil {
		return err
	}

	if len(obstacles) == 0 {
		fmt.Printf("\n  %s No obstacles logged.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, ob := range obstacles {
		printObstacle(ob)
	}
	fmt.Println()

	return nil
}

type obstacleSearchCommander struct {
	sqlitePath string
	skillRef   string
	limit      int
}

func newObstacleSearchCmd() *cobra.Command {
	cmder := &obstacleSearchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search past obstacles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().StringVar(&cmder.skillRef, "skill", "", "Limit to one skill (name or id)")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 10, "Maximum results")

	return cmd
}

func (c *obstacleSearchCommander) run(ctx context.Context, query string) error {
	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	var skillID int64
	if c.skillRef != "" {
		skill, err := resolveSkill(ctx, learning.NewService(store), c.skillRef)
		if err != nil {
			return err
		}
		skillID = skill.ID
	}

	obstacles, err := challenge.NewService(store).SearchObstacles(ctx, query, skillID, c.limit)
	if err != nil {
		return err
	}

	if len(obstacles) == 0 {
		fmt.Printf("\n  %s No obstacles matching %q.\n\n", cliui.DimStyle.Render("●"), query)
		return nil
	}

	fmt.Println()
	for _, ob := range obstacles {
		printObstacle(ob)
	}
	fmt.Println()

	return nil
}

func printObstacle(ob *storage.Obstacle) {
	mark := cliui.WarnStyle.Render("▸")
	state := "open"
	if !ob.Open() {
		mark = cliui.SuccessMark
		state = "solved"
	}

	fmt.Printf("  %s %s %s %s\n",
		mark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", ob.ID)),
		cliui.ValueStyle.Render(utils.Truncate(ob.Problem, 64)),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, challenge #%d)", state, ob.ChallengeID)),
	)
	if ob.Solution != nil {
		fmt.Printf("      %s\n", cliui.DimStyle.Render("fix: "+utils.Truncate(*ob.Solution, 64)))
	}
	if ob.Insight != nil {
		fmt.Printf("      %s\n", cliui.PreviewStyle.Render(utils.Truncate(*ob.Insight, 64)))
	}
}
