// Package briefingcmder provides the briefing command.
package briefingcmder

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/cmd/engram/llmconf"
	"github.com/quietmindco/engram/pkg/briefing"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/config"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const briefingLongDesc string = `Show the morning briefing.

The briefing pulls reviews due today, active goals, challenges in
progress, the practice streak, and last week's study totals from the
store. When a completion backend is configured it adds a short generated
kickoff note; without one the briefing still renders everything else.

Examples:
  engram briefing
  engram briefing --plain
  engram briefing --no-kickoff`

const briefingShortDesc string = "Show the morning briefing"

type briefingCommander struct {
	sqlitePath string
	plain      bool
	noKickoff  bool
	configDir  string
	cfg        *config.Config
}

func NewBriefingCmd() *cobra.Command {
	cmder := &briefingCommander{}

	cmd := &cobra.Command{
		Use:   "briefing",
		Short: briefingShortDesc,
		Long:  briefingLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			if !cmd.Flags().Changed("config-dir") {
				configDir = ""
			}
			cmder.configDir = configDir

			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return err
			}
			cmder.cfg, err = cfger.LoadConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print raw markdown without styling")
	cmd.Flags().BoolVar(&cmder.noKickoff, "no-kickoff", false, "Skip the generated kickoff note")

	return cmd
}

func (c *briefingCommander) run(ctx context.Context) error {
	path, err := dbpath.ResolveOrInit(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	var call completion.CallFunc
	if !c.noKickoff {
		ccfg := llmconf.Completion(c.cfg, c.configDir)
		if completion.HasCredentials(ccfg) {
			if caller, err := completion.NewCaller(ccfg); err == nil {
				call = caller
			}
		}
	}

	brief, err := briefing.NewService(store, call).Assemble(ctx, time.Now())
	if err != nil {
		return err
	}

	markdown := brief.Markdown()
	if c.plain {
		fmt.Println(markdown)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(markdown)
	if err != nil {
		// Styling failed; the content still matters.
		fmt.Println(markdown)
		return nil
	}
	fmt.Print(rendered)

	return nil
}
