// Package engramcmder
package engramcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/quietmindco/engram/cmd/engram/auth"
	briefingcmder "github.com/quietmindco/engram/cmd/engram/briefing"
	challengecmder "github.com/quietmindco/engram/cmd/engram/challenge"
	chatcmder "github.com/quietmindco/engram/cmd/engram/chat"
	configcmder "github.com/quietmindco/engram/cmd/engram/config"
	explaincmder "github.com/quietmindco/engram/cmd/engram/explain"
	goalcmder "github.com/quietmindco/engram/cmd/engram/goal"
	importcmder "github.com/quietmindco/engram/cmd/engram/importcmd"
	initcmder "github.com/quietmindco/engram/cmd/engram/init"
	learncmder "github.com/quietmindco/engram/cmd/engram/learn"
	recallcmder "github.com/quietmindco/engram/cmd/engram/recall"
	remembercmder "github.com/quietmindco/engram/cmd/engram/remember"
	reviewcmder "github.com/quietmindco/engram/cmd/engram/review"
	seedcmder "github.com/quietmindco/engram/cmd/engram/seed"
	servecmder "github.com/quietmindco/engram/cmd/engram/serve"
	statscmder "github.com/quietmindco/engram/cmd/engram/stats"
	statuscmder "github.com/quietmindco/engram/cmd/engram/status"
	watchcmder "github.com/quietmindco/engram/cmd/engram/watch"
	versioncmder "github.com/quietmindco/engram/cmd/version"
)

const engramLongDesc string = `Engram is a personal knowledge and habit assistant.

It remembers facts about your life, schedules spaced-repetition reviews,
tracks practice challenges, and assembles context for LLM conversations.

Common commands:
  engram remember <entity> <fact>   Store a fact
  engram recall <query>             Search stored facts
  engram chat                       Chat with memory and capture
  engram review                     Review due flashcards
  engram briefing                   Morning briefing
  engram serve                      Run the API and MCP server`

const engramShortDesc string = "Engram - Personal Knowledge Assistant"

func NewEngramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engram",
		Short: engramShortDesc,
		Long:  engramLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .engram/ config directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(remembercmder.NewRememberCmd())
	cmd.AddCommand(recallcmder.NewRecallCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(goalcmder.NewGoalCmd())
	cmd.AddCommand(learncmder.NewLearnCmd())
	cmd.AddCommand(reviewcmder.NewReviewCmd())
	cmd.AddCommand(challengecmder.NewChallengeCmd())
	cmd.AddCommand(briefingcmder.NewBriefingCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(explaincmder.NewExplainCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(importcmder.NewImportCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
