// Package explaincmder provides the explain command: generated topic
// explanations, saved per skill and reused until refreshed.
package explaincmder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/cmd/engram/llmconf"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/config"
	"github.com/quietmindco/engram/pkg/dotdir"
	"github.com/quietmindco/engram/pkg/explanations"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const explainLongDesc string = `Explain a topic in the context of a skill you're learning.

Explanations are generated once and saved under the .engram directory;
asking again shows the saved version. Pass --refresh to regenerate, or
--sync to copy the saved explanation into the watched notes directory so
it gets ingested as memory.

Examples:
  engram explain rust "borrow checker"
  engram explain rust "borrow checker" --refresh
  engram explain rust "borrow checker" --sync
  engram explain --list
  engram explain --list rust`

const explainShortDesc string = "Explain a topic within a skill"

const explainSystem = "You are a patient teacher. Explain clearly, build from what the learner already knows, and keep examples short. Reply in markdown."

type explainCommander struct {
	sqlitePath string
	refresh    bool
	list       bool
	sync       bool
	configDir  string
	cfg        *config.Config
}

func NewExplainCmd() *cobra.Command {
	cmder := &explainCommander{}

	cmd := &cobra.Command{
		Use:   "explain <skill> <topic>...",
		Short: explainShortDesc,
		Long:  explainLongDesc,
		Args:  cobra.ArbitraryArgs,
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
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmder.list {
				skill := ""
				if len(args) > 0 {
					skill = args[0]
				}
				return cmder.runList(skill)
			}
			if len(args) < 2 {
				return fmt.Errorf("expected a skill and a topic, e.g. 'engram explain rust \"borrow checker\"'")
			}
			return cmder.run(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVar(&cmder.refresh, "refresh", false, "Regenerate even when a saved explanation exists")
	cmd.Flags().BoolVarP(&cmder.list, "list", "l", false, "List saved explanations")
	cmd.Flags().BoolVar(&cmder.sync, "sync", false, "Copy the explanation into the notes directory")

	return cmd
}

// explanationsDir resolves <dotdir>/explanations.
func (c *explainCommander) explanationsDir() (string, error) {
	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(target, explanations.DirName), nil
}

func (c *explainCommander) run(ctx context.Context, skill, topic string) error {
	dir, err := c.explanationsDir()
	if err != nil {
		return err
	}

	ex, err := c.loadOrGenerate(ctx, dir, skill, topic)
	if err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(ex.Content)
	if err != nil {
		fmt.Println(ex.Content)
	} else {
		fmt.Print(rendered)
	}

	if !ex.SavedAt.IsZero() {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf(
			"saved %s · --refresh to regenerate", ex.SavedAt.Format("2006-01-02"),
		)))
	}

	if c.sync {
		return c.runSync(dir, skill, topic)
	}

	return nil
}

// loadOrGenerate returns the saved explanation unless --refresh was passed
// or nothing is saved yet.
func (c *explainCommander) loadOrGenerate(ctx context.Context, dir, skill, topic string) (*explanations.Explanation, error) {
	if !c.refresh {
		ex, err := explanations.Read(dir, skill, topic)
		if err == nil {
			return ex, nil
		}
		if !errors.Is(err, explanations.ErrNotFound) {
			return nil, err
		}
	}

	ccfg := llmconf.Completion(c.cfg, c.configDir)
	call, err := completion.NewCaller(ccfg)
	if err != nil {
		return nil, err
	}

	content, err := call(ctx, explainSystem, c.explainPrompt(ctx, skill, topic))
	if err != nil {
		return nil, fmt.Errorf("generating explanation: %w", err)
	}

	ex := &explanations.Explanation{
		Skill:   skill,
		Topic:   topic,
		Content: strings.TrimSpace(content),
	}
	if _, err := explanations.Write(ex, dir); err != nil {
		return nil, err
	}

	return ex, nil
}

// explainPrompt folds the learner's level and roadmap into the prompt when
// the skill is tracked. An unknown skill still gets a generic explanation.
func (c *explainCommander) explainPrompt(ctx context.Context, skillName, topic string) string {
	prompt := fmt.Sprintf("Explain %q in the context of learning %s.", topic, skillName)

	path, err := dbpath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return prompt
	}
	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return prompt
	}
	defer store.Close()

	skill, err := learning.NewService(store).SkillByName(ctx, skillName)
	if err != nil {
		return prompt
	}

	prompt += fmt.Sprintf(" The learner is at the %s level.", skill.CurrentLevel)
	if skill.RoadmapContext != "" {
		prompt += " Their roadmap so far: " + skill.RoadmapContext
	}
	return prompt
}

func (c *explainCommander) runSync(dir, skill, topic string) error {
	if c.cfg.Notes.Dir == "" {
		return fmt.Errorf("no notes directory configured; set notes.dir to use --sync")
	}

	dst, err := explanations.Sync(dir, skill, topic, c.cfg.Notes.Dir)
	if err != nil {
		return err
	}

	fmt.Printf("  %s Synced to %s\n\n", cliui.SuccessMark, cliui.ValueStyle.Render(dst))
	return nil
}

func (c *explainCommander) runList(skill string) error {
	dir, err := c.explanationsDir()
	if err != nil {
		return err
	}

	var saved []*explanations.Explanation
	if skill != "" {
		saved, err = explanations.ListSkill(dir, skill)
	} else {
		saved, err = explanations.List(dir)
	}
	if err != nil {
		return err
	}

	if len(saved) == 0 {
		fmt.Printf("\n  %s No saved explanations.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	currentSkill := ""
	for _, ex := range saved {
		if ex.Skill != currentSkill {
			currentSkill = ex.Skill
			fmt.Printf("  %s\n", cliui.HeaderStyle.Render(currentSkill))
		}
		fmt.Printf("    %s %s\n",
			cliui.ValueStyle.Render(ex.Topic),
			cliui.DimStyle.Render(ex.SavedAt.Format("2006-01-02")),
		)
	}
	fmt.Println()

	return nil
}
