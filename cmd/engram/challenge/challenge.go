// Package challengecmder provides the challenge command tree for
// project-based practice.
package challengecmder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
)

const challengeLongDesc string = `Track project challenges for a skill.

A challenge is a concrete thing to build. It starts available, moves to
in_progress when you start it, and completes when you ship. Along the
way you log progress, obstacles, and how you solved them. Completions
drive the skill's progression level.

Usage:
  engram challenge suggest [category]      Browse the curated library
  engram challenge add <skill> <title>     Create a challenge
  engram challenge list [skill]            List challenges
  engram challenge start <id>              Start working
  engram challenge progress <id> --pct 60  Log progress
  engram challenge obstacle add <id> <problem>
  engram challenge obstacle solve <id> <solution>
  engram challenge complete <id>           Mark shipped
  engram challenge status <skill>          Progression and streak`

const challengeShortDesc string = "Track project challenges"

func NewChallengeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: challengeShortDesc,
		Long:  challengeLongDesc,
	}

	cmd.AddCommand(newSuggestCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newProgressCmd())
	cmd.AddCommand(newObstacleCmd())
	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// resolveSkill accepts a skill name or numeric id.
func resolveSkill(ctx context.Context, svc *learning.Service, ref string) (*storage.Skill, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return svc.Skill(ctx, id)
	}
	return svc.SkillByName(ctx, ref)
}

func parseChallengeID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid challenge id %q", raw)
	}
	return id, nil
}

func parseDifficulty(raw string) (storage.Difficulty, error) {
	difficulty := storage.Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	switch difficulty {
	case storage.DifficultyBeginner, storage.DifficultyIntermediate, storage.DifficultyAdvanced:
		return difficulty, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (expected beginner, intermediate, or advanced)", raw)
	}
}
