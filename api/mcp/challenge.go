package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/storage"
)

var (
	startChallengeToolName    = "start_challenge"
	startChallengeDescription = "Start an available challenge, moving it to in_progress and stamping the start time."

	updateChallengeProgressToolName    = "update_challenge_progress"
	updateChallengeProgressDescription = "Update an in-progress challenge: percent complete (0-100) and minutes spent this session. Also marks today on the practice streak."

	logObstacleToolName    = "log_obstacle"
	logObstacleDescription = "Log an obstacle hit while working a challenge."

	solveObstacleToolName    = "solve_obstacle"
	solveObstacleDescription = "Record the solution to a logged obstacle along with the insight gained and the minutes it took. Fails if the obstacle already has a solution."

	completeChallengeToolName    = "complete_challenge"
	completeChallengeDescription = "Complete an in-progress challenge, optionally with completion notes and an artifact link. Open obstacles do not block completion."

	skillProgressionToolName    = "skill_progression"
	skillProgressionDescription = "Report a skill's progression level and percent, recomputed from its completed challenge count."
)

// ChallengeOutput carries a challenge after a lifecycle mutation.
type ChallengeOutput struct {
	Challenge *storage.Challenge `json:"challenge"`
}

// ObstacleOutput carries an obstacle after logging or solving it.
type ObstacleOutput struct {
	Obstacle *storage.Obstacle `json:"obstacle"`
}

// StartChallengeInput represents the input arguments for the start_challenge tool.
type StartChallengeInput struct {
	ChallengeID int64 `json:"challenge_id" jsonschema:"the challenge to start"`
}

func (s *Server) handleStartChallenge(ctx context.Context, _ *mcp.CallToolRequest, input StartChallengeInput) (*mcp.CallToolResult, ChallengeOutput, error) {
	if input.ChallengeID <= 0 {
		return errorResult[ChallengeOutput]("challenge_id is required")
	}

	ch, err := s.config.Challenges.Start(ctx, input.ChallengeID)
	if err != nil {
		return errorResult[ChallengeOutput](fmt.Sprintf("Failed to start challenge: %v", err))
	}

	return jsonResult(ChallengeOutput{Challenge: ch})
}

// UpdateChallengeProgressInput represents the input arguments for the
// update_challenge_progress tool.
type UpdateChallengeProgressInput struct {
	ChallengeID int64 `json:"challenge_id" jsonschema:"the challenge to update"`
	ProgressPct int   `json:"progress_pct" jsonschema:"percent complete, clamped to 0-100"`
	Minutes     int   `json:"minutes,omitempty" jsonschema:"minutes spent this session, added to the running total"`
}

func (s *Server) handleUpdateChallengeProgress(ctx context.Context, _ *mcp.CallToolRequest, input UpdateChallengeProgressInput) (*mcp.CallToolResult, ChallengeOutput, error) {
	if input.ChallengeID <= 0 {
		return errorResult[ChallengeOutput]("challenge_id is required")
	}

	ch, err := s.config.Challenges.UpdateProgress(ctx, input.ChallengeID, input.ProgressPct, input.Minutes)
	if err != nil {
		return errorResult[ChallengeOutput](fmt.Sprintf("Failed to update progress: %v", err))
	}

	return jsonResult(ChallengeOutput{Challenge: ch})
}

// LogObstacleInput represents the input arguments for the log_obstacle tool.
type LogObstacleInput struct {
	ChallengeID int64  `json:"challenge_id" jsonschema:"the challenge the obstacle belongs to"`
	Problem     string `json:"problem" jsonschema:"what went wrong"`
}

func (s *Server) handleLogObstacle(ctx context.Context, _ *mcp.CallToolRequest, input LogObstacleInput) (*mcp.CallToolResult, ObstacleOutput, error) {
	if input.ChallengeID <= 0 {
		return errorResult[ObstacleOutput]("challenge_id is required")
	}
	if strings.TrimSpace(input.Problem) == "" {
		return errorResult[ObstacleOutput]("problem is required")
	}

	obstacle, err := s.config.Challenges.LogObstacle(ctx, input.ChallengeID, input.Problem)
	if err != nil {
		return errorResult[ObstacleOutput](fmt.Sprintf("Failed to log obstacle: %v", err))
	}

	return jsonResult(ObstacleOutput{Obstacle: obstacle})
}

// SolveObstacleInput represents the input arguments for the solve_obstacle tool.
type SolveObstacleInput struct {
	ObstacleID int64  `json:"obstacle_id" jsonschema:"the obstacle to solve"`
	Solution   string `json:"solution" jsonschema:"how it was solved"`
	Insight    string `json:"insight,omitempty" jsonschema:"the transferable lesson"`
	Minutes    int    `json:"minutes,omitempty" jsonschema:"minutes spent solving it"`
}

func (s *Server) handleSolveObstacle(ctx context.Context, _ *mcp.CallToolRequest, input SolveObstacleInput) (*mcp.CallToolResult, ObstacleOutput, error) {
	if input.ObstacleID <= 0 {
		return errorResult[ObstacleOutput]("obstacle_id is required")
	}
	if strings.TrimSpace(input.Solution) == "" {
		return errorResult[ObstacleOutput]("solution is required")
	}

	obstacle, err := s.config.Challenges.SolveObstacle(ctx, input.ObstacleID, input.Solution, input.Insight, input.Minutes)
	if err != nil {
		return errorResult[ObstacleOutput](fmt.Sprintf("Failed to solve obstacle: %v", err))
	}

	return jsonResult(ObstacleOutput{Obstacle: obstacle})
}

// CompleteChallengeInput represents the input arguments for the complete_challenge tool.
type CompleteChallengeInput struct {
	ChallengeID int64  `json:"challenge_id" jsonschema:"the challenge to complete"`
	Notes       string `json:"notes,omitempty" jsonschema:"optional completion notes"`
	Link        string `json:"link,omitempty" jsonschema:"optional link to the built artifact"`
}

func (s *Server) handleCompleteChallenge(ctx context.Context, _ *mcp.CallToolRequest, input CompleteChallengeInput) (*mcp.CallToolResult, ChallengeOutput, error) {
	if input.ChallengeID <= 0 {
		return errorResult[ChallengeOutput]("challenge_id is required")
	}

	ch, err := s.config.Challenges.Complete(ctx, input.ChallengeID, input.Notes, input.Link)
	if err != nil {
		return errorResult[ChallengeOutput](fmt.Sprintf("Failed to complete challenge: %v", err))
	}

	return jsonResult(ChallengeOutput{Challenge: ch})
}

// SkillProgressionInput represents the input arguments for the skill_progression tool.
type SkillProgressionInput struct {
	SkillID int64 `json:"skill_id" jsonschema:"the skill to report on"`
}

// SkillProgressionOutput carries the recomputed progression.
type SkillProgressionOutput struct {
	Progression *challenge.Progress `json:"progression"`
}

func (s *Server) handleSkillProgression(ctx context.Context, _ *mcp.CallToolRequest, input SkillProgressionInput) (*mcp.CallToolResult, SkillProgressionOutput, error) {
	if input.SkillID <= 0 {
		return errorResult[SkillProgressionOutput]("skill_id is required")
	}

	progress, err := s.config.Challenges.SkillProgression(ctx, input.SkillID)
	if err != nil {
		return errorResult[SkillProgressionOutput](fmt.Sprintf("Failed to compute progression: %v", err))
	}

	return jsonResult(SkillProgressionOutput{Progression: progress})
}
