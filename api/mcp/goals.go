package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quietmindco/engram/pkg/storage"
)

var (
	addGoalToolName    = "add_goal"
	addGoalDescription = "Add an active goal, optionally with a target date."

	listGoalsToolName    = "list_goals"
	listGoalsDescription = "List goals, newest first. Only active goals by default; set all to include completed ones."
)

// AddGoalInput represents the input arguments for the add_goal tool.
type AddGoalInput struct {
	Text       string `json:"text" jsonschema:"the goal text"`
	TargetDate string `json:"target_date,omitempty" jsonschema:"optional target date in YYYY-MM-DD form"`
}

// AddGoalOutput carries the created goal.
type AddGoalOutput struct {
	Goal *storage.Goal `json:"goal"`
}

func (s *Server) handleAddGoal(ctx context.Context, _ *mcp.CallToolRequest, input AddGoalInput) (*mcp.CallToolResult, AddGoalOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return errorResult[AddGoalOutput]("text is required")
	}

	var target *time.Time
	if input.TargetDate != "" {
		t, err := time.Parse("2006-01-02", input.TargetDate)
		if err != nil {
			return errorResult[AddGoalOutput]("target_date must be YYYY-MM-DD")
		}
		target = &t
	}

	goal, err := s.config.Storer.CreateGoal(ctx, text, target)
	if err != nil {
		return errorResult[AddGoalOutput](fmt.Sprintf("Failed to create goal: %v", err))
	}

	return jsonResult(AddGoalOutput{Goal: goal})
}

// ListGoalsInput represents the input arguments for the list_goals tool.
type ListGoalsInput struct {
	All bool `json:"all,omitempty" jsonschema:"include completed goals"`
}

// ListGoalsOutput carries the goal list.
type ListGoalsOutput struct {
	Goals []*storage.Goal `json:"goals"`
	Count int             `json:"count"`
}

func (s *Server) handleListGoals(ctx context.Context, _ *mcp.CallToolRequest, input ListGoalsInput) (*mcp.CallToolResult, ListGoalsOutput, error) {
	var (
		goals []*storage.Goal
		err   error
	)
	if input.All {
		goals, err = s.config.Storer.ListGoals(ctx)
	} else {
		goals, err = s.config.Storer.ActiveGoals(ctx, 0)
	}
	if err != nil {
		return errorResult[ListGoalsOutput](fmt.Sprintf("Failed to list goals: %v", err))
	}

	if goals == nil {
		goals = []*storage.Goal{}
	}

	return jsonResult(ListGoalsOutput{Goals: goals, Count: len(goals)})
}
