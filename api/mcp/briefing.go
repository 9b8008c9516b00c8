package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quietmindco/engram/pkg/briefing"
)

var (
	morningBriefingToolName    = "morning_briefing"
	morningBriefingDescription = "Assemble the morning briefing: reviews due, active goals, in-progress challenges, the practice streak, and this week's study totals."
)

// MorningBriefingInput represents the input arguments for the morning_briefing tool.
type MorningBriefingInput struct{}

// MorningBriefingOutput carries the assembled briefing.
type MorningBriefingOutput struct {
	Briefing *briefing.Briefing `json:"briefing"`
}

func (s *Server) handleMorningBriefing(ctx context.Context, _ *mcp.CallToolRequest, _ MorningBriefingInput) (*mcp.CallToolResult, MorningBriefingOutput, error) {
	b, err := s.config.Briefing.Assemble(ctx, time.Now())
	if err != nil {
		return errorResult[MorningBriefingOutput](fmt.Sprintf("Failed to assemble briefing: %v", err))
	}

	return jsonResult(MorningBriefingOutput{Briefing: b})
}
