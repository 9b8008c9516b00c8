package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// errorResult reports a tool failure as a tool result rather than a protocol
// error so clients surface the message inline.
func errorResult[Out any](msg string) (*mcp.CallToolResult, Out, error) {
	var zero Out
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}, zero, nil
}

// jsonResult returns structured output with its JSON serialization in a
// TextContent block for clients that only read text.
func jsonResult[Out any](output Out) (*mcp.CallToolResult, Out, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult[Out](fmt.Sprintf("Failed to serialize results: %v", err))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
