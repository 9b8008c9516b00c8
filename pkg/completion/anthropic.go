package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/llm"
	"github.com/quietmindco/engram/pkg/sse"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// anthropicStreamEvent covers the stream event shapes the chat loop cares
// about; everything else (ping, content_block_start/stop) unmarshals into an
// empty struct and is skipped.
type anthropicStreamEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Model string `json:"model"`
		Usage *struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage,omitempty"`
	} `json:"message,omitempty"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text,omitempty"`
		StopReason string `json:"stop_reason,omitempty"`
	} `json:"delta,omitempty"`
	Usage *struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicCaller(r resolved, forceJSON bool) CallFunc {
	return func(ctx context.Context, system, prompt string) (string, error) {
		if forceJSON {
			prompt += "\n\nReturn ONLY valid JSON, no markdown or extra text."
		}

		reqBody := anthropicRequest{
			Model:     r.model,
			MaxTokens: anthropicMaxTokens,
			System:    system,
			Messages: []anthropicMessage{
				{Role: "user", Content: prompt},
			},
		}

		data, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("%w: marshaling request: %v", ErrUnavailable, err)
		}

		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/messages", bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("%w: creating request: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", r.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: anthropic request: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
		}

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: anthropic API error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
		}

		var result anthropicResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("%w: unmarshaling response: %v", ErrUnavailable, err)
		}

		if result.Error != nil {
			return "", fmt.Errorf("%w: anthropic error: %s", ErrUnavailable, result.Error.Message)
		}

		if len(result.Content) == 0 {
			return "", fmt.Errorf("%w: anthropic returned no content", ErrUnavailable)
		}

		return result.Content[0].Text, nil
	}
}

func newAnthropicStreamer(r resolved) StreamFunc {
	return func(ctx context.Context, system string, messages []llm.Message, onDelta func(string)) (*llm.ChatResponse, error) {
		reqBody := anthropicRequest{
			Model:     r.model,
			MaxTokens: anthropicMaxTokens,
			System:    system,
			Messages:  anthropicMessages(messages),
			Stream:    true,
		}

		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("%w: marshaling request: %v", ErrUnavailable, err)
		}

		ctx, cancel := context.WithTimeout(ctx, streamTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/messages", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: creating request: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", r.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: anthropic request: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("%w: anthropic API error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
		}

		var (
			full       strings.Builder
			model      = r.model
			stopReason string
			usage      llm.Usage
		)

		reader := sse.NewReader(resp.Body)
		for {
			ev, err := reader.Next()
			if err != nil {
				return nil, fmt.Errorf("%w: reading stream: %v", ErrUnavailable, err)
			}
			if ev == nil {
				break
			}

			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
				continue
			}

			switch event.Type {
			case "message_start":
				if event.Message != nil {
					if event.Message.Model != "" {
						model = event.Message.Model
					}
					if event.Message.Usage != nil {
						usage.PromptTokens = event.Message.Usage.InputTokens
					}
				}
			case "content_block_delta":
				if event.Delta != nil && event.Delta.Text != "" {
					full.WriteString(event.Delta.Text)
					if onDelta != nil {
						onDelta(event.Delta.Text)
					}
				}
			case "message_delta":
				if event.Delta != nil && event.Delta.StopReason != "" {
					stopReason = event.Delta.StopReason
				}
				if event.Usage != nil {
					usage.CompletionTokens = event.Usage.OutputTokens
				}
			case "error":
				if event.Error != nil {
					return nil, fmt.Errorf("%w: anthropic error: %s", ErrUnavailable, event.Error.Message)
				}
			}
		}

		if full.Len() == 0 {
			return nil, fmt.Errorf("%w: anthropic returned no content", ErrUnavailable)
		}

		out := &llm.ChatResponse{
			Model:      model,
			CreatedAt:  time.Now(),
			Message:    llm.NewTextMessage("assistant", full.String()),
			Done:       true,
			StopReason: stopReason,
		}
		if usage.PromptTokens > 0 || usage.CompletionTokens > 0 {
			usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
			out.Usage = &usage
		}
		return out, nil
	}
}

// anthropicMessages converts transcript messages to the wire format. Only
// user and assistant turns with text travel; the system prompt rides in its
// own request field.
func anthropicMessages(messages []llm.Message) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		text := m.GetText()
		if text == "" {
			continue
		}
		out = append(out, anthropicMessage{Role: m.Role, Content: text})
	}
	return out
}
