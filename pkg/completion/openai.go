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

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	ResponseFormat *openAIRespFormat `json:"response_format,omitempty"`
	Stream         bool              `json:"stream,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRespFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type openAIStreamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func newOpenAICaller(r resolved, forceJSON bool) CallFunc {
	return func(ctx context.Context, system, prompt string) (string, error) {
		reqBody := openAIRequest{
			Model:    r.model,
			Messages: openAIMessages(system, []llm.Message{llm.NewTextMessage("user", prompt)}),
		}
		if forceJSON {
			reqBody.ResponseFormat = &openAIRespFormat{Type: "json_object"}
		}

		data, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("%w: marshaling request: %v", ErrUnavailable, err)
		}

		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/chat/completions", bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("%w: creating request: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+r.apiKey)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: openai request: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
		}

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: openai API error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
		}

		var result openAIResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("%w: unmarshaling response: %v", ErrUnavailable, err)
		}

		if result.Error != nil {
			return "", fmt.Errorf("%w: openai error: %s", ErrUnavailable, result.Error.Message)
		}

		if len(result.Choices) == 0 {
			return "", fmt.Errorf("%w: openai returned no choices", ErrUnavailable)
		}

		return result.Choices[0].Message.Content, nil
	}
}

func newOpenAIStreamer(r resolved) StreamFunc {
	return func(ctx context.Context, system string, messages []llm.Message, onDelta func(string)) (*llm.ChatResponse, error) {
		reqBody := openAIRequest{
			Model:    r.model,
			Messages: openAIMessages(system, messages),
			Stream:   true,
		}

		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("%w: marshaling request: %v", ErrUnavailable, err)
		}

		ctx, cancel := context.WithTimeout(ctx, streamTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/chat/completions", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: creating request: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+r.apiKey)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: openai request: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("%w: openai API error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
		}

		var (
			full         strings.Builder
			model        = r.model
			finishReason string
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
			if ev.Data == "[DONE]" {
				break
			}

			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				continue
			}
			if chunk.Model != "" {
				model = chunk.Model
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				full.WriteString(text)
				if onDelta != nil {
					onDelta(text)
				}
			}
			if reason := chunk.Choices[0].FinishReason; reason != "" {
				finishReason = reason
			}
		}

		if full.Len() == 0 {
			return nil, fmt.Errorf("%w: openai returned no content", ErrUnavailable)
		}

		return &llm.ChatResponse{
			Model:      model,
			CreatedAt:  time.Now(),
			Message:    llm.NewTextMessage("assistant", full.String()),
			Done:       true,
			StopReason: finishReason,
		}, nil
	}
}

// openAIMessages converts transcript messages to the wire format, with the
// system prompt leading as a system-role message.
func openAIMessages(system string, messages []llm.Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, openAIMessage{Role: "system", Content: system})
	}
	for _, m := range messages {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		text := m.GetText()
		if text == "" {
			continue
		}
		out = append(out, openAIMessage{Role: m.Role, Content: text})
	}
	return out
}
