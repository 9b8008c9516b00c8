package completion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/llm"
)

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Format   string              `json:"format,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaChatResponse is both the non-streaming response and one NDJSON line
// of the streaming response; counters and done_reason arrive on the final
// line.
type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done               bool   `json:"done"`
	DoneReason         string `json:"done_reason,omitempty"`
	TotalDuration      int64  `json:"total_duration,omitempty"`
	PromptEvalCount    int    `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64  `json:"prompt_eval_duration,omitempty"`
	EvalCount          int    `json:"eval_count,omitempty"`
}

func newOllamaCaller(r resolved, forceJSON bool) CallFunc {
	return func(ctx context.Context, system, prompt string) (string, error) {
		reqBody := ollamaChatRequest{
			Model:    r.model,
			Messages: ollamaMessages(system, []llm.Message{llm.NewTextMessage("user", prompt)}),
			Stream:   false,
		}
		if forceJSON {
			reqBody.Format = "json"
		}

		data, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("%w: marshaling request: %v", ErrUnavailable, err)
		}

		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/chat", bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("%w: creating request: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: ollama request: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
		}

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: ollama API error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
		}

		var result ollamaChatResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("%w: unmarshaling response: %v", ErrUnavailable, err)
		}

		return result.Message.Content, nil
	}
}

// newOllamaStreamer streams via Ollama's NDJSON chat protocol: one JSON
// object per line, final line flagged done with token counters.
func newOllamaStreamer(r resolved) StreamFunc {
	return func(ctx context.Context, system string, messages []llm.Message, onDelta func(string)) (*llm.ChatResponse, error) {
		reqBody := ollamaChatRequest{
			Model:    r.model,
			Messages: ollamaMessages(system, messages),
			Stream:   true,
		}

		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("%w: marshaling request: %v", ErrUnavailable, err)
		}

		ctx, cancel := context.WithTimeout(ctx, streamTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/chat", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: creating request: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: ollama request: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("%w: ollama API error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
		}

		var (
			full  strings.Builder
			model = r.model
			final ollamaChatResponse
		)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var chunk ollamaChatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Model != "" {
				model = chunk.Model
			}
			if chunk.Message.Content != "" {
				full.WriteString(chunk.Message.Content)
				if onDelta != nil {
					onDelta(chunk.Message.Content)
				}
			}
			if chunk.Done {
				final = chunk
				break
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: reading stream: %v", ErrUnavailable, err)
		}

		if full.Len() == 0 {
			return nil, fmt.Errorf("%w: ollama returned no content", ErrUnavailable)
		}

		out := &llm.ChatResponse{
			Model:      model,
			CreatedAt:  time.Now(),
			Message:    llm.NewTextMessage("assistant", full.String()),
			Done:       true,
			StopReason: final.DoneReason,
		}
		if final.PromptEvalCount > 0 || final.EvalCount > 0 {
			out.Usage = &llm.Usage{
				PromptTokens:     final.PromptEvalCount,
				CompletionTokens: final.EvalCount,
				TotalTokens:      final.PromptEvalCount + final.EvalCount,
				TotalDurationNs:  final.TotalDuration,
				PromptDurationNs: final.PromptEvalDuration,
			}
		}
		return out, nil
	}
}

// ollamaMessages converts transcript messages to the wire format, with the
// system prompt leading as a system-role message.
func ollamaMessages(system string, messages []llm.Message) []ollamaChatMessage {
	out := make([]ollamaChatMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, ollamaChatMessage{Role: "system", Content: system})
	}
	for _, m := range messages {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		text := m.GetText()
		if text == "" {
			continue
		}
		out = append(out, ollamaChatMessage{Role: m.Role, Content: text})
	}
	return out
}
