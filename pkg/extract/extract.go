// Package extract mines conversation turns for durable facts and goals.
//
// Extraction prefers a completion backend: the turn is sent with a strict
// JSON contract and the response parsed into captured facts and goals. When
// no backend is configured or the call fails, Capture degrades to the
// trigger rules, which catch explicit phrasings like "remember that ...".
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quietmindco/engram/pkg/bundle"
	"github.com/quietmindco/engram/pkg/completion"
)

// Fact is one captured (entity, text) pair.
type Fact struct {
	Entity string `json:"entity"`
	Text   string `json:"text"`
}

// Extraction holds what one conversation turn yielded.
type Extraction struct {
	Facts []Fact   `json:"facts"`
	Goals []string `json:"goals"`
}

// Empty reports whether the turn yielded nothing worth storing.
func (x *Extraction) Empty() bool {
	return len(x.Facts) == 0 && len(x.Goals) == 0
}

// Caps keep a hallucinating model from flooding the store off one turn.
const (
	maxFactsPerTurn = 10
	maxGoalsPerTurn = 3
)

// Extractor extracts facts and goals from conversation turns.
type Extractor struct {
	call completion.CallFunc
}

// NewExtractor creates an Extractor over a completion backend. A nil call
// func is allowed; Capture then uses only the trigger rules.
func NewExtractor(call completion.CallFunc) *Extractor {
	return &Extractor{call: call}
}

// Extract runs completion-backed extraction over a single turn.
func (e *Extractor) Extract(ctx context.Context, userMsg, assistantMsg string) (*Extraction, error) {
	if e.call == nil {
		return nil, errors.New("no completion backend configured")
	}

	prompt := buildExtractionPrompt(userMsg, assistantMsg)
	response, err := e.call(ctx, extractionSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("completion call: %w", err)
	}

	extraction, err := parseExtraction(response)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return sanitize(extraction), nil
}

// Capture extracts facts and goals from one turn. Extraction failure is not
// allowed to fail a chat turn: on any error it falls back to the trigger
// rules and reports the degradation at warn level.
func (e *Extractor) Capture(ctx context.Context, userMsg, assistantMsg string) *Extraction {
	if e.call != nil {
		extraction, err := e.Extract(ctx, userMsg, assistantMsg)
		if err == nil {
			return extraction
		}
		slog.Warn("extract: falling back to trigger rules", "error", err)
	}
	return Heuristic(userMsg)
}

// Heuristic runs only the capture trigger rules. Assistant text is ignored;
// the rules key on the user's own phrasing.
func Heuristic(userMsg string) *Extraction {
	entity, text, ok := bundle.MatchCapture(userMsg)
	if !ok {
		return &Extraction{}
	}
	return &Extraction{Facts: []Fact{{Entity: entity, Text: text}}}
}

const extractionSystem = "You extract durable personal facts and goals from conversation turns. Only capture information worth remembering across sessions."

func buildExtractionPrompt(userMsg, assistantMsg string) string {
	turn := "[user] " + userMsg + "\n[assistant] " + assistantMsg + "\n"

	// Chunk oversized turns
	const maxChars = 12000
	if len(turn) > maxChars {
		turn = turn[:maxChars]
	}

	return "Extract durable facts and stated goals from this conversation turn.\nReturn ONLY valid JSON with these fields:\n\n{\n  \"facts\": [{\"entity\": \"lowercase subject: a person, project, tool, or topic\", \"text\": \"the fact as a short declarative sentence\"}],\n  \"goals\": [\"goals the user explicitly committed to, empty if none\"]\n}\n\nCapture only durable information such as preferences, decisions, biographical details, and commitments. Ignore small talk and anything implied by the question itself.\n\nTurn:\n" + turn
}

func parseExtraction(response string) (*Extraction, error) {
	// Extract JSON from the response (may be wrapped in markdown code blocks)
	jsonStr := response
	if idx := strings.Index(response, "{"); idx >= 0 {
		endIdx := strings.LastIndex(response, "}")
		if endIdx > idx {
			jsonStr = response[idx : endIdx+1]
		}
	}

	var extraction Extraction
	if err := json.Unmarshal([]byte(jsonStr), &extraction); err != nil {
		return nil, fmt.Errorf("unmarshal extraction JSON: %w", err)
	}

	return &extraction, nil
}

func sanitize(x *Extraction) *Extraction {
	out := &Extraction{}

	for _, fact := range x.Facts {
		text := strings.TrimSpace(fact.Text)
		if text == "" {
			continue
		}
		entity := strings.ToLower(strings.TrimSpace(fact.Entity))
		if entity == "" {
			entity = bundle.DefaultEntity
		}
		out.Facts = append(out.Facts, Fact{Entity: entity, Text: text})
		if len(out.Facts) == maxFactsPerTurn {
			break
		}
	}

	for _, goal := range x.Goals {
		goal = strings.TrimSpace(goal)
		if goal == "" {
			continue
		}
		out.Goals = append(out.Goals, goal)
		if len(out.Goals) == maxGoalsPerTurn {
			break
		}
	}

	return out
}
