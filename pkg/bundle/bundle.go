// Package bundle assembles the context handed to the completion layer.
//
// A bundle is the only structured input the assistant's completion calls
// receive: deduplicated facts, active goals, a couple of past-conversation
// excerpts, and the live transcript, each capped by a fixed budget.
// Truncation always drops the oldest material first.
package bundle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/quietmindco/engram/pkg/llm"
	"github.com/quietmindco/engram/pkg/storage"
)

// Budget caps each section of an assembled context bundle.
type Budget struct {
	// Facts is the maximum number of deduplicated facts.
	Facts int

	// Goals is the maximum number of active goals, most recent first.
	Goals int

	// Excerpts is the maximum number of past-conversation excerpts.
	Excerpts int

	// ExcerptChars caps each excerpt's length in bytes.
	ExcerptChars int

	// TranscriptMessages caps the live transcript, keeping the newest.
	TranscriptMessages int
}

// DefaultBudget is the standard bundle shape: enough context to ground a
// reply without flooding the model.
func DefaultBudget() Budget {
	return Budget{
		Facts:              15,
		Goals:              5,
		Excerpts:           2,
		ExcerptChars:       400,
		TranscriptMessages: 40,
	}
}

// Excerpt is a trimmed slice of a past conversation.
type Excerpt struct {
	ConversationID string `json:"conversation_id"`
	Topic          string `json:"topic"`
	Text           string `json:"text"`
}

// Bundle is the assembled context. Facts, goals, and excerpts render into
// the system prompt via Render; the transcript is passed to the model as
// messages by the caller.
type Bundle struct {
	Facts      []*storage.Fact `json:"facts"`
	Goals      []*storage.Goal `json:"goals"`
	Excerpts   []Excerpt       `json:"excerpts"`
	Transcript []llm.Message   `json:"transcript"`
}

// Assembler builds bundles under a fixed budget.
type Assembler struct {
	budget Budget
}

// NewAssembler creates an assembler. Zero or negative budget fields fall
// back to the defaults.
func NewAssembler(budget Budget) *Assembler {
	def := DefaultBudget()
	if budget.Facts <= 0 {
		budget.Facts = def.Facts
	}
	if budget.Goals <= 0 {
		budget.Goals = def.Goals
	}
	if budget.Excerpts <= 0 {
		budget.Excerpts = def.Excerpts
	}
	if budget.ExcerptChars <= 0 {
		budget.ExcerptChars = def.ExcerptChars
	}
	if budget.TranscriptMessages <= 0 {
		budget.TranscriptMessages = def.TranscriptMessages
	}

	return &Assembler{budget: budget}
}

// Assemble builds a bundle from its raw inputs, deduplicating facts and
// applying every budget. Facts, goals, and conversations arrive newest
// first, the order the stores return them; the transcript arrives oldest
// first and is truncated from the oldest end.
func (a *Assembler) Assemble(facts []*storage.Fact, goals []*storage.Goal, past []*storage.Conversation, transcript []llm.Message) *Bundle {
	facts = Deduplicate(facts)
	if len(facts) > a.budget.Facts {
		facts = facts[:a.budget.Facts]
	}

	if len(goals) > a.budget.Goals {
		goals = goals[:a.budget.Goals]
	}

	var excerpts []Excerpt
	for _, conv := range past {
		if len(excerpts) == a.budget.Excerpts {
			break
		}
		text := flattenTranscript(conv.Transcript)
		if text == "" {
			continue
		}
		excerpts = append(excerpts, Excerpt{
			ConversationID: conv.ID,
			Topic:          conv.Topic,
			Text:           truncateTail(text, a.budget.ExcerptChars),
		})
	}

	if len(transcript) > a.budget.TranscriptMessages {
		transcript = transcript[len(transcript)-a.budget.TranscriptMessages:]
	}

	return &Bundle{
		Facts:      facts,
		Goals:      goals,
		Excerpts:   excerpts,
		Transcript: transcript,
	}
}

// Render formats the bundle's facts, goals, and excerpts as prompt context.
// Empty sections are omitted; an empty bundle renders to "".
func (b *Bundle) Render() string {
	var sb strings.Builder

	if len(b.Facts) > 0 {
		sb.WriteString("Relevant facts:\n")
		for _, f := range b.Facts {
			fmt.Fprintf(&sb, "- %s: %s\n", f.Entity, f.Text)
		}
	}

	if len(b.Goals) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Active goals:\n")
		for _, g := range b.Goals {
			sb.WriteString("- " + g.Text)
			if g.TargetDate != nil {
				fmt.Fprintf(&sb, " (target: %s)", g.TargetDate.Format("2006-01-02"))
			}
			sb.WriteString("\n")
		}
	}

	if len(b.Excerpts) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("From past conversations:\n")
		for _, e := range b.Excerpts {
			fmt.Fprintf(&sb, "[%s] %s\n", e.Topic, e.Text)
		}
	}

	return sb.String()
}

// flattenTranscript renders messages as "role: text" lines.
func flattenTranscript(messages []llm.Message) string {
	var lines []string
	for _, m := range messages {
		text := m.GetText()
		if text == "" {
			continue
		}
		lines = append(lines, m.Role+": "+text)
	}
	return strings.Join(lines, "\n")
}

const ellipsis = "..."

// truncateTail caps s at max bytes, dropping the oldest end. The ellipsis
// marking the cut counts against the cap, and the cut lands on a rune
// boundary so multi-byte characters never split.
func truncateTail(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	cut := len(s) - max + len(ellipsis)
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	if cut >= len(s) {
		return ellipsis
	}
	return ellipsis + s[cut:]
}
