package bundle

import (
	"strings"

	"github.com/quietmindco/engram/pkg/llm"
)

// DefaultTopic labels conversations whose opening message yields nothing.
const DefaultTopic = "general"

// topicFillers are leading words that carry no topic signal: interrogatives,
// auxiliaries, and conversational padding.
var topicFillers = map[string]bool{
	"what": true, "what's": true, "who": true, "who's": true,
	"how": true, "how's": true, "why": true, "when": true,
	"where": true, "which": true,
	"is": true, "are": true, "was": true, "were": true,
	"do": true, "does": true, "did": true,
	"can": true, "could": true, "should": true, "would": true, "will": true,
	"you": true, "your": true, "i": true, "my": true,
	"the": true, "a": true, "an": true,
	"please": true, "help": true, "me": true, "tell": true, "about": true,
}

// ExtractTopic labels a conversation from its first user message: leading
// filler words dropped, capped at five words. Best effort — anything that
// fails to produce a label comes back as DefaultTopic, never an error.
func ExtractTopic(transcript []llm.Message) string {
	var first string
	for i := range transcript {
		if transcript[i].Role != "user" {
			continue
		}
		if text := transcript[i].GetText(); text != "" {
			first = text
			break
		}
	}
	if first == "" {
		return DefaultTopic
	}

	// The opening of the message carries the topic; the rest is elaboration.
	runes := []rune(first)
	if len(runes) > 50 {
		first = string(runes[:50])
	}

	words := strings.Fields(strings.ToLower(first))
	for len(words) > 0 && topicFillers[strings.Trim(words[0], ",.?!:;'\"")] {
		words = words[1:]
	}
	if len(words) > 5 {
		words = words[:5]
	}

	topic := strings.Trim(strings.Join(words, " "), " ,.?!:")
	if topic == "" {
		return DefaultTopic
	}
	return topic
}
