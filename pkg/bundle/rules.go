package bundle

import (
	"regexp"
	"strings"
)

// DefaultEntity is used when a captured fact names no subject.
const DefaultEntity = "general"

// Rule is one natural-language capture trigger: a pattern plus an extractor
// that turns its submatches into an (entity, text) fact.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Extract func(match []string) (entity, text string)
}

// CaptureRules is the ordered trigger table. Rules are evaluated top to
// bottom; the first match wins. Order matters: the explicit "remember"
// phrasing outranks the looser possessive form.
var CaptureRules = []Rule{
	{
		Name:    "remember-that",
		Pattern: regexp.MustCompile(`(?i)\bremember that\s+(.+)`),
		Extract: func(match []string) (string, string) {
			fact := strings.TrimSpace(match[1])
			return entityFromFact(fact), fact
		},
	},
	{
		Name:    "note-that",
		Pattern: regexp.MustCompile(`(?i)\bnote that\s+(.+)`),
		Extract: func(match []string) (string, string) {
			fact := strings.TrimSpace(match[1])
			return entityFromFact(fact), fact
		},
	},
	{
		Name:    "my-x-is-y",
		Pattern: regexp.MustCompile(`(?i)\bmy\s+([a-z][a-z' ]{0,40}?)\s+is\s+(.+)`),
		Extract: func(match []string) (string, string) {
			attr := strings.ToLower(strings.TrimSpace(match[1]))
			value := strings.TrimSpace(match[2])
			return attr, attr + " is " + value
		},
	},
}

// MatchCapture runs a user message through the capture rule table and
// reports the fact to store, if any rule fires.
func MatchCapture(message string) (entity, text string, ok bool) {
	for _, r := range CaptureRules {
		match := r.Pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		entity, text = r.Extract(match)
		if text == "" {
			continue
		}
		return entity, text, true
	}
	return "", "", false
}

// entityFromFact pulls the word following "about" — spoken captures usually
// name their subject that way ("remember that we talked about kubernetes").
// Facts with no "about" file under DefaultEntity.
func entityFromFact(fact string) string {
	const marker = " about "

	idx := strings.Index(strings.ToLower(fact), marker)
	if idx < 0 {
		return DefaultEntity
	}

	rest := strings.Fields(fact[idx+len(marker):])
	if len(rest) == 0 {
		return DefaultEntity
	}

	entity := strings.ToLower(strings.Trim(rest[0], ".,!?;:'\""))
	if entity == "" {
		return DefaultEntity
	}
	return entity
}
