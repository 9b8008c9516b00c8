// Package explanations stores saved explanations as markdown files with
// frontmatter, grouped under one directory per skill.
package explanations

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DirName is the explanations directory inside the engram dotdir.
const DirName = "explanations"

// ErrNotFound is returned when no explanation exists for a skill and topic.
var ErrNotFound = errors.New("explanation not found")

// Explanation is one saved explanation of a topic within a skill.
type Explanation struct {
	Skill   string    `json:"skill"`
	Topic   string    `json:"topic"`
	Content string    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
}

// Render renders an Explanation as its on-disk markdown representation
// (frontmatter + body).
func Render(ex *Explanation) string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "skill: %s\n", ex.Skill)
	fmt.Fprintf(&b, "topic: %s\n", ex.Topic)
	if !ex.SavedAt.IsZero() {
		fmt.Fprintf(&b, "saved_at: %s\n", ex.SavedAt.Format(time.RFC3339))
	}
	b.WriteString("---\n\n")
	b.WriteString(ex.Content)

	// Ensure trailing newline
	if !strings.HasSuffix(ex.Content, "\n") {
		b.WriteString("\n")
	}

	return b.String()
}

func parseExplanationMD(content string) (*Explanation, error) {
	// Split frontmatter from body
	if !strings.HasPrefix(content, "---\n") {
		return nil, errors.New("missing frontmatter delimiter")
	}

	rest := content[4:] // skip opening "---\n"
	before, after, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return nil, errors.New("missing closing frontmatter delimiter")
	}

	ex := &Explanation{Content: strings.TrimSpace(after)}

	for line := range strings.SplitSeq(before, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "skill":
			ex.Skill = value
		case "topic":
			ex.Topic = value
		case "saved_at":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				ex.SavedAt = t
			}
		}
	}

	return ex, nil
}

var (
	slugSeparators = regexp.MustCompile(`[-\s]+`)
	slugDropped    = regexp.MustCompile(`[^a-z0-9_]`)
)

// slugify converts a skill name or topic into a filesystem-safe name:
// lowercased, separators collapsed to underscores, everything else dropped,
// capped at 100 characters. The real skill and topic strings live in the
// frontmatter, so the slug only has to be stable, not reversible.
func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugSeparators.ReplaceAllString(s, "_")
	s = slugDropped.ReplaceAllString(s, "")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
