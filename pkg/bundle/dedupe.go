package bundle

import (
	"strings"

	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/utils"
)

// Deduplicate drops facts whose normalized (entity, text) key already
// appeared, keeping the first occurrence and preserving relative order.
// Keys are lowercased and whitespace-collapsed, so restatements that differ
// only in case or spacing collapse too. Running it twice changes nothing.
func Deduplicate(facts []*storage.Fact) []*storage.Fact {
	type key struct {
		entity string
		text   string
	}

	seen := make(map[key]bool, len(facts))
	out := make([]*storage.Fact, 0, len(facts))

	for _, f := range facts {
		k := key{
			entity: strings.ToLower(utils.CollapseWhitespace(f.Entity)),
			text:   strings.ToLower(utils.CollapseWhitespace(f.Text)),
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}

	return out
}
