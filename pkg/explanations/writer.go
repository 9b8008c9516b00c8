package explanations

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Write persists an explanation as <dir>/<skill>/<topic>.md and returns the
// written path. A zero SavedAt is stamped with the current time.
func Write(ex *Explanation, dir string) (string, error) {
	if ex.SavedAt.IsZero() {
		ex.SavedAt = time.Now().UTC()
	}

	folder := filepath.Join(dir, slugify(ex.Skill))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create skill directory: %w", err)
	}

	path := filepath.Join(folder, slugify(ex.Topic)+".md")
	if err := os.WriteFile(path, []byte(Render(ex)), 0o600); err != nil {
		return "", fmt.Errorf("write explanation: %w", err)
	}

	return path, nil
}

// Read loads one explanation. Returns ErrNotFound when nothing is saved for
// the skill and topic.
func Read(dir, skill, topic string) (*Explanation, error) {
	path := filepath.Join(dir, slugify(skill), slugify(topic)+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read explanation: %w", err)
	}

	ex, err := parseExplanationMD(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse explanation %s: %w", path, err)
	}

	return ex, nil
}

// Exists reports whether an explanation is already saved for the skill and
// topic.
func Exists(dir, skill, topic string) bool {
	_, err := os.Stat(filepath.Join(dir, slugify(skill), slugify(topic)+".md"))
	return err == nil
}

// List scans the explanations directory and returns every parseable
// explanation, sorted by skill then topic.
func List(dir string) ([]*Explanation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read explanations directory: %w", err)
	}

	var explanations []*Explanation
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		explanations = append(explanations, readSkillDir(filepath.Join(dir, entry.Name()))...)
	}

	sort.Slice(explanations, func(i, j int) bool {
		if explanations[i].Skill != explanations[j].Skill {
			return explanations[i].Skill < explanations[j].Skill
		}
		return explanations[i].Topic < explanations[j].Topic
	})

	return explanations, nil
}

// ListSkill returns the saved explanations for one skill, sorted by topic.
func ListSkill(dir, skill string) ([]*Explanation, error) {
	folder := filepath.Join(dir, slugify(skill))
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		return nil, nil
	}

	explanations := readSkillDir(folder)
	sort.Slice(explanations, func(i, j int) bool {
		return explanations[i].Topic < explanations[j].Topic
	})

	return explanations, nil
}

// readSkillDir parses every .md file in one skill folder. Unreadable or
// malformed files are skipped, not errors.
func readSkillDir(folder string) []*Explanation {
	files, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}

	var explanations []*Explanation
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(folder, file.Name()))
		if err != nil {
			continue
		}

		ex, err := parseExplanationMD(string(data))
		if err != nil {
			continue
		}
		explanations = append(explanations, ex)
	}

	return explanations
}

// Sync copies a saved explanation into another directory, typically the
// watched notes directory. The copy is flattened to <skill>_<topic>.md.
func Sync(dir, skill, topic, targetDir string) (string, error) {
	path := filepath.Join(dir, slugify(skill), slugify(topic)+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read explanation: %w", err)
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create target directory: %w", err)
	}

	dstPath := filepath.Join(targetDir, slugify(skill)+"_"+slugify(topic)+".md")
	if err := os.WriteFile(dstPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write target explanation: %w", err)
	}

	return dstPath, nil
}
