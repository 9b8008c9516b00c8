// Package seed fills a fresh database with demo data so every command has
// something to show before the user has captured anything of their own.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/llm"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

const DemoSQLitePath = "engram.demo.sqlite"

// Counts reports what a seeding run wrote.
type Counts struct {
	Facts         int
	Goals         int
	Conversations int
	Skills        int
	Items         int
	Reviews       int
	Sessions      int
	Milestones    int
	Challenges    int
	Obstacles     int
	StreakDays    int
}

// Summary returns a human-readable summary of the seeded data.
func (c *Counts) Summary() string {
	return fmt.Sprintf(
		"Seeded %d facts, %d goals, %d conversations\n"+
			"%d skills, %d review items, %d challenges, %d practice days",
		c.Facts, c.Goals, c.Conversations,
		c.Skills, c.Items, c.Challenges, c.StreakDays,
	)
}

// SeedDemo populates the sqlite database at path with demo data. A database
// that already has facts or skills is refused unless overwrite is set, in
// which case the file is recreated.
func SeedDemo(ctx context.Context, path string, overwrite bool) (*Counts, error) {
	if err := prepareSQLitePath(path, overwrite); err != nil {
		return nil, err
	}

	driver, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = driver.Close() }()

	if !overwrite {
		hasData, err := hasExistingData(ctx, driver)
		if err != nil {
			return nil, err
		}
		if hasData {
			return nil, fmt.Errorf("database already has data: %s (use --overwrite)", path)
		}
	}

	now := time.Now()
	counts := &Counts{}

	if err := seedMemory(ctx, driver, now, counts); err != nil {
		return nil, err
	}
	if err := seedLearning(ctx, driver, now, counts); err != nil {
		return nil, err
	}
	if err := seedChallenges(ctx, driver, now, counts); err != nil {
		return nil, err
	}

	return counts, nil
}

func prepareSQLitePath(path string, overwrite bool) error {
	if isInMemorySQLite(path) {
		return nil
	}

	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("sqlite path is a directory: %s", path)
		}
		if overwrite {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove sqlite database: %w", err)
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat sqlite database: %w", err)
	}

	parent := filepath.Dir(path)
	if parent == "." || parent == "" {
		return nil
	}

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}

	return nil
}

func hasExistingData(ctx context.Context, driver *sqlite.SQLiteDriver) (bool, error) {
	facts, err := driver.CountFacts(ctx)
	if err != nil {
		return false, fmt.Errorf("check database: %w", err)
	}
	if facts > 0 {
		return true, nil
	}

	skills, err := driver.ListSkills(ctx)
	if err != nil {
		return false, fmt.Errorf("check database: %w", err)
	}

	return len(skills) > 0, nil
}

func isInMemorySQLite(path string) bool {
	trimmed := strings.TrimSpace(path)
	if trimmed == ":memory:" {
		return true
	}

	return strings.HasPrefix(trimmed, "file::memory:")
}

func seedMemory(ctx context.Context, driver *sqlite.SQLiteDriver, now time.Time, counts *Counts) error {
	facts := []struct{ entity, text string }{
		{"alice", "prefers pairing sessions before noon"},
		{"alice", "birthday is March 14"},
		{"work", "standup moved to 9:30 on mondays"},
		{"health", "physio exercises tuesday and friday"},
		{"books", "reading Designing Data-Intensive Applications, on chapter 5"},
		{"rust", "the ? operator only works in functions returning Result or Option"},
	}
	for _, f := range facts {
		if _, err := driver.CreateFact(ctx, f.entity, f.text); err != nil {
			return err
		}
		counts.Facts++
	}

	goals := []struct {
		text string
		days int
	}{
		{"ship the key-value store writeup", 14},
		{"run a 10k without stopping", 60},
		{"read 12 books this year", 0},
	}
	for _, g := range goals {
		var target *time.Time
		if g.days > 0 {
			t := now.AddDate(0, 0, g.days)
			target = &t
		}
		if _, err := driver.CreateGoal(ctx, g.text, target); err != nil {
			return err
		}
		counts.Goals++
	}

	done, err := driver.CreateGoal(ctx, "set up the home office", nil)
	if err != nil {
		return err
	}
	if err := driver.CompleteGoal(ctx, done.ID); err != nil {
		return err
	}
	counts.Goals++

	conv := &storage.Conversation{
		ID:    "demo-rust-ownership",
		Topic: "rust ownership",
		Transcript: []llm.Message{
			llm.NewTextMessage("user", "why does rust move values instead of copying them?"),
			llm.NewTextMessage("assistant", "Moves keep exactly one owner per value, so the compiler knows when to free it without a garbage collector."),
			llm.NewTextMessage("user", "so a clone is the explicit opt-in to copying?"),
			llm.NewTextMessage("assistant", "Right. Clone makes the cost visible at the call site; Copy types opt in to implicit copies because they are cheap."),
		},
		CreatedAt: now.AddDate(0, 0, -2),
	}
	if err := driver.SaveConversation(ctx, conv); err != nil {
		return err
	}
	counts.Conversations++

	return nil
}

func seedLearning(ctx context.Context, driver *sqlite.SQLiteDriver, now time.Time, counts *Counts) error {
	rust, err := driver.CreateSkill(ctx, &storage.Skill{
		Name:           "rust",
		Category:       "programming",
		CurrentLevel:   "beginner",
		RoadmapContext: "working through the official book, currently on ownership and borrowing",
	})
	if err != nil {
		return err
	}
	counts.Skills++

	sql, err := driver.CreateSkill(ctx, &storage.Skill{
		Name:         "sql",
		Category:     "data",
		CurrentLevel: "intermediate",
	})
	if err != nil {
		return err
	}
	counts.Skills++

	// One overdue item, one fresh (due immediately), one recently reviewed,
	// one just answered wrong. Review history is written through RecordReview
	// so the counters and history rows stay consistent.
	overdue, err := driver.CreateItem(ctx, &storage.LearningItem{
		SkillID: rust.ID,
		Type:    storage.ItemTypeQA,
		Prompt:  "What happens to a value after it is moved?",
		Answer:  "The old binding is invalid; the compiler rejects any later use of it.",
		Tags:    []string{"ownership"},
	})
	if err != nil {
		return err
	}
	counts.Items++
	if err := review(ctx, driver, overdue.ID, now.AddDate(0, 0, -22), true, 2, counts); err != nil {
		return err
	}
	if err := review(ctx, driver, overdue.ID, now.AddDate(0, 0, -8), true, 3, counts); err != nil {
		return err
	}

	if _, err := driver.CreateItem(ctx, &storage.LearningItem{
		SkillID: rust.ID,
		Type:    storage.ItemTypeConcept,
		Prompt:  "Why can a struct not hold a reference without a lifetime?",
		Answer:  "The compiler must prove the reference outlives the struct; the lifetime names that bound.",
		Tags:    []string{"lifetimes"},
	}); err != nil {
		return err
	}
	counts.Items++

	mastered, err := driver.CreateItem(ctx, &storage.LearningItem{
		SkillID: rust.ID,
		Type:    storage.ItemTypeQA,
		Prompt:  "When does the borrow checker allow two references to the same value?",
		Answer:  "Any number of shared references, or exactly one mutable reference, never both.",
		Tags:    []string{"ownership", "borrowing"},
	})
	if err != nil {
		return err
	}
	counts.Items++
	if err := review(ctx, driver, mastered.ID, now.AddDate(0, 0, -2), true, 5, counts); err != nil {
		return err
	}

	missed, err := driver.CreateItem(ctx, &storage.LearningItem{
		SkillID: rust.ID,
		Type:    storage.ItemTypeQA,
		Prompt:  "What does Box<dyn Trait> add over a generic parameter?",
		Answer:  "Dynamic dispatch through a vtable, at the cost of a heap allocation.",
		Tags:    []string{"traits"},
	})
	if err != nil {
		return err
	}
	counts.Items++
	if err := review(ctx, driver, missed.ID, now.Add(-time.Hour), false, 1, counts); err != nil {
		return err
	}

	scheduled, err := driver.CreateItem(ctx, &storage.LearningItem{
		SkillID: sql.ID,
		Type:    storage.ItemTypeQA,
		Prompt:  "What does a window function see that an aggregate does not?",
		Answer:  "Every input row survives; the function sees a frame of peers per row instead of collapsing the group.",
	})
	if err != nil {
		return err
	}
	counts.Items++
	if err := review(ctx, driver, scheduled.ID, now.AddDate(0, 0, -10), true, 4, counts); err != nil {
		return err
	}

	if _, err := driver.CreateItem(ctx, &storage.LearningItem{
		SkillID: sql.ID,
		Type:    storage.ItemTypeConcept,
		Prompt:  "How do you read a nested loop join in an EXPLAIN plan?",
		Answer:  "Outer rows drive repeated scans of the inner side; fine when the inner side is indexed and small.",
	}); err != nil {
		return err
	}
	counts.Items++

	sessions := []struct {
		skillID int64
		topic   string
		minutes int
		daysAgo int
	}{
		{rust.ID, "ownership chapter exercises", 45, 2},
		{rust.ID, "key-value store spike", 30, 1},
		{sql.ID, "window function drills", 60, 3},
	}
	for _, s := range sessions {
		if _, err := driver.LogSession(ctx, &storage.Session{
			SkillID:    s.skillID,
			Topic:      s.topic,
			Minutes:    s.minutes,
			OccurredAt: now.AddDate(0, 0, -s.daysAgo),
		}); err != nil {
			return err
		}
		counts.Sessions++
	}

	if _, err := driver.AddMilestone(ctx, &storage.Milestone{
		SkillID:     rust.ID,
		Title:       "Finished the ownership chapters",
		Description: "Chapters 4 through 6, with all exercises",
		AchievedAt:  now.AddDate(0, 0, -5),
	}); err != nil {
		return err
	}
	counts.Milestones++

	return nil
}

func seedChallenges(ctx context.Context, driver *sqlite.SQLiteDriver, now time.Time, counts *Counts) error {
	rust, err := driver.GetSkillByName(ctx, "rust")
	if err != nil {
		return err
	}
	sql, err := driver.GetSkillByName(ctx, "sql")
	if err != nil {
		return err
	}

	completed := timeAt(now.AddDate(0, 0, -12))
	started := timeAt(now.AddDate(0, 0, -20))
	if _, err := driver.CreateChallenge(ctx, &storage.Challenge{
		SkillID:         rust.ID,
		Title:           "Build a CLI flashcard deck",
		Description:     "Persistent decks, shuffle mode, a simple terminal UI",
		Difficulty:      storage.DifficultyBeginner,
		EstimatedHours:  6,
		Status:          storage.ChallengeStatusCompleted,
		ProgressPct:     100,
		MinutesSpent:    480,
		StartedAt:       started,
		CompletedAt:     completed,
		CompletionNotes: "Shipped with persistent decks and shuffle mode",
		CompletionLink:  "github.com/demo/flashcards",
	}); err != nil {
		return err
	}
	counts.Challenges++

	inProgress, err := driver.CreateChallenge(ctx, &storage.Challenge{
		SkillID:        rust.ID,
		Title:          "Write a tiny key-value store",
		Description:    "Append-only log, in-memory index, basic compaction",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 12,
		Status:         storage.ChallengeStatusInProgress,
		ProgressPct:    40,
		MinutesSpent:   150,
		StartedAt:      timeAt(now.AddDate(0, 0, -3)),
	})
	if err != nil {
		return err
	}
	counts.Challenges++

	solvedAt := timeAt(now.AddDate(0, 0, -2).Add(50 * time.Minute))
	solution := "Split the buffer into an owned write half and a borrowed read view"
	insight := "Fighting the borrow checker usually means the ownership story is wrong"
	minutes := 50
	if _, err := driver.CreateObstacle(ctx, &storage.Obstacle{
		ChallengeID:    inProgress.ID,
		Problem:        "Borrow checker rejected reusing the WAL buffer across writes",
		Solution:       &solution,
		Insight:        &insight,
		MinutesToSolve: &minutes,
		LoggedAt:       now.AddDate(0, 0, -2),
		SolvedAt:       solvedAt,
	}); err != nil {
		return err
	}
	counts.Obstacles++

	if _, err := driver.CreateObstacle(ctx, &storage.Obstacle{
		ChallengeID: inProgress.ID,
		Problem:     "Compaction drops keys written during the merge window",
		LoggedAt:    now.AddDate(0, 0, -1),
	}); err != nil {
		return err
	}
	counts.Obstacles++

	if _, err := driver.CreateChallenge(ctx, &storage.Challenge{
		SkillID:        sql.ID,
		Title:          "Model a double-entry ledger",
		Description:    "Accounts, transactions, and a trial balance query",
		Difficulty:     storage.DifficultyIntermediate,
		EstimatedHours: 6,
	}); err != nil {
		return err
	}
	counts.Challenges++

	for _, daysAgo := range []int{0, 1, 2, 7, 8} {
		day := now.AddDate(0, 0, -daysAgo).Format("2006-01-02")
		if err := driver.MarkStreak(ctx, day); err != nil {
			return err
		}
		counts.StreakDays++
	}

	return nil
}

// review applies one review through the real transaction so counters,
// next_review_at, and the history row stay consistent.
func review(ctx context.Context, driver *sqlite.SQLiteDriver, itemID int64, reviewedAt time.Time, wasCorrect bool, confidence int, counts *Counts) error {
	next := reviewedAt.Add(learning.NextInterval(wasCorrect, confidence))
	if _, err := driver.RecordReview(ctx, itemID, reviewedAt, wasCorrect, confidence, next); err != nil {
		return err
	}
	counts.Reviews++
	return nil
}

func timeAt(t time.Time) *time.Time {
	return &t
}
