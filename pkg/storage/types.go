package storage

import (
	"time"

	"github.com/quietmindco/engram/pkg/llm"
)

// Fact is an atomic piece of remembered information tied to a subject entity.
type Fact struct {
	ID        int64     `json:"id"`
	Entity    string    `json:"entity"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a saved chat transcript labeled with a derived topic.
type Conversation struct {
	ID         string        `json:"id"`
	Topic      string        `json:"topic"`
	Transcript []llm.Message `json:"transcript"`
	CreatedAt  time.Time     `json:"created_at"`
}

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusActive GoalStatus = "active"
	GoalStatusDone   GoalStatus = "done"
)

// Goal is something the user is working toward.
type Goal struct {
	ID         int64      `json:"id"`
	Text       string     `json:"text"`
	TargetDate *time.Time `json:"target_date,omitempty"`
	Status     GoalStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Skill is a tracked learning area. CurrentLevel is the user's self-assessed
// starting level; the evidence-based level is always derived from completed
// challenges, never read from here.
type Skill struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	CurrentLevel   string    `json:"current_level"`
	RoadmapContext string    `json:"roadmap_context,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ItemType classifies a learning item.
type ItemType string

const (
	ItemTypeConcept ItemType = "concept"
	ItemTypeFact    ItemType = "fact"
	ItemTypeQA      ItemType = "qa"
	ItemTypeExample ItemType = "example"
)

// LearningItem is a single reviewable prompt/answer pair belonging to a skill.
// Review bookkeeping fields are mutated only through RecordReview.
type LearningItem struct {
	ID             int64      `json:"id"`
	SkillID        int64      `json:"skill_id"`
	Type           ItemType   `json:"type"`
	Prompt         string     `json:"prompt"`
	Answer         string     `json:"answer"`
	Tags           []string   `json:"tags,omitempty"`
	ReviewCount    int        `json:"review_count"`
	CorrectCount   int        `json:"correct_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ReviewRecord is one append-only review history row. Immutable once written.
type ReviewRecord struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
	WasCorrect bool      `json:"was_correct"`
	Confidence int       `json:"confidence"`
}

// Session is a logged block of study time against a skill.
type Session struct {
	ID         int64     `json:"id"`
	SkillID    int64     `json:"skill_id"`
	Topic      string    `json:"topic"`
	Minutes    int       `json:"minutes"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Milestone marks a named achievement within a skill.
type Milestone struct {
	ID          int64     `json:"id"`
	SkillID     int64     `json:"skill_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AchievedAt  time.Time `json:"achieved_at"`
}

// Difficulty grades a challenge.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeStatusAvailable  ChallengeStatus = "available"
	ChallengeStatusInProgress ChallengeStatus = "in_progress"
	ChallengeStatusCompleted  ChallengeStatus = "completed"
)

// Challenge is a project-based learning task with lifecycle state and logged
// obstacles.
type Challenge struct {
	ID              int64           `json:"id"`
	SkillID         int64           `json:"skill_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Difficulty      Difficulty      `json:"difficulty"`
	EstimatedHours  float64         `json:"estimated_hours"`
	Status          ChallengeStatus `json:"status"`
	ProgressPct     int             `json:"progress_pct"`
	MinutesSpent    int             `json:"minutes_spent"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CompletionNotes string          `json:"completion_notes,omitempty"`
	CompletionLink  string          `json:"completion_link,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Obstacle is a blocking problem hit during a challenge. Open while Solution
// is nil.
type Obstacle struct {
	ID             int64      `json:"id"`
	ChallengeID    int64      `json:"challenge_id"`
	Problem        string     `json:"problem"`
	Solution       *string    `json:"solution,omitempty"`
	Insight        *string    `json:"insight,omitempty"`
	MinutesToSolve *int       `json:"minutes_to_solve,omitempty"`
	LoggedAt       time.Time  `json:"logged_at"`
	SolvedAt       *time.Time `json:"solved_at,omitempty"`
}

// Open reports whether the obstacle is still unsolved.
func (o *Obstacle) Open() bool {
	return o.Solution == nil
}

// DailyStreak marks one calendar day with recorded activity. Date is a
// YYYY-MM-DD key.
type DailyStreak struct {
	Date   string `json:"date"`
	Active bool   `json:"active"`
}
