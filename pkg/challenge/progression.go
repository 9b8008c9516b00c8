package challenge

// Level is an evidence-based competency estimate for a skill. It is derived
// from the number of completed challenges, not from self-reported study time.
type Level string

const (
	LevelJustStarting Level = "just_starting"
	LevelBeginner     Level = "beginner"
	LevelBeginnerPlus Level = "beginner+"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Progress is a skill's recomputed progression snapshot.
type Progress struct {
	SkillID   int64 `json:"skill_id"`
	Completed int   `json:"completed"`
	Level     Level `json:"level"`
	Percent   int   `json:"percent"`
}

// Progression maps a completed-challenge count to a level and mastery
// percentage. Pure so it can never drift from the challenge table; callers
// recompute it on every read instead of caching.
func Progression(completed int) (Level, int) {
	switch {
	case completed >= 10:
		return LevelAdvanced, 90
	case completed >= 5:
		return LevelIntermediate, 70
	case completed >= 2:
		return LevelBeginnerPlus, 50
	case completed == 1:
		return LevelBeginner, 30
	default:
		return LevelJustStarting, 10
	}
}
