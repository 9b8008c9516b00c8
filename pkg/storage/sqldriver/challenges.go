package sqldriver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

const challengeColumns = `id, skill_id, title, description, difficulty, estimated_hours, status, progress_pct, minutes_spent, started_at, completed_at, completion_notes, completion_link, created_at`

func (d *SQLDriver) CreateChallenge(ctx context.Context, challenge *storage.Challenge) (*storage.Challenge, error) {
	ok, err := d.hasRow(ctx, `SELECT 1 FROM learning_skills WHERE id = ?`, challenge.SkillID)
	if err != nil {
		return nil, wrapPersist("checking skill", err)
	}
	if !ok {
		return nil, storage.ErrNotFound{Kind: "skill", ID: formatID(challenge.SkillID)}
	}

	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now().UTC()
	}
	if challenge.Status == "" {
		challenge.Status = storage.ChallengeStatusAvailable
	}

	query := `INSERT INTO learning_challenges
		(skill_id, title, description, difficulty, estimated_hours, status, progress_pct, minutes_spent, started_at, completed_at, completion_notes, completion_link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := d.insertID(ctx, query,
		challenge.SkillID, challenge.Title, challenge.Description, challenge.Difficulty,
		challenge.EstimatedHours, challenge.Status, challenge.ProgressPct, challenge.MinutesSpent,
		nullableTime(challenge.StartedAt), nullableTime(challenge.CompletedAt),
		challenge.CompletionNotes, challenge.CompletionLink, challenge.CreatedAt.UTC())
	if err != nil {
		return nil, wrapPersist("inserting challenge", err)
	}

	challenge.ID = id
	return challenge, nil
}

func (d *SQLDriver) GetChallenge(ctx context.Context, id int64) (*storage.Challenge, error) {
	rows, err := d.query(ctx, `SELECT `+challengeColumns+` FROM learning_challenges WHERE id = ?`, id)
	if err != nil {
		return nil, wrapPersist("querying challenge", err)
	}
	defer rows.Close()

	challenges, err := scanChallenges(rows)
	if err != nil {
		return nil, err
	}
	if len(challenges) == 0 {
		return nil, storage.ErrNotFound{Kind: "challenge", ID: formatID(id)}
	}

	return challenges[0], nil
}

func (d *SQLDriver) ChallengesBySkill(ctx context.Context, skillID int64) ([]*storage.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM learning_challenges WHERE skill_id = ? ORDER BY created_at, id`

	rows, err := d.query(ctx, query, skillID)
	if err != nil {
		return nil, wrapPersist("querying challenges", err)
	}
	defer rows.Close()

	return scanChallenges(rows)
}

func (d *SQLDriver) ChallengesByStatus(ctx context.Context, skillID int64, status storage.ChallengeStatus) ([]*storage.Challenge, error) {
	var query string
	var args []any

	if skillID == 0 {
		query = `SELECT ` + challengeColumns + ` FROM learning_challenges WHERE status = ? ORDER BY created_at, id`
		args = []any{status}
	} else {
		query = `SELECT ` + challengeColumns + ` FROM learning_challenges WHERE skill_id = ? AND status = ? ORDER BY created_at, id`
		args = []any{skillID, status}
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, wrapPersist("querying challenges", err)
	}
	defer rows.Close()

	return scanChallenges(rows)
}

func (d *SQLDriver) UpdateChallenge(ctx context.Context, challenge *storage.Challenge) (*storage.Challenge, error) {
	// All mutable fields land in one statement so a lifecycle transition is
	// atomic.
	query := `UPDATE learning_challenges
		SET title = ?, description = ?, difficulty = ?, estimated_hours = ?,
			status = ?, progress_pct = ?, minutes_spent = ?,
			started_at = ?, completed_at = ?, completion_notes = ?, completion_link = ?
		WHERE id = ?`

	res, err := d.exec(ctx, query,
		challenge.Title, challenge.Description, challenge.Difficulty, challenge.EstimatedHours,
		challenge.Status, challenge.ProgressPct, challenge.MinutesSpent,
		nullableTime(challenge.StartedAt), nullableTime(challenge.CompletedAt),
		challenge.CompletionNotes, challenge.CompletionLink, challenge.ID)
	if err != nil {
		return nil, wrapPersist("updating challenge", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, wrapPersist("updating challenge", err)
	}
	if affected == 0 {
		return nil, storage.ErrNotFound{Kind: "challenge", ID: formatID(challenge.ID)}
	}

	return challenge, nil
}

func (d *SQLDriver) CountCompletedChallenges(ctx context.Context, skillID int64) (int, error) {
	query := `SELECT COUNT(*) FROM learning_challenges WHERE skill_id = ? AND status = ?`

	var count int
	if err := d.queryRow(ctx, query, skillID, storage.ChallengeStatusCompleted).Scan(&count); err != nil {
		return 0, wrapPersist("counting completed challenges", err)
	}

	return count, nil
}

const obstacleColumns = `id, challenge_id, problem, solution, insight, minutes_to_solve, logged_at, solved_at`

func (d *SQLDriver) CreateObstacle(ctx context.Context, obstacle *storage.Obstacle) (*storage.Obstacle, error) {
	ok, err := d.hasRow(ctx, `SELECT 1 FROM learning_challenges WHERE id = ?`, obstacle.ChallengeID)
	if err != nil {
		return nil, wrapPersist("checking challenge", err)
	}
	if !ok {
		return nil, storage.ErrNotFound{Kind: "challenge", ID: formatID(obstacle.ChallengeID)}
	}

	if obstacle.LoggedAt.IsZero() {
		obstacle.LoggedAt = time.Now().UTC()
	}

	query := `INSERT INTO challenge_obstacles
		(challenge_id, problem, solution, insight, minutes_to_solve, logged_at, solved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := d.insertID(ctx, query,
		obstacle.ChallengeID, obstacle.Problem, obstacle.Solution, obstacle.Insight,
		obstacle.MinutesToSolve, obstacle.LoggedAt.UTC(), nullableTime(obstacle.SolvedAt))
	if err != nil {
		return nil, wrapPersist("inserting obstacle", err)
	}

	obstacle.ID = id
	return obstacle, nil
}

func (d *SQLDriver) GetObstacle(ctx context.Context, id int64) (*storage.Obstacle, error) {
	rows, err := d.query(ctx, `SELECT `+obstacleColumns+` FROM challenge_obstacles WHERE id = ?`, id)
	if err != nil {
		return nil, wrapPersist("querying obstacle", err)
	}
	defer rows.Close()

	obstacles, err := scanObstacles(rows)
	if err != nil {
		return nil, err
	}
	if len(obstacles) == 0 {
		return nil, storage.ErrNotFound{Kind: "obstacle", ID: formatID(id)}
	}

	return obstacles[0], nil
}

func (d *SQLDriver) ObstaclesByChallenge(ctx context.Context, challengeID int64) ([]*storage.Obstacle, error) {
	query := `SELECT ` + obstacleColumns + ` FROM challenge_obstacles WHERE challenge_id = ? ORDER BY logged_at, id`

	rows, err := d.query(ctx, query, challengeID)
	if err != nil {
		return nil, wrapPersist("querying obstacles", err)
	}
	defer rows.Close()

	return scanObstacles(rows)
}

func (d *SQLDriver) UpdateObstacle(ctx context.Context, obstacle *storage.Obstacle) (*storage.Obstacle, error) {
	query := `UPDATE challenge_obstacles
		SET problem = ?, solution = ?, insight = ?, minutes_to_solve = ?, solved_at = ?
		WHERE id = ?`

	res, err := d.exec(ctx, query,
		obstacle.Problem, obstacle.Solution, obstacle.Insight, obstacle.MinutesToSolve,
		nullableTime(obstacle.SolvedAt), obstacle.ID)
	if err != nil {
		return nil, wrapPersist("updating obstacle", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, wrapPersist("updating obstacle", err)
	}
	if affected == 0 {
		return nil, storage.ErrNotFound{Kind: "obstacle", ID: formatID(obstacle.ID)}
	}

	return obstacle, nil
}

func (d *SQLDriver) SearchObstacles(ctx context.Context, query string, skillID int64, limit int) ([]*storage.Obstacle, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	stmt := `SELECT o.id, o.challenge_id, o.problem, o.solution, o.insight, o.minutes_to_solve, o.logged_at, o.solved_at
		FROM challenge_obstacles o
		JOIN learning_challenges c ON c.id = o.challenge_id
		WHERE (LOWER(o.problem) LIKE ? OR LOWER(COALESCE(o.solution, '')) LIKE ? OR LOWER(COALESCE(o.insight, '')) LIKE ?)`

	args := []any{pattern, pattern, pattern}

	if skillID != 0 {
		stmt += ` AND c.skill_id = ?`
		args = append(args, skillID)
	}

	stmt += ` ORDER BY o.logged_at DESC, o.id DESC`

	if limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, stmt, args...)
	if err != nil {
		return nil, wrapPersist("searching obstacles", err)
	}
	defer rows.Close()

	return scanObstacles(rows)
}

func (d *SQLDriver) MarkStreak(ctx context.Context, day string) error {
	// DO NOTHING keeps the insert idempotent on both engines.
	query := `INSERT INTO daily_streaks (date, active) VALUES (?, ?) ON CONFLICT (date) DO NOTHING`

	if _, err := d.exec(ctx, query, day, true); err != nil {
		return wrapPersist("marking streak", err)
	}

	return nil
}

func (d *SQLDriver) StreakDays(ctx context.Context, limit int) ([]*storage.DailyStreak, error) {
	query := `SELECT date, active FROM daily_streaks ORDER BY date DESC`

	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, wrapPersist("querying streaks", err)
	}
	defer rows.Close()

	var days []*storage.DailyStreak
	for rows.Next() {
		var day storage.DailyStreak
		if err := rows.Scan(&day.Date, &day.Active); err != nil {
			return nil, wrapPersist("scanning streak", err)
		}
		days = append(days, &day)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating streaks", err)
	}

	return days, nil
}

// scanChallenges scans multiple rows into Challenge structs.
func scanChallenges(rows *sql.Rows) ([]*storage.Challenge, error) {
	var challenges []*storage.Challenge

	for rows.Next() {
		var ch storage.Challenge
		var startedAt, completedAt sql.NullTime

		err := rows.Scan(&ch.ID, &ch.SkillID, &ch.Title, &ch.Description, &ch.Difficulty,
			&ch.EstimatedHours, &ch.Status, &ch.ProgressPct, &ch.MinutesSpent,
			&startedAt, &completedAt, &ch.CompletionNotes, &ch.CompletionLink, &ch.CreatedAt)
		if err != nil {
			return nil, wrapPersist("scanning challenge", err)
		}

		ch.StartedAt = timePtr(startedAt)
		ch.CompletedAt = timePtr(completedAt)
		challenges = append(challenges, &ch)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating challenges", err)
	}

	return challenges, nil
}

// scanObstacles scans multiple rows into Obstacle structs.
func scanObstacles(rows *sql.Rows) ([]*storage.Obstacle, error) {
	var obstacles []*storage.Obstacle

	for rows.Next() {
		var ob storage.Obstacle
		var solution, insight sql.NullString
		var minutes sql.NullInt64
		var solvedAt sql.NullTime

		err := rows.Scan(&ob.ID, &ob.ChallengeID, &ob.Problem, &solution, &insight, &minutes, &ob.LoggedAt, &solvedAt)
		if err != nil {
			return nil, wrapPersist("scanning obstacle", err)
		}

		ob.Solution = stringPtr(solution)
		ob.Insight = stringPtr(insight)
		ob.MinutesToSolve = intPtr(minutes)
		ob.SolvedAt = timePtr(solvedAt)
		obstacles = append(obstacles, &ob)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating obstacles", err)
	}

	return obstacles, nil
}
