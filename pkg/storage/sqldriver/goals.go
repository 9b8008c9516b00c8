package sqldriver

import (
	"context"
	"database/sql"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

func (d *SQLDriver) CreateGoal(ctx context.Context, text string, targetDate *time.Time) (*storage.Goal, error) {
	createdAt := time.Now().UTC()

	query := `INSERT INTO goals (text, target_date, status, created_at) VALUES (?, ?, ?, ?)`

	id, err := d.insertID(ctx, query, text, nullableTime(targetDate), storage.GoalStatusActive, createdAt)
	if err != nil {
		return nil, wrapPersist("inserting goal", err)
	}

	return &storage.Goal{
		ID:         id,
		Text:       text,
		TargetDate: targetDate,
		Status:     storage.GoalStatusActive,
		CreatedAt:  createdAt,
	}, nil
}

func (d *SQLDriver) ActiveGoals(ctx context.Context, limit int) ([]*storage.Goal, error) {
	query := `SELECT id, text, target_date, status, created_at FROM goals
		WHERE status = ? ORDER BY created_at DESC, id DESC`

	args := []any{storage.GoalStatusActive}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, wrapPersist("querying active goals", err)
	}
	defer rows.Close()

	return scanGoals(rows)
}

func (d *SQLDriver) ListGoals(ctx context.Context) ([]*storage.Goal, error) {
	query := `SELECT id, text, target_date, status, created_at FROM goals ORDER BY created_at DESC, id DESC`

	rows, err := d.query(ctx, query)
	if err != nil {
		return nil, wrapPersist("querying goals", err)
	}
	defer rows.Close()

	return scanGoals(rows)
}

func (d *SQLDriver) CompleteGoal(ctx context.Context, id int64) error {
	res, err := d.exec(ctx, `UPDATE goals SET status = ? WHERE id = ?`, storage.GoalStatusDone, id)
	if err != nil {
		return wrapPersist("completing goal", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return wrapPersist("completing goal", err)
	}
	if affected == 0 {
		return storage.ErrNotFound{Kind: "goal", ID: formatID(id)}
	}

	return nil
}

// scanGoals scans multiple rows into Goal structs.
func scanGoals(rows *sql.Rows) ([]*storage.Goal, error) {
	var goals []*storage.Goal

	for rows.Next() {
		var goal storage.Goal
		var targetDate sql.NullTime

		if err := rows.Scan(&goal.ID, &goal.Text, &targetDate, &goal.Status, &goal.CreatedAt); err != nil {
			return nil, wrapPersist("scanning goal", err)
		}

		goal.TargetDate = timePtr(targetDate)
		goals = append(goals, &goal)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating goals", err)
	}

	return goals, nil
}
