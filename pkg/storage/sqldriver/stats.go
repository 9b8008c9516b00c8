package sqldriver

import (
	"context"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

// dateExpr renders an expression truncating a timestamp column to its UTC
// YYYY-MM-DD day string. The dialects spell this differently and neither
// form parses on the other; the postgres form pins the zone because TO_CHAR
// of a timestamptz otherwise renders in the session timezone.
func (d *SQLDriver) dateExpr(col string) string {
	if d.dialect == DialectPostgres {
		return `TO_CHAR(` + col + ` AT TIME ZONE 'UTC', 'YYYY-MM-DD')`
	}

	return `STRFTIME('%Y-%m-%d', ` + col + `)`
}

func (d *SQLDriver) ReviewsPerDay(ctx context.Context, since time.Time) ([]storage.DayCount, error) {
	query := `SELECT ` + d.dateExpr("reviewed_at") + ` AS day, COUNT(*)
		FROM review_history
		WHERE reviewed_at >= ?
		GROUP BY day
		ORDER BY day ASC`

	rows, err := d.query(ctx, query, since.UTC())
	if err != nil {
		return nil, wrapPersist("tallying reviews per day", err)
	}
	defer rows.Close()

	var days []storage.DayCount
	for rows.Next() {
		var day storage.DayCount
		if err := rows.Scan(&day.Day, &day.Count); err != nil {
			return nil, wrapPersist("scanning review tally", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating review tallies", err)
	}

	return days, nil
}

func (d *SQLDriver) AccuracyBySkill(ctx context.Context, since time.Time) ([]storage.SkillAccuracy, error) {
	// was_correct is INTEGER on sqlite and BOOLEAN on postgres; CASE WHEN
	// accepts both.
	query := `SELECT s.id, s.name, COUNT(*), SUM(CASE WHEN r.was_correct THEN 1 ELSE 0 END)
		FROM review_history r
		JOIN learning_items i ON i.id = r.item_id
		JOIN learning_skills s ON s.id = i.skill_id
		WHERE r.reviewed_at >= ?
		GROUP BY s.id, s.name
		ORDER BY COUNT(*) DESC, s.name ASC`

	rows, err := d.query(ctx, query, since.UTC())
	if err != nil {
		return nil, wrapPersist("tallying accuracy by skill", err)
	}
	defer rows.Close()

	var skills []storage.SkillAccuracy
	for rows.Next() {
		var skill storage.SkillAccuracy
		if err := rows.Scan(&skill.SkillID, &skill.SkillName, &skill.Reviews, &skill.Correct); err != nil {
			return nil, wrapPersist("scanning accuracy tally", err)
		}
		skills = append(skills, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating accuracy tallies", err)
	}

	return skills, nil
}

func (d *SQLDriver) SessionTotals(ctx context.Context, since time.Time) ([]storage.SkillMinutes, error) {
	query := `SELECT s.id, s.name, COUNT(*), SUM(ls.minutes)
		FROM learning_sessions ls
		JOIN learning_skills s ON s.id = ls.skill_id
		WHERE ls.occurred_at >= ?
		GROUP BY s.id, s.name
		ORDER BY SUM(ls.minutes) DESC, s.name ASC`

	rows, err := d.query(ctx, query, since.UTC())
	if err != nil {
		return nil, wrapPersist("tallying session totals", err)
	}
	defer rows.Close()

	var skills []storage.SkillMinutes
	for rows.Next() {
		var skill storage.SkillMinutes
		if err := rows.Scan(&skill.SkillID, &skill.SkillName, &skill.Sessions, &skill.Minutes); err != nil {
			return nil, wrapPersist("scanning session tally", err)
		}
		skills = append(skills, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating session tallies", err)
	}

	return skills, nil
}

func (d *SQLDriver) FactCountsByEntity(ctx context.Context, limit int) ([]storage.EntityCount, error) {
	query := `SELECT entity, COUNT(*)
		FROM facts
		GROUP BY entity
		ORDER BY COUNT(*) DESC, entity ASC`

	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, wrapPersist("tallying facts by entity", err)
	}
	defer rows.Close()

	var entities []storage.EntityCount
	for rows.Next() {
		var entity storage.EntityCount
		if err := rows.Scan(&entity.Entity, &entity.Count); err != nil {
			return nil, wrapPersist("scanning entity tally", err)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating entity tallies", err)
	}

	return entities, nil
}
