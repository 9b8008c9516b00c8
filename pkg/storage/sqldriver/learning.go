package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

func (d *SQLDriver) CreateSkill(ctx context.Context, skill *storage.Skill) (*storage.Skill, error) {
	if skill.CreatedAt.IsZero() {
		skill.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO learning_skills (name, category, current_level, roadmap_context, created_at)
		VALUES (?, ?, ?, ?, ?)`

	id, err := d.insertID(ctx, query, skill.Name, skill.Category, skill.CurrentLevel, skill.RoadmapContext, skill.CreatedAt.UTC())
	if err != nil {
		return nil, wrapPersist("inserting skill", err)
	}

	skill.ID = id
	return skill, nil
}

func (d *SQLDriver) GetSkill(ctx context.Context, id int64) (*storage.Skill, error) {
	query := `SELECT id, name, category, current_level, roadmap_context, created_at
		FROM learning_skills WHERE id = ?`

	return d.scanSkillRow(d.queryRow(ctx, query, id), formatID(id))
}

func (d *SQLDriver) GetSkillByName(ctx context.Context, name string) (*storage.Skill, error) {
	query := `SELECT id, name, category, current_level, roadmap_context, created_at
		FROM learning_skills WHERE name = ?`

	return d.scanSkillRow(d.queryRow(ctx, query, name), name)
}

func (d *SQLDriver) scanSkillRow(row *sql.Row, ref string) (*storage.Skill, error) {
	var skill storage.Skill

	err := row.Scan(&skill.ID, &skill.Name, &skill.Category, &skill.CurrentLevel, &skill.RoadmapContext, &skill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Kind: "skill", ID: ref}
	}
	if err != nil {
		return nil, wrapPersist("scanning skill", err)
	}

	return &skill, nil
}

func (d *SQLDriver) ListSkills(ctx context.Context) ([]*storage.Skill, error) {
	query := `SELECT id, name, category, current_level, roadmap_context, created_at
		FROM learning_skills ORDER BY created_at, id`

	rows, err := d.query(ctx, query)
	if err != nil {
		return nil, wrapPersist("querying skills", err)
	}
	defer rows.Close()

	var skills []*storage.Skill
	for rows.Next() {
		var skill storage.Skill
		if err := rows.Scan(&skill.ID, &skill.Name, &skill.Category, &skill.CurrentLevel, &skill.RoadmapContext, &skill.CreatedAt); err != nil {
			return nil, wrapPersist("scanning skill", err)
		}
		skills = append(skills, &skill)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating skills", err)
	}

	return skills, nil
}

func (d *SQLDriver) DeleteSkill(ctx context.Context, id int64) error {
	// Items, reviews, sessions, milestones, challenges, and obstacles go
	// with it via ON DELETE CASCADE.
	res, err := d.exec(ctx, `DELETE FROM learning_skills WHERE id = ?`, id)
	if err != nil {
		return wrapPersist("deleting skill", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return wrapPersist("deleting skill", err)
	}
	if affected == 0 {
		return storage.ErrNotFound{Kind: "skill", ID: formatID(id)}
	}

	return nil
}

func (d *SQLDriver) CreateItem(ctx context.Context, item *storage.LearningItem) (*storage.LearningItem, error) {
	ok, err := d.hasRow(ctx, `SELECT 1 FROM learning_skills WHERE id = ?`, item.SkillID)
	if err != nil {
		return nil, wrapPersist("checking skill", err)
	}
	if !ok {
		return nil, storage.ErrNotFound{Kind: "skill", ID: formatID(item.SkillID)}
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	// A fresh item is due immediately.
	if item.NextReviewAt.IsZero() {
		item.NextReviewAt = item.CreatedAt
	}

	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, wrapPersist("marshaling tags", err)
	}

	query := `INSERT INTO learning_items
		(skill_id, item_type, prompt, answer, tags, review_count, correct_count, last_reviewed_at, next_review_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := d.insertID(ctx, query,
		item.SkillID, item.Type, item.Prompt, item.Answer, string(tagsJSON),
		item.ReviewCount, item.CorrectCount, nullableTime(item.LastReviewedAt),
		item.NextReviewAt.UTC(), item.CreatedAt.UTC())
	if err != nil {
		return nil, wrapPersist("inserting learning item", err)
	}

	item.ID = id
	return item, nil
}

const itemColumns = `id, skill_id, item_type, prompt, answer, tags, review_count, correct_count, last_reviewed_at, next_review_at, created_at`

func (d *SQLDriver) GetItem(ctx context.Context, id int64) (*storage.LearningItem, error) {
	rows, err := d.query(ctx, `SELECT `+itemColumns+` FROM learning_items WHERE id = ?`, id)
	if err != nil {
		return nil, wrapPersist("querying learning item", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, storage.ErrNotFound{Kind: "learning item", ID: formatID(id)}
	}

	return items[0], nil
}

func (d *SQLDriver) ItemsBySkill(ctx context.Context, skillID int64) ([]*storage.LearningItem, error) {
	query := `SELECT ` + itemColumns + ` FROM learning_items WHERE skill_id = ? ORDER BY created_at, id`

	rows, err := d.query(ctx, query, skillID)
	if err != nil {
		return nil, wrapPersist("querying learning items", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (d *SQLDriver) DueItems(ctx context.Context, asOf time.Time, limit int) ([]*storage.LearningItem, error) {
	// Most overdue first.
	query := `SELECT ` + itemColumns + ` FROM learning_items
		WHERE next_review_at <= ? ORDER BY next_review_at, id`

	args := []any{asOf.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, wrapPersist("querying due items", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (d *SQLDriver) RecordReview(ctx context.Context, itemID int64, reviewedAt time.Time, wasCorrect bool, confidence int, nextReviewAt time.Time) (*storage.LearningItem, error) {
	ok, err := d.hasRow(ctx, `SELECT 1 FROM learning_items WHERE id = ?`, itemID)
	if err != nil {
		return nil, wrapPersist("checking learning item", err)
	}
	if !ok {
		return nil, storage.ErrNotFound{Kind: "learning item", ID: formatID(itemID)}
	}

	// The counter update and the history row land in one transaction: both
	// or neither.
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapPersist("starting transaction", err)
	}

	correct := 0
	if wasCorrect {
		correct = 1
	}

	update := `UPDATE learning_items
		SET review_count = review_count + 1,
			correct_count = correct_count + ?,
			last_reviewed_at = ?,
			next_review_at = ?
		WHERE id = ?`

	if _, err := tx.ExecContext(ctx, d.rebind(update), correct, reviewedAt.UTC(), nextReviewAt.UTC(), itemID); err != nil {
		_ = tx.Rollback()
		return nil, wrapPersist("updating learning item", err)
	}

	insert := `INSERT INTO review_history (item_id, reviewed_at, was_correct, confidence) VALUES (?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, d.rebind(insert), itemID, reviewedAt.UTC(), wasCorrect, confidence); err != nil {
		_ = tx.Rollback()
		return nil, wrapPersist("inserting review record", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapPersist("committing review", err)
	}

	return d.GetItem(ctx, itemID)
}

func (d *SQLDriver) ReviewsByItem(ctx context.Context, itemID int64) ([]*storage.ReviewRecord, error) {
	query := `SELECT id, item_id, reviewed_at, was_correct, confidence
		FROM review_history WHERE item_id = ? ORDER BY reviewed_at, id`

	rows, err := d.query(ctx, query, itemID)
	if err != nil {
		return nil, wrapPersist("querying reviews", err)
	}
	defer rows.Close()

	var reviews []*storage.ReviewRecord
	for rows.Next() {
		var rec storage.ReviewRecord
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.ReviewedAt, &rec.WasCorrect, &rec.Confidence); err != nil {
			return nil, wrapPersist("scanning review", err)
		}
		reviews = append(reviews, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating reviews", err)
	}

	return reviews, nil
}

func (d *SQLDriver) LogSession(ctx context.Context, session *storage.Session) (*storage.Session, error) {
	ok, err := d.hasRow(ctx, `SELECT 1 FROM learning_skills WHERE id = ?`, session.SkillID)
	if err != nil {
		return nil, wrapPersist("checking skill", err)
	}
	if !ok {
		return nil, storage.ErrNotFound{Kind: "skill", ID: formatID(session.SkillID)}
	}

	if session.OccurredAt.IsZero() {
		session.OccurredAt = time.Now().UTC()
	}

	query := `INSERT INTO learning_sessions (skill_id, topic, minutes, notes, occurred_at) VALUES (?, ?, ?, ?, ?)`

	id, err := d.insertID(ctx, query, session.SkillID, session.Topic, session.Minutes, session.Notes, session.OccurredAt.UTC())
	if err != nil {
		return nil, wrapPersist("inserting session", err)
	}

	session.ID = id
	return session, nil
}

func (d *SQLDriver) SessionsBySkill(ctx context.Context, skillID int64) ([]*storage.Session, error) {
	query := `SELECT id, skill_id, topic, minutes, notes, occurred_at
		FROM learning_sessions WHERE skill_id = ? ORDER BY occurred_at DESC, id DESC`

	rows, err := d.query(ctx, query, skillID)
	if err != nil {
		return nil, wrapPersist("querying sessions", err)
	}
	defer rows.Close()

	var sessions []*storage.Session
	for rows.Next() {
		var s storage.Session
		if err := rows.Scan(&s.ID, &s.SkillID, &s.Topic, &s.Minutes, &s.Notes, &s.OccurredAt); err != nil {
			return nil, wrapPersist("scanning session", err)
		}
		sessions = append(sessions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating sessions", err)
	}

	return sessions, nil
}

func (d *SQLDriver) AddMilestone(ctx context.Context, milestone *storage.Milestone) (*storage.Milestone, error) {
	ok, err := d.hasRow(ctx, `SELECT 1 FROM learning_skills WHERE id = ?`, milestone.SkillID)
	if err != nil {
		return nil, wrapPersist("checking skill", err)
	}
	if !ok {
		return nil, storage.ErrNotFound{Kind: "skill", ID: formatID(milestone.SkillID)}
	}

	if milestone.AchievedAt.IsZero() {
		milestone.AchievedAt = time.Now().UTC()
	}

	query := `INSERT INTO learning_milestones (skill_id, title, description, achieved_at) VALUES (?, ?, ?, ?)`

	id, err := d.insertID(ctx, query, milestone.SkillID, milestone.Title, milestone.Description, milestone.AchievedAt.UTC())
	if err != nil {
		return nil, wrapPersist("inserting milestone", err)
	}

	milestone.ID = id
	return milestone, nil
}

func (d *SQLDriver) MilestonesBySkill(ctx context.Context, skillID int64) ([]*storage.Milestone, error) {
	query := `SELECT id, skill_id, title, description, achieved_at
		FROM learning_milestones WHERE skill_id = ? ORDER BY achieved_at DESC, id DESC`

	rows, err := d.query(ctx, query, skillID)
	if err != nil {
		return nil, wrapPersist("querying milestones", err)
	}
	defer rows.Close()

	var milestones []*storage.Milestone
	for rows.Next() {
		var m storage.Milestone
		if err := rows.Scan(&m.ID, &m.SkillID, &m.Title, &m.Description, &m.AchievedAt); err != nil {
			return nil, wrapPersist("scanning milestone", err)
		}
		milestones = append(milestones, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating milestones", err)
	}

	return milestones, nil
}

// scanItems scans multiple rows into LearningItem structs.
func scanItems(rows *sql.Rows) ([]*storage.LearningItem, error) {
	var items []*storage.LearningItem

	for rows.Next() {
		var item storage.LearningItem
		var tagsJSON string
		var lastReviewed sql.NullTime

		err := rows.Scan(&item.ID, &item.SkillID, &item.Type, &item.Prompt, &item.Answer, &tagsJSON,
			&item.ReviewCount, &item.CorrectCount, &lastReviewed, &item.NextReviewAt, &item.CreatedAt)
		if err != nil {
			return nil, wrapPersist("scanning learning item", err)
		}

		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
			return nil, wrapPersist("unmarshaling tags", err)
		}

		item.LastReviewedAt = timePtr(lastReviewed)
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating learning items", err)
	}

	return items, nil
}
