package sqldriver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

func (d *SQLDriver) CreateFact(ctx context.Context, entity, text string) (*storage.Fact, error) {
	createdAt := time.Now().UTC()

	query := `INSERT INTO facts (entity, text, created_at) VALUES (?, ?, ?)`

	id, err := d.insertID(ctx, query, entity, text, createdAt)
	if err != nil {
		return nil, wrapPersist("inserting fact", err)
	}

	return &storage.Fact{
		ID:        id,
		Entity:    entity,
		Text:      text,
		CreatedAt: createdAt,
	}, nil
}

func (d *SQLDriver) GetFact(ctx context.Context, id int64) (*storage.Fact, error) {
	query := `SELECT id, entity, text, created_at FROM facts WHERE id = ?`

	var fact storage.Fact
	err := d.queryRow(ctx, query, id).Scan(&fact.ID, &fact.Entity, &fact.Text, &fact.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Kind: "fact", ID: formatID(id)}
	}
	if err != nil {
		return nil, wrapPersist("scanning fact", err)
	}

	return &fact, nil
}

func (d *SQLDriver) FactsByIDs(ctx context.Context, ids []int64) ([]*storage.Fact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := d.query(ctx, `SELECT id, entity, text, created_at FROM facts WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, wrapPersist("querying facts", err)
	}
	defer rows.Close()

	facts, err := scanFacts(rows)
	if err != nil {
		return nil, err
	}

	// Return facts in the order the ids were given.
	byID := make(map[int64]*storage.Fact, len(facts))
	for _, f := range facts {
		byID[f.ID] = f
	}

	ordered := make([]*storage.Fact, 0, len(facts))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
		}
	}

	return ordered, nil
}

func (d *SQLDriver) RecentFacts(ctx context.Context, limit int) ([]*storage.Fact, error) {
	query := `SELECT id, entity, text, created_at FROM facts ORDER BY created_at DESC, id DESC`

	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, wrapPersist("querying recent facts", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (d *SQLDriver) SearchFacts(ctx context.Context, query string, limit int) ([]*storage.Fact, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	stmt := `SELECT id, entity, text, created_at FROM facts
		WHERE LOWER(text) LIKE ? OR LOWER(entity) LIKE ?
		ORDER BY created_at DESC, id DESC`

	args := []any{pattern, pattern}
	if limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, stmt, args...)
	if err != nil {
		return nil, wrapPersist("searching facts", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (d *SQLDriver) CountFacts(ctx context.Context) (int, error) {
	var count int
	if err := d.queryRow(ctx, `SELECT COUNT(*) FROM facts`).Scan(&count); err != nil {
		return 0, wrapPersist("counting facts", err)
	}

	return count, nil
}

// scanFacts scans multiple rows into Fact structs.
func scanFacts(rows *sql.Rows) ([]*storage.Fact, error) {
	var facts []*storage.Fact

	for rows.Next() {
		var fact storage.Fact
		if err := rows.Scan(&fact.ID, &fact.Entity, &fact.Text, &fact.CreatedAt); err != nil {
			return nil, wrapPersist("scanning fact", err)
		}
		facts = append(facts, &fact)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating facts", err)
	}

	return facts, nil
}
