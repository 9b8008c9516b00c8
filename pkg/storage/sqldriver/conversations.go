package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/quietmindco/engram/pkg/llm"
	"github.com/quietmindco/engram/pkg/storage"
)

func (d *SQLDriver) SaveConversation(ctx context.Context, conv *storage.Conversation) error {
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	transcript := conv.Transcript
	if transcript == nil {
		transcript = []llm.Message{}
	}

	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return wrapPersist("marshaling transcript", err)
	}

	// Upsert so a session can be saved more than once as it grows.
	query := `INSERT INTO conversations (id, topic, transcript, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET topic = excluded.topic, transcript = excluded.transcript`

	if _, err := d.exec(ctx, query, conv.ID, conv.Topic, string(transcriptJSON), conv.CreatedAt.UTC()); err != nil {
		return wrapPersist("saving conversation", err)
	}

	return nil
}

func (d *SQLDriver) GetConversation(ctx context.Context, id string) (*storage.Conversation, error) {
	query := `SELECT id, topic, transcript, created_at FROM conversations WHERE id = ?`

	var conv storage.Conversation
	var transcriptJSON string

	err := d.queryRow(ctx, query, id).Scan(&conv.ID, &conv.Topic, &transcriptJSON, &conv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Kind: "conversation", ID: id}
	}
	if err != nil {
		return nil, wrapPersist("scanning conversation", err)
	}

	if err := json.Unmarshal([]byte(transcriptJSON), &conv.Transcript); err != nil {
		return nil, wrapPersist("unmarshaling transcript", err)
	}

	return &conv, nil
}

func (d *SQLDriver) RecentConversations(ctx context.Context, limit int) ([]*storage.Conversation, error) {
	query := `SELECT id, topic, transcript, created_at FROM conversations ORDER BY created_at DESC, id DESC`

	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, wrapPersist("querying conversations", err)
	}
	defer rows.Close()

	var convs []*storage.Conversation
	for rows.Next() {
		var conv storage.Conversation
		var transcriptJSON string

		if err := rows.Scan(&conv.ID, &conv.Topic, &transcriptJSON, &conv.CreatedAt); err != nil {
			return nil, wrapPersist("scanning conversation", err)
		}

		if err := json.Unmarshal([]byte(transcriptJSON), &conv.Transcript); err != nil {
			return nil, wrapPersist("unmarshaling transcript", err)
		}

		convs = append(convs, &conv)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPersist("iterating conversations", err)
	}

	return convs, nil
}
