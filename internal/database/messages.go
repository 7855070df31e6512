package database

import (
	"context"
	"fmt"
	"strings"

	"cryptofolio/internal/models"

	"github.com/jmoiron/sqlx"
)

const messageColumns = `id, crypto_type, content, sentiment, source, source_url, created_at, is_read`

func (r *Repo) CreateMessage(ctx context.Context, m *models.Message) error {
	id, err := insertReturningID(ctx, r.db,
		`INSERT INTO messages (crypto_type, content, sentiment, source, source_url, created_at, is_read) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.CryptoType, m.Content, m.Sentiment, m.Source, m.SourceURL, m.CreatedAt.UTC(), m.IsRead)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.ID = id
	return nil
}

// GetMessage returns sql.ErrNoRows (wrapped) for an unknown id.
func (r *Repo) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	var m models.Message
	if err := sqlx.GetContext(ctx, r.db, &m, r.db.Rebind(`SELECT `+messageColumns+` FROM messages WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}
	return &m, nil
}

func messageWhere(f models.MessageFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.CryptoType != "" {
		conds = append(conds, "crypto_type = ?")
		args = append(args, f.CryptoType)
	}
	if f.Sentiment != "" {
		conds = append(conds, "sentiment = ?")
		args = append(args, f.Sentiment)
	}
	if f.Start != nil && f.End != nil {
		conds = append(conds, "created_at >= ? AND created_at <= ?")
		args = append(args, f.Start.UTC(), f.End.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListMessages returns one page of matching messages, newest first.
func (r *Repo) ListMessages(ctx context.Context, f models.MessageFilter, limit, offset int) ([]models.Message, error) {
	where, args := messageWhere(f)
	q := r.db.Rebind(`SELECT ` + messageColumns + ` FROM messages` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := r.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	res := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.StructScan(&m); err != nil {
			r.log.Warnf("scan message failed: %v", err)
			continue
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *Repo) CountMessages(ctx context.Context, f models.MessageFilter) (int, error) {
	where, args := messageWhere(f)
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM messages`+where), args...); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// RecentMessages returns up to limit messages, newest first.
func (r *Repo) RecentMessages(ctx context.Context, limit int) ([]models.Message, error) {
	return r.ListMessages(ctx, models.MessageFilter{}, limit, 0)
}

func (r *Repo) MarkMessageRead(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.db, `UPDATE messages SET is_read = ? WHERE id = ?`, true, id); err != nil {
		return fmt.Errorf("mark message %d read: %w", id, err)
	}
	return nil
}

func (r *Repo) CountUnreadMessages(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM messages WHERE is_read = ?`), false); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}
