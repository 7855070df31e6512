package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cryptofolio/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Repo is the SQL-backed store for every entity of the service. Queries are
// written with ? placeholders and rebound for the connection's driver.
type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

func (r *Repo) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertReturningID(ctx context.Context, ext sqlx.ExtContext, q string, args ...interface{}) (int64, error) {
	var id int64
	if err := ext.QueryRowxContext(ctx, ext.Rebind(q+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execOne runs an UPDATE or DELETE expected to touch exactly one row and
// reports sql.ErrNoRows when it touched none.
func execOne(ctx context.Context, ext sqlx.ExtContext, q string, args ...interface{}) error {
	res, err := ext.ExecContext(ctx, ext.Rebind(q), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

const holdingColumns = `id, crypto_type, quantity, price, value, percentage`

// ListHoldings returns the full current holding set in insertion order.
func (r *Repo) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	res := []models.Holding{}
	if err := sqlx.SelectContext(ctx, r.db, &res, `SELECT `+holdingColumns+` FROM portfolio_items ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return res, nil
}

// ReplaceHoldings discards every existing holding and persists items in one
// transaction. The returned rows carry their generated ids.
func (r *Repo) ReplaceHoldings(ctx context.Context, items []models.Holding) ([]models.Holding, error) {
	var saved []models.Holding
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		saved, err = replaceHoldings(ctx, tx, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func replaceHoldings(ctx context.Context, ext sqlx.ExtContext, items []models.Holding) ([]models.Holding, error) {
	if _, err := ext.ExecContext(ctx, `DELETE FROM portfolio_items`); err != nil {
		return nil, fmt.Errorf("clear holdings: %w", err)
	}
	saved := make([]models.Holding, 0, len(items))
	for _, h := range items {
		id, err := insertReturningID(ctx, ext,
			`INSERT INTO portfolio_items (crypto_type, quantity, price, value, percentage) VALUES (?, ?, ?, ?, ?)`,
			h.Symbol, h.Quantity, h.Price, h.Value, h.Percentage)
		if err != nil {
			return nil, fmt.Errorf("insert holding %s: %w", h.Symbol, err)
		}
		h.ID = id
		saved = append(saved, h)
	}
	return saved, nil
}

// AppendSnapshot inserts one history row. It does not look for an existing
// row with the same date and symbol.
func (r *Repo) AppendSnapshot(ctx context.Context, s *models.HistorySnapshot) error {
	id, err := appendSnapshot(ctx, r.db, *s)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func appendSnapshot(ctx context.Context, ext sqlx.ExtContext, s models.HistorySnapshot) (int64, error) {
	id, err := insertReturningID(ctx, ext,
		`INSERT INTO portfolio_history (snapshot_date, crypto_type, percentage, total_value) VALUES (?, ?, ?, ?)`,
		s.Date, s.Symbol, s.Percentage, s.TotalValue)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot %s/%s: %w", s.Date, s.Symbol, err)
	}
	return id, nil
}

// ReplaceDay swaps every history row of date for rows in one transaction.
func (r *Repo) ReplaceDay(ctx context.Context, date string, rows []models.HistorySnapshot) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM portfolio_history WHERE snapshot_date = ?`), date); err != nil {
			return fmt.Errorf("clear snapshots of %s: %w", date, err)
		}
		for _, s := range rows {
			s.Date = date
			if _, err := appendSnapshot(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSnapshots appends rows. With dedupe, the rows already stored for the
// dates being written are removed first so each date keeps a single set.
func writeSnapshots(ctx context.Context, ext sqlx.ExtContext, rows []models.HistorySnapshot, dedupe bool) error {
	if dedupe {
		seen := map[string]bool{}
		for _, s := range rows {
			if seen[s.Date] {
				continue
			}
			seen[s.Date] = true
			if _, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM portfolio_history WHERE snapshot_date = ?`), s.Date); err != nil {
				return fmt.Errorf("clear snapshots of %s: %w", s.Date, err)
			}
		}
	}
	for _, s := range rows {
		if _, err := appendSnapshot(ctx, ext, s); err != nil {
			return err
		}
	}
	return nil
}

// SavePortfolio replaces the holding set and records its history rows in a
// single transaction; either both land or neither does.
func (r *Repo) SavePortfolio(ctx context.Context, items []models.Holding, snapshots []models.HistorySnapshot, dedupe bool) ([]models.Holding, error) {
	var saved []models.Holding
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if saved, err = replaceHoldings(ctx, tx, items); err != nil {
			return err
		}
		return writeSnapshots(ctx, tx, snapshots, dedupe)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// RecordSnapshots writes a backup's history rows atomically.
func (r *Repo) RecordSnapshots(ctx context.Context, rows []models.HistorySnapshot, dedupe bool) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		return writeSnapshots(ctx, tx, rows, dedupe)
	})
}

const snapshotColumns = `id, snapshot_date, crypto_type, percentage, total_value`

// SnapshotsFrom returns every history row dated start or later, oldest first.
func (r *Repo) SnapshotsFrom(ctx context.Context, start string) ([]models.HistorySnapshot, error) {
	res := []models.HistorySnapshot{}
	q := r.db.Rebind(`SELECT ` + snapshotColumns + ` FROM portfolio_history WHERE snapshot_date >= ? ORDER BY snapshot_date ASC, id ASC`)
	if err := sqlx.SelectContext(ctx, r.db, &res, q, start); err != nil {
		return nil, fmt.Errorf("snapshots from %s: %w", start, err)
	}
	return res, nil
}

// SnapshotsOn returns the history rows of one date ordered by symbol.
func (r *Repo) SnapshotsOn(ctx context.Context, date string) ([]models.HistorySnapshot, error) {
	res := []models.HistorySnapshot{}
	q := r.db.Rebind(`SELECT ` + snapshotColumns + ` FROM portfolio_history WHERE snapshot_date = ? ORDER BY crypto_type ASC, id ASC`)
	if err := sqlx.SelectContext(ctx, r.db, &res, q, date); err != nil {
		return nil, fmt.Errorf("snapshots on %s: %w", date, err)
	}
	return res, nil
}
