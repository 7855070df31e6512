package database

import (
	"context"
	"database/sql"
	"fmt"

	"cryptofolio/internal/models"

	"github.com/jmoiron/sqlx"
)

const reportColumns = `id, title, status, created_at, message_count`

func (r *Repo) CreateReport(ctx context.Context, rep *models.Report) error {
	id, err := insertReturningID(ctx, r.db,
		`INSERT INTO reports (title, status, created_at, message_count) VALUES (?, ?, ?, ?)`,
		rep.Title, rep.Status, rep.CreatedAt.UTC(), rep.MessageCount)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	rep.ID = id
	return nil
}

func (r *Repo) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	var rep models.Report
	if err := sqlx.GetContext(ctx, r.db, &rep, r.db.Rebind(`SELECT `+reportColumns+` FROM reports WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("get report %d: %w", id, err)
	}
	return &rep, nil
}

func reportWhere(status string) (string, []interface{}) {
	if status == "" {
		return "", nil
	}
	return " WHERE status = ?", []interface{}{status}
}

// ListReports returns one page of reports, newest first, optionally filtered
// by status.
func (r *Repo) ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	where, args := reportWhere(status)
	args = append(args, limit, offset)
	res := []models.Report{}
	q := r.db.Rebind(`SELECT ` + reportColumns + ` FROM reports` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := sqlx.SelectContext(ctx, r.db, &res, q, args...); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return res, nil
}

func (r *Repo) CountReports(ctx context.Context, status string) (int, error) {
	where, args := reportWhere(status)
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM reports`+where), args...); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

func (r *Repo) UpdateReportStatus(ctx context.Context, id int64, status string) error {
	if err := execOne(ctx, r.db, `UPDATE reports SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("update report %d status: %w", id, err)
	}
	return nil
}

const suggestionColumns = `id, report_id, crypto_type, current_percentage, suggested_percentage, reason`

func (r *Repo) ListSuggestions(ctx context.Context, reportID int64) ([]models.Suggestion, error) {
	res := []models.Suggestion{}
	q := r.db.Rebind(`SELECT ` + suggestionColumns + ` FROM report_suggestions WHERE report_id = ? ORDER BY id ASC`)
	if err := sqlx.SelectContext(ctx, r.db, &res, q, reportID); err != nil {
		return nil, fmt.Errorf("list suggestions of report %d: %w", reportID, err)
	}
	return res, nil
}

func (r *Repo) GetSuggestion(ctx context.Context, id int64) (*models.Suggestion, error) {
	var s models.Suggestion
	if err := sqlx.GetContext(ctx, r.db, &s, r.db.Rebind(`SELECT `+suggestionColumns+` FROM report_suggestions WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("get suggestion %d: %w", id, err)
	}
	return &s, nil
}

// AddSuggestion attaches s to its report. A report deleted in the meantime
// surfaces as sql.ErrNoRows.
func (r *Repo) AddSuggestion(ctx context.Context, s *models.Suggestion) error {
	id, err := insertReturningID(ctx, r.db,
		`INSERT INTO report_suggestions (report_id, crypto_type, current_percentage, suggested_percentage, reason) VALUES (?, ?, ?, ?, ?)`,
		s.ReportID, s.CryptoType, s.CurrentPercentage, s.SuggestedPercentage, s.Reason)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("report %d: %w", s.ReportID, sql.ErrNoRows)
		}
		return fmt.Errorf("insert suggestion: %w", err)
	}
	s.ID = id
	return nil
}

func (r *Repo) UpdateSuggestion(ctx context.Context, s *models.Suggestion) error {
	err := execOne(ctx, r.db,
		`UPDATE report_suggestions SET crypto_type = ?, current_percentage = ?, suggested_percentage = ?, reason = ? WHERE id = ?`,
		s.CryptoType, s.CurrentPercentage, s.SuggestedPercentage, s.Reason, s.ID)
	if err != nil {
		return fmt.Errorf("update suggestion %d: %w", s.ID, err)
	}
	return nil
}

func (r *Repo) DeleteSuggestion(ctx context.Context, id int64) error {
	if err := execOne(ctx, r.db, `DELETE FROM report_suggestions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete suggestion %d: %w", id, err)
	}
	return nil
}
