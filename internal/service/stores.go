package service

import (
	"context"

	"cryptofolio/internal/models"
)

// PortfolioStore persists holdings and their daily history.
type PortfolioStore interface {
	ListHoldings(ctx context.Context) ([]models.Holding, error)
	SavePortfolio(ctx context.Context, items []models.Holding, snapshots []models.HistorySnapshot, dedupe bool) ([]models.Holding, error)
	RecordSnapshots(ctx context.Context, rows []models.HistorySnapshot, dedupe bool) error
	SnapshotsFrom(ctx context.Context, start string) ([]models.HistorySnapshot, error)
	SnapshotsOn(ctx context.Context, date string) ([]models.HistorySnapshot, error)
}

type CryptoStore interface {
	UpsertCurrency(ctx context.Context, c *models.CryptoCurrency) error
	ListCurrencies(ctx context.Context) ([]models.CryptoCurrency, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	ListMessages(ctx context.Context, f models.MessageFilter, limit, offset int) ([]models.Message, error)
	CountMessages(ctx context.Context, f models.MessageFilter) (int, error)
	RecentMessages(ctx context.Context, limit int) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, id int64) error
	CountUnreadMessages(ctx context.Context) (int, error)
}

type ReportStore interface {
	CreateReport(ctx context.Context, rep *models.Report) error
	GetReport(ctx context.Context, id int64) (*models.Report, error)
	ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, error)
	CountReports(ctx context.Context, status string) (int, error)
	UpdateReportStatus(ctx context.Context, id int64, status string) error
	ListSuggestions(ctx context.Context, reportID int64) ([]models.Suggestion, error)
	GetSuggestion(ctx context.Context, id int64) (*models.Suggestion, error)
	AddSuggestion(ctx context.Context, s *models.Suggestion) error
	UpdateSuggestion(ctx context.Context, s *models.Suggestion) error
	DeleteSuggestion(ctx context.Context, id int64) error
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Total   int
	Pages   int
	Current int
	Records []T
}

func pageBounds(page, size int) (limit, offset int, err error) {
	if page < 1 {
		return 0, 0, invalidf("page must be at least 1, got %d", page)
	}
	if size < 1 {
		return 0, 0, invalidf("size must be at least 1, got %d", size)
	}
	return size, (page - 1) * size, nil
}

func pageCount(total, size int) int {
	return (total + size - 1) / size
}
