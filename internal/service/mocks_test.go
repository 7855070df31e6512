package service

import (
	"context"
	"io"
	"time"

	"cryptofolio/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// MockPortfolioStore is a mock implementation of PortfolioStore for testing
type MockPortfolioStore struct {
	mock.Mock
}

func (m *MockPortfolioStore) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Holding), args.Error(1)
}

func (m *MockPortfolioStore) SavePortfolio(ctx context.Context, items []models.Holding, snapshots []models.HistorySnapshot, dedupe bool) ([]models.Holding, error) {
	args := m.Called(ctx, items, snapshots, dedupe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Holding), args.Error(1)
}

func (m *MockPortfolioStore) RecordSnapshots(ctx context.Context, rows []models.HistorySnapshot, dedupe bool) error {
	args := m.Called(ctx, rows, dedupe)
	return args.Error(0)
}

func (m *MockPortfolioStore) SnapshotsFrom(ctx context.Context, start string) ([]models.HistorySnapshot, error) {
	args := m.Called(ctx, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistorySnapshot), args.Error(1)
}

func (m *MockPortfolioStore) SnapshotsOn(ctx context.Context, date string) ([]models.HistorySnapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistorySnapshot), args.Error(1)
}

// MockCryptoStore is a mock implementation of CryptoStore for testing
type MockCryptoStore struct {
	mock.Mock
}

func (m *MockCryptoStore) UpsertCurrency(ctx context.Context, c *models.CryptoCurrency) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCryptoStore) ListCurrencies(ctx context.Context) ([]models.CryptoCurrency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CryptoCurrency), args.Error(1)
}

// MockMessageStore is a mock implementation of MessageStore for testing
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageStore) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageStore) ListMessages(ctx context.Context, f models.MessageFilter, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageStore) CountMessages(ctx context.Context, f models.MessageFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockMessageStore) RecentMessages(ctx context.Context, limit int) ([]models.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageStore) MarkMessageRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageStore) CountUnreadMessages(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockReportStore is a mock implementation of ReportStore for testing
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) CreateReport(ctx context.Context, rep *models.Report) error {
	args := m.Called(ctx, rep)
	return args.Error(0)
}

func (m *MockReportStore) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportStore) ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockReportStore) CountReports(ctx context.Context, status string) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockReportStore) UpdateReportStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockReportStore) ListSuggestions(ctx context.Context, reportID int64) ([]models.Suggestion, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Suggestion), args.Error(1)
}

func (m *MockReportStore) GetSuggestion(ctx context.Context, id int64) (*models.Suggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Suggestion), args.Error(1)
}

func (m *MockReportStore) AddSuggestion(ctx context.Context, s *models.Suggestion) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockReportStore) UpdateSuggestion(ctx context.Context, s *models.Suggestion) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockReportStore) DeleteSuggestion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
