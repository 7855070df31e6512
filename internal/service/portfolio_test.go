package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cryptofolio/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newPortfolio(store *MockPortfolioStore, dedupe bool) *PortfolioService {
	return NewPortfolioService(store, fixedClock{testNow}, quietLogger(), dedupe)
}

func TestCurrent_BTCAndETH(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("ListHoldings", ctx).Return([]models.Holding{
		{ID: 1, Symbol: "BTC", Quantity: d("1.5"), Price: d("45000")},
		{ID: 2, Symbol: "ETH", Quantity: d("10"), Price: d("3000")},
	}, nil)

	res, err := newPortfolio(store, true).Current(ctx)

	require.NoError(t, err)
	assert.True(t, res.TotalValue.Equal(d("97500")))
	require.Len(t, res.Items, 2)
	assert.Equal(t, "BTC", res.Items[0].Symbol)
	assert.True(t, res.Items[0].Value.Equal(d("67500")))
	assert.InDelta(t, 69.23, res.Items[0].Percentage.InexactFloat64(), 0.01)
	assert.InDelta(t, 30.77, res.Items[1].Percentage.InexactFloat64(), 0.01)
	store.AssertExpectations(t)
}

func TestUpdate_ReplacesAndRecordsToday(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)

	var gotItems []models.Holding
	var gotSnaps []models.HistorySnapshot
	store.On("SavePortfolio", ctx, mock.Anything, mock.Anything, true).
		Run(func(args mock.Arguments) {
			gotItems = args.Get(1).([]models.Holding)
			gotSnaps = args.Get(2).([]models.HistorySnapshot)
		}).
		Return([]models.Holding{{ID: 11, Symbol: "BTC"}, {ID: 12, Symbol: "ETH"}}, nil)

	res, err := newPortfolio(store, true).Update(ctx, []HoldingInput{
		{Symbol: " BTC ", Quantity: d("1"), Price: d("300")},
		{Symbol: "ETH", Quantity: d("1"), Price: d("100")},
	})

	require.NoError(t, err)
	assert.True(t, res.TotalValue.Equal(d("400")))
	assert.Equal(t, int64(11), res.Items[0].ID)
	assert.Equal(t, int64(12), res.Items[1].ID)

	require.Len(t, gotItems, 2)
	assert.Equal(t, "BTC", gotItems[0].Symbol)
	assert.True(t, gotItems[0].Percentage.Equal(d("75")))
	require.Len(t, gotSnaps, 2)
	for _, s := range gotSnaps {
		assert.Equal(t, "2026-10-15", s.Date)
		assert.True(t, s.TotalValue.Equal(d("400")))
	}
	store.AssertExpectations(t)
}

func TestUpdate_RejectsInvalidWithoutWriting(t *testing.T) {
	cases := []struct {
		name  string
		items []HoldingInput
	}{
		{"empty", nil},
		{"blank symbol", []HoldingInput{{Symbol: " ", Quantity: d("1"), Price: d("1")}}},
		{"negative quantity", []HoldingInput{{Symbol: "BTC", Quantity: d("-1"), Price: d("1")}}},
		{"negative price", []HoldingInput{{Symbol: "BTC", Quantity: d("1"), Price: d("-0.01")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockPortfolioStore)
			_, err := newPortfolio(store, true).Update(context.Background(), tc.items)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
			store.AssertNotCalled(t, "SavePortfolio", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("SavePortfolio", ctx, mock.Anything, mock.Anything, false).Return(nil, errors.New("disk full"))

	_, err := newPortfolio(store, false).Update(ctx, []HoldingInput{{Symbol: "BTC", Quantity: d("1"), Price: d("1")}})
	assert.EqualError(t, err, "disk full")
}

func TestHistory_WindowAndGrouping(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("SnapshotsFrom", ctx, "2026-10-09").Return([]models.HistorySnapshot{
		{Date: "2026-10-14", Symbol: "BTC", Percentage: d("60"), TotalValue: d("1000")},
		{Date: "2026-10-14", Symbol: "ETH", Percentage: d("40"), TotalValue: d("1000")},
		{Date: "2026-10-15", Symbol: "BTC", Percentage: d("100"), TotalValue: d("1200")},
	}, nil)

	days, err := newPortfolio(store, true).History(ctx, DefaultHistoryDays)

	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-10-14", days[0].Date)
	assert.Len(t, days[0].Items, 2)
	assert.True(t, days[0].TotalValue.Equal(d("1000")))
	assert.Equal(t, "2026-10-15", days[1].Date)
	assert.Equal(t, "BTC", days[1].Items[0].Symbol)
	store.AssertExpectations(t)
}

func TestHistory_OneDayIsToday(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("SnapshotsFrom", ctx, "2026-10-15").Return([]models.HistorySnapshot{}, nil)

	days, err := newPortfolio(store, true).History(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, days)
	store.AssertExpectations(t)
}

func TestHistory_RejectsNonPositiveDays(t *testing.T) {
	store := new(MockPortfolioStore)
	_, err := newPortfolio(store, true).History(context.Background(), 0)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestHistoryOn(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("SnapshotsOn", ctx, "2026-10-14").Return([]models.HistorySnapshot{
		{Date: "2026-10-14", Symbol: "BTC", Percentage: d("60"), TotalValue: d("1000")},
	}, nil)
	store.On("SnapshotsOn", ctx, "2026-10-01").Return([]models.HistorySnapshot{}, nil)
	svc := newPortfolio(store, true)

	day, err := svc.HistoryOn(ctx, "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", day.Date)

	_, err = svc.HistoryOn(ctx, "2026-10-01")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.HistoryOn(ctx, "14/10/2026")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAIHoldings_StampsRequestTime(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("ListHoldings", ctx).Return([]models.Holding{{Symbol: "SOL", Quantity: d("2"), Price: d("75")}}, nil)

	view, err := newPortfolio(store, true).AIHoldings(ctx)

	require.NoError(t, err)
	assert.True(t, view.TotalValue.Equal(d("150")))
	assert.Equal(t, testNow, view.Timestamp)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].Percentage.Equal(d("100")))
}

func TestBackup_WritesOneRowPerHolding(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("ListHoldings", ctx).Return([]models.Holding{
		{Symbol: "BTC", Quantity: d("1"), Price: d("300")},
		{Symbol: "ETH", Quantity: d("1"), Price: d("100")},
	}, nil)
	store.On("RecordSnapshots", ctx, mock.MatchedBy(func(rows []models.HistorySnapshot) bool {
		return len(rows) == 2 && rows[0].Date == "2026-10-15" && rows[1].TotalValue.Equal(d("400"))
	}), false).Return(nil)

	res, err := newPortfolio(store, false).Backup(ctx)

	require.NoError(t, err)
	assert.Equal(t, BackupResult{Date: "2026-10-15", Rows: 2, Total: res.Total}, res)
	assert.True(t, res.Total.Equal(d("400")))
	store.AssertExpectations(t)
}

func TestBackup_NoHoldingsWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("ListHoldings", ctx).Return([]models.Holding{}, nil)

	res, err := newPortfolio(store, true).Backup(ctx)

	require.NoError(t, err)
	assert.Zero(t, res.Rows)
	store.AssertNotCalled(t, "RecordSnapshots", mock.Anything, mock.Anything, mock.Anything)
}

func TestBackup_PropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("ListHoldings", ctx).Return(nil, errors.New("connection reset"))

	_, err := newPortfolio(store, true).Backup(ctx)
	assert.ErrorContains(t, err, "connection reset")
}

func TestBackfill_WritesPastDaysOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("ListHoldings", ctx).Return([]models.Holding{{Symbol: "BTC", Quantity: d("1"), Price: d("10")}}, nil)
	var dates []string
	store.On("RecordSnapshots", ctx, mock.Anything, true).
		Run(func(args mock.Arguments) {
			rows := args.Get(1).([]models.HistorySnapshot)
			dates = append(dates, rows[0].Date)
		}).
		Return(nil)

	n, err := newPortfolio(store, true).Backfill(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"2026-10-12", "2026-10-13", "2026-10-14"}, dates)
}

func TestSeedTestData(t *testing.T) {
	ctx := context.Background()
	store := new(MockPortfolioStore)
	store.On("SavePortfolio", ctx, mock.Anything, mock.Anything, true).Return([]models.Holding{{ID: 1}, {ID: 2}, {ID: 3}}, nil)

	res, err := newPortfolio(store, true).SeedTestData(ctx)

	require.NoError(t, err)
	// 1.5*45000 + 10*3000 + 100*75
	assert.True(t, res.TotalValue.Equal(d("105000")))
	assert.Len(t, res.Items, 3)
}
