package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cryptofolio/internal/models"
	"cryptofolio/internal/valuation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultHistoryDays is the history window used when none is requested.
const DefaultHistoryDays = 7

// HoldingInput is one requested holding of a portfolio replacement.
type HoldingInput struct {
	Symbol   string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// DaySnapshot groups the history rows of one date.
type DaySnapshot struct {
	Date       string
	TotalValue decimal.Decimal
	Items      []SnapshotItem
}

type SnapshotItem struct {
	Symbol     string
	Percentage decimal.Decimal
}

// AIView is the agent-facing projection of the current valuation.
type AIView struct {
	TotalValue decimal.Decimal
	Items      []valuation.Item
	Timestamp  time.Time
}

// BackupResult describes one snapshot run.
type BackupResult struct {
	Date  string
	Rows  int
	Total decimal.Decimal
}

// TestPortfolio is the fixed holding set written by SeedTestData.
var TestPortfolio = []HoldingInput{
	{Symbol: "BTC", Quantity: decimal.RequireFromString("1.5"), Price: decimal.NewFromInt(45000)},
	{Symbol: "ETH", Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(3000)},
	{Symbol: "SOL", Quantity: decimal.NewFromInt(100), Price: decimal.NewFromInt(75)},
}

// PortfolioService values holdings and keeps their daily history. Writers
// (Update and Backup) are serialised; reads go straight to the store.
type PortfolioService struct {
	store  PortfolioStore
	clock  Clock
	log    *logrus.Logger
	dedupe bool

	mu sync.Mutex
}

func NewPortfolioService(store PortfolioStore, clock Clock, log *logrus.Logger, dedupe bool) *PortfolioService {
	return &PortfolioService{store: store, clock: clock, log: log, dedupe: dedupe}
}

func (s *PortfolioService) today() string {
	return s.clock.Now().Format(models.DateLayout)
}

// Current values the stored holdings.
func (s *PortfolioService) Current(ctx context.Context) (valuation.Result, error) {
	holdings, err := s.store.ListHoldings(ctx)
	if err != nil {
		return valuation.Result{}, err
	}
	return valuation.Compute(holdings), nil
}

// History returns the snapshots of the last days calendar days, today
// included, grouped per date in ascending order.
func (s *PortfolioService) History(ctx context.Context, days int) ([]DaySnapshot, error) {
	if days < 1 {
		return nil, invalidf("days must be at least 1, got %d", days)
	}
	start := s.clock.Now().AddDate(0, 0, -(days - 1)).Format(models.DateLayout)
	rows, err := s.store.SnapshotsFrom(ctx, start)
	if err != nil {
		return nil, err
	}
	return groupByDate(rows), nil
}

// HistoryOn returns the snapshot set of one date.
func (s *PortfolioService) HistoryOn(ctx context.Context, date string) (DaySnapshot, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return DaySnapshot{}, invalidf("date %q is not YYYY-MM-DD", date)
	}
	rows, err := s.store.SnapshotsOn(ctx, date)
	if err != nil {
		return DaySnapshot{}, err
	}
	if len(rows) == 0 {
		return DaySnapshot{}, fmt.Errorf("snapshot %s: %w", date, ErrNotFound)
	}
	return groupByDate(rows)[0], nil
}

func groupByDate(rows []models.HistorySnapshot) []DaySnapshot {
	res := []DaySnapshot{}
	idx := map[string]int{}
	for _, r := range rows {
		i, ok := idx[r.Date]
		if !ok {
			i = len(res)
			idx[r.Date] = i
			res = append(res, DaySnapshot{Date: r.Date, TotalValue: r.TotalValue})
		}
		res[i].Items = append(res[i].Items, SnapshotItem{Symbol: r.Symbol, Percentage: r.Percentage})
	}
	return res
}

func validateHoldings(items []HoldingInput) error {
	if len(items) == 0 {
		return invalidf("portfolio must contain at least one holding")
	}
	for i, it := range items {
		if strings.TrimSpace(it.Symbol) == "" {
			return invalidf("item %d: cryptoType is required", i)
		}
		if it.Quantity.IsNegative() {
			return invalidf("item %d (%s): quantity must not be negative", i, it.Symbol)
		}
		if it.Price.IsNegative() {
			return invalidf("item %d (%s): price must not be negative", i, it.Symbol)
		}
	}
	return nil
}

// Update replaces the whole holding set and records today's snapshot of it
// in the same transaction. An invalid request leaves the store untouched.
func (s *PortfolioService) Update(ctx context.Context, items []HoldingInput) (valuation.Result, error) {
	if err := validateHoldings(items); err != nil {
		return valuation.Result{}, err
	}
	holdings := make([]models.Holding, 0, len(items))
	for _, it := range items {
		holdings = append(holdings, models.Holding{
			Symbol:   strings.TrimSpace(it.Symbol),
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	res := valuation.Compute(holdings)

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.store.SavePortfolio(ctx, res.Holdings(), res.Snapshots(s.today()), s.dedupe)
	if err != nil {
		s.log.Errorf("save portfolio failed: %v", err)
		return valuation.Result{}, err
	}
	for i := range saved {
		if i < len(res.Items) {
			res.Items[i].ID = saved[i].ID
		}
	}
	s.log.WithFields(logrus.Fields{"items": len(saved), "total": res.TotalValue.String()}).Info("portfolio replaced")
	return res, nil
}

// AIHoldings is the current valuation stamped with the request time.
func (s *PortfolioService) AIHoldings(ctx context.Context) (AIView, error) {
	res, err := s.Current(ctx)
	if err != nil {
		return AIView{}, err
	}
	return AIView{TotalValue: res.TotalValue, Items: res.Items, Timestamp: s.clock.Now()}, nil
}

// Backup writes today's snapshot of the stored holdings. With no holdings
// nothing is written.
func (s *PortfolioService) Backup(ctx context.Context) (BackupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.store.ListHoldings(ctx)
	if err != nil {
		return BackupResult{}, fmt.Errorf("read holdings: %w", err)
	}
	date := s.today()
	res := valuation.Compute(holdings)
	rows := res.Snapshots(date)
	if len(rows) == 0 {
		return BackupResult{Date: date, Total: res.TotalValue}, nil
	}
	if err := s.store.RecordSnapshots(ctx, rows, s.dedupe); err != nil {
		return BackupResult{}, fmt.Errorf("record snapshots of %s: %w", date, err)
	}
	return BackupResult{Date: date, Rows: len(rows), Total: res.TotalValue}, nil
}

// Backfill writes a snapshot of the current holdings for each of the days
// calendar days before today, oldest first.
func (s *PortfolioService) Backfill(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, invalidf("days must be at least 1, got %d", days)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.store.ListHoldings(ctx)
	if err != nil {
		return 0, fmt.Errorf("read holdings: %w", err)
	}
	res := valuation.Compute(holdings)
	now := s.clock.Now()
	written := 0
	for d := days; d >= 1; d-- {
		date := now.AddDate(0, 0, -d).Format(models.DateLayout)
		rows := res.Snapshots(date)
		if err := s.store.RecordSnapshots(ctx, rows, s.dedupe); err != nil {
			return written, fmt.Errorf("backfill %s: %w", date, err)
		}
		written += len(rows)
		s.log.Debugf("backfilled %s with %d rows", date, len(rows))
	}
	return written, nil
}

// SeedTestData replaces the portfolio with TestPortfolio.
func (s *PortfolioService) SeedTestData(ctx context.Context) (valuation.Result, error) {
	return s.Update(ctx, TestPortfolio)
}
