package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"cryptofolio/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	reports   *MockReportStore
	messages  *MockMessageStore
	portfolio *MockPortfolioStore
	svc       *ReportService
}

func newReportFixture() reportFixture {
	f := reportFixture{
		reports:   new(MockReportStore),
		messages:  new(MockMessageStore),
		portfolio: new(MockPortfolioStore),
	}
	f.svc = NewReportService(f.reports, f.messages, f.portfolio, fixedClock{testNow}, quietLogger())
	return f
}

func TestReportCreate_DefaultsTitleAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture()
	f.reports.On("CreateReport", ctx, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Report).ID = 3 }).
		Return(nil)

	rep, err := f.svc.Create(ctx, "  ", "archived")

	require.NoError(t, err)
	assert.Equal(t, int64(3), rep.ID)
	assert.Equal(t, "Auto-generated report - 1792029600000", rep.Title)
	assert.Equal(t, models.ReportPending, rep.Status)
	assert.Equal(t, testNow, rep.CreatedAt)

	rep, err = f.svc.Create(ctx, "Q4 review", "Approved")
	require.NoError(t, err)
	assert.Equal(t, "Q4 review", rep.Title)
	assert.Equal(t, models.ReportApproved, rep.Status)
}

func TestReportUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture()
	f.reports.On("UpdateReportStatus", ctx, int64(1), models.ReportRejected).Return(nil)
	f.reports.On("UpdateReportStatus", ctx, int64(1), models.ReportPending).Return(nil)
	f.reports.On("UpdateReportStatus", ctx, int64(2), models.ReportApproved).Return(sql.ErrNoRows)

	got, err := f.svc.UpdateStatus(ctx, 1, "rejected")
	require.NoError(t, err)
	assert.Equal(t, models.ReportRejected, got)

	got, err = f.svc.UpdateStatus(ctx, 1, "bogus")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, got)

	_, err = f.svc.UpdateStatus(ctx, 2, "approved")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReportDetail(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture()
	f.reports.On("GetReport", ctx, int64(5)).Return(&models.Report{ID: 5, Title: "weekly", Status: models.ReportPending}, nil)
	f.messages.On("RecentMessages", ctx, ReportMessageLimit).Return([]models.Message{{ID: 1, CryptoType: "BTC"}}, nil)
	f.portfolio.On("ListHoldings", ctx).Return([]models.Holding{
		{Symbol: "BTC", Quantity: d("1"), Price: d("300")},
		{Symbol: "ETH", Quantity: d("1"), Price: d("100")},
	}, nil)
	f.reports.On("ListSuggestions", ctx, int64(5)).Return([]models.Suggestion{{ID: 8, ReportID: 5, CryptoType: "BTC"}}, nil)
	f.reports.On("GetReport", ctx, int64(6)).Return(nil, sql.ErrNoRows)

	det, err := f.svc.Detail(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "weekly", det.Title)
	assert.Len(t, det.Messages, 1)
	assert.True(t, det.Portfolio.TotalValue.Equal(d("400")))
	assert.True(t, det.Portfolio.Items[1].Percentage.Equal(d("25")))
	assert.Len(t, det.Suggestions, 1)

	_, err = f.svc.Detail(ctx, 6)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReportList_StatusFilter(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture()
	f.reports.On("CountReports", ctx, models.ReportPending).Return(3, nil)
	f.reports.On("ListReports", ctx, models.ReportPending, 2, 0).Return([]models.Report{{ID: 3}, {ID: 2}}, nil)

	page, err := f.svc.List(ctx, "pending", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Records, 2)
}

func TestAddSuggestion(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture()
	f.reports.On("AddSuggestion", ctx, mock.MatchedBy(func(s *models.Suggestion) bool { return s.ReportID == 1 })).Return(nil)
	f.reports.On("AddSuggestion", ctx, mock.MatchedBy(func(s *models.Suggestion) bool { return s.ReportID == 99 })).Return(sql.ErrNoRows)

	sg := &models.Suggestion{CryptoType: "BTC", Reason: "trim"}
	require.NoError(t, f.svc.AddSuggestion(ctx, 1, sg))
	assert.Equal(t, int64(1), sg.ReportID)

	err := f.svc.AddSuggestion(ctx, 99, &models.Suggestion{CryptoType: "BTC", Reason: "trim"})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = f.svc.AddSuggestion(ctx, 1, &models.Suggestion{CryptoType: "BTC"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateSuggestion_Partial(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture()
	stored := &models.Suggestion{
		ID:                  4,
		ReportID:            1,
		CryptoType:          "ETH",
		CurrentPercentage:   decimal.NewNullDecimal(d("30")),
		SuggestedPercentage: decimal.NewNullDecimal(d("35")),
		Reason:              "staking yield",
	}
	f.reports.On("GetSuggestion", ctx, int64(4)).Return(stored, nil)
	f.reports.On("UpdateSuggestion", ctx, stored).Return(nil)
	f.reports.On("GetSuggestion", ctx, int64(5)).Return(nil, sql.ErrNoRows)

	pct := d("40")
	got, err := f.svc.UpdateSuggestion(ctx, 4, SuggestionPatch{SuggestedPercentage: &pct})
	require.NoError(t, err)
	assert.Equal(t, "ETH", got.CryptoType)
	assert.Equal(t, "staking yield", got.Reason)
	assert.True(t, got.CurrentPercentage.Decimal.Equal(d("30")))
	assert.True(t, got.SuggestedPercentage.Decimal.Equal(d("40")))

	_, err = f.svc.UpdateSuggestion(ctx, 5, SuggestionPatch{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteSuggestion(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture()
	f.reports.On("DeleteSuggestion", ctx, int64(4)).Return(nil)
	f.reports.On("DeleteSuggestion", ctx, int64(5)).Return(sql.ErrNoRows)

	assert.NoError(t, f.svc.DeleteSuggestion(ctx, 4))
	assert.True(t, errors.Is(f.svc.DeleteSuggestion(ctx, 5), ErrNotFound))
}
