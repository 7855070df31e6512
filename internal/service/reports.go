package service

import (
	"context"
	"fmt"
	"strings"

	"cryptofolio/internal/models"
	"cryptofolio/internal/valuation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReportMessageLimit caps the messages attached to a report detail.
const ReportMessageLimit = 100

// ReportDetail is a report together with the context it is reviewed in.
type ReportDetail struct {
	models.Report
	Messages    []models.Message
	Portfolio   valuation.Result
	Suggestions []models.Suggestion
}

// SuggestionPatch carries the fields of a partial suggestion update; nil
// fields are left unchanged.
type SuggestionPatch struct {
	CryptoType          *string
	CurrentPercentage   *decimal.Decimal
	SuggestedPercentage *decimal.Decimal
	Reason              *string
}

type ReportService struct {
	reports   ReportStore
	messages  MessageStore
	portfolio PortfolioStore
	clock     Clock
	log       *logrus.Logger
}

func NewReportService(reports ReportStore, messages MessageStore, portfolio PortfolioStore, clock Clock, log *logrus.Logger) *ReportService {
	return &ReportService{reports: reports, messages: messages, portfolio: portfolio, clock: clock, log: log}
}

func normalizeStatus(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case models.ReportPending, models.ReportApproved, models.ReportRejected:
		return s
	default:
		return models.ReportPending
	}
}

func (s *ReportService) List(ctx context.Context, status string, page, size int) (Page[models.Report], error) {
	limit, offset, err := pageBounds(page, size)
	if err != nil {
		return Page[models.Report]{}, err
	}
	status = strings.TrimSpace(status)
	total, err := s.reports.CountReports(ctx, status)
	if err != nil {
		return Page[models.Report]{}, err
	}
	records := []models.Report{}
	if offset < total {
		if records, err = s.reports.ListReports(ctx, status, limit, offset); err != nil {
			return Page[models.Report]{}, err
		}
	}
	return Page[models.Report]{Total: total, Pages: pageCount(total, size), Current: page, Records: records}, nil
}

// Detail assembles a report with the recent messages, a valuation of the
// current holdings and its suggestions.
func (s *ReportService) Detail(ctx context.Context, id int64) (*ReportDetail, error) {
	rep, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, notFound(err, "report %d", id)
	}
	msgs, err := s.messages.RecentMessages(ctx, ReportMessageLimit)
	if err != nil {
		return nil, err
	}
	holdings, err := s.portfolio.ListHoldings(ctx)
	if err != nil {
		return nil, err
	}
	sugg, err := s.reports.ListSuggestions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ReportDetail{
		Report:      *rep,
		Messages:    msgs,
		Portfolio:   valuation.Compute(holdings),
		Suggestions: sugg,
	}, nil
}

// UpdateStatus sets the review status. Unknown statuses become pending.
func (s *ReportService) UpdateStatus(ctx context.Context, id int64, status string) (string, error) {
	status = normalizeStatus(status)
	if err := s.reports.UpdateReportStatus(ctx, id, status); err != nil {
		return "", notFound(err, "report %d", id)
	}
	return status, nil
}

// Create stores a new report. A blank title gets a generated one.
func (s *ReportService) Create(ctx context.Context, title, status string) (*models.Report, error) {
	now := s.clock.Now()
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Auto-generated report - %d", now.UnixMilli())
	}
	rep := &models.Report{Title: title, Status: normalizeStatus(status), CreatedAt: now}
	if err := s.reports.CreateReport(ctx, rep); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"report": rep.ID, "status": rep.Status}).Info("report created")
	return rep, nil
}

func (s *ReportService) Suggestions(ctx context.Context, reportID int64) ([]models.Suggestion, error) {
	if _, err := s.reports.GetReport(ctx, reportID); err != nil {
		return nil, notFound(err, "report %d", reportID)
	}
	return s.reports.ListSuggestions(ctx, reportID)
}

func (s *ReportService) AddSuggestion(ctx context.Context, reportID int64, sg *models.Suggestion) error {
	if strings.TrimSpace(sg.CryptoType) == "" {
		return invalidf("cryptoType is required")
	}
	if strings.TrimSpace(sg.Reason) == "" {
		return invalidf("reason is required")
	}
	sg.ReportID = reportID
	if err := s.reports.AddSuggestion(ctx, sg); err != nil {
		return notFound(err, "report %d", reportID)
	}
	return nil
}

// UpdateSuggestion applies the non-nil fields of p.
func (s *ReportService) UpdateSuggestion(ctx context.Context, id int64, p SuggestionPatch) (*models.Suggestion, error) {
	sg, err := s.reports.GetSuggestion(ctx, id)
	if err != nil {
		return nil, notFound(err, "suggestion %d", id)
	}
	if p.CryptoType != nil {
		if strings.TrimSpace(*p.CryptoType) == "" {
			return nil, invalidf("cryptoType must not be blank")
		}
		sg.CryptoType = *p.CryptoType
	}
	if p.CurrentPercentage != nil {
		sg.CurrentPercentage = decimal.NewNullDecimal(*p.CurrentPercentage)
	}
	if p.SuggestedPercentage != nil {
		sg.SuggestedPercentage = decimal.NewNullDecimal(*p.SuggestedPercentage)
	}
	if p.Reason != nil {
		sg.Reason = *p.Reason
	}
	if err := s.reports.UpdateSuggestion(ctx, sg); err != nil {
		return nil, notFound(err, "suggestion %d", id)
	}
	return sg, nil
}

func (s *ReportService) DeleteSuggestion(ctx context.Context, id int64) error {
	if err := s.reports.DeleteSuggestion(ctx, id); err != nil {
		return notFound(err, "suggestion %d", id)
	}
	return nil
}
