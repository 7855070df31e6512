package service

import (
	"context"

	"cryptofolio/internal/models"
	"cryptofolio/internal/valuation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Overview struct {
	UnreadMessages int
	PendingReports int
	TotalAssets    decimal.Decimal
}

type SystemService struct {
	messages  MessageStore
	reports   ReportStore
	portfolio PortfolioStore
	log       *logrus.Logger
}

func NewSystemService(messages MessageStore, reports ReportStore, portfolio PortfolioStore, log *logrus.Logger) *SystemService {
	return &SystemService{messages: messages, reports: reports, portfolio: portfolio, log: log}
}

func (s *SystemService) Overview(ctx context.Context) (Overview, error) {
	unread, err := s.messages.CountUnreadMessages(ctx)
	if err != nil {
		return Overview{}, err
	}
	pending, err := s.reports.CountReports(ctx, models.ReportPending)
	if err != nil {
		return Overview{}, err
	}
	holdings, err := s.portfolio.ListHoldings(ctx)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		UnreadMessages: unread,
		PendingReports: pending,
		TotalAssets:    valuation.Compute(holdings).TotalValue,
	}, nil
}

// SaveSettings acknowledges a settings payload without persisting it.
func (s *SystemService) SaveSettings(_ context.Context, settings map[string]interface{}) (map[string]interface{}, error) {
	if len(settings) == 0 {
		return nil, invalidf("settings are empty")
	}
	s.log.WithField("keys", len(settings)).Info("system settings received")
	return settings, nil
}
