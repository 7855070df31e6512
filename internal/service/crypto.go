package service

import (
	"context"
	"strings"

	"cryptofolio/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	maxSymbolLen  = 20
	maxNameLen    = 50
	maxPriceDigit = 16
	maxPriceScale = 8
)

// BatchResult counts the outcome of a batch save. Items failing validation
// or storage are skipped and counted as failed.
type BatchResult struct {
	Attempted int
	Succeeded int
	Failed    int
}

type CryptoService struct {
	store CryptoStore
	log   *logrus.Logger
}

func NewCryptoService(store CryptoStore, log *logrus.Logger) *CryptoService {
	return &CryptoService{store: store, log: log}
}

func precision(d decimal.Decimal) int {
	return len(d.Abs().Coefficient().String())
}

func scale(d decimal.Decimal) int {
	if e := d.Exponent(); e < 0 {
		return int(-e)
	}
	return 0
}

func validateCurrency(c models.CryptoCurrency) error {
	sym := strings.TrimSpace(c.Symbol)
	switch {
	case sym == "":
		return invalidf("symbol is required")
	case strings.TrimSpace(c.Name) == "":
		return invalidf("%s: name is required", sym)
	case !c.USDPrice.Valid:
		return invalidf("%s: usd_price is required", sym)
	case c.UpdateTime.IsZero():
		return invalidf("%s: updateTime is required", sym)
	case len(c.Symbol) > maxSymbolLen:
		return invalidf("symbol %q longer than %d characters", sym, maxSymbolLen)
	case len(c.Name) > maxNameLen:
		return invalidf("%s: name longer than %d characters", sym, maxNameLen)
	case precision(c.USDPrice.Decimal) > maxPriceDigit:
		return invalidf("%s: usd_price %s has more than %d digits", sym, c.USDPrice.Decimal, maxPriceDigit)
	case scale(c.USDPrice.Decimal) > maxPriceScale:
		return invalidf("%s: usd_price %s has more than %d decimals", sym, c.USDPrice.Decimal, maxPriceScale)
	}
	return nil
}

// BatchSave validates and upserts every currency by symbol.
func (s *CryptoService) BatchSave(ctx context.Context, items []models.CryptoCurrency) (BatchResult, error) {
	if len(items) == 0 {
		return BatchResult{}, invalidf("batch is empty")
	}
	res := BatchResult{Attempted: len(items)}
	for i := range items {
		c := items[i]
		if err := validateCurrency(c); err != nil {
			s.log.Warnf("skip currency %d: %v", i, err)
			res.Failed++
			continue
		}
		if err := s.store.UpsertCurrency(ctx, &c); err != nil {
			s.log.Errorf("save currency %s failed: %v", c.Symbol, err)
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	s.log.WithFields(logrus.Fields{
		"attempted": res.Attempted,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	}).Info("currency batch saved")
	return res, nil
}

func (s *CryptoService) List(ctx context.Context) ([]models.CryptoCurrency, error) {
	return s.store.ListCurrencies(ctx)
}
