package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date used for snapshot dates. Lexical order
// of dates in this layout matches calendar order.
const DateLayout = "2006-01-02"

// Holding is one asset position in the current portfolio. Value and
// Percentage are derived and stored alongside for reporting.
type Holding struct {
	ID         int64           `db:"id"`
	Symbol     string          `db:"crypto_type"`
	Quantity   decimal.Decimal `db:"quantity"`
	Price      decimal.Decimal `db:"price"`
	Value      decimal.Decimal `db:"value"`
	Percentage decimal.Decimal `db:"percentage"`
}

// HistorySnapshot records an asset's share of the portfolio on a date.
// TotalValue is the whole-portfolio total, identical across a date's rows.
type HistorySnapshot struct {
	ID         int64           `db:"id"`
	Date       string          `db:"snapshot_date"`
	Symbol     string          `db:"crypto_type"`
	Percentage decimal.Decimal `db:"percentage"`
	TotalValue decimal.Decimal `db:"total_value"`
}

// CryptoCurrency is the latest known price of a currency, keyed by symbol.
type CryptoCurrency struct {
	ID         int64               `db:"id"`
	Symbol     string              `db:"symbol"`
	Name       string              `db:"name"`
	USDPrice   decimal.NullDecimal `db:"usd_price"`
	CNYPrice   decimal.NullDecimal `db:"cny_price"`
	Change24h  decimal.NullDecimal `db:"change_24h"`
	Volume24h  decimal.NullDecimal `db:"volume_24h"`
	MarketCap  decimal.NullDecimal `db:"market_cap"`
	UpdateTime time.Time           `db:"update_time"`
}

// Message is a sentiment-tagged news item about one currency.
type Message struct {
	ID         int64     `db:"id"`
	CryptoType string    `db:"crypto_type"`
	Content    string    `db:"content"`
	Sentiment  string    `db:"sentiment"`
	Source     string    `db:"source"`
	SourceURL  string    `db:"source_url"`
	CreatedAt  time.Time `db:"created_at"`
	IsRead     bool      `db:"is_read"`
}

// MessageFilter narrows a message listing. The date range applies only when
// both bounds are set.
type MessageFilter struct {
	CryptoType string
	Sentiment  string
	Start      *time.Time
	End        *time.Time
}

const (
	ReportPending  = "pending"
	ReportApproved = "approved"
	ReportRejected = "rejected"
)

// Report is an analyst report grouping rebalancing suggestions.
type Report struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	MessageCount int       `db:"message_count"`
}

// Suggestion proposes a new target percentage for one currency.
type Suggestion struct {
	ID                  int64               `db:"id"`
	ReportID            int64               `db:"report_id"`
	CryptoType          string              `db:"crypto_type"`
	CurrentPercentage   decimal.NullDecimal `db:"current_percentage"`
	SuggestedPercentage decimal.NullDecimal `db:"suggested_percentage"`
	Reason              string              `db:"reason"`
}
