// Package valuation turns a set of holdings into portfolio totals and
// per-asset shares. It is pure: no storage, no clock.
package valuation

import (
	"cryptofolio/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is one valued holding.
type Item struct {
	ID         int64
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Value      decimal.Decimal
	Percentage decimal.Decimal
}

// Result is the valuation of a whole holding set. Items keep the input order.
type Result struct {
	TotalValue decimal.Decimal
	Items      []Item
}

// Compute values every holding at quantity*price and derives its percentage
// of the total. When the total is zero every percentage is zero.
func Compute(holdings []models.Holding) Result {
	items := make([]Item, 0, len(holdings))
	total := decimal.Zero
	for _, h := range holdings {
		value := h.Quantity.Mul(h.Price)
		total = total.Add(value)
		items = append(items, Item{
			ID:       h.ID,
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			Price:    h.Price,
			Value:    value,
		})
	}
	for i := range items {
		items[i].Percentage = Percentage(items[i].Value, total)
	}
	return Result{TotalValue: total, Items: items}
}

// Percentage returns part/total*100, or zero for a zero total.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total)
}

// Holdings returns the valued items as holding records carrying the derived
// value and percentage, ready to be persisted.
func (r Result) Holdings() []models.Holding {
	res := make([]models.Holding, 0, len(r.Items))
	for _, it := range r.Items {
		res = append(res, models.Holding{
			ID:         it.ID,
			Symbol:     it.Symbol,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Value:      it.Value,
			Percentage: it.Percentage,
		})
	}
	return res
}

// Snapshots builds one history row per item for the given date, all sharing
// the portfolio total.
func (r Result) Snapshots(date string) []models.HistorySnapshot {
	res := make([]models.HistorySnapshot, 0, len(r.Items))
	for _, it := range r.Items {
		res = append(res, models.HistorySnapshot{
			Date:       date,
			Symbol:     it.Symbol,
			Percentage: it.Percentage,
			TotalValue: r.TotalValue,
		})
	}
	return res
}
