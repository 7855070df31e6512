package valuation

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as US dollars, e.g. "$97,500.00". Fractions
// below a cent are truncated.
func FormatUSD(amount decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).IntPart(), money.USD).Display()
}
