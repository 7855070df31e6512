package database

import (
	"context"
	"fmt"

	"cryptofolio/internal/models"

	"github.com/jmoiron/sqlx"
)

// UpsertCurrency inserts a currency or, when its symbol already exists,
// overwrites the stored name, prices and update time.
func (r *Repo) UpsertCurrency(ctx context.Context, c *models.CryptoCurrency) error {
	q := `INSERT INTO crypto_currency (symbol, name, usd_price, cny_price, change_24h, volume_24h, market_cap, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			name = excluded.name,
			usd_price = excluded.usd_price,
			cny_price = excluded.cny_price,
			change_24h = excluded.change_24h,
			volume_24h = excluded.volume_24h,
			market_cap = excluded.market_cap,
			update_time = excluded.update_time`
	id, err := insertReturningID(ctx, r.db, q,
		c.Symbol, c.Name, c.USDPrice, c.CNYPrice, c.Change24h, c.Volume24h, c.MarketCap, c.UpdateTime.UTC())
	if err != nil {
		return fmt.Errorf("upsert currency %s: %w", c.Symbol, err)
	}
	c.ID = id
	return nil
}

func (r *Repo) ListCurrencies(ctx context.Context) ([]models.CryptoCurrency, error) {
	res := []models.CryptoCurrency{}
	q := `SELECT id, symbol, name, usd_price, cny_price, change_24h, volume_24h, market_cap, update_time FROM crypto_currency ORDER BY id ASC`
	if err := sqlx.SelectContext(ctx, r.db, &res, q); err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return res, nil
}
