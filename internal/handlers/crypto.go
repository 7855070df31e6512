package handlers

import (
	"net/http"
	"time"

	"cryptofolio/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CryptoRequest struct {
	Symbol     string              `json:"symbol"`
	Name       string              `json:"name"`
	USDPrice   decimal.NullDecimal `json:"usd_price"`
	CNYPrice   decimal.NullDecimal `json:"cny_price"`
	Change24h  decimal.NullDecimal `json:"change_24h"`
	Volume24h  decimal.NullDecimal `json:"volume_24h"`
	MarketCap  decimal.NullDecimal `json:"market_cap"`
	UpdateTime flexTime            `json:"updateTime"`
}

type cryptoJSON struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	USDPrice   *float64  `json:"usd_price"`
	CNYPrice   *float64  `json:"cny_price"`
	Change24h  *float64  `json:"change_24h"`
	Volume24h  *float64  `json:"volume_24h"`
	MarketCap  *float64  `json:"market_cap"`
	UpdateTime time.Time `json:"updateTime"`
}

func (h *Handler) BatchSaveCrypto(c *gin.Context) {
	var req []CryptoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	items := make([]models.CryptoCurrency, 0, len(req))
	for _, r := range req {
		items = append(items, models.CryptoCurrency{
			Symbol:     r.Symbol,
			Name:       r.Name,
			USDPrice:   r.USDPrice,
			CNYPrice:   r.CNYPrice,
			Change24h:  r.Change24h,
			Volume24h:  r.Volume24h,
			MarketCap:  r.MarketCap,
			UpdateTime: r.UpdateTime.Time,
		})
	}
	res, err := h.crypto.BatchSave(c.Request.Context(), items)
	if err != nil {
		h.fail(c, err, "batch save failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":      http.StatusOK,
		"message":   "batch processed",
		"attempted": res.Attempted,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	})
}

func (h *Handler) ListCrypto(c *gin.Context) {
	list, err := h.crypto.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list currencies failed")
		return
	}
	res := make([]cryptoJSON, 0, len(list))
	for _, cc := range list {
		res = append(res, cryptoJSON{
			ID:         cc.ID,
			Symbol:     cc.Symbol,
			Name:       cc.Name,
			USDPrice:   nullNum(cc.USDPrice),
			CNYPrice:   nullNum(cc.CNYPrice),
			Change24h:  nullNum(cc.Change24h),
			Volume24h:  nullNum(cc.Volume24h),
			MarketCap:  nullNum(cc.MarketCap),
			UpdateTime: cc.UpdateTime,
		})
	}
	c.JSON(http.StatusOK, res)
}
