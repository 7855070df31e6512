package handlers

import (
	"net/http"
	"time"

	"cryptofolio/internal/service"
	"cryptofolio/internal/valuation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type holdingJSON struct {
	ID         int64   `json:"id"`
	CryptoType string  `json:"cryptoType"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type portfolioJSON struct {
	TotalValue float64       `json:"totalValue"`
	Items      []holdingJSON `json:"items"`
}

func toPortfolioJSON(res valuation.Result) portfolioJSON {
	out := portfolioJSON{TotalValue: num(res.TotalValue), Items: []holdingJSON{}}
	for _, it := range res.Items {
		out.Items = append(out.Items, holdingJSON{
			ID:         it.ID,
			CryptoType: it.Symbol,
			Quantity:   num(it.Quantity),
			Price:      num(it.Price),
			Value:      num(it.Value),
			Percentage: num(it.Percentage),
		})
	}
	return out
}

type snapshotItemJSON struct {
	CryptoType string  `json:"cryptoType"`
	Percentage float64 `json:"percentage"`
}

type daySnapshotJSON struct {
	Date       string             `json:"date"`
	TotalValue float64            `json:"totalValue"`
	Items      []snapshotItemJSON `json:"items"`
}

func toDayJSON(d service.DaySnapshot) daySnapshotJSON {
	out := daySnapshotJSON{Date: d.Date, TotalValue: num(d.TotalValue), Items: []snapshotItemJSON{}}
	for _, it := range d.Items {
		out.Items = append(out.Items, snapshotItemJSON{CryptoType: it.Symbol, Percentage: num(it.Percentage)})
	}
	return out
}

func (h *Handler) GetCurrentPortfolio(c *gin.Context) {
	res, err := h.portfolio.Current(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get portfolio failed")
		return
	}
	c.JSON(http.StatusOK, toPortfolioJSON(res))
}

func (h *Handler) GetPortfolioHistory(c *gin.Context) {
	days, ok := intQuery(c, "days", service.DefaultHistoryDays)
	if !ok {
		return
	}
	hist, err := h.portfolio.History(c.Request.Context(), days)
	if err != nil {
		h.fail(c, err, "get history failed")
		return
	}
	res := []daySnapshotJSON{}
	for _, d := range hist {
		res = append(res, toDayJSON(d))
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetPortfolioHistoryOn(c *gin.Context) {
	day, err := h.portfolio.HistoryOn(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.fail(c, err, "get history failed")
		return
	}
	c.JSON(http.StatusOK, toDayJSON(day))
}

type UpdatePortfolioRequest struct {
	Items []struct {
		CryptoType string          `json:"cryptoType"`
		Quantity   decimal.Decimal `json:"quantity"`
		Price      decimal.Decimal `json:"price"`
	} `json:"items"`
}

func (h *Handler) UpdatePortfolio(c *gin.Context) {
	var req UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	items := make([]service.HoldingInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.HoldingInput{Symbol: it.CryptoType, Quantity: it.Quantity, Price: it.Price})
	}
	res, err := h.portfolio.Update(c.Request.Context(), items)
	if err != nil {
		h.fail(c, err, "update portfolio failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "portfolio updated", "data": toPortfolioJSON(res)})
}

type aiHoldingJSON struct {
	Asset      string  `json:"asset"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

func (h *Handler) GetAIHoldings(c *gin.Context) {
	view, err := h.portfolio.AIHoldings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get holdings failed")
		return
	}
	holdings := []aiHoldingJSON{}
	for _, it := range view.Items {
		holdings = append(holdings, aiHoldingJSON{
			Asset:      it.Symbol,
			Quantity:   num(it.Quantity),
			Price:      num(it.Price),
			Value:      num(it.Value),
			Percentage: num(it.Percentage),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"totalValueUSD": num(view.TotalValue),
		"holdings":      holdings,
		"timestamp":     view.Timestamp.Format(time.RFC3339),
	})
}

func (h *Handler) InitTestData(c *gin.Context) {
	res, err := h.portfolio.SeedTestData(c.Request.Context())
	if err != nil {
		h.fail(c, err, "init test data failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "test data initialised", "data": toPortfolioJSON(res)})
}
