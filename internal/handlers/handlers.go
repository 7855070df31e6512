package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cryptofolio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	portfolio *service.PortfolioService
	crypto    *service.CryptoService
	messages  *service.MessageService
	reports   *service.ReportService
	system    *service.SystemService
	log       *logrus.Logger
}

func NewHandler(
	portfolio *service.PortfolioService,
	crypto *service.CryptoService,
	messages *service.MessageService,
	reports *service.ReportService,
	system *service.SystemService,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		portfolio: portfolio,
		crypto:    crypto,
		messages:  messages,
		reports:   reports,
		system:    system,
		log:       log,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")

	p := api.Group("/portfolio")
	p.GET("/current", h.GetCurrentPortfolio)
	p.GET("/history", h.GetPortfolioHistory)
	p.GET("/history/:date", h.GetPortfolioHistoryOn)
	p.PUT("", h.UpdatePortfolio)
	p.GET("/ai/holdings", h.GetAIHoldings)
	p.POST("/init-test-data", h.InitTestData)

	api.POST("/crypto/batch-save", h.BatchSaveCrypto)
	api.GET("/crypto/list", h.ListCrypto)

	m := api.Group("/messages")
	m.GET("", h.ListMessages)
	m.GET("/:id", h.GetMessage)
	m.PUT("/:id/read", h.MarkMessageRead)
	m.POST("", h.CreateMessage)
	m.POST("/batch-save", h.BatchSaveMessages)

	rp := api.Group("/reports")
	rp.GET("", h.ListReports)
	rp.GET("/:id", h.GetReport)
	rp.PUT("/:id/status", h.UpdateReportStatus)
	rp.POST("", h.CreateReport)
	rp.GET("/:id/suggestions", h.ListSuggestions)
	rp.POST("/:id/suggestions", h.AddSuggestion)

	api.PUT("/suggestions/:id", h.UpdateSuggestion)
	api.DELETE("/suggestions/:id", h.DeleteSuggestion)

	api.GET("/system/overview", h.GetSystemOverview)
	api.POST("/system/settings", h.SaveSystemSettings)
}

// fail writes the response for a service error. Validation and not-found
// errors carry their message; anything else is logged and hidden.
func (h *Handler) fail(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.log.Warnf("%s: %v", what, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Errorf("%s: %v", what, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": what})
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.log.Warnf("invalid request %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return n, true
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func nullNum(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// flexTime accepts RFC 3339 timestamps as well as zone-less local ones.
type flexTime struct {
	time.Time
}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
