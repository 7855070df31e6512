package handlers

import (
	"net/http"
	"time"

	"cryptofolio/internal/models"
	"cryptofolio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type reportJSON struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

func toReportJSON(r models.Report) reportJSON {
	return reportJSON{ID: r.ID, Title: r.Title, Status: r.Status, CreatedAt: r.CreatedAt, MessageCount: r.MessageCount}
}

func toReportsJSON(reps []models.Report) []reportJSON {
	res := make([]reportJSON, 0, len(reps))
	for _, r := range reps {
		res = append(res, toReportJSON(r))
	}
	return res
}

type suggestionJSON struct {
	ID                  int64    `json:"id"`
	ReportID            int64    `json:"reportId"`
	CryptoType          string   `json:"cryptoType"`
	CurrentPercentage   *float64 `json:"currentPercentage"`
	SuggestedPercentage *float64 `json:"suggestedPercentage"`
	Reason              string   `json:"reason"`
}

func toSuggestionJSON(s models.Suggestion) suggestionJSON {
	return suggestionJSON{
		ID:                  s.ID,
		ReportID:            s.ReportID,
		CryptoType:          s.CryptoType,
		CurrentPercentage:   nullNum(s.CurrentPercentage),
		SuggestedPercentage: nullNum(s.SuggestedPercentage),
		Reason:              s.Reason,
	}
}

func toSuggestionsJSON(list []models.Suggestion) []suggestionJSON {
	res := make([]suggestionJSON, 0, len(list))
	for _, s := range list {
		res = append(res, toSuggestionJSON(s))
	}
	return res
}

type reportMessageJSON struct {
	ID         int64  `json:"id"`
	CryptoType string `json:"cryptoType"`
	Content    string `json:"content"`
	Sentiment  string `json:"sentiment"`
}

func (h *Handler) ListReports(c *gin.Context) {
	page, ok := intQuery(c, "page", 1)
	if !ok {
		return
	}
	size, ok := intQuery(c, "size", 10)
	if !ok {
		return
	}
	res, err := h.reports.List(c.Request.Context(), c.Query("status"), page, size)
	if err != nil {
		h.fail(c, err, "list reports failed")
		return
	}
	c.JSON(http.StatusOK, pageJSON(res, toReportsJSON))
}

func (h *Handler) GetReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	det, err := h.reports.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get report failed")
		return
	}
	msgs := make([]reportMessageJSON, 0, len(det.Messages))
	for _, m := range det.Messages {
		msgs = append(msgs, reportMessageJSON{ID: m.ID, CryptoType: m.CryptoType, Content: m.Content, Sentiment: m.Sentiment})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                det.ID,
		"title":             det.Title,
		"status":            det.Status,
		"createdAt":         det.CreatedAt,
		"messages":          msgs,
		"portfolioSnapshot": toPortfolioJSON(det.Portfolio),
		"suggestions":       toSuggestionsJSON(det.Suggestions),
	})
}

type StatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateReportStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	status, err := h.reports.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err, "update report status failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "report status updated", "status": status})
}

type CreateReportRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

func (h *Handler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}
	rep, err := h.reports.Create(c.Request.Context(), req.Title, req.Status)
	if err != nil {
		h.fail(c, err, "create report failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "report created",
		"id":           rep.ID,
		"title":        rep.Title,
		"status":       rep.Status,
		"createdAt":    rep.CreatedAt,
		"messageCount": rep.MessageCount,
	})
}

func (h *Handler) ListSuggestions(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	list, err := h.reports.Suggestions(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "list suggestions failed")
		return
	}
	c.JSON(http.StatusOK, toSuggestionsJSON(list))
}

type SuggestionRequest struct {
	CryptoType          string              `json:"cryptoType"`
	CurrentPercentage   decimal.NullDecimal `json:"currentPercentage"`
	SuggestedPercentage decimal.NullDecimal `json:"suggestedPercentage"`
	Reason              string              `json:"reason"`
}

func (h *Handler) AddSuggestion(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	sg := &models.Suggestion{
		CryptoType:          req.CryptoType,
		CurrentPercentage:   req.CurrentPercentage,
		SuggestedPercentage: req.SuggestedPercentage,
		Reason:              req.Reason,
	}
	if err := h.reports.AddSuggestion(c.Request.Context(), id, sg); err != nil {
		h.fail(c, err, "add suggestion failed")
		return
	}
	c.JSON(http.StatusCreated, toSuggestionJSON(*sg))
}

// SuggestionPatchRequest leaves absent fields nil.
type SuggestionPatchRequest struct {
	CryptoType          *string          `json:"cryptoType"`
	CurrentPercentage   *decimal.Decimal `json:"currentPercentage"`
	SuggestedPercentage *decimal.Decimal `json:"suggestedPercentage"`
	Reason              *string          `json:"reason"`
}

func (h *Handler) UpdateSuggestion(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req SuggestionPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	sg, err := h.reports.UpdateSuggestion(c.Request.Context(), id, service.SuggestionPatch{
		CryptoType:          req.CryptoType,
		CurrentPercentage:   req.CurrentPercentage,
		SuggestedPercentage: req.SuggestedPercentage,
		Reason:              req.Reason,
	})
	if err != nil {
		h.fail(c, err, "update suggestion failed")
		return
	}
	c.JSON(http.StatusOK, toSuggestionJSON(*sg))
}

func (h *Handler) DeleteSuggestion(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.reports.DeleteSuggestion(c.Request.Context(), id); err != nil {
		h.fail(c, err, "delete suggestion failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "suggestion deleted"})
}
