package handlers

import (
	"net/http"
	"time"

	"cryptofolio/internal/models"
	"cryptofolio/internal/service"

	"github.com/gin-gonic/gin"
)

type messageJSON struct {
	ID         int64     `json:"id"`
	CryptoType string    `json:"cryptoType"`
	Content    string    `json:"content"`
	Sentiment  string    `json:"sentiment"`
	Source     string    `json:"source"`
	SourceURL  string    `json:"sourceUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	IsRead     bool      `json:"isRead"`
}

func toMessageJSON(m models.Message) messageJSON {
	return messageJSON{
		ID:         m.ID,
		CryptoType: m.CryptoType,
		Content:    m.Content,
		Sentiment:  m.Sentiment,
		Source:     m.Source,
		SourceURL:  m.SourceURL,
		CreatedAt:  m.CreatedAt,
		IsRead:     m.IsRead,
	}
}

func toMessagesJSON(msgs []models.Message) []messageJSON {
	res := make([]messageJSON, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, toMessageJSON(m))
	}
	return res
}

type MessageRequest struct {
	CryptoType string   `json:"cryptoType"`
	Content    string   `json:"content"`
	Sentiment  string   `json:"sentiment"`
	Source     string   `json:"source"`
	SourceURL  string   `json:"sourceUrl"`
	CreatedAt  flexTime `json:"createdAt"`
}

func (r MessageRequest) model() models.Message {
	return models.Message{
		CryptoType: r.CryptoType,
		Content:    r.Content,
		Sentiment:  r.Sentiment,
		Source:     r.Source,
		SourceURL:  r.SourceURL,
		CreatedAt:  r.CreatedAt.Time,
	}
}

func pageJSON[T, J any](p service.Page[T], conv func([]T) []J) gin.H {
	return gin.H{"total": p.Total, "pages": p.Pages, "current": p.Current, "records": conv(p.Records)}
}

// dateBound parses a query bound. A bare date means the start of that day,
// or its last instant when end is set.
func dateBound(v string, end bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(models.DateLayout, v, time.Local); err == nil {
		if end {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) ListMessages(c *gin.Context) {
	page, ok := intQuery(c, "page", 1)
	if !ok {
		return
	}
	size, ok := intQuery(c, "size", 10)
	if !ok {
		return
	}
	f := models.MessageFilter{CryptoType: c.Query("cryptoType"), Sentiment: c.Query("sentiment")}
	var err error
	if f.Start, err = dateBound(c.Query("startDate"), false); err != nil {
		h.badRequest(c, err)
		return
	}
	if f.End, err = dateBound(c.Query("endDate"), true); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.messages.List(c.Request.Context(), f, page, size)
	if err != nil {
		h.fail(c, err, "list messages failed")
		return
	}
	c.JSON(http.StatusOK, pageJSON(res, toMessagesJSON))
}

func (h *Handler) GetMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	m, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get message failed")
		return
	}
	c.JSON(http.StatusOK, toMessageJSON(*m))
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.messages.MarkRead(c.Request.Context(), id); err != nil {
		h.fail(c, err, "mark read failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "message marked as read"})
}

func (h *Handler) CreateMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	m := req.model()
	if err := h.messages.Save(c.Request.Context(), &m); err != nil {
		h.fail(c, err, "save message failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "message saved", "data": toMessageJSON(m)})
}

func (h *Handler) BatchSaveMessages(c *gin.Context) {
	var req []MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	msgs := make([]models.Message, 0, len(req))
	for _, r := range req {
		msgs = append(msgs, r.model())
	}
	saved, res, err := h.messages.SaveBatch(c.Request.Context(), msgs)
	if err != nil {
		h.fail(c, err, "batch save failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "messages saved",
		"data":      toMessagesJSON(saved),
		"count":     res.Succeeded,
		"attempted": res.Attempted,
		"failed":    res.Failed,
	})
}
