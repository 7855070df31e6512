package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSystemOverview(c *gin.Context) {
	ov, err := h.system.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get overview failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"unreadMessages": ov.UnreadMessages,
		"pendingReports": ov.PendingReports,
		"totalAssets":    num(ov.TotalAssets),
	})
}

func (h *Handler) SaveSystemSettings(c *gin.Context) {
	var settings map[string]interface{}
	if err := c.ShouldBindJSON(&settings); err != nil {
		h.badRequest(c, err)
		return
	}
	saved, err := h.system.SaveSettings(c.Request.Context(), settings)
	if err != nil {
		h.fail(c, err, "save settings failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "settings saved", "settings": saved})
}
