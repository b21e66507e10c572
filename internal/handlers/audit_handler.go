package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/models"
	"backoffice-backend/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var query models.AuditLogListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to load audit logs")
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *AuditHandler) Recent(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var query models.RecentAuditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	logs, err := h.service.Recent(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to load audit logs")
		return
	}

	c.JSON(http.StatusOK, logs)
}
