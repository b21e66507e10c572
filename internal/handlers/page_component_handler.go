package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/middleware"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/service"
)

type PageComponentHandler struct {
	service *service.PageComponentService
}

func NewPageComponentHandler(service *service.PageComponentService) *PageComponentHandler {
	return &PageComponentHandler{service: service}
}

func (h *PageComponentHandler) List(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load page components")
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *PageComponentHandler) Get(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "component")
	if !ok {
		return
	}

	component, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load page component")
		return
	}

	c.JSON(http.StatusOK, component)
}

// Schema returns the JSON Schema of the values a component block accepts.
func (h *PageComponentHandler) Schema(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "component")
	if !ok {
		return
	}

	schema, err := h.service.Schema(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to build component schema")
		return
	}

	c.JSON(http.StatusOK, schema)
}

func (h *PageComponentHandler) Create(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var req models.PageComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	component, err := h.service.Create(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err, "Failed to create page component")
		return
	}

	c.JSON(http.StatusCreated, component)
}

func (h *PageComponentHandler) Update(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "component")
	if !ok {
		return
	}

	var req models.PageComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	component, err := h.service.Update(c.Request.Context(), middleware.ActorFromContext(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to update page component")
		return
	}

	c.JSON(http.StatusOK, component)
}

func (h *PageComponentHandler) Delete(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "component")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err, "Failed to delete page component")
		return
	}

	respondSuccess(c)
}
