package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/middleware"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/service"
)

type PageHandler struct {
	service *service.PageService
}

func NewPageHandler(service *service.PageService) *PageHandler {
	return &PageHandler{service: service}
}

func (h *PageHandler) List(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load pages")
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *PageHandler) Get(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "page")
	if !ok {
		return
	}

	page, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load page")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetBySlug serves the public page lookup.
func (h *PageHandler) GetBySlug(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	page, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to load page")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *PageHandler) Create(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var req models.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.service.Create(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err, "Failed to create page")
		return
	}

	c.JSON(http.StatusCreated, page)
}

func (h *PageHandler) Delete(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "page")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err, "Failed to delete page")
		return
	}

	respondSuccess(c)
}

func (h *PageHandler) Reorder(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.service.Reorder(c.Request.Context(), middleware.ActorFromContext(c), req.Entries); err != nil {
		respondError(c, err, "Failed to reorder pages")
		return
	}

	respondSuccess(c)
}

func (h *PageHandler) CreateBlock(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var req models.CreatePageBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	block, err := h.service.CreateBlock(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err, "Failed to create page block")
		return
	}

	c.JSON(http.StatusCreated, block)
}

func (h *PageHandler) DeleteBlock(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "page block")
	if !ok {
		return
	}

	if err := h.service.DeleteBlock(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err, "Failed to delete page block")
		return
	}

	respondSuccess(c)
}

func (h *PageHandler) ReorderBlocks(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	pageID, ok := parseID(c, "id", "page")
	if !ok {
		return
	}

	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.service.ReorderBlocks(c.Request.Context(), middleware.ActorFromContext(c), pageID, req.Entries); err != nil {
		respondError(c, err, "Failed to reorder page blocks")
		return
	}

	respondSuccess(c)
}
