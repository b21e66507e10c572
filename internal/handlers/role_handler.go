package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/middleware"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/service"
)

type RoleHandler struct {
	service *service.RoleService
}

func NewRoleHandler(service *service.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

func (h *RoleHandler) List(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var query models.RoleListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to load roles")
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *RoleHandler) Get(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "role")
	if !ok {
		return
	}

	role, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load role")
		return
	}

	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) Create(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role, err := h.service.Create(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err, "Failed to create role")
		return
	}

	c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) Update(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "role")
	if !ok {
		return
	}

	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role, err := h.service.Update(c.Request.Context(), middleware.ActorFromContext(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to update role")
		return
	}

	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) Delete(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	id, ok := parseID(c, "id", "role")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err, "Failed to delete role")
		return
	}

	respondSuccess(c)
}

func (h *RoleHandler) Reorder(c *gin.Context) {
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
		respondError(c, err, "Failed to reorder roles")
		return
	}

	respondSuccess(c)
}
