package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/apperrors"
	"backoffice-backend/pkg/logger"
)

const codeInternal = "INTERNAL_ERROR"

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeAlreadyExists:
		return http.StatusConflict
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "code"}. Errors without a code are
// logged and reported with fallback as message.
func respondError(c *gin.Context, err error, fallback string) {
	code := apperrors.CodeOf(err)
	status := statusFor(code)

	message := apperrors.MessageOf(err)
	codeText := string(code)
	if code == "" {
		message = fallback
		codeText = codeInternal
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).Error(fallback)
	}

	c.JSON(status, gin.H{"error": message, "code": codeText})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": string(apperrors.CodeValidation)})
}

func respondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseID reads a positive numeric path parameter. It writes the 400 response itself.
func parseID(c *gin.Context, param, label string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || value == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID", "code": string(apperrors.CodeValidation)})
		return 0, false
	}
	return uint(value), true
}

func serviceUnavailable(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Service not configured", "code": codeInternal})
}
