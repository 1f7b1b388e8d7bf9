package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worklog/internal/service"
	"worklog/pkg/logger"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success writes {success: true, message, data?}. A nil data is omitted.
func Success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Fail writes {success: false, message}.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an envelope. Internal errors are logged with their
// cause and answered with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		appErr = service.InternalError("unclassified", err)
	}

	status := StatusOf(appErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.WithTrace(c.Request.Context(), log).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(appErr),
		)
	}
	Fail(c, status, appErr.Message)
}
