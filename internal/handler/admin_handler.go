package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worklog/pkg/logger"
	"worklog/pkg/outbox"
)

// OutboxReplayer is implemented by outbox.ReplayService.
type OutboxReplayer interface {
	ReplayEvent(ctx context.Context, eventID int64) error
	ReplayFailedEvents(ctx context.Context, limit int) (int, error)
}

const defaultReplayLimit = 100

type AdminHandler struct {
	replayService OutboxReplayer
	logger        *zap.Logger
}

func NewAdminHandler(replayService OutboxReplayer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		replayService: replayService,
		logger:        logger,
	}
}

// ReplayOutboxEvent 重放指定的 Outbox 事件
// POST /api/admin/outbox/replay?id=xxx
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		Fail(c, http.StatusBadRequest, "Missing id parameter")
		return
	}

	eventID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.replayService.ReplayEvent(c.Request.Context(), eventID); err != nil {
		if errors.Is(err, outbox.ErrEventNotFound) {
			Fail(c, http.StatusNotFound, "Outbox event not found")
			return
		}
		logger.WithTrace(c.Request.Context(), h.logger).Error("Failed to replay event",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		Fail(c, http.StatusInternalServerError, "Failed to replay event")
		return
	}

	Success(c, http.StatusOK, "Event replayed", gin.H{"event_id": eventID})
}

// ReplayFailedEvents 重放所有失败的事件
// POST /api/admin/outbox/replay-failed?limit=100
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultReplayLimit)))
	if err != nil || limit <= 0 {
		limit = defaultReplayLimit
	}

	successCount, err := h.replayService.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("Failed to replay failed events", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "Failed to replay failed events")
		return
	}

	Success(c, http.StatusOK, "Failed events replayed", gin.H{
		"success_count": successCount,
		"limit":         limit,
	})
}
