package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/pkg/logger"
	"worklog/pkg/mq"
)

const activityHandlerName = "project_activity"

// ActivityRecorder is implemented by service.ActivityService.
type ActivityRecorder interface {
	Record(ctx context.Context, eventID int64, e model.ChangeEvent) error
}

// Deduper is implemented by util.Deduper.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler string, messageID string) bool
	Release(ctx context.Context, handler string, messageID string)
}

// ActivityHandler writes change events into the project activity feed.
type ActivityHandler struct {
	recorder ActivityRecorder
	deduper  Deduper
	logger   *zap.Logger
}

// NewActivityHandler accepts a nil deduper; the feed insert is idempotent on its own.
func NewActivityHandler(recorder ActivityRecorder, deduper Deduper, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		recorder: recorder,
		deduper:  deduper,
		logger:   logger,
	}
}

// RoutingKeys every change event the feed cares about
func (h *ActivityHandler) RoutingKeys() []string {
	var keys []string
	for _, entity := range []string{model.EntityProject, model.EntityPhase, model.EntityWorkLog} {
		for _, action := range []string{model.ActionCreated, model.ActionUpdated, model.ActionDeleted} {
			keys = append(keys, model.ChangeEvent{EntityType: entity, Action: action}.RoutingKey())
		}
	}
	return keys
}

// Handle -- 写入 project_activity
func (h *ActivityHandler) Handle(ctx context.Context, d mq.Delivery) error {
	log := logger.WithTrace(ctx, h.logger)

	eventID, err := strconv.ParseInt(d.MessageID, 10, 64)
	if err != nil {
		log.Error("Invalid message id", zap.String("message_id", d.MessageID))
		return fmt.Errorf("invalid message id %q: %w", d.MessageID, err)
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, activityHandlerName, d.MessageID) {
		return nil
	}

	var e model.ChangeEvent
	if err := json.Unmarshal(d.Body, &e); err != nil {
		log.Error("Failed to unmarshal change event", zap.Int64("event_id", eventID), zap.Error(err))
		return err
	}

	if err := h.recorder.Record(ctx, eventID, e); err != nil {
		if h.deduper != nil {
			h.deduper.Release(ctx, activityHandlerName, d.MessageID)
		}
		log.Error("Failed to record activity",
			zap.Int64("event_id", eventID),
			zap.String("routing_key", d.RoutingKey),
			zap.Error(err),
		)
		return err
	}

	log.Debug("Activity recorded",
		zap.Int64("event_id", eventID),
		zap.String("routing_key", d.RoutingKey),
		zap.Int64("project_id", e.ProjectID),
	)
	return nil
}
