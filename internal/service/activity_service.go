package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"worklog/internal/model"
)

// ActivityService projects change events into the per-project activity feed.
type ActivityService struct {
	activity ActivityStore
	logger   *zap.Logger
}

func NewActivityService(activity ActivityStore, logger *zap.Logger) *ActivityService {
	return &ActivityService{activity: activity, logger: logger}
}

// Record applies one event. Redelivered events are no-ops; a project.deleted
// event drops the project's whole feed.
func (s *ActivityService) Record(ctx context.Context, eventID int64, e model.ChangeEvent) error {
	if e.ProjectID == 0 {
		s.logger.Debug("Event without project, skipping",
			zap.Int64("event_id", eventID),
			zap.String("routing_key", e.RoutingKey()),
		)
		return nil
	}

	if e.EntityType == model.EntityProject && e.Action == model.ActionDeleted {
		n, err := s.activity.DeleteByProject(ctx, e.ProjectID)
		if err != nil {
			return fmt.Errorf("drop activity of project %d: %w", e.ProjectID, err)
		}
		s.logger.Info("Project activity dropped",
			zap.Int64("project_id", e.ProjectID),
			zap.Int64("rows", n),
		)
		return nil
	}

	inserted, err := s.activity.Insert(ctx, &model.ActivityEntry{
		EventID:    eventID,
		ProjectID:  e.ProjectID,
		UserID:     e.UserID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		OccurredAt: e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	if !inserted {
		s.logger.Debug("Activity already recorded", zap.Int64("event_id", eventID))
	}
	return nil
}
