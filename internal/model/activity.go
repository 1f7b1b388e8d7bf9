package model

import "time"

// 实体类型
const (
	EntityProject = "project"
	EntityPhase   = "phase"
	EntityWorkLog = "worklog"
)

// 动作
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is the outbox payload written next to every mutation.
type ChangeEvent struct {
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Action     string    `json:"action"`
	ProjectID  int64     `json:"project_id"`
	UserID     int64     `json:"user_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoutingKey e.g. "worklog.created"
func (e ChangeEvent) RoutingKey() string {
	return e.EntityType + "." + e.Action
}

// ActivityEntry is one line of a project's activity feed.
type ActivityEntry struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"event_id"`
	ProjectID  int64     `json:"project_id"`
	UserID     int64     `json:"user_id"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}
