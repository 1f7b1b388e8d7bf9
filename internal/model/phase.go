package model

import "time"

const DefaultPhaseStatus = "not_started"

type Phase struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	PhaseName   string    `json:"phase_name"`
	Description *string   `json:"description"`
	Status      string    `json:"status"` // not_started / in_progress / completed
	PhaseOrder  int       `json:"phase_order"`
	StartDate   *Date     `json:"start_date"`
	EndDate     *Date     `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// PhaseSummary adds work-log totals to a phase.
type PhaseSummary struct {
	Phase
	TotalWorkLogs int64 `json:"total_worklogs"`
	TotalHours    Hours `json:"total_hours"`
}

type PhaseDetail struct {
	PhaseSummary
	ProjectName *string `json:"project_name"`
}

type CreatePhaseInput struct {
	ProjectID   int64
	PhaseName   string
	Description *string
	Status      string
	PhaseOrder  int
	StartDate   *Date
	EndDate     *Date
}

// UpdatePhaseInput: nil members keep the stored value.
type UpdatePhaseInput struct {
	PhaseName   *string
	Description *string
	Status      *string
	PhaseOrder  *int
	StartDate   *Date
	EndDate     *Date
}
