package model

import "time"

const (
	MinHours = 0
	MaxHours = 24
)

type WorkLog struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ProjectID       int64     `json:"project_id"`
	PhaseID         *int64    `json:"phase_id"`
	LogDate         Date      `json:"log_date"`
	WorkDescription string    `json:"work_description"`
	HoursSpent      *float64  `json:"hours_spent"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// WorkLogView is a work log joined with its author, project and phase names.
type WorkLogView struct {
	WorkLog
	UserName    *string `json:"user_name,omitempty"`
	UserEmail   *string `json:"user_email,omitempty"`
	ProjectName *string `json:"project_name"`
	PhaseName   *string `json:"phase_name"`
}

// WorkLogFilter ANDs every non-nil member onto the listing.
type WorkLogFilter struct {
	ProjectID *int64
	PhaseID   *int64
	UserID    *int64
	StartDate *Date
	EndDate   *Date
}

// DateRange bounds log_date inclusively on both ends.
type DateRange struct {
	StartDate *Date
	EndDate   *Date
}

type CreateWorkLogInput struct {
	ProjectID       int64
	PhaseID         *int64
	LogDate         *Date
	WorkDescription string
	HoursSpent      *float64
	Notes           *string
}

// UpdateWorkLogInput: absent members stay unchanged, null clears nullable columns.
type UpdateWorkLogInput struct {
	ProjectID       Field[int64]   `json:"project_id"`
	PhaseID         Field[int64]   `json:"phase_id"`
	LogDate         Field[Date]    `json:"log_date"`
	WorkDescription Field[string]  `json:"work_description"`
	HoursSpent      Field[float64] `json:"hours_spent"`
	Notes           Field[string]  `json:"notes"`
}

// Empty reports whether no member was present in the payload.
func (in UpdateWorkLogInput) Empty() bool {
	return !in.ProjectID.Set && !in.PhaseID.Set && !in.LogDate.Set &&
		!in.WorkDescription.Set && !in.HoursSpent.Set && !in.Notes.Set
}

// SumHours treats a missing hours_spent as zero.
func SumHours(logs []WorkLogView) Hours {
	var total float64
	for _, l := range logs {
		if l.HoursSpent != nil {
			total += *l.HoursSpent
		}
	}
	return Hours(total)
}
