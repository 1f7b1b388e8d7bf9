package model

import "time"

const DefaultProjectStatus = "active"

type Project struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description"`
	UserID           int64     `json:"user_id"`
	ProjectManagerID *int64    `json:"project_manager_id"`
	Status           string    `json:"status"` // active / completed / on_hold ...
	StartDate        *Date     `json:"start_date"`
	EndDate          *Date     `json:"end_date"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProjectSummary is one row of the project listing.
type ProjectSummary struct {
	Project
	ManagerName   *string `json:"manager_name"`
	TotalPhases   int64   `json:"total_phases"`
	TotalWorkLogs int64   `json:"total_worklogs"`
}

// ProjectDetail is a project with its phases in phase_order.
type ProjectDetail struct {
	Project
	ManagerName *string `json:"manager_name"`
	Phases      []Phase `json:"phases"`
}

type CreateProjectInput struct {
	Name             string
	Description      *string
	ProjectManagerID *int64
	Status           string
	StartDate        *Date
	EndDate          *Date
}

// UpdateProjectInput: absent members stay unchanged, null clears nullable columns.
type UpdateProjectInput struct {
	Name             Field[string] `json:"name"`
	Description      Field[string] `json:"description"`
	ProjectManagerID Field[int64]  `json:"project_manager_id"`
	Status           Field[string] `json:"status"`
	StartDate        Field[Date]   `json:"start_date"`
	EndDate          Field[Date]   `json:"end_date"`
}
