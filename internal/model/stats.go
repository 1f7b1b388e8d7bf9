package model

type WorkLogStats struct {
	TotalLogs        int64 `json:"total_logs"`
	TotalHours       Hours `json:"total_hours"`
	ProjectsWorkedOn int64 `json:"projects_worked_on"`
	DaysLogged       int64 `json:"days_logged"`
}

type ProjectHours struct {
	ID          int64  `json:"id"`
	ProjectName string `json:"project_name"`
	LogCount    int64  `json:"log_count"`
	TotalHours  Hours  `json:"total_hours"`
}

// StatsReport is the per-user dashboard payload.
type StatsReport struct {
	Stats            WorkLogStats   `json:"stats"`
	ProjectBreakdown []ProjectHours `json:"projectBreakdown"`
}
