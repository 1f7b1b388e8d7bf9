package service

import (
	"context"

	"worklog/internal/model"
)

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// ProjectStore is implemented by repository.ProjectRepository.
type ProjectStore interface {
	List(ctx context.Context) ([]model.ProjectSummary, error)
	GetDetail(ctx context.Context, id int64) (*model.ProjectDetail, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, ownerID int64, in model.CreateProjectInput) (*model.Project, error)
	Update(ctx context.Context, id, actorID int64, in model.UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, id, actorID int64) error
}

// PhaseStore is implemented by repository.PhaseRepository.
type PhaseStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.PhaseSummary, error)
	GetDetail(ctx context.Context, id int64) (*model.PhaseDetail, error)
	Get(ctx context.Context, id int64) (*model.Phase, error)
	OrderTaken(ctx context.Context, projectID int64, order int, excludeID int64) (bool, error)
	BelongsTo(ctx context.Context, phaseID, projectID int64) (bool, error)
	CountWorkLogs(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, actorID int64, in model.CreatePhaseInput) (*model.Phase, error)
	Update(ctx context.Context, id, actorID int64, in model.UpdatePhaseInput) (*model.Phase, error)
	Delete(ctx context.Context, id, actorID int64) error
}

// WorkLogStore is implemented by repository.WorkLogRepository.
type WorkLogStore interface {
	List(ctx context.Context, f model.WorkLogFilter, withUser bool) ([]model.WorkLogView, error)
	GetView(ctx context.Context, id int64) (*model.WorkLogView, error)
	Get(ctx context.Context, id int64) (*model.WorkLog, error)
	Create(ctx context.Context, userID int64, in model.CreateWorkLogInput) (*model.WorkLog, error)
	Update(ctx context.Context, id, actorID int64, in model.UpdateWorkLogInput) (*model.WorkLog, error)
	Delete(ctx context.Context, id, actorID int64) error
	Stats(ctx context.Context, userID int64, r model.DateRange) (*model.StatsReport, error)
}

// ActivityStore is implemented by repository.ActivityRepository.
type ActivityStore interface {
	Insert(ctx context.Context, e *model.ActivityEntry) (bool, error)
	DeleteByProject(ctx context.Context, projectID int64) (int64, error)
	ListByProject(ctx context.Context, projectID int64, limit int) ([]model.ActivityEntry, error)
}

// StatsCache memoizes per-user statistics. Implementations must treat their own
// failures as misses. Get returns the version it looked under; Set stores under
// that version so reports computed before an invalidation are never served.
type StatsCache interface {
	Get(ctx context.Context, userID int64, r model.DateRange) (*model.StatsReport, string, bool)
	Set(ctx context.Context, userID int64, version string, r model.DateRange, report *model.StatsReport)
	Invalidate(ctx context.Context, userID int64)
	InvalidateAll(ctx context.Context)
}

// NopStatsCache disables caching.
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, int64, model.DateRange) (*model.StatsReport, string, bool) {
	return nil, "", false
}
func (NopStatsCache) Set(context.Context, int64, string, model.DateRange, *model.StatsReport) {}
func (NopStatsCache) Invalidate(context.Context, int64)                                      {}
func (NopStatsCache) InvalidateAll(context.Context)                                          {}
