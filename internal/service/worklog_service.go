package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/repository"
	"worklog/pkg/metrics"
)

type WorkLogService struct {
	worklogs WorkLogStore
	projects ProjectStore
	phases   PhaseStore
	users    UserStore
	cache    StatsCache
	logger   *zap.Logger
}

func NewWorkLogService(
	worklogs WorkLogStore,
	projects ProjectStore,
	phases PhaseStore,
	users UserStore,
	cache StatsCache,
	logger *zap.Logger,
) *WorkLogService {
	if cache == nil {
		cache = NopStatsCache{}
	}
	return &WorkLogService{
		worklogs: worklogs,
		projects: projects,
		phases:   phases,
		users:    users,
		cache:    cache,
		logger:   logger,
	}
}

// UserLogs is a per-user listing with its hour total.
type UserLogs struct {
	User       *model.UserRef
	WorkLogs   []model.WorkLogView
	TotalHours model.Hours
}

// List returns logs matching every present filter, joined with author, project and phase.
func (s *WorkLogService) List(ctx context.Context, f model.WorkLogFilter) ([]model.WorkLogView, error) {
	logs, err := s.worklogs.List(ctx, f, true)
	if err != nil {
		return nil, InternalError("list work logs", err)
	}
	return logs, nil
}

func (s *WorkLogService) Get(ctx context.Context, id int64) (*model.WorkLogView, error) {
	w, err := s.worklogs.GetView(ctx, id)
	if err != nil {
		return nil, workLogError("get work log", err)
	}
	return w, nil
}

// MyLogs lists the caller's logs; only project and date filters apply.
func (s *WorkLogService) MyLogs(ctx context.Context, userID int64, f model.WorkLogFilter) (*UserLogs, error) {
	f.UserID = &userID
	f.PhaseID = nil

	logs, err := s.worklogs.List(ctx, f, false)
	if err != nil {
		return nil, InternalError("list my work logs", err)
	}
	return &UserLogs{WorkLogs: logs, TotalHours: model.SumHours(logs)}, nil
}

// ByUser lists another user's logs after checking the user exists.
func (s *WorkLogService) ByUser(ctx context.Context, userID int64, f model.WorkLogFilter) (*UserLogs, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError(MsgUserNotFound)
		}
		return nil, InternalError("work logs by user: find user", err)
	}

	f.UserID = &userID
	logs, err := s.worklogs.List(ctx, f, false)
	if err != nil {
		return nil, InternalError("list user work logs", err)
	}

	ref := u.Ref()
	return &UserLogs{User: &ref, WorkLogs: logs, TotalHours: model.SumHours(logs)}, nil
}

// Stats aggregates a user's logs in the range, served from the cache when possible.
func (s *WorkLogService) Stats(ctx context.Context, userID int64, r model.DateRange) (*model.StatsReport, error) {
	report, version, ok := s.cache.Get(ctx, userID, r)
	if ok {
		return report, nil
	}

	report, err := s.worklogs.Stats(ctx, userID, r)
	if err != nil {
		return nil, InternalError("work log stats", err)
	}

	s.cache.Set(ctx, userID, version, r, report)
	return report, nil
}

// Create records a log for userID. A zero hours_spent is a real value.
func (s *WorkLogService) Create(ctx context.Context, userID int64, in model.CreateWorkLogInput) (*model.WorkLog, error) {
	in.WorkDescription = strings.TrimSpace(in.WorkDescription)
	if in.ProjectID == 0 || in.WorkDescription == "" {
		return nil, ValidationError(MsgWorkLogRequired)
	}
	if in.HoursSpent != nil && !validHours(*in.HoursSpent) {
		return nil, ValidationError(MsgHoursOutOfRange)
	}

	if err := s.requireProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	if in.PhaseID != nil {
		if err := s.requirePhaseInProject(ctx, *in.PhaseID, in.ProjectID); err != nil {
			return nil, err
		}
	}

	w, err := s.worklogs.Create(ctx, userID, in)
	if err != nil {
		return nil, InternalError("create work log", err)
	}

	s.afterMutation(ctx, userID, model.ActionCreated)
	return w, nil
}

// Update lets only the author change a log. Absent members stay unchanged,
// explicit nulls clear nullable columns.
func (s *WorkLogService) Update(ctx context.Context, id, userID int64, in model.UpdateWorkLogInput) (*model.WorkLog, error) {
	existing, err := s.worklogs.Get(ctx, id)
	if err != nil {
		return nil, workLogError("update work log: load", err)
	}
	if existing.UserID != userID {
		return nil, ForbiddenError(MsgNotOwnerUpdate)
	}

	if in.HoursSpent.Set && !in.HoursSpent.Null && !validHours(in.HoursSpent.Value) {
		return nil, ValidationError(MsgHoursOutOfRange)
	}
	if in.ProjectID.Set && in.ProjectID.Null {
		return nil, cannotBeNull("Project ID")
	}
	if in.LogDate.Set && in.LogDate.Null {
		return nil, cannotBeNull("Log date")
	}
	if in.WorkDescription.Set && strings.TrimSpace(in.WorkDescription.Value) == "" {
		return nil, ValidationError("Work description cannot be empty")
	}
	if in.Empty() {
		return nil, ValidationError(MsgNoFieldsToUpdate)
	}

	projectID := existing.ProjectID
	if in.ProjectID.Set {
		projectID = in.ProjectID.Value
		if projectID != existing.ProjectID {
			if err := s.requireProject(ctx, projectID); err != nil {
				return nil, err
			}
		}
	}

	// the resulting phase must belong to the resulting project
	var phaseID *int64
	switch {
	case in.PhaseID.Set:
		phaseID = in.PhaseID.Ptr()
	case projectID != existing.ProjectID:
		phaseID = existing.PhaseID
	}
	if phaseID != nil {
		if err := s.requirePhaseInProject(ctx, *phaseID, projectID); err != nil {
			return nil, err
		}
	}

	w, err := s.worklogs.Update(ctx, id, userID, in)
	if err != nil {
		return nil, workLogError("update work log", err)
	}

	s.afterMutation(ctx, userID, model.ActionUpdated)
	return w, nil
}

// Delete lets only the author remove a log.
func (s *WorkLogService) Delete(ctx context.Context, id, userID int64) error {
	existing, err := s.worklogs.Get(ctx, id)
	if err != nil {
		return workLogError("delete work log: load", err)
	}
	if existing.UserID != userID {
		return ForbiddenError(MsgNotOwnerDelete)
	}

	if err := s.worklogs.Delete(ctx, id, userID); err != nil {
		return workLogError("delete work log", err)
	}

	s.afterMutation(ctx, userID, model.ActionDeleted)
	return nil
}

func (s *WorkLogService) requireProject(ctx context.Context, projectID int64) error {
	ok, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return InternalError("check project", err)
	}
	if !ok {
		return NotFoundError(MsgProjectNotFound)
	}
	return nil
}

func (s *WorkLogService) requirePhaseInProject(ctx context.Context, phaseID, projectID int64) error {
	ok, err := s.phases.BelongsTo(ctx, phaseID, projectID)
	if err != nil {
		return InternalError("check phase", err)
	}
	if !ok {
		return NotFoundError(MsgPhaseNotInProject)
	}
	return nil
}

// afterMutation drops the author's cached stats. Stats are keyed by author,
// so only the author's entries can go stale.
func (s *WorkLogService) afterMutation(ctx context.Context, userID int64, action string) {
	s.cache.Invalidate(ctx, userID)
	metrics.IncrementWorkLogMutation(action)
}

func validHours(h float64) bool {
	return h >= model.MinHours && h <= model.MaxHours
}

func workLogError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFoundError(MsgWorkLogNotFound)
	}
	return InternalError(op, err)
}
