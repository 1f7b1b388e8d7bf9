package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/repository"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

type ProjectService struct {
	projects ProjectStore
	activity ActivityStore
	cache    StatsCache
	logger   *zap.Logger
}

// NewProjectService: cache may be nil. Renames and deletes reach every user's
// stats (project names in the breakdown, cascaded work logs), so they drop the whole cache.
func NewProjectService(projects ProjectStore, activity ActivityStore, cache StatsCache, logger *zap.Logger) *ProjectService {
	if cache == nil {
		cache = NopStatsCache{}
	}
	return &ProjectService{projects: projects, activity: activity, cache: cache, logger: logger}
}

func (s *ProjectService) List(ctx context.Context) ([]model.ProjectSummary, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, InternalError("list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*model.ProjectDetail, error) {
	p, err := s.projects.GetDetail(ctx, id)
	if err != nil {
		return nil, projectError("get project", err)
	}
	return p, nil
}

// Create makes the caller the owner; status defaults to active.
func (s *ProjectService) Create(ctx context.Context, ownerID int64, in model.CreateProjectInput) (*model.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ValidationError(MsgProjectNameRequired)
	}
	in.Status = orDefault(in.Status, model.DefaultProjectStatus)

	p, err := s.projects.Create(ctx, ownerID, in)
	if err != nil {
		return nil, InternalError("create project", err)
	}
	return p, nil
}

// Update changes only the members present in the request.
func (s *ProjectService) Update(ctx context.Context, id, actorID int64, in model.UpdateProjectInput) (*model.Project, error) {
	if in.Name.Set && (in.Name.Null || strings.TrimSpace(in.Name.Value) == "") {
		return nil, ValidationError(MsgProjectNameRequired)
	}
	if in.Status.Set && (in.Status.Null || strings.TrimSpace(in.Status.Value) == "") {
		return nil, cannotBeNull("Status")
	}
	if !in.Name.Set && !in.Description.Set && !in.ProjectManagerID.Set &&
		!in.Status.Set && !in.StartDate.Set && !in.EndDate.Set {
		return nil, ValidationError(MsgNoFieldsToUpdate)
	}

	p, err := s.projects.Update(ctx, id, actorID, in)
	if err != nil {
		return nil, projectError("update project", err)
	}
	if in.Name.Set {
		s.cache.InvalidateAll(ctx)
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.projects.Delete(ctx, id, actorID); err != nil {
		return projectError("delete project", err)
	}
	s.cache.InvalidateAll(ctx)
	s.logger.Info("Project deleted", zap.Int64("project_id", id), zap.Int64("user_id", actorID))
	return nil
}

// Activity returns the newest feed entries; limit is clamped to [1, MaxActivityLimit].
func (s *ProjectService) Activity(ctx context.Context, projectID int64, limit int) ([]model.ActivityEntry, error) {
	ok, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, InternalError("activity: check project", err)
	}
	if !ok {
		return nil, NotFoundError(MsgProjectNotFound)
	}

	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}

	entries, err := s.activity.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, InternalError("list activity", err)
	}
	return entries, nil
}

func projectError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFoundError(MsgProjectNotFound)
	}
	return InternalError(op, err)
}
