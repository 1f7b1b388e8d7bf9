package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/repository"
)

type PhaseService struct {
	phases   PhaseStore
	projects ProjectStore
	logger   *zap.Logger
}

func NewPhaseService(phases PhaseStore, projects ProjectStore, logger *zap.Logger) *PhaseService {
	return &PhaseService{phases: phases, projects: projects, logger: logger}
}

// ListByProject returns an empty list for unknown projects.
func (s *PhaseService) ListByProject(ctx context.Context, projectID int64) ([]model.PhaseSummary, error) {
	phases, err := s.phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, InternalError("list phases", err)
	}
	return phases, nil
}

func (s *PhaseService) Get(ctx context.Context, id int64) (*model.PhaseDetail, error) {
	p, err := s.phases.GetDetail(ctx, id)
	if err != nil {
		return nil, phaseError("get phase", err, 0)
	}
	return p, nil
}

// Create rejects a phase_order already used in the same project.
func (s *PhaseService) Create(ctx context.Context, actorID int64, in model.CreatePhaseInput) (*model.Phase, error) {
	in.PhaseName = strings.TrimSpace(in.PhaseName)
	if in.ProjectID == 0 || in.PhaseName == "" || in.PhaseOrder == 0 {
		return nil, ValidationError(MsgPhaseFieldsRequired)
	}
	if in.PhaseOrder < 0 {
		return nil, ValidationError(MsgPhaseOrderPositive)
	}

	ok, err := s.projects.Exists(ctx, in.ProjectID)
	if err != nil {
		return nil, InternalError("create phase: check project", err)
	}
	if !ok {
		return nil, NotFoundError(MsgProjectNotFound)
	}

	taken, err := s.phases.OrderTaken(ctx, in.ProjectID, in.PhaseOrder, 0)
	if err != nil {
		return nil, InternalError("create phase: check order", err)
	}
	if taken {
		return nil, phaseOrderTaken(in.PhaseOrder)
	}

	in.Status = orDefault(in.Status, model.DefaultPhaseStatus)
	p, err := s.phases.Create(ctx, actorID, in)
	if err != nil {
		return nil, phaseError("create phase", err, in.PhaseOrder)
	}
	return p, nil
}

// Update keeps stored values for nil members; a changed phase_order must stay unique.
func (s *PhaseService) Update(ctx context.Context, id, actorID int64, in model.UpdatePhaseInput) (*model.Phase, error) {
	existing, err := s.phases.Get(ctx, id)
	if err != nil {
		return nil, phaseError("update phase: load", err, 0)
	}

	if in.PhaseName != nil && strings.TrimSpace(*in.PhaseName) == "" {
		return nil, ValidationError(MsgPhaseNameEmpty)
	}
	if in.PhaseOrder != nil && *in.PhaseOrder < 1 {
		return nil, ValidationError(MsgPhaseOrderPositive)
	}

	if in.PhaseOrder != nil && *in.PhaseOrder != existing.PhaseOrder {
		taken, err := s.phases.OrderTaken(ctx, existing.ProjectID, *in.PhaseOrder, id)
		if err != nil {
			return nil, InternalError("update phase: check order", err)
		}
		if taken {
			return nil, phaseOrderTaken(*in.PhaseOrder)
		}
	}

	order := 0
	if in.PhaseOrder != nil {
		order = *in.PhaseOrder
	}
	p, err := s.phases.Update(ctx, id, actorID, in)
	if err != nil {
		return nil, phaseError("update phase", err, order)
	}
	return p, nil
}

// Delete is refused while work logs reference the phase.
func (s *PhaseService) Delete(ctx context.Context, id, actorID int64) error {
	n, err := s.phases.CountWorkLogs(ctx, id)
	if err != nil {
		return InternalError("delete phase: count work logs", err)
	}
	if n > 0 {
		return ValidationError(MsgPhaseHasWorkLogs)
	}

	if err := s.phases.Delete(ctx, id, actorID); err != nil {
		return phaseError("delete phase", err, 0)
	}
	s.logger.Info("Phase deleted", zap.Int64("phase_id", id), zap.Int64("user_id", actorID))
	return nil
}

func phaseError(op string, err error, order int) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return NotFoundError(MsgPhaseNotFound)
	case errors.Is(err, repository.ErrDuplicatePhaseOrder):
		return phaseOrderTaken(order)
	case errors.Is(err, repository.ErrPhaseInUse):
		return ValidationError(MsgPhaseHasWorkLogs)
	}
	return InternalError(op, err)
}
