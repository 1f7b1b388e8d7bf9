package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/service/servicetest"
	"worklog/internal/repository"
)

func newPhaseFixture() (*PhaseService, *servicetest.Phases) {
	phases := servicetest.NewPhases(
		model.Phase{ID: 1, ProjectID: 1, PhaseName: "Design", PhaseOrder: 1},
		model.Phase{ID: 2, ProjectID: 1, PhaseName: "Build", PhaseOrder: 2},
	)
	return NewPhaseService(phases, servicetest.NewProjects(1, 2), zap.NewNop()), phases
}

func TestCreatePhase(t *testing.T) {
	svc, _ := newPhaseFixture()

	p, err := svc.Create(context.Background(), 7, model.CreatePhaseInput{ProjectID: 1, PhaseName: " Test ", PhaseOrder: 3})
	require.NoError(t, err)
	assert.Equal(t, "Test", p.PhaseName)
	assert.Equal(t, model.DefaultPhaseStatus, p.Status)
}

func TestCreatePhaseRejectsDuplicateOrder(t *testing.T) {
	svc, _ := newPhaseFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, 7, model.CreatePhaseInput{ProjectID: 1, PhaseName: "Again", PhaseOrder: 2})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, err.Error(), "Phase order 2 already exists for this project")

	// the same order in another project is fine
	_, err = svc.Create(ctx, 7, model.CreatePhaseInput{ProjectID: 2, PhaseName: "Again", PhaseOrder: 2})
	assert.NoError(t, err)
}

func TestCreatePhaseValidation(t *testing.T) {
	svc, _ := newPhaseFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		in   model.CreatePhaseInput
		kind Kind
		msg  string
	}{
		{"missing name", model.CreatePhaseInput{ProjectID: 1, PhaseOrder: 4}, KindValidation, MsgPhaseFieldsRequired},
		{"missing order", model.CreatePhaseInput{ProjectID: 1, PhaseName: "x"}, KindValidation, MsgPhaseFieldsRequired},
		{"negative order", model.CreatePhaseInput{ProjectID: 1, PhaseName: "x", PhaseOrder: -1}, KindValidation, MsgPhaseOrderPositive},
		{"unknown project", model.CreatePhaseInput{ProjectID: 9, PhaseName: "x", PhaseOrder: 1}, KindNotFound, MsgProjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 7, tt.in)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestUpdatePhaseOrder(t *testing.T) {
	svc, phases := newPhaseFixture()
	ctx := context.Background()

	same := 1
	_, err := svc.Update(ctx, 1, 7, model.UpdatePhaseInput{PhaseOrder: &same})
	require.NoError(t, err, "keeping its own order is not a conflict")

	taken := 2
	_, err = svc.Update(ctx, 1, 7, model.UpdatePhaseInput{PhaseOrder: &taken})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 1, phases.ByID[1].PhaseOrder)

	zero := 0
	_, err = svc.Update(ctx, 1, 7, model.UpdatePhaseInput{PhaseOrder: &zero})
	assert.Equal(t, KindValidation, KindOf(err))

	blank := "  "
	_, err = svc.Update(ctx, 1, 7, model.UpdatePhaseInput{PhaseName: &blank})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Update(ctx, 99, 7, model.UpdatePhaseInput{PhaseName: &blank})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeletePhaseWithWorkLogsRefused(t *testing.T) {
	svc, phases := newPhaseFixture()
	phases.LogCount[1] = 3
	ctx := context.Background()

	err := svc.Delete(ctx, 1, 7)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, MsgPhaseHasWorkLogs, appErr.Message)
	assert.Contains(t, phases.ByID, int64(1))

	require.NoError(t, svc.Delete(ctx, 2, 7))
	assert.NotContains(t, phases.ByID, int64(2))

	assert.Equal(t, KindNotFound, KindOf(svc.Delete(ctx, 2, 7)))
}

func TestPhaseErrorMapsConstraintViolations(t *testing.T) {
	err := phaseError("op", repository.ErrDuplicatePhaseOrder, 5)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, err.Error(), "Phase order 5")

	assert.Equal(t, KindValidation, KindOf(phaseError("op", repository.ErrPhaseInUse, 0)))
	assert.Equal(t, KindInternal, KindOf(phaseError("op", errors.New("boom"), 0)))
}
