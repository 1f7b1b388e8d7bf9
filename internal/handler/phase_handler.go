package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/service"
)

type PhaseHandler struct {
	phaseService *service.PhaseService
	logger       *zap.Logger
}

func NewPhaseHandler(phaseService *service.PhaseService, logger *zap.Logger) *PhaseHandler {
	return &PhaseHandler{
		phaseService: phaseService,
		logger:       logger,
	}
}

type createPhaseRequest struct {
	ProjectID   int64       `json:"project_id"`
	PhaseName   string      `json:"phase_name"`
	Description *string     `json:"description"`
	Status      string      `json:"status"`
	PhaseOrder  int         `json:"phase_order"`
	StartDate   *model.Date `json:"start_date"`
	EndDate     *model.Date `json:"end_date"`
}

// null and absent members both keep the stored value
type updatePhaseRequest struct {
	PhaseName   *string     `json:"phase_name"`
	Description *string     `json:"description"`
	Status      *string     `json:"status"`
	PhaseOrder  *int        `json:"phase_order"`
	StartDate   *model.Date `json:"start_date"`
	EndDate     *model.Date `json:"end_date"`
}

// ListByProject handles GET /api/phases/project/:project_id
func (h *PhaseHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	phases, err := h.phaseService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Phases retrieved successfully", gin.H{"phases": phases})
}

// Get handles GET /api/phases/:id
func (h *PhaseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.phaseService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Phase retrieved successfully", gin.H{"phase": p})
}

// Create handles POST /api/phases
func (h *PhaseHandler) Create(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}

	var req createPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	p, err := h.phaseService.Create(c.Request.Context(), caller.ID, model.CreatePhaseInput{
		ProjectID:   req.ProjectID,
		PhaseName:   req.PhaseName,
		Description: req.Description,
		Status:      req.Status,
		PhaseOrder:  req.PhaseOrder,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusCreated, "Phase created successfully", gin.H{"phase": p})
}

// Update handles PUT /api/phases/:id
func (h *PhaseHandler) Update(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	p, err := h.phaseService.Update(c.Request.Context(), id, caller.ID, model.UpdatePhaseInput{
		PhaseName:   req.PhaseName,
		Description: req.Description,
		Status:      req.Status,
		PhaseOrder:  req.PhaseOrder,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Phase updated successfully", gin.H{"phase": p})
}

// Delete handles DELETE /api/phases/:id
func (h *PhaseHandler) Delete(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.phaseService.Delete(c.Request.Context(), id, caller.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Phase deleted successfully", nil)
}
