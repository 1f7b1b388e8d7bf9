package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/service"
)

type WorkLogHandler struct {
	workLogService *service.WorkLogService
	logger         *zap.Logger
}

func NewWorkLogHandler(workLogService *service.WorkLogService, logger *zap.Logger) *WorkLogHandler {
	return &WorkLogHandler{
		workLogService: workLogService,
		logger:         logger,
	}
}

type createWorkLogRequest struct {
	ProjectID       int64       `json:"project_id"`
	PhaseID         *int64      `json:"phase_id"`
	LogDate         *model.Date `json:"log_date"`
	WorkDescription string      `json:"work_description"`
	HoursSpent      *float64    `json:"hours_spent"`
	Notes           *string     `json:"notes"`
}

// List handles GET /api/worklogs?project_id=&phase_id=&user_id=&start_date=&end_date=
func (h *WorkLogHandler) List(c *gin.Context) {
	f, err := workLogFilter(c, "project_id", "phase_id", "user_id", "start_date", "end_date")
	if err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	logs, err := h.workLogService.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Work logs retrieved successfully", gin.H{
		"workLogs": logs,
		"count":    len(logs),
	})
}

// MyLogs handles GET /api/worklogs/my-logs?project_id=&start_date=&end_date=
func (h *WorkLogHandler) MyLogs(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	f, err := workLogFilter(c, "project_id", "start_date", "end_date")
	if err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.workLogService.MyLogs(c.Request.Context(), caller.ID, f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Your work logs retrieved successfully", gin.H{
		"workLogs":   res.WorkLogs,
		"count":      len(res.WorkLogs),
		"totalHours": res.TotalHours,
	})
}

// Stats handles GET /api/worklogs/stats?user_id=&start_date=&end_date=
// Without user_id the caller's own statistics are returned.
func (h *WorkLogHandler) Stats(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	f, err := workLogFilter(c, "user_id", "start_date", "end_date")
	if err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := caller.ID
	if f.UserID != nil {
		userID = *f.UserID
	}

	report, err := h.workLogService.Stats(c.Request.Context(), userID, model.DateRange{
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Work log statistics retrieved successfully", report)
}

// ByUser handles GET /api/worklogs/user/:userId
func (h *WorkLogHandler) ByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	f, err := workLogFilter(c, "project_id", "phase_id", "start_date", "end_date")
	if err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.workLogService.ByUser(c.Request.Context(), userID, f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Work logs retrieved successfully", gin.H{
		"user":       res.User,
		"workLogs":   res.WorkLogs,
		"count":      len(res.WorkLogs),
		"totalHours": res.TotalHours,
	})
}

// Get handles GET /api/worklogs/:id
func (h *WorkLogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	w, err := h.workLogService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Work log retrieved successfully", gin.H{"workLog": w})
}

// Create handles POST /api/worklogs
func (h *WorkLogHandler) Create(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}

	var req createWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	w, err := h.workLogService.Create(c.Request.Context(), caller.ID, model.CreateWorkLogInput{
		ProjectID:       req.ProjectID,
		PhaseID:         req.PhaseID,
		LogDate:         req.LogDate,
		WorkDescription: req.WorkDescription,
		HoursSpent:      req.HoursSpent,
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusCreated, "Work log created successfully", gin.H{"workLog": w})
}

// Update handles PUT /api/worklogs/:id. Absent members stay unchanged and an
// explicit null clears phase_id, hours_spent or notes.
func (h *WorkLogHandler) Update(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in model.UpdateWorkLogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	w, err := h.workLogService.Update(c.Request.Context(), id, caller.ID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Work log updated successfully", gin.H{"workLog": w})
}

// Delete handles DELETE /api/worklogs/:id
func (h *WorkLogHandler) Delete(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workLogService.Delete(c.Request.Context(), id, caller.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Work log deleted successfully", nil)
}
