package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

type createProjectRequest struct {
	Name             string      `json:"name"`
	Description      *string     `json:"description"`
	ProjectManagerID *int64      `json:"project_manager_id"`
	Status           string      `json:"status"`
	StartDate        *model.Date `json:"start_date"`
	EndDate          *model.Date `json:"end_date"`
}

// List handles GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Projects retrieved successfully", gin.H{"projects": projects})
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Project retrieved successfully", gin.H{"project": p})
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	p, err := h.projectService.Create(c.Request.Context(), caller.ID, model.CreateProjectInput{
		Name:             req.Name,
		Description:      req.Description,
		ProjectManagerID: req.ProjectManagerID,
		Status:           req.Status,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusCreated, "Project created successfully", gin.H{"project": p})
}

// Update handles PUT /api/projects/:id. Only members present in the body change.
func (h *ProjectHandler) Update(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in model.UpdateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	p, err := h.projectService.Update(c.Request.Context(), id, caller.ID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Project updated successfully", gin.H{"project": p})
}

// Delete handles DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	caller, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id, caller.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Project deleted successfully", nil)
}

// Activity handles GET /api/projects/:id/activity?limit=50
func (h *ProjectHandler) Activity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultActivityLimit)))
	if err != nil {
		limit = service.DefaultActivityLimit
	}

	entries, err := h.projectService.Activity(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, http.StatusOK, "Project activity retrieved successfully", gin.H{
		"activity": entries,
		"count":    len(entries),
	})
}
