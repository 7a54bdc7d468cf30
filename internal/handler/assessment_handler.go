package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/validator"
)

// AssessmentHandler handles assessment management endpoints.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	log               zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		log:               log.With().Str("component", "assessment_handler").Logger(),
	}
}

// ListAssessments godoc
// GET /api/v1/jobs/:job_id/assessments
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	summaries, err := h.assessmentService.ListByJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assessments": summaries})
}

// CreateAssessment godoc
// POST /api/v1/jobs/:job_id/assessments
// Creates an assessment. Without sections it starts with one empty section.
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	var req model.CreateAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.assessmentService.Create(c.Request.Context(), c.Param("job_id"), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"assessment": a})
}

// GetAssessment godoc
// GET /api/v1/assessments/:id
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	a, err := h.assessmentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assessment": a})
}

// ReplaceAssessment godoc
// PUT /api/v1/assessments/:id
// Replaces the whole document after structural validation.
func (h *AssessmentHandler) ReplaceAssessment(c *gin.Context) {
	var req model.ReplaceAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.assessmentService.Replace(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assessment": a})
}

// PatchAssessment godoc
// PATCH /api/v1/assessments/:id
// Updates the title and/or the sections.
func (h *AssessmentHandler) PatchAssessment(c *gin.Context) {
	var req model.PatchAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.assessmentService.Patch(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assessment": a})
}

// DeleteAssessment godoc
// DELETE /api/v1/assessments/:id
func (h *AssessmentHandler) DeleteAssessment(c *gin.Context) {
	if err := h.assessmentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// PreviewAssessment godoc
// POST /api/v1/assessments/:id/preview
// Renders one section of the stored assessment for the given answers.
func (h *AssessmentHandler) PreviewAssessment(c *gin.Context) {
	var req model.PreviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assessmentService.Preview(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
