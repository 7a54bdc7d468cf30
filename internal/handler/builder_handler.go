package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/validator"
)

// BuilderHandler exposes the server-side builder draft of an assessment.
// Every edit loads the draft, applies one builder operation and stores it
// back; nothing reaches the assessment until commit.
type BuilderHandler struct {
	builderService *service.BuilderService
	log            zerolog.Logger
}

// NewBuilderHandler creates a new BuilderHandler.
func NewBuilderHandler(builderService *service.BuilderService, log zerolog.Logger) *BuilderHandler {
	return &BuilderHandler{
		builderService: builderService,
		log:            log.With().Str("component", "builder_handler").Logger(),
	}
}

// OpenDraft godoc
// POST /api/v1/assessments/:id/draft
// Starts a fresh draft from the stored assessment, replacing any open one.
func (h *BuilderHandler) OpenDraft(c *gin.Context) {
	st, err := h.builderService.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"draft": st})
}

// GetDraft godoc
// GET /api/v1/assessments/:id/draft
func (h *BuilderHandler) GetDraft(c *gin.Context) {
	st, err := h.builderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"draft": st})
}

// DiscardDraft godoc
// DELETE /api/v1/assessments/:id/draft
func (h *BuilderHandler) DiscardDraft(c *gin.Context) {
	if err := h.builderService.Discard(c.Request.Context(), c.Param("id")); err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// CommitDraft godoc
// POST /api/v1/assessments/:id/draft/commit
// Validates the draft structure and saves it as the assessment.
func (h *BuilderHandler) CommitDraft(c *gin.Context) {
	a, err := h.builderService.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assessment": a})
}

// PreviewDraft godoc
// POST /api/v1/assessments/:id/draft/preview
func (h *BuilderHandler) PreviewDraft(c *gin.Context) {
	var req model.PreviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.builderService.Preview(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ActivateSection godoc
// POST /api/v1/assessments/:id/draft/activate/:section_id
func (h *BuilderHandler) ActivateSection(c *gin.Context) {
	sectionID := c.Param("section_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		return b.SetActive(sectionID)
	})
}

// AddSection godoc
// POST /api/v1/assessments/:id/draft/sections
// Appends an auto-titled section and focuses it.
func (h *BuilderHandler) AddSection(c *gin.Context) {
	h.apply(c, http.StatusCreated, func(b *assessment.Builder) error {
		b.AddSection()
		return nil
	})
}

// UpdateSection godoc
// PATCH /api/v1/assessments/:id/draft/sections/:section_id
func (h *BuilderHandler) UpdateSection(c *gin.Context) {
	var req model.UpdateSectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sectionID := c.Param("section_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		return b.UpdateSection(sectionID, req.Title)
	})
}

// DeleteSection godoc
// DELETE /api/v1/assessments/:id/draft/sections/:section_id
// The last section cannot be removed.
func (h *BuilderHandler) DeleteSection(c *gin.Context) {
	sectionID := c.Param("section_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		return b.DeleteSection(sectionID)
	})
}

// AddQuestion godoc
// POST /api/v1/assessments/:id/draft/sections/:section_id/questions
func (h *BuilderHandler) AddQuestion(c *gin.Context) {
	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sectionID := c.Param("section_id")
	h.apply(c, http.StatusCreated, func(b *assessment.Builder) error {
		_, err := b.AddQuestion(sectionID, req.Type)
		return err
	})
}

// UpdateQuestion godoc
// PATCH /api/v1/assessments/:id/draft/sections/:section_id/questions/:question_id
// Merges a partial question object; null removes a key.
func (h *BuilderHandler) UpdateQuestion(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	req := model.UpdateQuestionRequest{Patch: raw}

	sectionID, questionID := c.Param("section_id"), c.Param("question_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		_, err := b.UpdateQuestion(sectionID, questionID, func(q model.Question) (model.Question, error) {
			return model.MergeQuestionJSON(q, req.Patch)
		})
		return err
	})
}

// DeleteQuestion godoc
// DELETE /api/v1/assessments/:id/draft/sections/:section_id/questions/:question_id
func (h *BuilderHandler) DeleteQuestion(c *gin.Context) {
	sectionID, questionID := c.Param("section_id"), c.Param("question_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		return b.DeleteQuestion(sectionID, questionID)
	})
}

// AddOption godoc
// POST /api/v1/assessments/:id/draft/sections/:section_id/questions/:question_id/options
func (h *BuilderHandler) AddOption(c *gin.Context) {
	var req model.OptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sectionID, questionID := c.Param("section_id"), c.Param("question_id")
	h.apply(c, http.StatusCreated, func(b *assessment.Builder) error {
		return b.AddOption(sectionID, questionID, req.Text)
	})
}

// UpdateOption godoc
// PUT /api/v1/assessments/:id/draft/sections/:section_id/questions/:question_id/options/:index
// Renames an option; a correct answer pointing at it follows the rename.
func (h *BuilderHandler) UpdateOption(c *gin.Context) {
	index, ok := optionIndex(c)
	if !ok {
		return
	}
	var req model.OptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sectionID, questionID := c.Param("section_id"), c.Param("question_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		return b.UpdateOption(sectionID, questionID, index, req.Text)
	})
}

// RemoveOption godoc
// DELETE /api/v1/assessments/:id/draft/sections/:section_id/questions/:question_id/options/:index
// The last option cannot be removed.
func (h *BuilderHandler) RemoveOption(c *gin.Context) {
	index, ok := optionIndex(c)
	if !ok {
		return
	}

	sectionID, questionID := c.Param("section_id"), c.Param("question_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		return b.RemoveOption(sectionID, questionID, index)
	})
}

// ReorderOptions godoc
// POST /api/v1/assessments/:id/draft/sections/:section_id/questions/:question_id/options/reorder
func (h *BuilderHandler) ReorderOptions(c *gin.Context) {
	var req model.ReorderOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sectionID, questionID := c.Param("section_id"), c.Param("question_id")
	h.apply(c, http.StatusOK, func(b *assessment.Builder) error {
		return b.ReorderOption(sectionID, questionID, *req.From, *req.To)
	})
}

func (h *BuilderHandler) apply(c *gin.Context, status int, edit func(*assessment.Builder) error) {
	st, err := h.builderService.Apply(c.Request.Context(), c.Param("id"), edit)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, status, gin.H{"draft": st})
}

func optionIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return index, true
}
