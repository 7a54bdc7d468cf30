package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
)

// ResponseHandler lets recruiters review and remove candidate responses.
type ResponseHandler struct {
	responseService *service.ResponseService
	log             zerolog.Logger
}

// NewResponseHandler creates a new ResponseHandler.
func NewResponseHandler(responseService *service.ResponseService, log zerolog.Logger) *ResponseHandler {
	return &ResponseHandler{
		responseService: responseService,
		log:             log.With().Str("component", "response_handler").Logger(),
	}
}

// ListResponses godoc
// GET /api/v1/assessments/:id/responses
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	list, err := h.responseService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"responses": list})
}

// GetCandidateResponse godoc
// GET /api/v1/assessments/:id/responses/:candidate_id
// Returns the candidate's latest answers, draft or submitted.
func (h *ResponseHandler) GetCandidateResponse(c *gin.Context) {
	r, err := h.responseService.GetForCandidate(c.Request.Context(), c.Param("id"), c.Param("candidate_id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"response": r})
}

// DeleteResponse godoc
// DELETE /api/v1/responses/:response_id
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	if err := h.responseService.Delete(c.Request.Context(), c.Param("response_id")); err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
