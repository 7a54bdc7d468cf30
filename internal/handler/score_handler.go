package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
)

// ScoreHandler serves scores of submitted responses.
type ScoreHandler struct {
	scoringService *service.ScoringService
	log            zerolog.Logger
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(scoringService *service.ScoringService, log zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scoringService: scoringService,
		log:            log.With().Str("component", "score_handler").Logger(),
	}
}

// GetScore godoc
// GET /api/v1/responses/:response_id/score
func (h *ScoreHandler) GetScore(c *gin.Context) {
	s, err := h.scoringService.Score(c.Request.Context(), c.Param("response_id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"score": s})
}

// GetResults godoc
// GET /api/v1/assessments/:id/results
// Ranks every submitted response by overall percentage.
func (h *ScoreHandler) GetResults(c *gin.Context) {
	results, err := h.scoringService.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}
