package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/middleware"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/validator"
)

// AuthHandler handles recruiter authentication and candidate invites.
type AuthHandler struct {
	authService       *service.AuthService
	assessmentService *service.AssessmentService
	log               zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, assessmentService *service.AssessmentService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		assessmentService: assessmentService,
		log:               log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated recruiter.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	rec, err := h.authService.Me(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recruiter": rec})
}

// CreateInvite godoc
// POST /api/v1/assessments/:id/invites
// Issues a candidate token scoped to the assessment.
func (h *AuthHandler) CreateInvite(c *gin.Context) {
	var req model.CreateInviteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.assessmentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	invite, err := h.authService.Invite(a.ID, req.CandidateID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	h.log.Info().
		Str("assessment_id", a.ID).
		Str("candidate_id", req.CandidateID).
		Msg("Candidate invited")
	response.Success(c, http.StatusCreated, invite)
}
