package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/taker"
)

// errorStatus maps a service error to its HTTP status and error code.
func errorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound),
		errors.Is(err, service.ErrResponseNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, assessment.ErrSectionNotFound),
		errors.Is(err, assessment.ErrQuestionNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrDraftNotOpen):
		return http.StatusConflict, response.ErrDraftNotOpen
	case assessment.IsGuardRejection(err):
		return http.StatusConflict, response.ErrGuardRejected
	case errors.Is(err, assessment.ErrNotChoiceQuestion):
		return http.StatusBadRequest, response.ErrNotChoiceQuestion
	case errors.Is(err, assessment.ErrOptionIndex):
		return http.StatusBadRequest, response.ErrOptionIndex
	case errors.Is(err, model.ErrInvalidQuestion):
		return http.StatusBadRequest, response.ErrInvalidPayload
	case errors.Is(err, service.ErrResponseSubmitted), errors.Is(err, taker.ErrAlreadySubmitted):
		return http.StatusConflict, response.ErrResponseSubmitted
	case errors.Is(err, service.ErrResponseNotSubmitted):
		return http.StatusConflict, response.ErrResponseNotSubmitted
	case errors.Is(err, repository.ErrSimulatedFailure),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, response.ErrPersistenceFailure
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// failWithError writes the error envelope for err. Structure and field
// errors carry their issue lists.
func failWithError(c *gin.Context, log zerolog.Logger, err error) {
	var structErr *assessment.StructureError
	if errors.As(err, &structErr) {
		response.FailWithIssues(c, http.StatusUnprocessableEntity, response.ErrStructureInvalid, structErr.Issues)
		return
	}
	var fieldErr *assessment.FieldErrors
	if errors.As(err, &fieldErr) {
		response.FailWithIssues(c, http.StatusUnprocessableEntity, response.ErrFieldValidationFailed, fieldErr.Errors)
		return
	}

	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	response.Fail(c, status, code)
}
