package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/taker"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   response.ErrCode
	}{
		{"assessment not found", service.ErrAssessmentNotFound, http.StatusNotFound, response.ErrNotFound},
		{"wrapped store miss", fmt.Errorf("get: %w", repository.ErrNotFound), http.StatusNotFound, response.ErrNotFound},
		{"unknown section", assessment.ErrSectionNotFound, http.StatusNotFound, response.ErrNotFound},
		{"draft not open", service.ErrDraftNotOpen, http.StatusConflict, response.ErrDraftNotOpen},
		{"last section", assessment.ErrLastSection, http.StatusConflict, response.ErrGuardRejected},
		{"last option", assessment.ErrLastOption, http.StatusConflict, response.ErrGuardRejected},
		{"not a choice question", assessment.ErrNotChoiceQuestion, http.StatusBadRequest, response.ErrNotChoiceQuestion},
		{"option index", assessment.ErrOptionIndex, http.StatusBadRequest, response.ErrOptionIndex},
		{"bad question patch", fmt.Errorf("%w: options", model.ErrInvalidQuestion), http.StatusBadRequest, response.ErrInvalidPayload},
		{"submitted", service.ErrResponseSubmitted, http.StatusConflict, response.ErrResponseSubmitted},
		{"taker submitted", taker.ErrAlreadySubmitted, http.StatusConflict, response.ErrResponseSubmitted},
		{"not submitted", service.ErrResponseNotSubmitted, http.StatusConflict, response.ErrResponseNotSubmitted},
		{"simulated failure", repository.ErrSimulatedFailure, http.StatusServiceUnavailable, response.ErrPersistenceFailure},
		{"timeout", fmt.Errorf("put: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, response.ErrPersistenceFailure},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, code := errorStatus(tc.err)
			if status != tc.wantStatus || code != tc.wantCode {
				t.Fatalf("errorStatus(%v) = %d %s, want %d %s", tc.err, status, code, tc.wantStatus, tc.wantCode)
			}
		})
	}
}

func TestFailWithErrorIssues(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode response.ErrCode
	}{
		{
			"structure",
			&assessment.StructureError{Issues: []assessment.StructureIssue{{SectionID: "s1", QuestionID: "q1", Issue: assessment.IssueMissingText}}},
			response.ErrStructureInvalid,
		},
		{
			"fields",
			fmt.Errorf("submit: %w", &assessment.FieldErrors{Errors: []assessment.FieldError{{SectionID: "s1", QuestionID: "q1", Message: assessment.MsgRequired}}}),
			response.ErrFieldValidationFailed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

			failWithError(c, zerolog.Nop(), tc.err)

			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d", w.Code)
			}
			var body struct {
				Error struct {
					Code   response.ErrCode `json:"code"`
					Issues []struct {
						QuestionID string `json:"questionId"`
					} `json:"issues"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tc.wantCode || len(body.Error.Issues) != 1 || body.Error.Issues[0].QuestionID != "q1" {
				t.Fatalf("body = %s", w.Body.String())
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Second, "0m 45s"},
		{3*time.Hour + 2*time.Minute + time.Second, "3h 2m 1s"},
		{50 * time.Hour, "2d 2h 0m 0s"},
	}
	for _, tc := range tests {
		if got := formatDuration(tc.in); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
