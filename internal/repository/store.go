package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// AssessmentStore persists whole assessment documents.
type AssessmentStore interface {
	GetAssessment(ctx context.Context, id string) (*model.Assessment, error)
	ListAssessmentsByJob(ctx context.Context, jobID string) ([]model.Assessment, error)
	CreateAssessment(ctx context.Context, a *model.Assessment) error
	// UpdateAssessment replaces the whole document.
	UpdateAssessment(ctx context.Context, a *model.Assessment) error
	DeleteAssessment(ctx context.Context, id string) error
}

// ResponseStore persists candidate responses. At most one response exists
// per (assessment, candidate).
type ResponseStore interface {
	GetResponse(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error)
	GetResponseByID(ctx context.Context, id string) (*model.AssessmentResponse, error)
	// PutResponse upserts by id.
	PutResponse(ctx context.Context, r *model.AssessmentResponse) error
	// PutDraft upserts a draft for the pair unless the stored response is
	// already submitted. It reports whether the draft was written and sets
	// r.ID to the stored id.
	PutDraft(ctx context.Context, r *model.AssessmentResponse) (bool, error)
	ListResponsesByAssessment(ctx context.Context, assessmentID string) ([]model.AssessmentResponse, error)
	DeleteResponse(ctx context.Context, id string) error
}

// ScoreStore persists computed scores.
type ScoreStore interface {
	PutScores(ctx context.Context, scores []model.StoredScore) error
	GetScore(ctx context.Context, responseID string) (*model.StoredScore, error)
}

// RecruiterStore persists recruiter accounts.
type RecruiterStore interface {
	GetRecruiterByEmail(ctx context.Context, email string) (*model.Recruiter, error)
	GetRecruiterByID(ctx context.Context, id string) (*model.Recruiter, error)
	CreateRecruiter(ctx context.Context, r *model.Recruiter) error
}

// Store is a full storage backend.
type Store interface {
	AssessmentStore
	ResponseStore
	ScoreStore
	RecruiterStore
}

// notFound maps driver "no rows" errors to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
