package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
)

// ErrDraftNotOpen is returned when a builder operation targets an assessment
// without an open draft.
var ErrDraftNotOpen = errors.New("no builder draft is open for this assessment")

// BuilderService keeps one server-side builder draft per assessment. Edits
// go to the draft only; the stored assessment changes on Commit.
type BuilderService struct {
	drafts      repository.BuilderDraftStore
	assessments *AssessmentService
	log         zerolog.Logger
	newID       assessment.IDFunc

	// mu serializes load-edit-store cycles so concurrent edits do not lose
	// each other.
	mu sync.Mutex
}

// NewBuilderService creates a new BuilderService.
func NewBuilderService(drafts repository.BuilderDraftStore, assessments *AssessmentService, log zerolog.Logger) *BuilderService {
	return &BuilderService{
		drafts:      drafts,
		assessments: assessments,
		log:         log.With().Str("component", "builder_service").Logger(),
		newID:       assessment.NewID,
	}
}

// Open starts a fresh draft from the stored assessment, replacing any draft
// already open.
func (s *BuilderService) Open(ctx context.Context, assessmentID string) (*assessment.BuilderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.assessments.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, notFoundAs(err, ErrAssessmentNotFound)
	}
	st := assessment.NewBuilder(a, s.newID).State()
	if err := s.drafts.PutDraft(ctx, assessmentID, st); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	s.log.Debug().Str("assessment_id", assessmentID).Msg("Builder draft opened")
	return &st, nil
}

// Get returns the open draft.
func (s *BuilderService) Get(ctx context.Context, assessmentID string) (*assessment.BuilderState, error) {
	st, err := s.drafts.GetDraft(ctx, assessmentID)
	if err != nil {
		return nil, notFoundAs(err, ErrDraftNotOpen)
	}
	return st, nil
}

// Apply runs edit against the open draft and stores the result. When edit
// fails the stored draft is untouched.
func (s *BuilderService) Apply(ctx context.Context, assessmentID string, edit func(*assessment.Builder) error) (*assessment.BuilderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.drafts.GetDraft(ctx, assessmentID)
	if err != nil {
		return nil, notFoundAs(err, ErrDraftNotOpen)
	}
	b := assessment.RestoreBuilder(*st, s.newID)
	if err := edit(b); err != nil {
		return nil, err
	}

	next := b.State()
	if err := s.drafts.PutDraft(ctx, assessmentID, next); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	return &next, nil
}

// Commit validates the draft structure, replaces the stored assessment with
// it and closes the draft. On any failure the draft stays open.
func (s *BuilderService) Commit(ctx context.Context, assessmentID string) (*model.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.drafts.GetDraft(ctx, assessmentID)
	if err != nil {
		return nil, notFoundAs(err, ErrDraftNotOpen)
	}
	if err := assessment.CheckStructure(st.Assessment); err != nil {
		return nil, err
	}

	saved, err := s.assessments.Save(ctx, st.Assessment)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.DeleteDraft(ctx, assessmentID); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", assessmentID).Msg("Committed draft not dropped")
	}
	s.log.Info().Str("assessment_id", assessmentID).Msg("Builder draft committed")
	return saved, nil
}

// Discard drops the open draft.
func (s *BuilderService) Discard(ctx context.Context, assessmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.drafts.GetDraft(ctx, assessmentID); err != nil {
		return notFoundAs(err, ErrDraftNotOpen)
	}
	return s.drafts.DeleteDraft(ctx, assessmentID)
}

// Preview renders the open draft the way a candidate would see it.
func (s *BuilderService) Preview(ctx context.Context, assessmentID string, req *model.PreviewRequest) (*PreviewResult, error) {
	st, err := s.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return PreviewAssessment(st.Assessment, req), nil
}
