package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
	"github.com/talentflow/talentflow-backend/internal/taker"
)

// ErrAssessmentNotFound is returned when an assessment does not exist.
var ErrAssessmentNotFound = errors.New("assessment not found")

// AssessmentService handles assessment documents and the builder preview.
type AssessmentService struct {
	store repository.AssessmentStore
	cache *repository.AssessmentCache
	log   zerolog.Logger

	newID assessment.IDFunc
	now   assessment.Clock
}

// NewAssessmentService creates a new AssessmentService. cache may be nil.
func NewAssessmentService(store repository.AssessmentStore, cache *repository.AssessmentCache, log zerolog.Logger) *AssessmentService {
	return &AssessmentService{
		store: store,
		cache: cache,
		log:   log.With().Str("component", "assessment_service").Logger(),
		newID: assessment.NewID,
		now:   time.Now,
	}
}

// ListByJob returns the assessments of a job, newest first.
func (s *AssessmentService) ListByJob(ctx context.Context, jobID string) ([]model.AssessmentSummary, error) {
	list, err := s.store.ListAssessmentsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]model.AssessmentSummary, len(list))
	for i := range list {
		out[i] = list[i].Summary()
	}
	return out, nil
}

// Get returns an assessment, served from the payload cache when warm.
func (s *AssessmentService) Get(ctx context.Context, id string) (*model.Assessment, error) {
	if a, err := s.cache.Get(ctx, id); err == nil {
		return a, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn().Err(err).Str("assessment_id", id).Msg("Payload cache read failed")
	}

	a, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrAssessmentNotFound)
	}
	if err := s.cache.Set(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", id).Msg("Payload cache write failed")
	}
	return a, nil
}

// Create stores a new assessment for a job. An assessment without sections
// gets one default section.
func (s *AssessmentService) Create(ctx context.Context, jobID string, req *model.CreateAssessmentRequest) (*model.Assessment, error) {
	now := s.now().UTC()
	a := &model.Assessment{
		ID:        s.newID(),
		JobID:     jobID,
		Title:     req.Title,
		Sections:  req.Sections,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(a.Sections) == 0 {
		a.Sections = []model.Section{assessment.NewSection(s.newID(), 1)}
	}
	s.assignIDs(a)
	if err := assessment.CheckStructure(a); err != nil {
		return nil, err
	}

	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	s.log.Info().Str("assessment_id", a.ID).Str("job_id", jobID).Msg("Assessment created")
	return a, nil
}

// Replace overwrites title and sections of an existing assessment.
func (s *AssessmentService) Replace(ctx context.Context, id string, req *model.ReplaceAssessmentRequest) (*model.Assessment, error) {
	return s.update(ctx, id, func(a *model.Assessment) {
		a.Title = req.Title
		a.Sections = req.Sections
	})
}

// Patch updates the title and/or sections of an existing assessment.
func (s *AssessmentService) Patch(ctx context.Context, id string, req *model.PatchAssessmentRequest) (*model.Assessment, error) {
	return s.update(ctx, id, func(a *model.Assessment) {
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Sections != nil {
			a.Sections = *req.Sections
		}
	})
}

// Save replaces a whole document that was edited elsewhere, e.g. a
// committed builder draft.
func (s *AssessmentService) Save(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	return s.update(ctx, a.ID, func(cur *model.Assessment) {
		cur.Title = a.Title
		cur.Sections = a.Clone().Sections
	})
}

func (s *AssessmentService) update(ctx context.Context, id string, apply func(*model.Assessment)) (*model.Assessment, error) {
	cur, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrAssessmentNotFound)
	}
	next := cur.Clone()
	apply(next)
	if len(next.Sections) == 0 {
		return nil, assessment.ErrLastSection
	}
	s.assignIDs(next)
	if err := assessment.CheckStructure(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateAssessment(ctx, next); err != nil {
		return nil, notFoundAs(err, ErrAssessmentNotFound)
	}
	s.invalidate(ctx, id)
	s.log.Info().Str("assessment_id", id).Msg("Assessment updated")
	return next, nil
}

// Delete removes an assessment and, through the store, its responses.
func (s *AssessmentService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAssessment(ctx, id); err != nil {
		return notFoundAs(err, ErrAssessmentNotFound)
	}
	s.invalidate(ctx, id)
	s.log.Info().Str("assessment_id", id).Msg("Assessment deleted")
	return nil
}

// PreviewResult is the builder's live preview of one section.
type PreviewResult struct {
	View   taker.View              `json:"view"`
	Errors []assessment.FieldError `json:"errors,omitempty"`
}

// Preview renders the requested section for a set of answers without
// persisting anything. With ShowValidation on, every visible question of
// the section carries its validation message.
func (s *AssessmentService) Preview(ctx context.Context, id string, req *model.PreviewRequest) (*PreviewResult, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return PreviewAssessment(a, req), nil
}

// PreviewAssessment renders a preview for an in-memory assessment, such as an
// open builder draft.
func PreviewAssessment(a *model.Assessment, req *model.PreviewRequest) *PreviewResult {
	store := taker.NewStore(taker.Options{})
	store.Start(a, "", &model.AssessmentResponse{Responses: req.Responses})

	rt := taker.NewRuntime(store, taker.ModePreview)
	rt.SetShowValidation(req.ShowValidation)
	rt.GoTo(req.SectionIndex)

	res := &PreviewResult{View: rt.View()}
	if req.ShowValidation && len(a.Sections) > 0 {
		res.Errors = assessment.ValidateSection(a.Sections[rt.SectionIndex()], store.Answers())
	}
	return res
}

// assignIDs gives every section and question without an id a fresh one.
func (s *AssessmentService) assignIDs(a *model.Assessment) {
	for i := range a.Sections {
		sec := &a.Sections[i]
		if sec.ID == "" {
			sec.ID = s.newID()
		}
		if sec.Title == "" {
			sec.Title = assessment.DefaultSectionTitle(i + 1)
		}
		if sec.Questions == nil {
			sec.Questions = []model.Question{}
		}
		for j := range sec.Questions {
			if sec.Questions[j].ID == "" {
				sec.Questions[j].ID = s.newID()
			}
		}
	}
}

func (s *AssessmentService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", id).Msg("Payload cache invalidation failed")
	}
}

// notFoundAs maps repository.ErrNotFound to the service's own sentinel.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
