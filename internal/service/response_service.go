package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
)

// Response errors.
var (
	ErrResponseSubmitted = errors.New("response already submitted")
	ErrResponseNotFound  = errors.New("response not found")
)

// ScoreSink receives submitted responses for scoring.
type ScoreSink interface {
	EnqueueScore(ctx context.Context, responseID string) error
}

// ResponseService persists candidate responses. With a draft buffer, drafts
// go to Redis and a worker moves them to the store; without one they are
// written through.
type ResponseService struct {
	store  repository.ResponseStore
	buffer *repository.ResponseBuffer
	scores ScoreSink
	log    zerolog.Logger
}

// NewResponseService creates a new ResponseService. buffer may be nil.
func NewResponseService(store repository.ResponseStore, buffer *repository.ResponseBuffer, scores ScoreSink, log zerolog.Logger) *ResponseService {
	return &ResponseService{
		store:  store,
		buffer: buffer,
		scores: scores,
		log:    log.With().Str("component", "response_service").Logger(),
	}
}

// FindResponse returns the latest known response for the pair: a buffered
// draft first, then the stored response. It returns nil when none exists.
func (s *ResponseService) FindResponse(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	if s.buffer != nil {
		r, err := s.buffer.GetDraft(ctx, assessmentID, candidateID)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Err(err).
				Str("assessment_id", assessmentID).
				Str("candidate_id", candidateID).
				Msg("Draft buffer read failed, falling back to store")
		}
	}

	r, err := s.store.GetResponse(ctx, assessmentID, candidateID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	return r, nil
}

// SaveDraft stores a draft unless the pair is already submitted.
func (s *ResponseService) SaveDraft(ctx context.Context, r *model.AssessmentResponse) error {
	if s.buffer != nil {
		err := s.buffer.BufferDraft(ctx, r)
		if errors.Is(err, repository.ErrDraftRejected) {
			return ErrResponseSubmitted
		}
		return err
	}

	written, err := s.store.PutDraft(ctx, r)
	if err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	if !written {
		return ErrResponseSubmitted
	}
	return nil
}

// SaveSubmitted persists the terminal response under the id of any prior
// draft for the pair, then queues it for scoring.
func (s *ResponseService) SaveSubmitted(ctx context.Context, r *model.AssessmentResponse) error {
	existing, err := s.store.GetResponse(ctx, r.AssessmentID, r.CandidateID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return fmt.Errorf("get response: %w", err)
	case existing.Submitted():
		return ErrResponseSubmitted
	default:
		r.ID = existing.ID
	}

	if err := s.store.PutResponse(ctx, r); err != nil {
		return fmt.Errorf("put response: %w", err)
	}

	log := s.log.With().
		Str("response_id", r.ID).
		Str("assessment_id", r.AssessmentID).
		Str("candidate_id", r.CandidateID).
		Logger()
	if s.buffer != nil {
		if err := s.buffer.MarkSubmitted(ctx, r.AssessmentID, r.CandidateID); err != nil {
			log.Warn().Err(err).Msg("Submitted marker not written")
		}
	}
	if s.scores != nil {
		if err := s.scores.EnqueueScore(ctx, r.ID); err != nil {
			log.Warn().Err(err).Msg("Score not queued, it will be computed on demand")
		}
	}
	log.Info().Msg("Response submitted")
	return nil
}

// List returns every stored response of an assessment.
func (s *ResponseService) List(ctx context.Context, assessmentID string) ([]model.AssessmentResponse, error) {
	list, err := s.store.ListResponsesByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	if list == nil {
		list = []model.AssessmentResponse{}
	}
	return list, nil
}

// GetForCandidate returns the response of one candidate.
func (s *ResponseService) GetForCandidate(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	r, err := s.FindResponse(ctx, assessmentID, candidateID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrResponseNotFound
	}
	return r, nil
}

// Delete removes a response and anything buffered for its pair.
func (s *ResponseService) Delete(ctx context.Context, id string) error {
	r, err := s.store.GetResponseByID(ctx, id)
	if err != nil {
		return notFoundAs(err, ErrResponseNotFound)
	}
	if err := s.store.DeleteResponse(ctx, id); err != nil {
		return notFoundAs(err, ErrResponseNotFound)
	}
	if s.buffer != nil {
		if err := s.buffer.Forget(ctx, r.AssessmentID, r.CandidateID); err != nil {
			s.log.Warn().Err(err).Str("response_id", id).Msg("Buffered draft not dropped")
		}
	}
	s.log.Info().Str("response_id", id).Msg("Response deleted")
	return nil
}
