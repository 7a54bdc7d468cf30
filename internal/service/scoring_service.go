package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
)

// ErrResponseNotSubmitted is returned when a draft is asked for a score.
var ErrResponseNotSubmitted = errors.New("response has not been submitted")

// ScoringService scores submitted responses against their assessment.
type ScoringService struct {
	assessments repository.AssessmentStore
	responses   repository.ResponseStore
	scores      repository.ScoreStore
	log         zerolog.Logger
	now         assessment.Clock
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	assessments repository.AssessmentStore,
	responses repository.ResponseStore,
	scores repository.ScoreStore,
	log zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		assessments: assessments,
		responses:   responses,
		scores:      scores,
		log:         log.With().Str("component", "scoring_service").Logger(),
		now:         time.Now,
	}
}

// Score returns the score of one submitted response. A stored score is used
// when it is not older than the response; otherwise the score is computed
// and stored.
func (s *ScoringService) Score(ctx context.Context, responseID string) (*model.ScoredResponse, error) {
	r, err := s.responses.GetResponseByID(ctx, responseID)
	if err != nil {
		return nil, notFoundAs(err, ErrResponseNotFound)
	}
	if !r.Submitted() {
		return nil, ErrResponseNotSubmitted
	}

	stored, err := s.scores.GetScore(ctx, responseID)
	switch {
	case err == nil && !stored.ScoredAt.Before(r.UpdatedAt):
		return scored(r, stored.Result), nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		s.log.Warn().Err(err).Str("response_id", responseID).Msg("Stored score unreadable, recomputing")
	}

	a, err := s.assessments.GetAssessment(ctx, r.AssessmentID)
	if err != nil {
		return nil, notFoundAs(err, ErrAssessmentNotFound)
	}
	result := assessment.Score(a, r.Responses)
	if err := s.scores.PutScores(ctx, []model.StoredScore{{ResponseID: r.ID, Result: result, ScoredAt: s.now().UTC()}}); err != nil {
		s.log.Warn().Err(err).Str("response_id", responseID).Msg("Score not stored")
	}
	return scored(r, result), nil
}

// Results scores every submitted response of an assessment, best first.
// Ties keep the earlier submission first.
func (s *ScoringService) Results(ctx context.Context, assessmentID string) ([]model.ScoredResponse, error) {
	a, err := s.assessments.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, notFoundAs(err, ErrAssessmentNotFound)
	}
	list, err := s.responses.ListResponsesByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	out := make([]model.ScoredResponse, 0, len(list))
	for i := range list {
		r := &list[i]
		if !r.Submitted() {
			continue
		}
		out = append(out, *scored(r, assessment.Score(a, r.Responses)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Score.Overall.Percentage, out[j].Score.Overall.Percentage
		if pi != pj {
			return pi > pj
		}
		return out[i].SubmittedAt.Before(*out[j].SubmittedAt)
	})
	return out, nil
}

// Compute scores the given responses, skipping ids that no longer exist or
// are not submitted. Each assessment is loaded once.
func (s *ScoringService) Compute(ctx context.Context, responseIDs []string) ([]model.StoredScore, error) {
	loaded := make(map[string]*model.Assessment)
	out := make([]model.StoredScore, 0, len(responseIDs))
	now := s.now().UTC()

	for _, id := range responseIDs {
		r, err := s.responses.GetResponseByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get response %s: %w", id, err)
		}
		if !r.Submitted() {
			continue
		}

		a, ok := loaded[r.AssessmentID]
		if !ok {
			a, err = s.assessments.GetAssessment(ctx, r.AssessmentID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get assessment %s: %w", r.AssessmentID, err)
			}
			loaded[r.AssessmentID] = a
		}
		out = append(out, model.StoredScore{ResponseID: r.ID, Result: assessment.Score(a, r.Responses), ScoredAt: now})
	}
	return out, nil
}

// EnqueueScore computes and stores a score immediately. It lets the
// response service score submissions when no worker queue is configured.
func (s *ScoringService) EnqueueScore(ctx context.Context, responseID string) error {
	scores, err := s.Compute(ctx, []string{responseID})
	if err != nil {
		return err
	}
	return s.scores.PutScores(ctx, scores)
}

func scored(r *model.AssessmentResponse, result model.ScoreResult) *model.ScoredResponse {
	return &model.ScoredResponse{
		ResponseID:  r.ID,
		CandidateID: r.CandidateID,
		SubmittedAt: r.SubmittedAt,
		Score:       result,
	}
}
