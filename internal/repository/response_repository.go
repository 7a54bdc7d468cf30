package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// ResponseRepository handles assessment response data access.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

const responseColumns = `id, assessment_id, candidate_id, responses, submitted_at, updated_at`

func scanResponse(row pgx.Row) (*model.AssessmentResponse, error) {
	r := &model.AssessmentResponse{}
	var answers []byte
	if err := row.Scan(&r.ID, &r.AssessmentID, &r.CandidateID, &answers, &r.SubmittedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &r.Responses); err != nil {
		return nil, fmt.Errorf("decode answers of %s: %w", r.ID, err)
	}
	if r.Responses == nil {
		r.Responses = model.Answers{}
	}
	return r, nil
}

// GetResponse retrieves the response of a candidate for an assessment.
func (r *ResponseRepository) GetResponse(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	resp, err := scanResponse(r.pool.QueryRow(ctx,
		`SELECT `+responseColumns+`
		 FROM assessment_responses
		 WHERE assessment_id = $1 AND candidate_id = $2`, assessmentID, candidateID))
	if err != nil {
		return nil, notFound(err)
	}
	return resp, nil
}

// GetResponseByID retrieves a response by id.
func (r *ResponseRepository) GetResponseByID(ctx context.Context, id string) (*model.AssessmentResponse, error) {
	resp, err := scanResponse(r.pool.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM assessment_responses WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return resp, nil
}

// PutResponse upserts a response by id.
func (r *ResponseRepository) PutResponse(ctx context.Context, resp *model.AssessmentResponse) error {
	answers, err := json.Marshal(resp.Responses)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO assessment_responses (id, assessment_id, candidate_id, responses, submitted_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET responses = EXCLUDED.responses,
		     submitted_at = EXCLUDED.submitted_at,
		     updated_at = EXCLUDED.updated_at`,
		resp.ID, resp.AssessmentID, resp.CandidateID, answers, resp.SubmittedAt, resp.UpdatedAt)
	return err
}

// PutDraft upserts a draft keyed by (assessment, candidate). A submitted
// row is never overwritten.
func (r *ResponseRepository) PutDraft(ctx context.Context, resp *model.AssessmentResponse) (bool, error) {
	answers, err := json.Marshal(resp.Responses)
	if err != nil {
		return false, fmt.Errorf("encode answers: %w", err)
	}
	var id string
	err = r.pool.QueryRow(ctx,
		`INSERT INTO assessment_responses (id, assessment_id, candidate_id, responses, submitted_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULL, $5)
		 ON CONFLICT (assessment_id, candidate_id) DO UPDATE
		 SET responses = EXCLUDED.responses,
		     updated_at = EXCLUDED.updated_at
		 WHERE assessment_responses.submitted_at IS NULL
		 RETURNING id`,
		resp.ID, resp.AssessmentID, resp.CandidateID, answers, resp.UpdatedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	resp.ID = id
	return true, nil
}

// ListResponsesByAssessment returns every response of an assessment.
func (r *ResponseRepository) ListResponsesByAssessment(ctx context.Context, assessmentID string) ([]model.AssessmentResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+responseColumns+`
		 FROM assessment_responses
		 WHERE assessment_id = $1
		 ORDER BY updated_at DESC`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AssessmentResponse
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, rows.Err()
}

// DeleteResponse removes a response.
func (r *ResponseRepository) DeleteResponse(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assessment_responses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
