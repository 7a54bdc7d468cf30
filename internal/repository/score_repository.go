package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// ScoreRepository handles persisted score data access.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// PutScores upserts a batch of scores in one statement.
func (r *ScoreRepository) PutScores(ctx context.Context, scores []model.StoredScore) error {
	if len(scores) == 0 {
		return nil
	}
	n := len(scores)
	ids := make([]string, 0, n)
	results := make([]string, 0, n)
	percentages := make([]int32, 0, n)
	scoredAts := make([]time.Time, 0, n)
	for _, s := range scores {
		raw, err := json.Marshal(s.Result)
		if err != nil {
			return fmt.Errorf("encode score of %s: %w", s.ResponseID, err)
		}
		ids = append(ids, s.ResponseID)
		results = append(results, string(raw))
		percentages = append(percentages, int32(s.Result.Overall.Percentage))
		scoredAts = append(scoredAts, s.ScoredAt)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO response_scores (response_id, result, overall_percentage, scored_at)
		SELECT u.response_id, u.result::jsonb, u.overall_percentage, u.scored_at
		FROM UNNEST(
			$1::text[],
			$2::text[],
			$3::int[],
			$4::timestamptz[]
		) AS u (response_id, result, overall_percentage, scored_at)
		WHERE EXISTS (SELECT 1 FROM assessment_responses ar WHERE ar.id = u.response_id)
		ON CONFLICT (response_id) DO UPDATE
		SET result = EXCLUDED.result,
		    overall_percentage = EXCLUDED.overall_percentage,
		    scored_at = EXCLUDED.scored_at`,
		ids, results, percentages, scoredAts)
	return err
}

// GetScore retrieves the persisted score of a response.
func (r *ScoreRepository) GetScore(ctx context.Context, responseID string) (*model.StoredScore, error) {
	s := &model.StoredScore{ResponseID: responseID}
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT result, scored_at FROM response_scores WHERE response_id = $1`, responseID,
	).Scan(&raw, &s.ScoredAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &s.Result); err != nil {
		return nil, fmt.Errorf("decode score of %s: %w", responseID, err)
	}
	return s, nil
}
