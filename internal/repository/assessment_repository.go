package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// AssessmentRepository handles assessment data access. Sections are stored
// as one JSONB document so a save is always a whole-document replace.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// GetAssessment retrieves an assessment by id.
func (r *AssessmentRepository) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	a := &model.Assessment{}
	var sections []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, job_id, title, sections, created_at, updated_at
		 FROM assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.JobID, &a.Title, &sections, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(sections, &a.Sections); err != nil {
		return nil, fmt.Errorf("decode sections of %s: %w", id, err)
	}
	return a, nil
}

// ListAssessmentsByJob returns a job's assessments, newest first.
func (r *AssessmentRepository) ListAssessmentsByJob(ctx context.Context, jobID string) ([]model.Assessment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, job_id, title, sections, created_at, updated_at
		 FROM assessments WHERE job_id = $1
		 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		var sections []byte
		if err := rows.Scan(&a.ID, &a.JobID, &a.Title, &sections, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sections, &a.Sections); err != nil {
			return nil, fmt.Errorf("decode sections of %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAssessment inserts a new assessment.
func (r *AssessmentRepository) CreateAssessment(ctx context.Context, a *model.Assessment) error {
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO assessments (id, job_id, title, sections, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.JobID, a.Title, sections, a.CreatedAt, a.UpdatedAt)
	return err
}

// UpdateAssessment replaces the title and sections of an assessment.
func (r *AssessmentRepository) UpdateAssessment(ctx context.Context, a *model.Assessment) error {
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE assessments SET title = $1, sections = $2, updated_at = $3
		 WHERE id = $4`,
		a.Title, sections, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAssessment removes an assessment and, by cascade, its responses.
func (r *AssessmentRepository) DeleteAssessment(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
