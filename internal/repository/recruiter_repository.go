package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// RecruiterRepository handles recruiter data access.
type RecruiterRepository struct {
	pool *pgxpool.Pool
}

// NewRecruiterRepository creates a new RecruiterRepository.
func NewRecruiterRepository(pool *pgxpool.Pool) *RecruiterRepository {
	return &RecruiterRepository{pool: pool}
}

// GetRecruiterByID retrieves a recruiter by id.
func (r *RecruiterRepository) GetRecruiterByID(ctx context.Context, id string) (*model.Recruiter, error) {
	rec := &model.Recruiter{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM recruiters WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Email, &rec.Name, &rec.PasswordHash, &rec.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// GetRecruiterByEmail retrieves a recruiter by their unique email.
func (r *RecruiterRepository) GetRecruiterByEmail(ctx context.Context, email string) (*model.Recruiter, error) {
	rec := &model.Recruiter{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM recruiters WHERE email = $1`, email,
	).Scan(&rec.ID, &rec.Email, &rec.Name, &rec.PasswordHash, &rec.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// CreateRecruiter inserts a new recruiter.
func (r *RecruiterRepository) CreateRecruiter(ctx context.Context, rec *model.Recruiter) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO recruiters (id, email, name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		rec.ID, rec.Email, rec.Name, rec.PasswordHash,
	).Scan(&rec.CreatedAt)
}
