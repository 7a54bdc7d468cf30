package repository

import "github.com/jackc/pgx/v5/pgxpool"

// PostgresStore is the production storage backend.
type PostgresStore struct {
	*AssessmentRepository
	*ResponseRepository
	*ScoreRepository
	*RecruiterRepository
}

// NewPostgresStore wires every repository onto one pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		AssessmentRepository: NewAssessmentRepository(pool),
		ResponseRepository:   NewResponseRepository(pool),
		ScoreRepository:      NewScoreRepository(pool),
		RecruiterRepository:  NewRecruiterRepository(pool),
	}
}

var _ Store = (*PostgresStore)(nil)
