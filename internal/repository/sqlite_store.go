package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/talentflow/talentflow-backend/internal/model"
)

// SQLiteStore is a single-file local backend with the same semantics as
// PostgresStore. Documents are stored as JSON text and times as unix
// nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a store over db after making sure the schema exists.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS recruiters (
  id            TEXT PRIMARY KEY,
  name          TEXT NOT NULL,
  email         TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assessments (
  id         TEXT PRIMARY KEY,
  job_id     TEXT NOT NULL,
  title      TEXT NOT NULL,
  sections   TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_job_id ON assessments (job_id);

CREATE TABLE IF NOT EXISTS assessment_responses (
  id            TEXT PRIMARY KEY,
  assessment_id TEXT NOT NULL REFERENCES assessments (id) ON DELETE CASCADE,
  candidate_id  TEXT NOT NULL,
  responses     TEXT NOT NULL,
  submitted_at  INTEGER,
  updated_at    INTEGER NOT NULL,
  UNIQUE (assessment_id, candidate_id)
);

CREATE TABLE IF NOT EXISTS response_scores (
  response_id        TEXT PRIMARY KEY REFERENCES assessment_responses (id) ON DELETE CASCADE,
  result             TEXT NOT NULL,
  overall_percentage INTEGER NOT NULL,
  scored_at          INTEGER NOT NULL
);
`

func toNanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// ─── Assessments ────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteAssessment(row rowScanner) (*model.Assessment, error) {
	a := &model.Assessment{}
	var sections string
	var created, updated int64
	if err := row.Scan(&a.ID, &a.JobID, &a.Title, &sections, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sections), &a.Sections); err != nil {
		return nil, fmt.Errorf("decode sections of %s: %w", a.ID, err)
	}
	a.CreatedAt, a.UpdatedAt = fromNanos(created), fromNanos(updated)
	return a, nil
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	a, err := scanSQLiteAssessment(s.db.QueryRowContext(ctx,
		`SELECT id, job_id, title, sections, created_at, updated_at FROM assessments WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *SQLiteStore) ListAssessmentsByJob(ctx context.Context, jobID string) ([]model.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, title, sections, created_at, updated_at
		 FROM assessments WHERE job_id = ? ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		a, err := scanSQLiteAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateAssessment(ctx context.Context, a *model.Assessment) error {
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, job_id, title, sections, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.Title, string(sections), toNanos(a.CreatedAt), toNanos(a.UpdatedAt))
	return err
}

func (s *SQLiteStore) UpdateAssessment(ctx context.Context, a *model.Assessment) error {
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET title = ?, sections = ?, updated_at = ? WHERE id = ?`,
		a.Title, string(sections), toNanos(a.UpdatedAt), a.ID)
	return affectedOne(res, err)
}

func (s *SQLiteStore) DeleteAssessment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	return affectedOne(res, err)
}

// ─── Responses ──────────────────────────────────────────────────

const sqliteResponseColumns = `id, assessment_id, candidate_id, responses, submitted_at, updated_at`

func scanSQLiteResponse(row rowScanner) (*model.AssessmentResponse, error) {
	r := &model.AssessmentResponse{}
	var answers string
	var submitted sql.NullInt64
	var updated int64
	if err := row.Scan(&r.ID, &r.AssessmentID, &r.CandidateID, &answers, &submitted, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answers), &r.Responses); err != nil {
		return nil, fmt.Errorf("decode answers of %s: %w", r.ID, err)
	}
	if r.Responses == nil {
		r.Responses = model.Answers{}
	}
	if submitted.Valid {
		at := fromNanos(submitted.Int64)
		r.SubmittedAt = &at
	}
	r.UpdatedAt = fromNanos(updated)
	return r, nil
}

func (s *SQLiteStore) GetResponse(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	r, err := scanSQLiteResponse(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteResponseColumns+` FROM assessment_responses
		 WHERE assessment_id = ? AND candidate_id = ?`, assessmentID, candidateID))
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *SQLiteStore) GetResponseByID(ctx context.Context, id string) (*model.AssessmentResponse, error) {
	r, err := scanSQLiteResponse(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteResponseColumns+` FROM assessment_responses WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *SQLiteStore) PutResponse(ctx context.Context, r *model.AssessmentResponse) error {
	answers, err := json.Marshal(r.Responses)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	var submitted sql.NullInt64
	if r.SubmittedAt != nil {
		submitted = sql.NullInt64{Int64: toNanos(*r.SubmittedAt), Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessment_responses (id, assessment_id, candidate_id, responses, submitted_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET responses = excluded.responses,
		     submitted_at = excluded.submitted_at,
		     updated_at = excluded.updated_at`,
		r.ID, r.AssessmentID, r.CandidateID, string(answers), submitted, toNanos(r.UpdatedAt))
	return err
}

func (s *SQLiteStore) PutDraft(ctx context.Context, r *model.AssessmentResponse) (bool, error) {
	answers, err := json.Marshal(r.Responses)
	if err != nil {
		return false, fmt.Errorf("encode answers: %w", err)
	}
	var id string
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO assessment_responses (id, assessment_id, candidate_id, responses, submitted_at, updated_at)
		 VALUES (?, ?, ?, ?, NULL, ?)
		 ON CONFLICT (assessment_id, candidate_id) DO UPDATE
		 SET responses = excluded.responses,
		     updated_at = excluded.updated_at
		 WHERE assessment_responses.submitted_at IS NULL
		 RETURNING id`,
		r.ID, r.AssessmentID, r.CandidateID, string(answers), toNanos(r.UpdatedAt),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	r.ID = id
	return true, nil
}

func (s *SQLiteStore) ListResponsesByAssessment(ctx context.Context, assessmentID string) ([]model.AssessmentResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteResponseColumns+` FROM assessment_responses
		 WHERE assessment_id = ? ORDER BY updated_at DESC`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AssessmentResponse
	for rows.Next() {
		r, err := scanSQLiteResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteResponse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessment_responses WHERE id = ?`, id)
	return affectedOne(res, err)
}

// ─── Scores ─────────────────────────────────────────────────────

func (s *SQLiteStore) PutScores(ctx context.Context, scores []model.StoredScore) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, sc := range scores {
		raw, err := json.Marshal(sc.Result)
		if err != nil {
			return fmt.Errorf("encode score of %s: %w", sc.ResponseID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO response_scores (response_id, result, overall_percentage, scored_at)
			 SELECT ?, ?, ?, ?
			 WHERE EXISTS (SELECT 1 FROM assessment_responses WHERE id = ?)
			 ON CONFLICT (response_id) DO UPDATE
			 SET result = excluded.result,
			     overall_percentage = excluded.overall_percentage,
			     scored_at = excluded.scored_at`,
			sc.ResponseID, string(raw), sc.Result.Overall.Percentage, toNanos(sc.ScoredAt), sc.ResponseID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetScore(ctx context.Context, responseID string) (*model.StoredScore, error) {
	sc := &model.StoredScore{ResponseID: responseID}
	var raw string
	var scoredAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT result, scored_at FROM response_scores WHERE response_id = ?`, responseID,
	).Scan(&raw, &scoredAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal([]byte(raw), &sc.Result); err != nil {
		return nil, fmt.Errorf("decode score of %s: %w", responseID, err)
	}
	sc.ScoredAt = fromNanos(scoredAt)
	return sc, nil
}

// ─── Recruiters ─────────────────────────────────────────────────

func (s *SQLiteStore) getRecruiter(ctx context.Context, where string, arg string) (*model.Recruiter, error) {
	rec := &model.Recruiter{}
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM recruiters WHERE `+where+` = ?`, arg,
	).Scan(&rec.ID, &rec.Email, &rec.Name, &rec.PasswordHash, &created)
	if err != nil {
		return nil, notFound(err)
	}
	rec.CreatedAt = fromNanos(created)
	return rec, nil
}

func (s *SQLiteStore) GetRecruiterByID(ctx context.Context, id string) (*model.Recruiter, error) {
	return s.getRecruiter(ctx, "id", id)
}

func (s *SQLiteStore) GetRecruiterByEmail(ctx context.Context, email string) (*model.Recruiter, error) {
	return s.getRecruiter(ctx, "email", email)
}

func (s *SQLiteStore) CreateRecruiter(ctx context.Context, rec *model.Recruiter) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recruiters (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Email, rec.Name, rec.PasswordHash, toNanos(rec.CreatedAt))
	return err
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
