package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/talentflow/talentflow-backend/internal/model"
	_ "modernc.org/sqlite"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func testAssessment(now time.Time) *model.Assessment {
	return &model.Assessment{
		ID:    "a1",
		JobID: "job-1",
		Title: "Backend Engineer",
		Sections: []model.Section{{
			ID:    "s1",
			Title: "Basics",
			Questions: []model.Question{
				{ID: "q1", Text: "Go?", Required: true, Spec: model.SingleChoiceSpec{Options: []string{"Yes", "No"}, CorrectAnswer: "Yes"}},
				{ID: "q2", Text: "Years", Spec: model.NumericSpec{}},
			},
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSQLiteAssessmentRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)

	a := testAssessment(now)
	if err := s.CreateAssessment(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.GetAssessment(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != a.Title || got.QuestionCount() != 2 || !got.CreatedAt.Equal(now) {
		t.Fatalf("got %+v", got)
	}
	if q, ok := got.FindQuestion("q1"); !ok || q.Type() != model.QuestionTypeSingleChoice {
		t.Fatalf("q1 = %+v", q)
	}

	got.Title = "Renamed"
	if err := s.UpdateAssessment(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := s.ListAssessmentsByJob(ctx, "job-1")
	if err != nil || len(list) != 1 || list[0].Title != "Renamed" {
		t.Fatalf("list = %+v, %v", list, err)
	}

	if err := s.DeleteAssessment(ctx, "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetAssessment(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteAssessment(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestSQLiteDraftGuard(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := s.CreateAssessment(ctx, testAssessment(now)); err != nil {
		t.Fatal(err)
	}

	draft := &model.AssessmentResponse{
		ID: "r1", AssessmentID: "a1", CandidateID: "c1",
		Responses: model.Answers{"q1": model.Text("Yes")},
		UpdatedAt: now,
	}
	ok, err := s.PutDraft(ctx, draft)
	if err != nil || !ok {
		t.Fatalf("first draft = %v, %v", ok, err)
	}

	// A second draft with a fresh id keeps the stored id.
	again := &model.AssessmentResponse{
		ID: "other", AssessmentID: "a1", CandidateID: "c1",
		Responses: model.Answers{"q1": model.Text("No")},
		UpdatedAt: now.Add(time.Second),
	}
	if ok, err := s.PutDraft(ctx, again); err != nil || !ok || again.ID != "r1" {
		t.Fatalf("second draft = %v, %v, id %q", ok, err, again.ID)
	}

	submittedAt := now.Add(time.Minute)
	final := &model.AssessmentResponse{
		ID: "r1", AssessmentID: "a1", CandidateID: "c1",
		Responses:   model.Answers{"q1": model.Text("Yes"), "q2": model.Number(3)},
		SubmittedAt: &submittedAt,
		UpdatedAt:   submittedAt,
	}
	if err := s.PutResponse(ctx, final); err != nil {
		t.Fatalf("submit: %v", err)
	}

	late := &model.AssessmentResponse{
		ID: "r1", AssessmentID: "a1", CandidateID: "c1",
		Responses: model.Answers{},
		UpdatedAt: submittedAt.Add(time.Second),
	}
	if ok, err := s.PutDraft(ctx, late); err != nil || ok {
		t.Fatalf("draft over a submitted response = %v, %v", ok, err)
	}

	got, err := s.GetResponse(ctx, "a1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Submitted() || !got.SubmittedAt.Equal(submittedAt) || !got.Responses["q2"].Equal(model.Number(3)) {
		t.Fatalf("stored = %+v", got)
	}
}

func TestSQLiteScoresSkipMissingResponses(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := s.CreateAssessment(ctx, testAssessment(now)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutResponse(ctx, &model.AssessmentResponse{
		ID: "r1", AssessmentID: "a1", CandidateID: "c1",
		Responses: model.Answers{}, SubmittedAt: &now, UpdatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	result := model.ScoreResult{
		PerQuestion: map[string]float64{"q1": 1},
		PerSection:  map[string]model.SectionScore{"s1": {Score: 1, MaxScore: 2, Percentage: 50}},
		Overall:     model.SectionScore{Score: 1, MaxScore: 2, Percentage: 50},
	}
	err := s.PutScores(ctx, []model.StoredScore{
		{ResponseID: "r1", Result: result, ScoredAt: now},
		{ResponseID: "gone", Result: result, ScoredAt: now},
	})
	if err != nil {
		t.Fatalf("put scores: %v", err)
	}
	got, err := s.GetScore(ctx, "r1")
	if err != nil || got.Result.Overall.Percentage != 50 {
		t.Fatalf("score = %+v, %v", got, err)
	}
	if _, err := s.GetScore(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("orphan score err = %v", err)
	}
}

func TestSQLiteRecruiters(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	rec := &model.Recruiter{ID: "u1", Email: "hr@talentflow.dev", Name: "HR", PasswordHash: "hash"}
	if err := s.CreateRecruiter(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetRecruiterByEmail(ctx, "hr@talentflow.dev")
	if err != nil || got.ID != "u1" || got.PasswordHash != "hash" {
		t.Fatalf("recruiter = %+v, %v", got, err)
	}
	if _, err := s.GetRecruiterByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
