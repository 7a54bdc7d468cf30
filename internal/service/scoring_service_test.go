package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/model"
)

func submittedResponse(id, candidate string, at time.Time, answers model.Answers) *model.AssessmentResponse {
	return &model.AssessmentResponse{
		ID: id, AssessmentID: "a1", CandidateID: candidate,
		Responses: answers, SubmittedAt: &at, UpdatedAt: at,
	}
}

func seededScoringService() (*ScoringService, *memStore) {
	store := newMemStore()
	store.assessments["a1"] = frontendAssessment()
	store.responses["r1"] = submittedResponse("r1", "c1", testNow, model.Answers{
		"q1": model.Text("Yes"), "q2": model.List("useState", "useEffect"), "q3": model.Text("5"),
	})
	store.responses["r2"] = submittedResponse("r2", "c2", testNow.Add(time.Minute), model.Answers{
		"q1": model.Text("No"), "q3": model.Number(2),
	})
	store.responses["r3"] = submittedResponse("r3", "c3", testNow.Add(2*time.Minute), model.Answers{
		"q1": model.Text("Yes"), "q2": model.List("useState"),
	})
	store.responses["r4"] = &model.AssessmentResponse{
		ID: "r4", AssessmentID: "a1", CandidateID: "c4",
		Responses: model.Answers{"q1": model.Text("Yes")}, UpdatedAt: testNow,
	}

	s := NewScoringService(store, store, store, zerolog.Nop())
	s.now = fixedClock(testNow.Add(time.Hour))
	return s, store
}

func TestResultsOrderedByPercentage(t *testing.T) {
	s, _ := seededScoringService()

	results, err := s.Results(context.Background(), "a1")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		id      string
		percent int
	}{{"r1", 100}, {"r3", 50}, {"r2", 33}}
	if len(results) != len(want) {
		t.Fatalf("got %d results, drafts must be excluded", len(results))
	}
	for i, w := range want {
		if results[i].ResponseID != w.id || results[i].Score.Overall.Percentage != w.percent {
			t.Errorf("results[%d] = %s %d%%, want %s %d%%", i, results[i].ResponseID, results[i].Score.Overall.Percentage, w.id, w.percent)
		}
	}
}

func TestScoreStoresAndReuses(t *testing.T) {
	s, store := seededScoringService()
	ctx := context.Background()

	got, err := s.Score(ctx, "r3")
	if err != nil {
		t.Fatal(err)
	}
	if got.Score.PerQuestion["q2"] != 0.5 || got.Score.PerSection["s1"].Percentage != 75 {
		t.Fatalf("score = %+v", got.Score)
	}
	if _, ok := store.scores["r3"]; !ok {
		t.Fatal("computed score was not stored")
	}

	// A fresh stored score is returned as is.
	stored := store.scores["r3"]
	stored.Result.Overall.Percentage = 99
	store.scores["r3"] = stored
	again, _ := s.Score(ctx, "r3")
	if again.Score.Overall.Percentage != 99 {
		t.Fatal("fresh stored score was recomputed")
	}

	if _, err := s.Score(ctx, "r4"); !errors.Is(err, ErrResponseNotSubmitted) {
		t.Fatalf("draft err = %v", err)
	}
	if _, err := s.Score(ctx, "nope"); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestComputeSkipsUnscorable(t *testing.T) {
	s, store := seededScoringService()

	scores, err := s.Compute(context.Background(), []string{"r1", "gone", "r4", "r2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 || scores[0].ResponseID != "r1" || scores[1].ResponseID != "r2" {
		t.Fatalf("scores = %+v", scores)
	}

	if err := s.EnqueueScore(context.Background(), "r2"); err != nil {
		t.Fatal(err)
	}
	if store.scores["r2"].Result.Overall.Percentage != 33 {
		t.Fatalf("stored = %+v", store.scores["r2"])
	}
}
