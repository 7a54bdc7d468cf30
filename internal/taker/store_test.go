package taker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// memoryPersistence keeps responses keyed by (assessment, candidate) and
// refuses draft writes over a submitted response.
type memoryPersistence struct {
	mu        sync.Mutex
	responses map[string]*model.AssessmentResponse
	drafts    int
	submits   int
	failNext  error
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{responses: map[string]*model.AssessmentResponse{}}
}

func pairKey(a, c string) string { return a + "|" + c }

func (m *memoryPersistence) FindResponse(_ context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.responses[pairKey(assessmentID, candidateID)]
	if !ok {
		return nil, nil
	}
	out := *r
	out.Responses = r.Responses.Clone()
	return &out, nil
}

func (m *memoryPersistence) SaveDraft(_ context.Context, r *model.AssessmentResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	key := pairKey(r.AssessmentID, r.CandidateID)
	if cur, ok := m.responses[key]; ok && cur.Submitted() {
		return errors.New("response already submitted")
	}
	m.drafts++
	cp := *r
	m.responses[key] = &cp
	return nil
}

func (m *memoryPersistence) SaveSubmitted(_ context.Context, r *model.AssessmentResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.submits++
	cp := *r
	m.responses[pairKey(r.AssessmentID, r.CandidateID)] = &cp
	return nil
}

func (m *memoryPersistence) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func sampleAssessment() *model.Assessment {
	return &model.Assessment{
		ID: "a1",
		Sections: []model.Section{
			{ID: "s1", Title: "Basics", Questions: []model.Question{
				{ID: "q1", Text: "Remote?", Required: true, Spec: model.SingleChoiceSpec{Options: []string{"Yes", "No"}, CorrectAnswer: "Yes"}},
				{
					ID: "q2", Text: "Timezone", Required: true, Spec: model.TextSpec{},
					ConditionalLogic: &model.ConditionalRule{DependsOn: "q1", Condition: model.ConditionEquals, Value: "Yes"},
				},
			}},
			{ID: "s2", Title: "Experience", Questions: []model.Question{
				{ID: "q3", Text: "Years", Spec: model.NumericSpec{}},
			}},
		},
	}
}

func newTestStore(p Persistence, timers *manualTimers) *Store {
	n := 0
	return NewStore(Options{
		Persistence: p,
		Timers:      timers.AfterFunc,
		Now:         func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("r%d", n)
		},
	})
}

func TestDraftResume(t *testing.T) {
	p := newMemoryPersistence()
	timers := &manualTimers{}
	ctx := context.Background()

	s := newTestStore(p, timers)
	if err := s.LoadExisting(ctx, sampleAssessment(), "c1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.SetAnswer("q1", model.Text("No")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAnswer("q3", model.Text("4")); err != nil {
		t.Fatal(err)
	}
	if p.drafts != 0 {
		t.Fatal("draft written before the quiet period elapsed")
	}
	timers.FireAll()
	if p.drafts != 1 {
		t.Fatalf("drafts = %d, want 1", p.drafts)
	}

	resumed := newTestStore(p, &manualTimers{})
	if err := resumed.LoadExisting(ctx, sampleAssessment(), "c1"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := resumed.Answers()
	if len(got) != 2 || !got["q1"].Equal(model.Text("No")) || !got["q3"].Equal(model.Text("4")) {
		t.Fatalf("resumed answers = %+v", got)
	}
	if resumed.Submitted() || resumed.ResponseID() != "r1" {
		t.Fatalf("resumed id=%q submitted=%v", resumed.ResponseID(), resumed.Submitted())
	}
}

func TestSubmitRequiresVisibleAnswers(t *testing.T) {
	p := newMemoryPersistence()
	s := newTestStore(p, &manualTimers{})
	ctx := context.Background()
	_ = s.LoadExisting(ctx, sampleAssessment(), "c1")

	_ = s.SetAnswer("q1", model.Text("Yes"))
	_, err := s.Submit(ctx)
	var fe *assessment.FieldErrors
	if !errors.As(err, &fe) || len(fe.Errors) != 1 || fe.Errors[0].QuestionID != "q2" {
		t.Fatalf("err = %v, want one field error for q2", err)
	}
	if p.submits != 0 {
		t.Fatal("failed validation must not persist")
	}
	if !s.Answers()["q1"].Equal(model.Text("Yes")) {
		t.Fatal("failed submit changed the answers")
	}

	// Hiding the required question unblocks submission.
	_ = s.SetAnswer("q1", model.Text("No"))
	id, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != "r1" || !s.Submitted() || p.submits != 1 {
		t.Fatalf("id=%q submitted=%v submits=%d", id, s.Submitted(), p.submits)
	}
}

func TestSubmitIsTerminal(t *testing.T) {
	p := newMemoryPersistence()
	timers := &manualTimers{}
	s := newTestStore(p, timers)
	ctx := context.Background()
	_ = s.LoadExisting(ctx, sampleAssessment(), "c1")

	_ = s.SetAnswer("q1", model.Text("No"))
	timers.FireAll()
	draftID := s.ResponseID()

	_ = s.SetAnswer("q3", model.Number(3))
	id, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != draftID {
		t.Fatalf("submit id = %q, want the draft id %q", id, draftID)
	}

	// The autosave scheduled before submit must not overwrite the result.
	timers.FireAll()
	if p.drafts != 1 {
		t.Fatalf("drafts = %d, want 1", p.drafts)
	}
	if err := s.SetAnswer("q3", model.Number(9)); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want ErrAlreadySubmitted", err)
	}

	stored, _ := p.FindResponse(ctx, "a1", "c1")
	if !stored.Submitted() || !stored.Responses["q3"].Equal(model.Number(3)) {
		t.Fatalf("stored = %+v", stored)
	}
	if _, err := s.Submit(ctx); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit err = %v", err)
	}
}

func TestSubmitPersistenceFailureKeepsState(t *testing.T) {
	p := newMemoryPersistence()
	timers := &manualTimers{}
	s := newTestStore(p, timers)
	ctx := context.Background()
	_ = s.LoadExisting(ctx, sampleAssessment(), "c1")
	_ = s.SetAnswer("q1", model.Text("No"))

	p.failNext = errors.New("disk full")
	if _, err := s.Submit(ctx); err == nil {
		t.Fatal("expected the persistence error")
	}
	if s.Submitted() || !s.Answers()["q1"].Equal(model.Text("No")) {
		t.Fatal("failed submit must keep the attempt open and the answers intact")
	}
	if !s.PendingAutosave() {
		t.Fatal("the pending draft should be rescheduled after a failed submit")
	}
	if _, err := s.Submit(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestSwitchingCandidateCancelsAutosave(t *testing.T) {
	p := newMemoryPersistence()
	timers := &manualTimers{}
	s := newTestStore(p, timers)
	ctx := context.Background()
	_ = s.LoadExisting(ctx, sampleAssessment(), "c1")
	_ = s.SetAnswer("q1", model.Text("Yes"))

	if err := s.LoadExisting(ctx, sampleAssessment(), "c2"); err != nil {
		t.Fatal(err)
	}
	timers.FireAll()
	if p.drafts != 0 {
		t.Fatalf("stale autosave wrote %d drafts", p.drafts)
	}
	if len(s.Answers()) != 0 {
		t.Fatal("switching candidate must reset the answers")
	}

	s.Reset()
	if err := s.SetAnswer("q1", model.Text("Yes")); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}
}

func TestSetAnswerUnknownQuestion(t *testing.T) {
	s := newTestStore(nil, &manualTimers{})
	s.Start(sampleAssessment(), "", nil)
	if err := s.SetAnswer("nope", model.Text("x")); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("err = %v, want ErrUnknownQuestion", err)
	}
	_ = s.SetAnswer("q1", model.Text("No"))
	if got := s.Progress(); got != 33 {
		t.Fatalf("progress = %d, want 33", got)
	}
}
