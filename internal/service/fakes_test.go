package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
)

// memStore is an in-memory repository.Store.
type memStore struct {
	mu          sync.Mutex
	assessments map[string]*model.Assessment
	responses   map[string]*model.AssessmentResponse
	scores      map[string]model.StoredScore
	recruiters  map[string]*model.Recruiter
	failWrites  error
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		assessments: map[string]*model.Assessment{},
		responses:   map[string]*model.AssessmentResponse{},
		scores:      map[string]model.StoredScore{},
		recruiters:  map[string]*model.Recruiter{},
	}
}

func (m *memStore) GetAssessment(_ context.Context, id string) (*model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assessments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a.Clone(), nil
}

func (m *memStore) ListAssessmentsByJob(_ context.Context, jobID string) ([]model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assessment
	for _, a := range m.assessments {
		if a.JobID == jobID {
			out = append(out, *a.Clone())
		}
	}
	return out, nil
}

func (m *memStore) CreateAssessment(_ context.Context, a *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	m.assessments[a.ID] = a.Clone()
	return nil
}

func (m *memStore) UpdateAssessment(_ context.Context, a *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	if _, ok := m.assessments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	m.assessments[a.ID] = a.Clone()
	return nil
}

func (m *memStore) DeleteAssessment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.assessments, id)
	for rid, r := range m.responses {
		if r.AssessmentID == id {
			delete(m.responses, rid)
		}
	}
	return nil
}

func (m *memStore) findPair(assessmentID, candidateID string) *model.AssessmentResponse {
	for _, r := range m.responses {
		if r.AssessmentID == assessmentID && r.CandidateID == candidateID {
			return r
		}
	}
	return nil
}

func copyResponse(r *model.AssessmentResponse) *model.AssessmentResponse {
	out := *r
	out.Responses = r.Responses.Clone()
	return &out
}

func (m *memStore) GetResponse(_ context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findPair(assessmentID, candidateID)
	if r == nil {
		return nil, repository.ErrNotFound
	}
	return copyResponse(r), nil
}

func (m *memStore) GetResponseByID(_ context.Context, id string) (*model.AssessmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.responses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyResponse(r), nil
}

func (m *memStore) PutResponse(_ context.Context, r *model.AssessmentResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	m.responses[r.ID] = copyResponse(r)
	return nil
}

func (m *memStore) PutDraft(_ context.Context, r *model.AssessmentResponse) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return false, m.failWrites
	}
	if cur := m.findPair(r.AssessmentID, r.CandidateID); cur != nil {
		if cur.Submitted() {
			return false, nil
		}
		r.ID = cur.ID
	}
	m.responses[r.ID] = copyResponse(r)
	return true, nil
}

func (m *memStore) ListResponsesByAssessment(_ context.Context, assessmentID string) ([]model.AssessmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AssessmentResponse
	for _, r := range m.responses {
		if r.AssessmentID == assessmentID {
			out = append(out, *copyResponse(r))
		}
	}
	return out, nil
}

func (m *memStore) DeleteResponse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.responses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.responses, id)
	delete(m.scores, id)
	return nil
}

func (m *memStore) PutScores(_ context.Context, scores []model.StoredScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range scores {
		if _, ok := m.responses[s.ResponseID]; ok {
			m.scores[s.ResponseID] = s
		}
	}
	return nil
}

func (m *memStore) GetScore(_ context.Context, responseID string) (*model.StoredScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[responseID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) GetRecruiterByEmail(_ context.Context, email string) (*model.Recruiter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recruiters {
		if r.Email == email {
			out := *r
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) GetRecruiterByID(_ context.Context, id string) (*model.Recruiter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recruiters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (m *memStore) CreateRecruiter(_ context.Context, r *model.Recruiter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *r
	m.recruiters[r.ID] = &out
	return nil
}

func sequentialIDs(prefix string) assessment.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func fixedClock(t time.Time) assessment.Clock {
	return func() time.Time { return t }
}

// frontendAssessment is a small valid assessment with conditional logic.
func frontendAssessment() *model.Assessment {
	return &model.Assessment{
		ID:    "a1",
		JobID: "job-1",
		Title: "Frontend Developer Assessment",
		Sections: []model.Section{
			{ID: "s1", Title: "Experience", Questions: []model.Question{
				{ID: "q1", Text: "Used React?", Required: true, Spec: model.SingleChoiceSpec{Options: []string{"Yes", "No"}, CorrectAnswer: "Yes"}},
				{
					ID: "q2", Text: "Which hooks?", Required: true,
					Spec:             model.MultiChoiceSpec{Options: []string{"useState", "useEffect", "useMemo"}, CorrectAnswers: []string{"useState", "useEffect"}},
					ConditionalLogic: &model.ConditionalRule{DependsOn: "q1", Condition: model.ConditionEquals, Value: "Yes"},
				},
			}},
			{ID: "s2", Title: "Background", Questions: []model.Question{
				{ID: "q3", Text: "Years of experience", Spec: model.NumericSpec{}},
			}},
		},
	}
}
