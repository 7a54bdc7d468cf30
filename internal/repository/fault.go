package repository

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/talentflow/talentflow-backend/internal/model"
)

// ErrSimulatedFailure is returned by a FaultyStore when the strategy decides
// a call fails.
var ErrSimulatedFailure = errors.New("simulated store failure")

// FaultStrategy decides the latency and outcome of one store call.
type FaultStrategy interface {
	Inject(ctx context.Context, op string) error
}

// RandomFaults delays every call by Latency and fails a FailureRate share
// of them.
type RandomFaults struct {
	Latency     time.Duration
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomFaults returns a strategy seeded from seed.
func NewRandomFaults(latency time.Duration, failureRate float64, seed uint64) *RandomFaults {
	return &RandomFaults{
		Latency:     latency,
		FailureRate: failureRate,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Inject implements FaultStrategy.
func (f *RandomFaults) Inject(ctx context.Context, _ string) error {
	if f.Latency > 0 {
		t := time.NewTimer(f.Latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	if f.FailureRate <= 0 {
		return nil
	}
	f.mu.Lock()
	roll := f.rng.Float64()
	f.mu.Unlock()
	if roll < f.FailureRate {
		return ErrSimulatedFailure
	}
	return nil
}

// FaultyStore wraps a Store and runs the strategy before every call.
type FaultyStore struct {
	next  Store
	fault FaultStrategy
}

// NewFaultyStore wraps next.
func NewFaultyStore(next Store, fault FaultStrategy) *FaultyStore {
	return &FaultyStore{next: next, fault: fault}
}

var _ Store = (*FaultyStore)(nil)

func (s *FaultyStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	if err := s.fault.Inject(ctx, "GetAssessment"); err != nil {
		return nil, err
	}
	return s.next.GetAssessment(ctx, id)
}

func (s *FaultyStore) ListAssessmentsByJob(ctx context.Context, jobID string) ([]model.Assessment, error) {
	if err := s.fault.Inject(ctx, "ListAssessmentsByJob"); err != nil {
		return nil, err
	}
	return s.next.ListAssessmentsByJob(ctx, jobID)
}

func (s *FaultyStore) CreateAssessment(ctx context.Context, a *model.Assessment) error {
	if err := s.fault.Inject(ctx, "CreateAssessment"); err != nil {
		return err
	}
	return s.next.CreateAssessment(ctx, a)
}

func (s *FaultyStore) UpdateAssessment(ctx context.Context, a *model.Assessment) error {
	if err := s.fault.Inject(ctx, "UpdateAssessment"); err != nil {
		return err
	}
	return s.next.UpdateAssessment(ctx, a)
}

func (s *FaultyStore) DeleteAssessment(ctx context.Context, id string) error {
	if err := s.fault.Inject(ctx, "DeleteAssessment"); err != nil {
		return err
	}
	return s.next.DeleteAssessment(ctx, id)
}

func (s *FaultyStore) GetResponse(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	if err := s.fault.Inject(ctx, "GetResponse"); err != nil {
		return nil, err
	}
	return s.next.GetResponse(ctx, assessmentID, candidateID)
}

func (s *FaultyStore) GetResponseByID(ctx context.Context, id string) (*model.AssessmentResponse, error) {
	if err := s.fault.Inject(ctx, "GetResponseByID"); err != nil {
		return nil, err
	}
	return s.next.GetResponseByID(ctx, id)
}

func (s *FaultyStore) PutResponse(ctx context.Context, r *model.AssessmentResponse) error {
	if err := s.fault.Inject(ctx, "PutResponse"); err != nil {
		return err
	}
	return s.next.PutResponse(ctx, r)
}

func (s *FaultyStore) PutDraft(ctx context.Context, r *model.AssessmentResponse) (bool, error) {
	if err := s.fault.Inject(ctx, "PutDraft"); err != nil {
		return false, err
	}
	return s.next.PutDraft(ctx, r)
}

func (s *FaultyStore) ListResponsesByAssessment(ctx context.Context, assessmentID string) ([]model.AssessmentResponse, error) {
	if err := s.fault.Inject(ctx, "ListResponsesByAssessment"); err != nil {
		return nil, err
	}
	return s.next.ListResponsesByAssessment(ctx, assessmentID)
}

func (s *FaultyStore) DeleteResponse(ctx context.Context, id string) error {
	if err := s.fault.Inject(ctx, "DeleteResponse"); err != nil {
		return err
	}
	return s.next.DeleteResponse(ctx, id)
}

func (s *FaultyStore) PutScores(ctx context.Context, scores []model.StoredScore) error {
	if err := s.fault.Inject(ctx, "PutScores"); err != nil {
		return err
	}
	return s.next.PutScores(ctx, scores)
}

func (s *FaultyStore) GetScore(ctx context.Context, responseID string) (*model.StoredScore, error) {
	if err := s.fault.Inject(ctx, "GetScore"); err != nil {
		return nil, err
	}
	return s.next.GetScore(ctx, responseID)
}

func (s *FaultyStore) GetRecruiterByEmail(ctx context.Context, email string) (*model.Recruiter, error) {
	if err := s.fault.Inject(ctx, "GetRecruiterByEmail"); err != nil {
		return nil, err
	}
	return s.next.GetRecruiterByEmail(ctx, email)
}

func (s *FaultyStore) GetRecruiterByID(ctx context.Context, id string) (*model.Recruiter, error) {
	if err := s.fault.Inject(ctx, "GetRecruiterByID"); err != nil {
		return nil, err
	}
	return s.next.GetRecruiterByID(ctx, id)
}

func (s *FaultyStore) CreateRecruiter(ctx context.Context, r *model.Recruiter) error {
	if err := s.fault.Inject(ctx, "CreateRecruiter"); err != nil {
		return err
	}
	return s.next.CreateRecruiter(ctx, r)
}
