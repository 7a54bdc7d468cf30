package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/config"
)

// BuilderDraftStore keeps one open builder draft per assessment.
type BuilderDraftStore interface {
	GetDraft(ctx context.Context, assessmentID string) (*assessment.BuilderState, error)
	PutDraft(ctx context.Context, assessmentID string, st assessment.BuilderState) error
	DeleteDraft(ctx context.Context, assessmentID string) error
}

// BuilderDraftRepository stores builder drafts in Redis with a sliding TTL.
type BuilderDraftRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBuilderDraftRepository creates a new BuilderDraftRepository.
func NewBuilderDraftRepository(rdb *redis.Client, ttl time.Duration) *BuilderDraftRepository {
	return &BuilderDraftRepository{rdb: rdb, ttl: ttl}
}

// GetDraft returns the open draft, or ErrNotFound.
func (r *BuilderDraftRepository) GetDraft(ctx context.Context, assessmentID string) (*assessment.BuilderState, error) {
	key := config.CacheKey.BuilderDraftKey(assessmentID)
	data, err := r.rdb.GetEx(ctx, key, r.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get builder draft: %w", err)
	}

	var st assessment.BuilderState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal builder draft: %w", err)
	}
	return &st, nil
}

// PutDraft stores the draft and refreshes its TTL.
func (r *BuilderDraftRepository) PutDraft(ctx context.Context, assessmentID string, st assessment.BuilderState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal builder draft: %w", err)
	}
	return r.rdb.Set(ctx, config.CacheKey.BuilderDraftKey(assessmentID), data, r.ttl).Err()
}

// DeleteDraft drops the draft. Deleting a missing draft is not an error.
func (r *BuilderDraftRepository) DeleteDraft(ctx context.Context, assessmentID string) error {
	return r.rdb.Del(ctx, config.CacheKey.BuilderDraftKey(assessmentID)).Err()
}

// MemoryBuilderDrafts keeps builder drafts in process memory. It backs the
// local single-instance mode when no Redis is configured; drafts do not
// expire and are lost on restart.
type MemoryBuilderDrafts struct {
	mu     sync.Mutex
	drafts map[string][]byte
}

// NewMemoryBuilderDrafts creates an empty MemoryBuilderDrafts.
func NewMemoryBuilderDrafts() *MemoryBuilderDrafts {
	return &MemoryBuilderDrafts{drafts: make(map[string][]byte)}
}

// GetDraft returns a copy of the open draft, or ErrNotFound.
func (m *MemoryBuilderDrafts) GetDraft(_ context.Context, assessmentID string) (*assessment.BuilderState, error) {
	m.mu.Lock()
	data, ok := m.drafts[assessmentID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var st assessment.BuilderState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal builder draft: %w", err)
	}
	return &st, nil
}

// PutDraft stores a copy of the draft.
func (m *MemoryBuilderDrafts) PutDraft(_ context.Context, assessmentID string, st assessment.BuilderState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal builder draft: %w", err)
	}
	m.mu.Lock()
	m.drafts[assessmentID] = data
	m.mu.Unlock()
	return nil
}

// DeleteDraft drops the draft.
func (m *MemoryBuilderDrafts) DeleteDraft(_ context.Context, assessmentID string) error {
	m.mu.Lock()
	delete(m.drafts, assessmentID)
	m.mu.Unlock()
	return nil
}

var (
	_ BuilderDraftStore = (*BuilderDraftRepository)(nil)
	_ BuilderDraftStore = (*MemoryBuilderDrafts)(nil)
)
