package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// ErrDraftRejected is returned when a draft is buffered for a pair that has
// already been submitted.
var ErrDraftRejected = errors.New("draft rejected: response already submitted")

// DraftJob is one entry of the drafts queue.
type DraftJob struct {
	AssessmentID string `json:"assessment_id"`
	CandidateID  string `json:"candidate_id"`
}

// ScoreJob is one entry of the scores queue.
type ScoreJob struct {
	ResponseID string `json:"response_id"`
}

// bufferDraft writes the draft only while no submitted marker exists, and
// queues the pair for persistence in the same round trip.
var bufferDraft = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("RPUSH", KEYS[3], ARGV[3])
return 1
`)

// ResponseBuffer holds autosaved drafts in Redis until the autosave worker
// moves them to the response store.
type ResponseBuffer struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResponseBuffer creates a new ResponseBuffer.
func NewResponseBuffer(rdb *redis.Client, ttl time.Duration) *ResponseBuffer {
	return &ResponseBuffer{rdb: rdb, ttl: ttl}
}

// BufferDraft stores the draft and enqueues it for the autosave worker.
func (b *ResponseBuffer) BufferDraft(ctx context.Context, r *model.AssessmentResponse) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	job, err := json.Marshal(DraftJob{AssessmentID: r.AssessmentID, CandidateID: r.CandidateID})
	if err != nil {
		return fmt.Errorf("marshal draft job: %w", err)
	}

	keys := []string{
		config.CacheKey.ResponseDraftKey(r.AssessmentID, r.CandidateID),
		config.CacheKey.ResponseSubmittedKey(r.AssessmentID, r.CandidateID),
		config.WorkerKey.PersistDraftsQueue,
	}
	written, err := bufferDraft.Run(ctx, b.rdb, keys, data, b.ttl.Milliseconds(), job).Int()
	if err != nil {
		return fmt.Errorf("buffer draft: %w", err)
	}
	if written == 0 {
		return ErrDraftRejected
	}
	return nil
}

// GetDraft returns the buffered draft for the pair, or ErrNotFound.
func (b *ResponseBuffer) GetDraft(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error) {
	data, err := b.rdb.Get(ctx, config.CacheKey.ResponseDraftKey(assessmentID, candidateID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var r model.AssessmentResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	if r.Responses == nil {
		r.Responses = model.Answers{}
	}
	return &r, nil
}

// MarkSubmitted records the pair as terminal and drops its buffered draft.
func (b *ResponseBuffer) MarkSubmitted(ctx context.Context, assessmentID, candidateID string) error {
	pipe := b.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.ResponseSubmittedKey(assessmentID, candidateID), 1, b.ttl)
	pipe.Del(ctx, config.CacheKey.ResponseDraftKey(assessmentID, candidateID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	return nil
}

// Forget drops everything buffered for the pair, e.g. after the response
// was deleted.
func (b *ResponseBuffer) Forget(ctx context.Context, assessmentID, candidateID string) error {
	return b.rdb.Del(ctx,
		config.CacheKey.ResponseDraftKey(assessmentID, candidateID),
		config.CacheKey.ResponseSubmittedKey(assessmentID, candidateID),
	).Err()
}

// EnqueueScore queues a submitted response for the scoring worker.
func (b *ResponseBuffer) EnqueueScore(ctx context.Context, responseID string) error {
	job, err := json.Marshal(ScoreJob{ResponseID: responseID})
	if err != nil {
		return fmt.Errorf("marshal score job: %w", err)
	}
	return b.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, job).Err()
}

// QueueDepths reports the length of every worker queue.
func (b *ResponseBuffer) QueueDepths(ctx context.Context) (map[string]int64, error) {
	pipe := b.rdb.Pipeline()
	drafts := pipe.LLen(ctx, config.WorkerKey.PersistDraftsQueue)
	scores := pipe.LLen(ctx, config.WorkerKey.PersistScoresQueue)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("queue depths: %w", err)
	}
	return map[string]int64{
		config.WorkerKey.PersistDraftsQueue: drafts.Val(),
		config.WorkerKey.PersistScoresQueue: scores.Val(),
	}, nil
}
