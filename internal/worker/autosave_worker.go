package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
)

const (
	draftPollTimeout = time.Second
	draftRetryDelay  = 5 * time.Second
)

// DraftSource returns the latest buffered draft of a pair.
type DraftSource interface {
	GetDraft(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error)
}

// AutosaveWorker consumes persist_drafts_queue and writes the buffered
// drafts to the response store. The store refuses drafts over submitted
// responses, so a late job never undoes a submission.
type AutosaveWorker struct {
	rdb    *redis.Client
	drafts DraftSource
	store  repository.ResponseStore
	log    zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(rdb *redis.Client, drafts DraftSource, store repository.ResponseStore, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		rdb:    rdb,
		drafts: drafts,
		store:  store,
		log:    log.With().Str("component", "autosave_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AutosaveWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, draftPollTimeout, config.WorkerKey.PersistDraftsQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	var job repository.DraftJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persist(ctx, job); err != nil {
		w.log.Error().Err(err).
			Str("assessment_id", job.AssessmentID).
			Str("candidate_id", job.CandidateID).
			Msg("Persist error, retrying in 5s")
		w.rdb.RPush(context.Background(), config.WorkerKey.PersistDraftsQueue, result[1])
		select {
		case <-ctx.Done():
		case <-time.After(draftRetryDelay):
		}
	}
}

// persist writes the current buffered draft of the job's pair. A draft that
// is gone was either submitted or expired, and a draft the store refuses
// belongs to a submitted response; neither is an error.
func (w *AutosaveWorker) persist(ctx context.Context, job repository.DraftJob) error {
	draft, err := w.drafts.GetDraft(ctx, job.AssessmentID, job.CandidateID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	written, err := w.store.PutDraft(ctx, draft)
	if err != nil {
		return err
	}
	if !written {
		w.log.Debug().
			Str("assessment_id", job.AssessmentID).
			Str("candidate_id", job.CandidateID).
			Msg("Draft skipped, response already submitted")
	}
	return nil
}

// drain processes all remaining items in the queue before shutdown.
func (w *AutosaveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistDraftsQueue).Result()
		if err != nil {
			break
		}

		var job repository.DraftJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persist(ctx, job); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
