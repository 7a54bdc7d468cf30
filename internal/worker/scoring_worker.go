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
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScoreComputer scores submitted responses by id.
type ScoreComputer interface {
	Compute(ctx context.Context, responseIDs []string) ([]model.StoredScore, error)
}

// ScoringWorker consumes persist_scores_queue, scores the responses in
// batches and upserts response_scores.
type ScoringWorker struct {
	rdb      *redis.Client
	computer ScoreComputer
	scores   repository.ScoreStore
	log      zerolog.Logger
	requeue  func(ctx context.Context, responseIDs []string)
}

// NewScoringWorker creates a new ScoringWorker.
func NewScoringWorker(rdb *redis.Client, computer ScoreComputer, scores repository.ScoreStore, log zerolog.Logger) *ScoringWorker {
	w := &ScoringWorker{
		rdb:      rdb,
		computer: computer,
		scores:   scores,
		log:      log.With().Str("component", "scoring_worker").Logger(),
	}
	w.requeue = w.pushBack
	return w
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoringWorker started")

	batch := make([]string, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var job repository.ScoreJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil || job.ResponseID == "" {
				w.log.Error().Err(err).Msg("Invalid score job")
				continue
			}
			batch = append(batch, job.ResponseID)
		}
	}
}

// ----------------------------------------------------------------
// Batch upsert with single-row fallback
// ----------------------------------------------------------------

func (w *ScoringWorker) flushSafe(ctx context.Context, batch []string) {
	if len(batch) == 0 {
		return
	}

	scores, err := w.computer.Compute(ctx, batch)
	if err != nil {
		w.log.Error().Err(err).Int("count", len(batch)).Msg("Scoring failed, requeueing batch")
		w.requeue(ctx, batch)
		return
	}
	if len(scores) == 0 {
		return
	}

	if err := w.scores.PutScores(ctx, scores); err != nil {
		w.log.Warn().Err(err).Msg("Bulk score upsert failed, using fallback")

		var failed []string
		for _, s := range scores {
			if err := w.scores.PutScores(ctx, []model.StoredScore{s}); err != nil {
				w.log.Error().Err(err).Str("response_id", s.ResponseID).Msg("Single score upsert failed, requeueing")
				failed = append(failed, s.ResponseID)
			}
		}
		if len(failed) > 0 {
			w.requeue(ctx, failed)
		}
		return
	}

	w.log.Debug().Int("count", len(scores)).Msg("Scores persisted")
}

func (w *ScoringWorker) pushBack(ctx context.Context, responseIDs []string) {
	pipe := w.rdb.Pipeline()
	for _, id := range responseIDs {
		raw, _ := json.Marshal(repository.ScoreJob{ResponseID: id})
		pipe.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(responseIDs)).Msg("Requeue failed")
	}
}
