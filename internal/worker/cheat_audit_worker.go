package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bughuntlab/bughunt-backend/internal/config"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// CheatAuditWorker drains the tab-switch audit queue into Postgres in
// batches. The authoritative counter lives on the submission row; this
// trail is for post-event review only.
type CheatAuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewCheatAuditWorker creates a new CheatAuditWorker.
func NewCheatAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *CheatAuditWorker {
	return &CheatAuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "cheat_audit_worker").Logger(),
	}
}

type cheatPayload struct {
	UserID         string `json:"user_id"`
	ExamID         string `json:"exam_id"`
	TabSwitchCount int    `json:"tab_switch_count"`
	OccurredAt     int64  `json:"occurred_at"`
}

// Start runs the drain loop until ctx is cancelled.
func (w *CheatAuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("CheatAuditWorker started")

	buffer := make([]*cheatPayload, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Check Flush Conditions (Time or Size)
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0] // Clear buffer, keep capacity
				lastFlushTime = time.Now()
			}
		}

		// 2. Check Context (Graceful Shutdown)
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
			// Continue
		}

		// 3. Fetch from Redis
		// BLPop blocks for 1 second. Returns immediately if data exists.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.CheatEventsQueue).Result()

		if err != nil {
			if err == redis.Nil {
				continue // Timeout (Queue empty), loop back to check flush timer
			}
			if ctx.Err() != nil {
				return // Context cancelled
			}
			// Real Redis error (e.g., connection lost)
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		// 4. Process Data
		if len(result) < 2 {
			continue
		}

		var payload cheatPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// If JSON is malformed, we CANNOT retry it. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue
func (w *CheatAuditWorker) flushSafe(ctx context.Context, batch []*cheatPayload) {
	// Try Fast Path: Bulk Insert
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")

		// Fallback Path: Insert one by one
		w.fallbackInsert(ctx, batch)
	}
}

func (w *CheatAuditWorker) bulkInsert(ctx context.Context, batch []*cheatPayload) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		examID, err := uuid.Parse(p.ExamID)
		if err != nil {
			// Return error to trigger fallback, which will handle the bad UUID individually
			return err
		}
		userID, err := uuid.Parse(p.UserID)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			examID, userID, p.TabSwitchCount, time.Unix(p.OccurredAt, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"cheat_events"},
		[]string{"exam_id", "user_id", "tab_switch_count", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *CheatAuditWorker) fallbackInsert(ctx context.Context, batch []*cheatPayload) {
	requeueList := make([]*cheatPayload, 0)

	for _, p := range batch {
		examID, err := uuid.Parse(p.ExamID)
		if err != nil {
			w.log.Error().Str("exam_id", p.ExamID).Msg("Dropping cheat event with invalid exam id")
			continue
		}
		userID, err := uuid.Parse(p.UserID)
		if err != nil {
			w.log.Error().Str("user_id", p.UserID).Msg("Dropping cheat event with invalid user id")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO cheat_events (exam_id, user_id, tab_switch_count, recorded_at)
             VALUES ($1, $2, $3, $4)`,
			examID, userID, p.TabSwitchCount, time.Unix(p.OccurredAt, 0),
		)

		if err != nil {
			// Requeue anything that fails so a DB outage does not lose the trail.
			w.log.Error().Err(err).Str("user_id", p.UserID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	// If we have items to requeue (DB was down), push them back to Redis
	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *CheatAuditWorker) requeue(ctx context.Context, items []*cheatPayload) {
	// Use a pipeline to push everything back quickly
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.CheatEventsQueue, data)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
		// Sleep a bit to avoid thrashing if the DB is down hard
		time.Sleep(2 * time.Second)
	}
}

func (w *CheatAuditWorker) shutdown(buffer []*cheatPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	// Give it 5 seconds to flush to DB
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
