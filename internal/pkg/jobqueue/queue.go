package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bewear-pt/storefront/internal/pkg/cache"
)

const (
	DefaultKeyPrefix   = "storefront:jobs"
	DefaultMaxAttempts = 4
	DefaultWorkers     = 3
	// JobTTL bounds how long finished or abandoned job records stay readable.
	JobTTL = 24 * time.Hour

	dequeueTimeout = time.Second
	jobTimeout     = 2 * time.Minute
	promoteEvery   = time.Second
	sweepEvery     = time.Minute
	stuckAfter     = 10 * time.Minute
)

// ErrDuplicateJob is returned by Enqueue when a job with the same unique key
// has not finished yet.
var ErrDuplicateJob = errors.New("job with this unique key already queued")

// Handler processes one job. A returned error schedules another attempt
// while attempts remain.
type Handler func(ctx context.Context, job *Job) error

// Keys are the Redis keys used by one queue.
type Keys struct {
	Prefix string
}

func (k Keys) Job(id string) string     { return k.Prefix + ":job:" + id }
func (k Keys) Unique(key string) string { return k.Prefix + ":unique:" + key }
func (k Keys) Pending() string          { return k.Prefix + ":pending" }
func (k Keys) Processing() string       { return k.Prefix + ":processing" }
func (k Keys) Delayed() string          { return k.Prefix + ":delayed" }
func (k Keys) Stats() string            { return k.Prefix + ":stats" }

// Stats is a snapshot of the queue.
type Stats struct {
	Pending    int64
	Processing int64
	Delayed    int64
	Totals     map[JobStatus]int64
}

// Queue is a Redis list backed job queue. Jobs move pending -> processing
// atomically; failed attempts wait in a sorted set until their retry time.
type Queue struct {
	client    *redis.Client
	keys      Keys
	workers   int
	retryBase time.Duration
	now       func() time.Time

	handlersMu sync.RWMutex
	handlers   map[JobType]Handler

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewQueue creates a queue on the shared cache client.
func NewQueue(workers int) *Queue {
	return NewQueueWithClient(cache.GetClient(), workers)
}

func NewQueueWithClient(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		client:    client,
		keys:      Keys{Prefix: DefaultKeyPrefix},
		workers:   workers,
		retryBase: 30 * time.Second,
		now:       time.Now,
		handlers:  make(map[JobType]Handler),
	}
}

// RegisterHandler sets the handler for a job type, replacing any previous one.
func (q *Queue) RegisterHandler(jobType JobType, h Handler) {
	q.handlersMu.Lock()
	defer q.handlersMu.Unlock()
	q.handlers[jobType] = h
}

func (q *Queue) handler(jobType JobType) (Handler, bool) {
	q.handlersMu.RLock()
	defer q.handlersMu.RUnlock()
	h, ok := q.handlers[jobType]
	return h, ok
}

// Enqueue stores a job with payload marshalled to JSON and pushes it onto the
// pending list.
func (q *Queue) Enqueue(ctx context.Context, jobType JobType, payload interface{}, opts ...EnqueueOption) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	now := q.now()
	job := &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      JobStatusPending,
		Payload:     raw,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(job)
	}

	if job.UniqueKey != "" {
		claimed, err := q.client.SetNX(ctx, q.keys.Unique(job.UniqueKey), job.ID, JobTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("claim unique key %s: %w", job.UniqueKey, err)
		}
		if !claimed {
			return nil, ErrDuplicateJob
		}
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.Set(ctx, q.keys.Job(job.ID), data, JobTTL)
	pipe.LPush(ctx, q.keys.Pending(), job.ID)
	pipe.HIncrBy(ctx, q.keys.Stats(), string(JobStatusPending), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		if job.UniqueKey != "" {
			q.client.Del(ctx, q.keys.Unique(job.UniqueKey))
		}
		return nil, fmt.Errorf("enqueue %s: %w", jobType, err)
	}

	log.Infof("[JobQueue] Enqueued %s job %s", job.Type, job.ID)
	return job, nil
}

// Start launches the workers and the scheduler that promotes due retries and
// recovers jobs left in processing by a crashed instance.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.running = true
	log.Infof("[JobQueue] Starting %d workers on %s", q.workers, q.keys.Prefix)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.wg.Add(1)
	go q.scheduler(ctx)
}

// Stop cancels the workers and waits for running jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	q.cancel()
	q.wg.Wait()
	q.running = false
	log.Info("[JobQueue] All workers stopped")
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for {
		job, err := q.dequeue(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Errorf("[JobQueue] Worker %d: dequeue failed: %v", id, err)
				time.Sleep(dequeueTimeout)
			}
			continue
		}
		q.process(job)
	}
}

func (q *Queue) scheduler(ctx context.Context) {
	defer q.wg.Done()
	promote := time.NewTicker(promoteEvery)
	defer promote.Stop()
	sweep := time.NewTicker(sweepEvery)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-promote.C:
			q.promoteDue(ctx, q.now())
		case <-sweep.C:
			q.recoverStuck(ctx, stuckAfter, q.now())
		}
	}
}

func (q *Queue) dequeue(ctx context.Context) (*Job, error) {
	id, err := q.client.BRPopLPush(ctx, q.keys.Pending(), q.keys.Processing(), dequeueTimeout).Result()
	if err != nil {
		return nil, err
	}
	job, err := q.GetJob(ctx, id)
	if err != nil {
		q.client.LRem(ctx, q.keys.Processing(), 1, id)
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	return job, nil
}

// process runs one attempt of job. Jobs get their own context so Stop lets
// the current attempt finish.
func (q *Queue) process(job *Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job.start(q.now())
	q.save(ctx, job)

	err := q.runHandler(ctx, job)
	now := q.now()
	switch {
	case err == nil:
		job.complete(now)
		q.finish(ctx, job)
		log.Infof("[JobQueue] Job %s (%s) completed", job.ID, job.Type)
	case job.fail(err, now):
		q.save(ctx, job)
		at := job.retryAt(q.retryBase, now)
		q.client.ZAdd(ctx, q.keys.Delayed(), redis.Z{Score: float64(at.Unix()), Member: job.ID})
		q.incr(ctx, JobStatusRetrying)
		log.Warnf("[JobQueue] Job %s (%s) attempt %d/%d failed, retrying at %s: %v",
			job.ID, job.Type, job.Attempts, job.MaxAttempts, at.Format(time.RFC3339), err)
	default:
		q.finish(ctx, job)
		log.Errorf("[JobQueue] Job %s (%s) failed after %d attempts: %v", job.ID, job.Type, job.Attempts, err)
	}
	q.client.LRem(ctx, q.keys.Processing(), 1, job.ID)
}

func (q *Queue) runHandler(ctx context.Context, job *Job) (err error) {
	h, ok := q.handler(job.Type)
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, job)
}

// finish records the final state and frees the unique key. Failed jobs stay
// readable until JobTTL for inspection.
func (q *Queue) finish(ctx context.Context, job *Job) {
	q.incr(ctx, job.Status)
	if job.UniqueKey != "" {
		q.client.Del(ctx, q.keys.Unique(job.UniqueKey))
	}
	if job.Status == JobStatusCompleted {
		q.client.Del(ctx, q.keys.Job(job.ID))
		return
	}
	q.save(ctx, job)
}

func (q *Queue) save(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] Failed to marshal job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, q.keys.Job(job.ID), data, JobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to save job %s: %v", job.ID, err)
	}
}

func (q *Queue) incr(ctx context.Context, status JobStatus) {
	if err := q.client.HIncrBy(ctx, q.keys.Stats(), string(status), 1).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to update stats: %v", err)
	}
}

// promoteDue moves retries whose time has come back to pending. ZRem decides
// which instance wins when several schedulers see the same job.
func (q *Queue) promoteDue(ctx context.Context, now time.Time) int {
	ids, err := q.client.ZRangeByScore(ctx, q.keys.Delayed(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		if ctx.Err() == nil {
			log.Errorf("[JobQueue] Reading delayed jobs failed: %v", err)
		}
		return 0
	}
	promoted := 0
	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, q.keys.Delayed(), id).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.keys.Pending(), id).Err(); err != nil {
			log.Errorf("[JobQueue] Failed to requeue job %s: %v", id, err)
			continue
		}
		promoted++
	}
	return promoted
}

// recoverStuck requeues jobs that have been processing for longer than maxAge.
func (q *Queue) recoverStuck(ctx context.Context, maxAge time.Duration, now time.Time) int {
	ids, err := q.client.LRange(ctx, q.keys.Processing(), 0, -1).Result()
	if err != nil {
		log.Errorf("[JobQueue] Reading processing list failed: %v", err)
		return 0
	}
	recovered := 0
	for _, id := range ids {
		job, err := q.GetJob(ctx, id)
		if err != nil || job.Status != JobStatusProcessing || job.StartedAt == nil {
			q.client.LRem(ctx, q.keys.Processing(), 1, id)
			continue
		}
		if now.Sub(*job.StartedAt) <= maxAge {
			continue
		}

		log.Warnf("[JobQueue] Recovering job %s (%s) stuck since %s", job.ID, job.Type, job.StartedAt.Format(time.RFC3339))
		job.Status = JobStatusPending
		job.StartedAt = nil
		job.LastError = "recovered after worker loss"
		job.UpdatedAt = now
		q.save(ctx, job)
		q.client.LRem(ctx, q.keys.Processing(), 1, id)
		q.client.RPush(ctx, q.keys.Pending(), id)
		recovered++
	}
	return recovered
}

// GetJob loads a stored job.
func (q *Queue) GetJob(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, q.keys.Job(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// Stats reads the list sizes and lifetime counters in one round trip.
func (q *Queue) Stats(ctx context.Context) (Stats, error) {
	pipe := q.client.Pipeline()
	pending := pipe.LLen(ctx, q.keys.Pending())
	processing := pipe.LLen(ctx, q.keys.Processing())
	delayed := pipe.ZCard(ctx, q.keys.Delayed())
	totals := pipe.HGetAll(ctx, q.keys.Stats())
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Stats{}, err
	}

	s := Stats{
		Pending:    pending.Val(),
		Processing: processing.Val(),
		Delayed:    delayed.Val(),
		Totals:     make(map[JobStatus]int64),
	}
	for status, count := range totals.Val() {
		if n, err := strconv.ParseInt(count, 10, 64); err == nil {
			s.Totals[JobStatus(status)] = n
		}
	}
	return s, nil
}
