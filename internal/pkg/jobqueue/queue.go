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
)

// Redis keys. Pending and processing are lists of job ids; each job body
// lives under JobKeyPrefix+id until it completes or expires.
const (
	JobKeyPrefix     = "vitrine:job:"
	JobQueueKey      = "vitrine:jobs:pending"
	JobProcessingKey = "vitrine:jobs:processing"
	JobStatsKey      = "vitrine:jobs:stats"

	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour
)

const (
	dequeueTimeout   = time.Second
	stuckJobAge      = 10 * time.Minute
	stuckJobInterval = time.Minute
)

// Queue runs registered job handlers on a fixed number of workers fed from
// a Redis list.
type Queue struct {
	client     *redis.Client
	workers    int
	retryDelay time.Duration

	handlersMu sync.RWMutex
	handlers   map[JobType]Handler

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewQueue creates a queue with the given number of workers (3 when <= 0).
func NewQueue(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = 3
	}
	return &Queue{
		client:     client,
		workers:    workers,
		retryDelay: time.Minute,
		handlers:   make(map[JobType]Handler),
	}
}

// Register installs the handler for a job type. Jobs without a handler fail.
func (q *Queue) Register(jobType JobType, h Handler) {
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

// Start launches the workers and the stuck-job sweeper. It is a no-op when
// the queue is already running.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.stopCh = make(chan struct{})
	q.cancel = cancel
	q.running = true

	log.Infof("[JobQueue] Starting %d workers", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.wg.Add(1)
	go q.sweep(stuckJobAge, stuckJobInterval)
}

// Stop waits for in-flight jobs to finish and stops all workers.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}

	log.Info("[JobQueue] Stopping workers...")
	close(q.stopCh)
	q.cancel()
	q.wg.Wait()
	q.running = false
	log.Info("[JobQueue] All workers stopped")
}

// worker blocks on the pending list until the queue stops. The dequeue uses
// the cancellable context; handlers run on a background context so a stop
// never interrupts a half-sent email.
func (q *Queue) worker(dequeueCtx context.Context, id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.stopCh:
			log.Debugf("[JobQueue] Worker %d stopping", id)
			return
		default:
		}

		job, err := q.dequeueJob(dequeueCtx)
		switch {
		case err == nil:
			log.Infof("[JobQueue] Worker %d processing job %s (%s)", id, job.ID, job.Type)
			q.processJob(context.Background(), job)
		case errors.Is(err, redis.Nil), errors.Is(err, context.Canceled):
		default:
			log.Errorf("[JobQueue] Worker %d: dequeue failed: %v", id, err)
			time.Sleep(dequeueTimeout)
		}
	}
}

// EnqueueJob stores a pending job and pushes it onto the queue.
func (q *Queue) EnqueueJob(ctx context.Context, jobType JobType, payload map[string]interface{}) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL)
	pipe.LPush(ctx, JobQueueKey, job.ID)
	pipe.HIncrBy(ctx, JobStatsKey, string(JobStatusPending), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Infof("[JobQueue] Enqueued job %s (%s)", job.ID, job.Type)
	return job, nil
}

// dequeueJob moves the oldest pending id onto the processing list and loads
// its body. Ids whose body is gone or unreadable are dropped.
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	id, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, dequeueTimeout).Result()
	if err != nil {
		return nil, err
	}
	job, err := q.GetJob(ctx, id)
	if err != nil {
		q.removeFromProcessing(ctx, id)
		return nil, fmt.Errorf("dropping job %s: %w", id, err)
	}
	return job, nil
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	defer q.removeFromProcessing(ctx, job.ID)

	job.MarkAsProcessing()
	q.saveJob(ctx, job)

	var err error
	if h, ok := q.handler(job.Type); ok {
		err = h(ctx, job)
	} else {
		err = fmt.Errorf("no handler for job type %s", job.Type)
	}

	if err == nil {
		job.MarkAsCompleted()
		log.Infof("[JobQueue] Job %s completed", job.ID)
		q.incrStat(ctx, JobStatusCompleted)
		if err := q.client.Del(ctx, JobKeyPrefix+job.ID).Err(); err != nil {
			log.Errorf("[JobQueue] Failed to delete completed job %s: %v", job.ID, err)
		}
		return
	}

	log.Errorf("[JobQueue] Job %s failed: %v", job.ID, err)
	job.MarkAsFailed(err.Error())
	if !job.IsRetryable() {
		log.Errorf("[JobQueue] Job %s gave up after %d attempts", job.ID, job.RetryCount)
		q.incrStat(ctx, JobStatusFailed)
		q.saveJob(ctx, job)
		return
	}

	job.MarkAsRetrying()
	q.saveJob(ctx, job)
	delay := q.retryDelay * time.Duration(job.RetryCount)
	log.Infof("[JobQueue] Retrying job %s in %s (attempt %d/%d)", job.ID, delay, job.RetryCount, job.MaxRetries)
	time.AfterFunc(delay, func() {
		if err := q.client.LPush(context.Background(), JobQueueKey, job.ID).Err(); err != nil {
			log.Errorf("[JobQueue] Failed to requeue job %s: %v", job.ID, err)
		}
	})
}

// sweep periodically requeues jobs that sat in processing longer than
// maxAge, which happens when a worker dies mid-job.
func (q *Queue) sweep(maxAge, interval time.Duration) {
	defer q.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			if err := q.requeueStuck(context.Background(), maxAge, time.Now()); err != nil {
				log.Errorf("[JobQueue] Stuck job sweep failed: %v", err)
			}
		}
	}
}

func (q *Queue) requeueStuck(ctx context.Context, maxAge time.Duration, now time.Time) error {
	ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		job, err := q.GetJob(ctx, id)
		if err != nil || job.Status != JobStatusProcessing {
			q.removeFromProcessing(ctx, id)
			continue
		}
		started := job.UpdatedAt
		if job.ProcessedAt != nil {
			started = *job.ProcessedAt
		}
		if now.Sub(started) <= maxAge {
			continue
		}

		log.Warnf("[JobQueue] Requeueing job %s (%s) stuck for %s", job.ID, job.Type, now.Sub(started))
		job.Status = JobStatusPending
		job.ErrorMsg = "requeued after worker timeout"
		job.UpdatedAt = now
		q.saveJob(ctx, job)
		q.removeFromProcessing(ctx, id)
		if err := q.client.RPush(ctx, JobQueueKey, id).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) saveJob(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] Failed to marshal job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to save job %s: %v", job.ID, err)
	}
}

func (q *Queue) removeFromProcessing(ctx context.Context, id string) {
	if err := q.client.LRem(ctx, JobProcessingKey, 1, id).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to clear job %s from processing: %v", id, err)
	}
}

func (q *Queue) incrStat(ctx context.Context, status JobStatus) {
	if err := q.client.HIncrBy(ctx, JobStatsKey, string(status), 1).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to update job stats: %v", err)
	}
}

// GetJob loads a stored job. Completed jobs are deleted and return redis.Nil.
func (q *Queue) GetJob(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, JobKeyPrefix+id).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// GetJobStats returns the running totals per status.
func (q *Queue) GetJobStats(ctx context.Context) (map[JobStatus]int64, error) {
	raw, err := q.client.HGetAll(ctx, JobStatsKey).Result()
	if err != nil {
		return nil, err
	}
	stats := make(map[JobStatus]int64, len(raw))
	for status, count := range raw {
		if n, err := strconv.ParseInt(count, 10, 64); err == nil {
			stats[JobStatus(status)] = n
		}
	}
	return stats, nil
}

// GetQueueSize returns the number of pending jobs.
func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobQueueKey).Result()
}

// GetProcessingSize returns the number of jobs held by workers.
func (q *Queue) GetProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobProcessingKey).Result()
}
