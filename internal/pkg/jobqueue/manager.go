package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const defaultStatsInterval = 5 * time.Minute

// Dependencies are the collaborators the job handlers need. Images may be
// nil when object storage is disabled.
type Dependencies struct {
	Notifications *OrderNotificationDeps
	Images        ObjectDeleter
}

// Manager owns the job queue and its periodic background tasks
type Manager struct {
	queue         *Queue
	statsTicker   *time.Ticker
	statsInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

// NewManager creates a manager with all job handlers registered.
func NewManager(client *redis.Client, workers int, deps Dependencies) *Manager {
	q := NewQueue(client, workers)
	if deps.Notifications != nil {
		q.Register(JobTypeOrderNotification, NewOrderNotificationHandler(deps.Notifications))
	}
	if deps.Images != nil {
		q.Register(JobTypeProductImageDelete, NewProductImageDeleteHandler(deps.Images))
	}
	return &Manager{
		queue:         q,
		statsInterval: defaultStatsInterval,
		stopCh:        make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.statsTicker = time.NewTicker(m.statsInterval)
	m.wg.Add(1)
	go m.statsWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.statsTicker != nil {
		m.statsTicker.Stop()
	}

	close(m.stopCh)
	m.running = false
	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// statsWorker periodically logs queue depth so stuck workers show up in logs
func (m *Manager) statsWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Stats worker stopping")
			return
		case <-m.statsTicker.C:
			m.logStatsOnce(context.Background())
		}
	}
}

func (m *Manager) logStatsOnce(ctx context.Context) {
	pending, err := m.queue.GetQueueSize(ctx)
	if err != nil {
		log.Errorf("[JobQueue Manager] Failed to read queue size: %v", err)
		return
	}
	processing, err := m.queue.GetProcessingSize(ctx)
	if err != nil {
		log.Errorf("[JobQueue Manager] Failed to read processing size: %v", err)
		return
	}
	stats, err := m.queue.GetJobStats(ctx)
	if err != nil {
		log.Errorf("[JobQueue Manager] Failed to read job stats: %v", err)
		return
	}
	log.Infof("[JobQueue Manager] pending=%d processing=%d completed=%d failed=%d",
		pending, processing, stats[JobStatusCompleted], stats[JobStatusFailed])
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
