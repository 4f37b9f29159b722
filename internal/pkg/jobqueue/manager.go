package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/internal/pkg/env"
)

// PeriodicTask runs on a fixed interval while the manager is running. Each
// run gets a context bounded by Timeout, or by Interval when Timeout is zero.
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Manager owns the job queue and the storefront's periodic tasks, such as
// the notification sweeper and the view counter flush.
type Manager struct {
	queue *Queue

	mu      sync.Mutex
	tasks   []PeriodicTask
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the process wide manager, sized by JOBQUEUE_WORKERS.
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = NewManager(NewQueue(env.GetEnvInt("JOBQUEUE_WORKERS", DefaultWorkers)))
	})
	return globalManager
}

func NewManager(queue *Queue) *Manager {
	return &Manager{queue: queue}
}

func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// AddPeriodicTask registers a task. Tasks added while running start on the next Start.
func (m *Manager) AddPeriodicTask(task PeriodicTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
}

func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	m.queue.Start()

	for _, task := range m.tasks {
		if task.Interval <= 0 || task.Run == nil {
			log.Warnf("[JobQueue Manager] Skipping task %q without interval or func", task.Name)
			continue
		}
		m.wg.Add(1)
		go m.runPeriodic(ctx, task)
	}
	log.Infof("[JobQueue Manager] Started with %d periodic tasks", len(m.tasks))
}

// Stop ends the periodic tasks first so none of them enqueues into a stopped queue.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.queue.Stop()
	m.running = false
	log.Info("[JobQueue Manager] Stopped")
}

func (m *Manager) runPeriodic(ctx context.Context, task PeriodicTask) {
	defer m.wg.Done()
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = task.Interval
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			if err := task.Run(runCtx); err != nil {
				log.Errorf("[JobQueue Manager] %s failed: %v", task.Name, err)
			}
			cancel()
		}
	}
}

func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
