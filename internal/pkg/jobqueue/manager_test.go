package jobqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetManager_Singleton(t *testing.T) {
	globalManager = nil
	managerOnce = sync.Once{}
	t.Cleanup(func() {
		globalManager = nil
		managerOnce = sync.Once{}
	})
	t.Setenv("JOBQUEUE_WORKERS", "4")

	m1 := GetManager()
	m2 := GetManager()

	assert.Same(t, m1, m2)
	assert.Equal(t, 4, m1.queue.workers)
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(NewQueueWithClient(unreachableClient(), 1))

	m.Stop()
	assert.False(t, m.IsRunning())
}

func TestManager_RunsPeriodicTasks(t *testing.T) {
	m := NewManager(newTestQueue(t, 1))

	var runs int32
	var sawDeadline atomic.Bool
	m.AddPeriodicTask(PeriodicTask{
		Name:     "variant view flush",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			sawDeadline.Store(ok)
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})
	m.AddPeriodicTask(PeriodicTask{Name: "broken"})

	m.Start()
	assert.True(t, m.IsRunning())
	assert.True(t, waitFor(func() bool { return atomic.LoadInt32(&runs) >= 2 }, 2*time.Second))
	m.Stop()
	assert.False(t, m.IsRunning())
	assert.True(t, sawDeadline.Load())
}
