package worker_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skybreak-gg/stride/worker"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := worker.NewPool(2)
	defer p.Stop()

	var wg sync.WaitGroup
	var ran atomic.Int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func() {
			ran.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	if ran.Load() != 20 {
		t.Errorf("ran %d tasks, want 20", ran.Load())
	}
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	p := worker.NewPool(1)
	defer p.Stop()

	p.Submit(func() { panic("task failure") })

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}
