// Package work runs independent tasks concurrently with bounded
// parallelism. The timeline build uses it to fan out per-session
// collection fetches, which are rate-limited client-side either way.
package work

import (
	"context"
	"sync"
	"time"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
)

// DefaultWorkers bounds in-flight tasks when the caller passes 0.
const DefaultWorkers = 4

// Task is one named unit of work. Run stores its result via closure;
// tasks never return values through the runner.
type Task struct {
	Name string
	Run  func(ctx context.Context)
}

// RunAll executes all tasks with at most workers in flight and blocks
// until every task has returned. A canceled context stops new tasks
// from starting; running tasks see the cancellation through ctx.
func RunAll(ctx context.Context, workers int, tasks []Task) {
	if len(tasks) == 0 {
		return
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	queue := make(chan Task)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				start := time.Now()
				task.Run(ctx)
				logging.Debug("task finished", "name", task.Name, "took", time.Since(start))
			}
		}()
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		queue <- task
	}
	close(queue)
	wg.Wait()
}
