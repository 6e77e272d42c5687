// internal/app/system/tasks/tasks.go

// Package tasks runs small recurring maintenance jobs on fixed intervals.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one recurring maintenance task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner executes jobs on their intervals until stopped.
type Runner struct {
	jobs   []Job
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner for the given jobs.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	return &Runner{jobs: jobs, log: logger}
}

// Start launches one goroutine per job. Each job runs on its interval;
// failures are logged and the job keeps its schedule.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go func(j Job) {
			defer r.wg.Done()
			ticker := time.NewTicker(j.Interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := j.Run(ctx); err != nil {
						r.log.Error("background job failed",
							zap.String("job", j.Name),
							zap.Error(err))
					}
				}
			}
		}(job)
	}
	r.log.Info("background jobs started", zap.Int("count", len(r.jobs)))
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (r *Runner) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
	r.log.Info("background jobs stopped")
}
