// internal/tasks/scheduler.go
package tasks

import (
	"sync"
	"time"

	"nutriplan/pkg/logger"
)

// Scheduler runs fire-and-forget tasks after a delay, outside the
// request/response lifecycle. Task failures are logged and swallowed:
// by the time a task runs, no caller remains to receive an error.
type Scheduler struct {
	logger *logger.Logger
	wg     sync.WaitGroup
	done   chan struct{}
	once   sync.Once
}

func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{
		logger: log,
		done:   make(chan struct{}),
	}
}

// AfterFunc schedules fn to run once after delay. It never blocks and the
// caller never sees the task's error.
func (s *Scheduler) AfterFunc(delay time.Duration, name string, fn func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorw("deferred task panicked", "task", name, "panic", r)
			}
		}()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-s.done:
			s.logger.Infow("deferred task dropped on shutdown", "task", name)
			return
		}

		if err := fn(); err != nil {
			s.logger.Errorw("deferred task failed", "task", name, "error", err)
			return
		}
		s.logger.Debugw("deferred task completed", "task", name)
	}()
}

// Close drops all pending tasks and waits for running ones to finish.
func (s *Scheduler) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

// Wait blocks until every scheduled task has fired. Used in tests.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
