package tasks

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nutriplan/pkg/logger"
)

func TestAfterFuncRunsTask(t *testing.T) {
	s := NewScheduler(logger.NewNop())

	var ran atomic.Bool
	s.AfterFunc(time.Millisecond, "test", func() error {
		ran.Store(true)
		return nil
	})

	s.Wait()
	assert.True(t, ran.Load())
}

func TestAfterFuncSwallowsErrors(t *testing.T) {
	s := NewScheduler(logger.NewNop())

	s.AfterFunc(time.Millisecond, "failing", func() error {
		return errors.New("boom")
	})

	// Wait returning without a panic or escalation is the contract.
	s.Wait()
}

func TestAfterFuncRecoversPanic(t *testing.T) {
	s := NewScheduler(logger.NewNop())

	s.AfterFunc(time.Millisecond, "panicking", func() error {
		panic("boom")
	})

	s.Wait()
}

func TestCloseDropsPendingTasks(t *testing.T) {
	s := NewScheduler(logger.NewNop())

	var ran atomic.Bool
	s.AfterFunc(time.Hour, "never", func() error {
		ran.Store(true)
		return nil
	})

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not drop the pending task")
	}
	assert.False(t, ran.Load())
}
