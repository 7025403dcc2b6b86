package viewer

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrRenderPanic wraps a panic recovered from the render goroutine.
var ErrRenderPanic = errors.New("render goroutine panicked")

// Health is the flag the event loop polls to learn that rendering has failed.
type Health struct {
	failed atomic.Bool

	mu  sync.Mutex
	err error
}

// OK reports whether no failure has been recorded.
func (h *Health) OK() bool {
	return !h.failed.Load()
}

// Err returns the recorded failure, if any.
func (h *Health) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Health) fail(err error) {
	h.mu.Lock()
	if h.err == nil {
		h.err = err
	}
	h.mu.Unlock()
	h.failed.Store(true)
}

// Supervise runs fn on its own goroutine. A second goroutine waits for it and
// marks h failed if fn returns an error or panics. The returned channel is
// closed once the outcome has been recorded.
func Supervise(h *Health, log *zap.Logger, fn func() error) <-chan struct{} {
	if log == nil {
		log = zap.NewNop()
	}
	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("%w: %v\n%s", ErrRenderPanic, r, debug.Stack())
			}
		}()
		result <- fn()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := <-result; err != nil {
			log.Error("render loop failed", zap.Error(err))
			h.fail(err)
			return
		}
		log.Debug("render loop finished")
	}()
	return done
}
