package render

import (
	"sync"
	"sync/atomic"
)

// Scheduler coalesces render requests for one session. Request may be
// called from any goroutine; at most one wakeup is outstanding at a time.
// The event loop answers the wakeup by calling Flush, which renders and
// then runs the tasks deferred during the pass.
type Scheduler struct {
	render func() error
	wake   func()

	pending atomic.Bool

	mu   sync.Mutex
	idle []func()
}

// NewScheduler takes the render pass to run and a function that wakes the
// event loop, typically by posting an event.
func NewScheduler(render func() error, wake func()) *Scheduler {
	return &Scheduler{render: render, wake: wake}
}

func (s *Scheduler) Request() {
	if s.pending.CompareAndSwap(false, true) {
		s.wake()
	}
}

// Pending reports whether a render has been requested but not flushed.
func (s *Scheduler) Pending() bool {
	return s.pending.Load()
}

// Defer queues task to run after the current pass. It suits
// Options.Defer.
func (s *Scheduler) Defer(task func()) {
	s.mu.Lock()
	s.idle = append(s.idle, task)
	s.mu.Unlock()
}

// Flush must be called from the event loop goroutine.
func (s *Scheduler) Flush() error {
	s.pending.Store(false)
	err := s.render()

	s.mu.Lock()
	tasks := s.idle
	s.idle = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task()
	}
	return err
}
