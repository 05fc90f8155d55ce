package render

import (
	"errors"
	"testing"

	"termview/buffer"
	"termview/screen"
)

func TestSchedulerCoalescesRequests(t *testing.T) {
	wakes, renders := 0, 0
	sched := NewScheduler(func() error {
		renders++
		return nil
	}, func() { wakes++ })

	sched.Request()
	sched.Request()
	sched.Request()
	if wakes != 1 || !sched.Pending() {
		t.Fatalf("expected a single pending wakeup, got %d", wakes)
	}
	if err := sched.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if renders != 1 || sched.Pending() {
		t.Fatalf("expected one render and nothing pending, got %d", renders)
	}
	sched.Request()
	if wakes != 2 {
		t.Fatalf("expected a new wakeup after flush, got %d", wakes)
	}
}

func TestSchedulerRunsDeferredAfterRender(t *testing.T) {
	var order []string
	var sched *Scheduler
	sched = NewScheduler(func() error {
		order = append(order, "render")
		sched.Defer(func() { order = append(order, "idle") })
		return errors.New("boom")
	}, func() {})

	if err := sched.Flush(); err == nil {
		t.Fatalf("expected render error to surface")
	}
	if len(order) != 2 || order[0] != "render" || order[1] != "idle" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestSessionScrollDeferredToIdle(t *testing.T) {
	buf := buffer.NewBuffer()
	buf.SetHeight(2)
	m := newFakeModel(4, 10)
	for y := 0; y < 4; y++ {
		m.setLine(y, textRow("x", 10, true))
	}
	m.snap.Cursor = screen.Cursor{X: 1, Y: 3}

	var sched *Scheduler
	s := Attach(buf, m, Options{Defer: func(task func()) { sched.Defer(task) }})
	sched = NewScheduler(s.Render, func() {})

	if err := s.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.ScrollY() != 0 {
		t.Fatalf("scroll must wait for the idle tick, got %d", buf.ScrollY())
	}
	if err := sched.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if buf.ScrollY() != 2 {
		t.Fatalf("expected scroll applied after flush, got %d", buf.ScrollY())
	}
}
