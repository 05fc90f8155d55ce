package render

import (
	"sync"

	"go.uber.org/zap"

	"termview/buffer"
	"termview/screen"
)

// DefaultMaxScrollback is used when Options.MaxScrollback is not set.
const DefaultMaxScrollback = 10000

// TextBuffer is what a session writes the screen into. *buffer.Buffer
// implements it.
type TextBuffer interface {
	RowCount() int
	Line(row int) string
	InsertAt(pos buffer.Cursor, text string) error
	Erase(start, end buffer.Cursor) error
	ReplaceLine(row int, text string) error
	EraseLines(from, to int) error

	AddRegion(key string, start, end buffer.Cursor, scope string)
	RemoveRegion(key string)
	Region(key string) (buffer.Region, bool)

	Caret() (buffer.Cursor, bool)
	SetCursor(pos buffer.Cursor)
	ClearSelection()

	ScrollY() int
	SetScrollY(y int)
	Height() int
}

// TrimObserver is told when buffer rows [from, to) have been removed, so
// anything anchored to them can be dropped and later anchors moved up.
type TrimObserver interface {
	Trimmed(from, to int)
}

type Options struct {
	MaxScrollback int
	DefaultTitle  string

	// OnTitle is called when the session title changes.
	OnTitle func(title string)
	Trim    TrimObserver

	// Defer schedules a task for the next idle tick. Without it, deferred
	// work runs inline at the end of a render.
	Defer func(task func())

	Logger *zap.Logger
}

// Session keeps one buffer in sync with one screen model.
type Session struct {
	mu sync.Mutex

	buf   TextBuffer
	model screen.Model
	opts  Options
	log   *zap.Logger

	offset    int
	colored   map[int][]int
	keys      *keyAllocator
	viewportY int
	title     string

	cursor screen.Cursor
	rows   int
}

func Attach(buf TextBuffer, model screen.Model, opts Options) *Session {
	if opts.MaxScrollback <= 0 {
		opts.MaxScrollback = DefaultMaxScrollback
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		buf:     buf,
		model:   model,
		opts:    opts,
		log:     log,
		colored: make(map[int][]int),
		keys:    newKeyAllocator(),
		title:   opts.DefaultTitle,
	}
}

// Detach disconnects the screen model. Every later call is a no-op.
func (s *Session) Detach() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = nil
}

func (s *Session) Attached() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model != nil
}

func (s *Session) Buffer() TextBuffer {
	if s == nil {
		return nil
	}
	return s.buf
}

// Offset is the number of scrollback rows above the live screen.
func (s *Session) Offset() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

func (s *Session) Title() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Counter is the last highlight key number handed out fresh. Reused keys
// do not advance it.
func (s *Session) Counter() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys.counter
}

// SetMaxScrollback changes the scrollback cap; it applies from the next
// render.
func (s *Session) SetMaxScrollback(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.MaxScrollback = n
}

// Registry maps buffers to their sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[TextBuffer]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[TextBuffer]*Session)}
}

// Attach starts a session for buf, detaching any previous one.
func (r *Registry) Attach(buf TextBuffer, model screen.Model, opts Options) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[buf]; ok {
		old.Detach()
	}
	s := Attach(buf, model, opts)
	r.sessions[buf] = s
	return s
}

// Lookup returns nil when buf has no session.
func (r *Registry) Lookup(buf TextBuffer) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[buf]
}

func (r *Registry) Detach(buf TextBuffer) {
	r.mu.Lock()
	s, ok := r.sessions[buf]
	delete(r.sessions, buf)
	r.mu.Unlock()
	if ok {
		s.Detach()
	}
}

// Render runs a pass for buf's session, if it has one.
func (r *Registry) Render(buf TextBuffer) error {
	return r.Lookup(buf).Render()
}
