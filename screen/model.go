package screen

type Cursor struct {
	X, Y   int
	Hidden bool
}

type Mode struct {
	AppCursorKeys  bool
	BracketedPaste bool
	AltScreen      bool
}

// Snapshot is a read-only view of the screen handed to a single render
// pass. Lines only carries the rows listed in Dirty.
type Snapshot struct {
	Columns int
	Rows    int
	Cursor  Cursor
	Title   string
	Mode    Mode

	Dirty   []int // ascending
	Lines   map[int]Row
	History []Row // oldest first

	gens    map[int]uint64
	dropped uint64
}

// Empty reports whether the snapshot carries nothing to reconcile.
func (s *Snapshot) Empty() bool {
	return len(s.Dirty) == 0 && len(s.History) == 0
}

// Model is implemented by whatever interprets the child's output. The
// render pass reads a Snapshot and, once every row in it has been written,
// calls Acknowledge so the model can drop the consumed dirty rows and
// history.
type Model interface {
	Snapshot() *Snapshot
	Acknowledge(s *Snapshot)
}
