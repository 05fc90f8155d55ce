// Package images keeps inline images printed by programs running in the
// terminal, anchored to the buffer rows they were printed on.
package images

import (
	"image"
	"sort"
	"sync"
)

// Placement is an image laid out over Cols x Rows terminal cells starting
// at the anchor row.
type Placement struct {
	Image image.Image
	Cols  int
	Rows  int
}

// Store maps buffer rows to images. It follows scrollback trimming so an
// anchor keeps pointing at the same text after rows above it go away.
type Store struct {
	mu      sync.Mutex
	anchors map[int]Placement
}

func NewStore() *Store {
	return &Store{anchors: make(map[int]Placement)}
}

// Add anchors p at row, replacing any image already there.
func (s *Store) Add(row int, p Placement) {
	if row < 0 || p.Image == nil {
		return
	}
	s.mu.Lock()
	s.anchors[row] = p
	s.mu.Unlock()
}

// At returns the image anchored at row.
func (s *Store) At(row int) (Placement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.anchors[row]
	return p, ok
}

// Visible returns the anchor rows of images overlapping [from, to), in
// order. Images anchored above from are included when they reach into
// the range.
func (s *Store) Visible(from, to int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []int
	for row, p := range s.anchors {
		if row < to && row+p.Rows > from {
			rows = append(rows, row)
		}
	}
	sort.Ints(rows)
	return rows
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.anchors)
}

// Trimmed drops images anchored in [from, to) and moves later anchors up
// by the number of removed rows.
func (s *Store) Trimmed(from, to int) {
	if to <= from {
		return
	}
	n := to - from
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[int]Placement, len(s.anchors))
	for row, p := range s.anchors {
		switch {
		case row < from:
			next[row] = p
		case row >= to:
			next[row-n] = p
		}
	}
	s.anchors = next
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.anchors = make(map[int]Placement)
	s.mu.Unlock()
}
