package render

import (
	"testing"

	"termview/buffer"
)

func TestKeyAllocatorDistinct(t *testing.T) {
	buf := buffer.NewBufferFromText("abcdefghij")
	k := newKeyAllocator()
	seen := make(map[int]bool)
	for i := 0; i < 10; i++ {
		n := k.allocate(buf)
		if seen[n] {
			t.Fatalf("key %d handed out twice", n)
		}
		seen[n] = true
		buf.AddRegion(keyName(n), buffer.Cursor{Col: i}, buffer.Cursor{Col: i + 1}, "s")
	}
}

func TestKeyAllocatorReusesReleasedLowestFirst(t *testing.T) {
	buf := buffer.NewBuffer()
	k := newKeyAllocator()
	for i := 0; i < 5; i++ {
		k.allocate(buf)
	}
	k.release(4)
	k.release(2)
	if n := k.allocate(buf); n != 2 {
		t.Fatalf("expected key 2 reused, got %d", n)
	}
	if n := k.allocate(buf); n != 4 {
		t.Fatalf("expected key 4 reused, got %d", n)
	}
	if n := k.allocate(buf); n != 6 {
		t.Fatalf("expected fresh key 6, got %d", n)
	}
	if k.live() != 6 {
		t.Fatalf("expected 6 live keys, got %d", k.live())
	}
}

func TestKeyAllocatorSkipsLiveRegions(t *testing.T) {
	buf := buffer.NewBufferFromText("abc")
	buf.AddRegion(keyName(1), buffer.Cursor{}, buffer.Cursor{Col: 2}, "s")
	k := newKeyAllocator()
	if n := k.allocate(buf); n != 2 {
		t.Fatalf("expected key 1 to be skipped, got %d", n)
	}
}

func TestKeyAllocatorWraps(t *testing.T) {
	buf := buffer.NewBufferFromText("abc")
	k := newKeyAllocator()
	k.limit = 5
	k.counter = 4
	k.inUse[4] = true
	// Key 2 is still attached to text; 1 only to an empty region.
	buf.AddRegion(keyName(1), buffer.Cursor{Col: 1}, buffer.Cursor{Col: 1}, "s")
	buf.AddRegion(keyName(2), buffer.Cursor{}, buffer.Cursor{Col: 2}, "s")

	if n := k.allocate(buf); n != 1 {
		t.Fatalf("expected wrap to key 1, got %d", n)
	}
	if n := k.allocate(buf); n != 3 {
		t.Fatalf("expected key 3 after skipping live key 2, got %d", n)
	}
}

func TestKeyAllocatorReleaseUnknownIsNoop(t *testing.T) {
	k := newKeyAllocator()
	k.release(7)
	if len(k.free) != 0 {
		t.Fatalf("expected empty free list, got %v", k.free)
	}
}
