package render

import (
	"sort"
	"strconv"
)

const (
	keyPrefix = "term#"
	keyLimit  = 100_000_000
)

func keyName(n int) string {
	return keyPrefix + strconv.Itoa(n)
}

// keyAllocator hands out highlight region keys for one buffer. Released
// keys go on a free list and are reused lowest first; the counter only
// grows when the free list is empty and wraps at limit.
type keyAllocator struct {
	counter int
	limit   int
	free    []int // ascending
	inUse   map[int]bool
}

func newKeyAllocator() *keyAllocator {
	return &keyAllocator{limit: keyLimit, inUse: make(map[int]bool)}
}

// available reports whether n is neither handed out by us nor attached to
// a non-empty region on buf.
func (k *keyAllocator) available(buf TextBuffer, n int) bool {
	if k.inUse[n] {
		return false
	}
	r, ok := buf.Region(keyName(n))
	return !ok || r.Empty()
}

func (k *keyAllocator) allocate(buf TextBuffer) int {
	for len(k.free) > 0 {
		n := k.free[0]
		k.free = k.free[1:]
		if k.available(buf, n) {
			k.inUse[n] = true
			return n
		}
	}
	for {
		k.counter++
		if k.counter >= k.limit {
			k.counter = 0
			continue
		}
		if k.available(buf, k.counter) {
			k.inUse[k.counter] = true
			return k.counter
		}
	}
}

func (k *keyAllocator) release(n int) {
	if !k.inUse[n] {
		return
	}
	delete(k.inUse, n)
	i := sort.SearchInts(k.free, n)
	k.free = append(k.free, 0)
	copy(k.free[i+1:], k.free[i:])
	k.free[i] = n
}

func (k *keyAllocator) live() int {
	return len(k.inUse)
}
