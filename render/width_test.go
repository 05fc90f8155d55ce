package render

import "testing"

func TestReverseWidthOffsetASCII(t *testing.T) {
	text := "hello"
	for k := 1; k <= len(text); k++ {
		if got := ReverseWidthOffset(text, k); got != k-1 {
			t.Fatalf("width %d: expected %d, got %d", k, k-1, got)
		}
	}
}

func TestReverseWidthOffset(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  int
	}{
		{"abc", 0, -1},
		{"ab日c", 2, 1},
		{"ab日c", 3, 2}, // lands on the wide rune, not after it
		{"ab日c", 4, 2},
		{"ab日c", 5, 3},
		{"日本", 1, 0},
		{"日本", 2, 0},
		{"日本", 3, 1},
		{"ab", 5, 4},
		{"", 3, 2},
		{"日", 4, 2},
		{"e\u0301x", 2, 2},
	}
	for _, tt := range tests {
		if got := ReverseWidthOffset(tt.text, tt.width); got != tt.want {
			t.Errorf("ReverseWidthOffset(%q, %d) = %d, want %d", tt.text, tt.width, got, tt.want)
		}
	}
}
