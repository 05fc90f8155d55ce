package host

import "unicode"

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// deleteWordCount returns how many backspaces (or deletes, when forward)
// remove the word next to column col of line. Shells have no common key
// for this, so the host sends single-character deletes instead.
func deleteWordCount(line string, col int, forward bool) int {
	runes := []rune(line)
	col = min(max(col, 0), len(runes))
	if forward {
		rest := runes[col:]
		for j := 1; j <= len(rest); j++ {
			if isWord(rest[j-1]) && (j == len(rest) || !isWord(rest[j])) {
				return j
			}
		}
		return 1
	}
	for i := col - 1; i >= 0; i-- {
		if isWord(runes[i]) && (i == 0 || !isWord(runes[i-1])) {
			return col - i
		}
	}
	return 1
}
