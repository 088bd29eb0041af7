package doubles

import (
	"unicode/utf8"
)

// Count returns the number of adjacent equal runes in s.
// A run of n identical runes contributes n-1. The result is 0 for strings
// with fewer than two runes.
func Count(s string) uint64 {
	return CountOnce(s)
}

// CountZip pairs every rune with its successor by zipping the rune slice
// with itself shifted by one.
func CountZip(s string) uint64 {
	rs := []rune(s)
	if len(rs) < 2 {
		return 0
	}

	var total uint64
	for c1, c2 := range zip(rs, rs[1:]) {
		if c1 == c2 {
			total++
		}
	}
	return total
}

// CountOnce walks s once, carrying the previous rune.
func CountOnce(s string) uint64 {
	prev, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return 0
	}

	var total uint64
	for _, r := range s[size:] {
		if r == prev {
			total++
		}
		prev = r
	}
	return total
}

// CountMemReplace is CountOnce with the carried rune updated through
// replace, which hands back the value it overwrote.
func CountMemReplace(s string) uint64 {
	prev, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return 0
	}

	var total uint64
	for _, r := range s[size:] {
		if replace(&prev, r) == r {
			total++
		}
	}
	return total
}

// CountFold folds over the runes of s. The fold state is the previous rune;
// the count is kept outside the fold and bumped by the step function.
func CountFold(s string) uint64 {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return 0
	}

	var total uint64
	fold(runes(s[size:]), first, func(prev, r rune) rune {
		if prev == r {
			total++
		}
		return r
	})
	return total
}

// CountPeek consumes one rune at a time and compares it with the next rune
// without consuming it.
func CountPeek(s string) uint64 {
	it := newPeekable(runes(s))
	defer it.Stop()

	var total uint64
	for {
		cur, ok := it.Next()
		if !ok {
			return total
		}
		if next, ok := it.Peek(); ok && next == cur {
			total++
		}
	}
}

// CountSlice counts the overlapping two-rune windows of s whose members are
// equal.
func CountSlice(s string) uint64 {
	return countWhere(windows([]rune(s), 2), func(w []rune) bool {
		return w[0] == w[1]
	})
}

// CountOnceBytes is CountOnce over the bytes of s rather than its runes.
// It matches Count for ASCII input only.
func CountOnceBytes(s string) uint64 {
	return countBytes(s)
}

// CountBytes is CountOnceBytes for a byte slice.
func CountBytes(b []byte) uint64 {
	return countBytes(b)
}

func countBytes[S ~string | ~[]byte](s S) uint64 {
	if len(s) == 0 {
		return 0
	}

	var total uint64
	prev := s[0]
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == prev {
			total++
		}
		prev = c
	}
	return total
}
