package doubles

import (
	"iter"
)

// runes yields the runes of s in order.
func runes(s string) iter.Seq[rune] {
	return func(yield func(rune) bool) {
		for _, r := range s {
			if !yield(r) {
				return
			}
		}
	}
}

// zip yields a[i], b[i] pairs up to the shorter length.
func zip[T any](a, b []T) iter.Seq2[T, T] {
	return func(yield func(T, T) bool) {
		for i := range min(len(a), len(b)) {
			if !yield(a[i], b[i]) {
				return
			}
		}
	}
}

// windows yields every overlapping sub-slice of s with the given size.
// Nothing is yielded when s is shorter than size.
func windows[T any](s []T, size int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for i := 0; i+size <= len(s); i++ {
			if !yield(s[i : i+size : i+size]) {
				return
			}
		}
	}
}

func fold[T, A any](seq iter.Seq[T], init A, step func(A, T) A) A {
	acc := init
	for v := range seq {
		acc = step(acc, v)
	}
	return acc
}

func countWhere[T any](seq iter.Seq[T], pred func(T) bool) uint64 {
	var n uint64
	for v := range seq {
		if pred(v) {
			n++
		}
	}
	return n
}

// replace stores v in *dst and returns the previous value.
func replace[T any](dst *T, v T) T {
	old := *dst
	*dst = v
	return old
}

// peekable wraps a pull iterator with one element of lookahead.
// Stop must be called to release the underlying iterator.
type peekable[T any] struct {
	pull   func() (T, bool)
	stop   func()
	head   T
	headOK bool
	peeked bool
}

func newPeekable[T any](seq iter.Seq[T]) *peekable[T] {
	pull, stop := iter.Pull(seq)
	return &peekable[T]{pull: pull, stop: stop}
}

// Next consumes and returns the next element.
func (p *peekable[T]) Next() (T, bool) {
	if p.peeked {
		p.peeked = false
		return p.head, p.headOK
	}
	return p.pull()
}

// Peek returns the next element without consuming it.
func (p *peekable[T]) Peek() (T, bool) {
	if !p.peeked {
		p.head, p.headOK = p.pull()
		p.peeked = true
	}
	return p.head, p.headOK
}

func (p *peekable[T]) Stop() {
	p.stop()
}
