// Package doubles counts adjacent doubles in a string.
//
// An adjacent double is a position i where element i equals element i+1.
// Count is the canonical entry point and decodes the input as runes. The
// other Count* functions are alternative traversals that produce the same
// result; they exist for benchmarking and are listed by Variants.
//
// # Equivalence
//
// Every rune-oriented variant returns the same value for every input,
// including invalid UTF-8 (each invalid byte decodes to utf8.RuneError).
// CountOnceBytes compares raw bytes instead and agrees with Count only for
// ASCII input:
//
//	doubles.Count("éé")          // 1
//	doubles.CountOnceBytes("éé") // 0, bytes C3 A9 C3 A9
//
// # Regular expressions
//
// There is no regexp-based variant. The pattern used elsewhere for this
// count, (?=(.)\1), needs lookahead and backreferences, which RE2 does not
// support.
package doubles
