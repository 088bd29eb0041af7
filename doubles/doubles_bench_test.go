package doubles

import (
	"math/rand/v2"
	"testing"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// benchInput mirrors the classic harness: one million random ASCII letters.
func benchInput() string {
	rng := rand.New(rand.NewPCG(1, 2))
	b := make([]byte, 1_000_000)
	for i := range b {
		b[i] = asciiLetters[rng.IntN(len(asciiLetters))]
	}
	return string(b)
}

func BenchmarkVariants(b *testing.B) {
	val := benchInput()
	for _, v := range Variants() {
		b.Run(v.Name, func(b *testing.B) {
			b.SetBytes(int64(len(val)))
			b.ReportAllocs()
			for b.Loop() {
				_ = v.Count(val)
			}
		})
	}
}
