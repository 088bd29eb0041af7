package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/reglet-dev/doublecount/doubles"
	"golang.org/x/sync/errgroup"
)

// verifyAlphabet mixes ASCII, multi-byte runes and an invalid byte so runs of
// equal runes are common.
var verifyAlphabet = []string{"a", "b", "A", "é", "日", "🙂", "\xff", " "}

func randomMixed(rng *rand.Rand, maxLen int) string {
	n := rng.IntN(maxLen + 1)
	var b strings.Builder
	for range n {
		b.WriteString(verifyAlphabet[rng.IntN(len(verifyAlphabet))])
	}
	return b.String()
}

// mismatchError reports a variant that disagrees with doubles.Count.
type mismatchError struct {
	variant string
	input   string
	got     uint64
	want    uint64
}

func (e *mismatchError) Error() string {
	return fmt.Sprintf("variant %s returned %d for %q, want %d", e.variant, e.got, e.input, e.want)
}

// verifyVariants checks every rune-oriented variant against doubles.Count on
// iterations random inputs spread over workers goroutines. It fails if ctx is
// cancelled before every input has been checked.
func verifyVariants(ctx context.Context, iterations, workers, maxLen int, seed uint64) (int64, error) {
	parent := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var checked atomic.Int64
	variants := doubles.Variants()
	for i := range iterations {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, uint64(i))) //nolint:gosec // G115: i is non-negative
			input := randomMixed(rng, maxLen)
			want := doubles.Count(input)
			for _, v := range variants {
				if v.ByteOriented {
					continue
				}
				if got := v.Count(input); got != want {
					return &mismatchError{variant: v.Name, input: input, got: got, want: want}
				}
			}
			checked.Add(1)
			return nil
		})
	}

	err := g.Wait()
	n := checked.Load()
	var mismatch *mismatchError
	switch {
	case errors.As(err, &mismatch):
		return n, err
	case parent.Err() != nil && n < int64(iterations):
		return n, fmt.Errorf("interrupted: %w", parent.Err())
	case err != nil:
		return n, err
	case n < int64(iterations):
		return n, fmt.Errorf("checked %d of %d inputs", n, iterations)
	}
	return n, nil
}

func runVerify(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("verify", stderr)
	iterations := fs.Int("iterations", 10_000, "random inputs to check")
	workers := fs.Int("workers", runtime.GOMAXPROCS(0), "concurrent workers")
	maxLen := fs.Int("max-len", 64, "maximum input length in runes")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "random seed") //nolint:gosec // G115: any seed will do
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *iterations < 0 || *workers < 1 || *maxLen < 0 {
		fmt.Fprintln(stderr, "doubles: -iterations and -max-len must be >= 0, -workers >= 1")
		return exitUsage
	}

	checked, err := verifyVariants(ctx, *iterations, *workers, *maxLen, *seed)
	if err != nil {
		fmt.Fprintf(stderr, "doubles: verify failed after %d inputs (seed %d): %v\n", checked, *seed, err)
		return exitFail
	}
	runeVariants := 0
	for _, v := range doubles.Variants() {
		if !v.ByteOriented {
			runeVariants++
		}
	}
	fmt.Fprintf(stdout, "ok: %d inputs agree across %d variants (seed %d)\n", checked, runeVariants, *seed)
	return exitOK
}
