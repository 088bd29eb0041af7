package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/reglet-dev/doublecount/doubles"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomLetters returns n ASCII letters drawn uniformly from rng.
func randomLetters(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(asciiLetters[rng.IntN(len(asciiLetters))])
	}
	return b.String()
}

type benchResult struct {
	name  string
	total uint64
	best  time.Duration
	mean  time.Duration
}

func runBench(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("bench", stderr)
	n := fs.Int("n", 1_000_000, "input length in characters")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "random seed") //nolint:gosec // G115: any seed will do
	rounds := fs.Int("rounds", 5, "timed runs per variant")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *n < 0 || *rounds < 1 {
		fmt.Fprintln(stderr, "doubles: -n must be >= 0 and -rounds >= 1")
		return exitUsage
	}

	input := randomLetters(rand.New(rand.NewPCG(*seed, *seed)), *n)

	results := make([]benchResult, 0, len(doubles.Variants()))
	for _, v := range doubles.Variants() {
		if err := ctx.Err(); err != nil {
			reportError(stderr, err)
			return exitFail
		}
		results = append(results, timeVariant(v, input, *rounds))
	}

	fmt.Fprintf(stdout, "input: %d random ASCII letters, seed %d, %d rounds\n", *n, *seed, *rounds)
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tTOTAL\tBEST\tMEAN")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.name, r.total, r.best, r.mean)
	}
	if err := tw.Flush(); err != nil {
		reportError(stderr, err)
		return exitFail
	}
	return exitOK
}

func timeVariant(v doubles.Variant, input string, rounds int) benchResult {
	res := benchResult{name: v.Name}
	var sum time.Duration
	for i := range rounds {
		start := time.Now()
		res.total = v.Count(input)
		elapsed := time.Since(start)

		sum += elapsed
		if i == 0 || elapsed < res.best {
			res.best = elapsed
		}
	}
	res.mean = sum / time.Duration(rounds)
	return res
}
