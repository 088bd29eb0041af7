package doubles

import (
	"slices"
)

// Variant describes one traversal strategy.
type Variant struct {
	// Count computes the number of adjacent doubles.
	Count func(string) uint64

	// Name is the short identifier, e.g. "peek".
	Name string

	// Description is a one-line summary of the traversal.
	Description string

	// ByteOriented is set for variants that compare bytes instead of runes.
	// Their result only matches Count for ASCII input.
	ByteOriented bool
}

var variants = []Variant{
	{Name: "zip", Count: CountZip, Description: "zip the runes with themselves offset by one"},
	{Name: "once", Count: CountOnce, Description: "single pass carrying the previous rune"},
	{Name: "memreplace", Count: CountMemReplace, Description: "single pass swapping the carried rune"},
	{Name: "fold", Count: CountFold, Description: "left fold with the previous rune as state"},
	{Name: "peek", Count: CountPeek, Description: "consume one rune and peek at the next"},
	{Name: "slice", Count: CountSlice, Description: "count equal two-rune windows"},
	{Name: "once_bytes", Count: CountOnceBytes, Description: "single pass over raw bytes", ByteOriented: true},
}

// Variants returns every traversal strategy, rune-oriented ones first.
func Variants() []Variant {
	return slices.Clone(variants)
}

// Lookup returns the variant with the given name.
func Lookup(name string) (Variant, bool) {
	i := slices.IndexFunc(variants, func(v Variant) bool { return v.Name == name })
	if i < 0 {
		return Variant{}, false
	}
	return variants[i], true
}

// Names returns the variant names in table order.
func Names() []string {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	return names
}
