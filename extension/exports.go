package extension

import (
	"fmt"

	"github.com/reglet-dev/doublecount/doubles"
)

// Export binds an exported name to a counting function.
type Export struct {
	Count        func(string) uint64
	Name         string
	Variant      string
	Description  string
	ByteOriented bool
}

// CanonicalExport is the production entry point, backed by doubles.Count.
const CanonicalExport = "count_doubles"

// DescribeExport returns the module manifest.
const DescribeExport = "describe"

// exportTable is the registration list, in manifest order.
var exportTable = []struct {
	name    string
	variant string
}{
	{name: CanonicalExport, variant: "once"},
	{name: "count_doubles_zip", variant: "zip"},
	{name: "count_doubles_once", variant: "once"},
	{name: "count_doubles_memreplace", variant: "memreplace"},
	{name: "count_doubles_fold", variant: "fold"},
	{name: "count_doubles_peek", variant: "peek"},
	{name: "count_doubles_slice", variant: "slice"},
	{name: "count_doubles_once_bytes", variant: "once_bytes"},
}

var allExports = buildExports()

func buildExports() []Export {
	exports := make([]Export, 0, len(exportTable))
	for _, row := range exportTable {
		v, ok := doubles.Lookup(row.variant)
		if !ok {
			panic(fmt.Sprintf("extension: export %s names unknown variant %q", row.name, row.variant))
		}
		e := Export{
			Name:         row.name,
			Variant:      v.Name,
			Description:  v.Description,
			Count:        v.Count,
			ByteOriented: v.ByteOriented,
		}
		if row.name == CanonicalExport {
			e.Count = doubles.Count
			e.Description = "canonical count of adjacent equal characters"
		}
		exports = append(exports, e)
	}
	return exports
}

// AllExports returns every known export in registration order.
func AllExports() []Export {
	out := make([]Export, len(allExports))
	copy(out, allExports)
	return out
}

// ExportNames returns the names of every known export.
func ExportNames() []string {
	names := make([]string, len(allExports))
	for i, e := range allExports {
		names[i] = e.Name
	}
	return names
}

func lookupExport(name string) (Export, bool) {
	for _, e := range allExports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}
