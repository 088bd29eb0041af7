// Package schema generates JSON Schema documents for export request and
// response types.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
	"github.com/reglet-dev/doublecount/domain/ports"
)

// Generator reflects Go types into JSON Schema (Draft 2020-12).
type Generator struct {
	indent bool
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithIndent pretty-prints generated schemas.
func WithIndent(enabled bool) GeneratorOption {
	return func(g *Generator) {
		g.indent = enabled
	}
}

// NewGenerator creates a Generator. Output is compact unless WithIndent is set.
func NewGenerator(opts ...GeneratorOption) ports.SchemaGenerator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements ports.SchemaGenerator.
func (g *Generator) Generate(v any) ([]byte, error) {
	if v == nil {
		return nil, &domainErrors.SchemaError{Err: fmt.Errorf("nil value")}
	}

	reflector := jsonschema.Reflector{
		ExpandedStruct:             true, // Expand struct definitions inline
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := reflector.Reflect(v)

	var (
		data []byte
		err  error
	)
	if g.indent {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return nil, &domainErrors.SchemaError{Type: reflect.TypeOf(v).Name(), Err: err}
	}
	return data, nil
}

// GenerateSchema creates an indented JSON schema from a Go struct.
func GenerateSchema(v any) ([]byte, error) {
	return NewGenerator(WithIndent(true)).Generate(v)
}
