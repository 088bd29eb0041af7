package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/reglet-dev/doublecount/application/schema"
	"github.com/reglet-dev/doublecount/domain/entities"
	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
	"github.com/reglet-dev/doublecount/domain/ports"
	"github.com/reglet-dev/doublecount/hostfuncs"
)

const (
	// DefaultName is the name the module registers under.
	DefaultName = "doubles"

	// DefaultDoc is the module-level doc string.
	DefaultDoc = "This module is implemented in Go"

	// Version of the module.
	Version = "0.1.0"
)

var namePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidName reports whether name is usable as a module or export name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

type moduleConfig struct {
	schemas ports.SchemaGenerator
	name    string
	doc     string
	exports []string
}

// Option configures a Module.
type Option func(*moduleConfig)

// WithName overrides the registration name.
func WithName(name string) Option {
	return func(c *moduleConfig) {
		c.name = name
	}
}

// WithDoc overrides the module doc string.
func WithDoc(doc string) Option {
	return func(c *moduleConfig) {
		c.doc = doc
	}
}

// WithExports restricts the module to the named exports.
// An empty list keeps every export.
func WithExports(names ...string) Option {
	return func(c *moduleConfig) {
		c.exports = names
	}
}

// WithSchemaGenerator sets the generator used for manifest schemas.
func WithSchemaGenerator(g ports.SchemaGenerator) Option {
	return func(c *moduleConfig) {
		c.schemas = g
	}
}

// Module is a configured, immutable extension module.
type Module struct {
	manifest *entities.ModuleManifest
	name     string
	doc      string
	exports  []Export
}

// New builds a Module. It fails on an invalid name, an unknown or repeated
// export, or a schema generation error.
func New(opts ...Option) (*Module, error) {
	cfg := moduleConfig{
		name: DefaultName,
		doc:  DefaultDoc,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.schemas == nil {
		cfg.schemas = schema.NewGenerator()
	}

	if !ValidName(cfg.name) {
		return nil, &domainErrors.ExportError{Export: cfg.name, Err: fmt.Errorf("invalid module name")}
	}

	exports, err := selectExports(cfg.name, cfg.exports)
	if err != nil {
		return nil, err
	}

	m := &Module{
		name:    cfg.name,
		doc:     cfg.doc,
		exports: exports,
	}

	m.manifest, err = m.buildManifest(cfg.schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest for module %s: %w", cfg.name, err)
	}
	return m, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Module {
	m, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func selectExports(module string, names []string) ([]Export, error) {
	if len(names) == 0 {
		return AllExports(), nil
	}

	seen := make(map[string]bool, len(names))
	exports := make([]Export, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, &domainErrors.ExportError{Module: module, Export: name, Err: fmt.Errorf("listed more than once")}
		}
		seen[name] = true

		e, ok := lookupExport(name)
		if !ok {
			return nil, &domainErrors.ExportError{Module: module, Export: name, Err: domainErrors.ErrUnknownExport}
		}
		exports = append(exports, e)
	}
	return exports, nil
}

func (m *Module) buildManifest(gen ports.SchemaGenerator) (*entities.ModuleManifest, error) {
	reqSchema, err := gen.Generate(entities.CountRequest{})
	if err != nil {
		return nil, err
	}
	respSchema, err := gen.Generate(entities.CountResponse{})
	if err != nil {
		return nil, err
	}

	manifest := &entities.ModuleManifest{
		Name:    m.name,
		Version: Version,
		Doc:     m.doc,
		Exports: make([]entities.ExportManifest, 0, len(m.exports)),
	}
	for _, e := range m.exports {
		manifest.Exports = append(manifest.Exports, entities.ExportManifest{
			Name:           e.Name,
			Variant:        e.Variant,
			Description:    e.Description,
			ByteOriented:   e.ByteOriented,
			RequestSchema:  reqSchema,
			ResponseSchema: respSchema,
		})
	}
	return manifest, nil
}

// Name returns the registration name.
func (m *Module) Name() string { return m.name }

// Doc returns the module doc string.
func (m *Module) Doc() string { return m.doc }

// Exports returns the module's exports in registration order.
func (m *Module) Exports() []Export {
	out := make([]Export, len(m.exports))
	copy(out, m.exports)
	return out
}

// Manifest returns a copy of the module manifest served by the describe export.
func (m *Module) Manifest() *entities.ModuleManifest {
	return m.manifest.Clone()
}

// Export returns the export with the given name.
func (m *Module) Export(name string) (Export, bool) {
	for _, e := range m.exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

// Call runs an export directly, without the JSON boundary.
func (m *Module) Call(name, s string) (uint64, error) {
	e, ok := m.Export(name)
	if !ok {
		return 0, &domainErrors.ExportError{Module: m.name, Export: name, Err: domainErrors.ErrUnknownExport}
	}
	return e.Count(s), nil
}

// Bundle returns a JSON handler for every export plus the describe export.
func (m *Module) Bundle() hostfuncs.HostFuncBundle {
	counts := make(hostfuncs.StaticBundle, len(m.exports))
	for _, e := range m.exports {
		counts[e.Name] = countHandler(e)
	}
	return hostfuncs.Combine(counts, hostfuncs.StaticBundle{DescribeExport: m.describeHandler()})
}

// Registry builds a HandlerRegistry holding the module's bundle.
// opts are applied first, so middleware passed here wraps every export.
func (m *Module) Registry(opts ...hostfuncs.RegistryOption) (*hostfuncs.HandlerRegistry, error) {
	all := append(opts[:len(opts):len(opts)], hostfuncs.WithBundle(m.Bundle()))
	return hostfuncs.NewRegistry(all...)
}

func countHandler(e Export) hostfuncs.ByteHandler {
	return hostfuncs.NewJSONHandler(func(_ context.Context, req entities.CountRequest) entities.CountResponse {
		return entities.CountResponse{Total: e.Count(*req.Val)}
	})
}

// describeHandler ignores its payload.
func (m *Module) describeHandler() hostfuncs.ByteHandler {
	return func(_ context.Context, _ []byte) ([]byte, error) {
		data, err := json.Marshal(m.manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal manifest: %w", err)
		}
		return data, nil
	}
}
