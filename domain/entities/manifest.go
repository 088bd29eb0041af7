package entities

import (
	"bytes"
	"encoding/json"
	"slices"
)

// ModuleManifest describes an extension module as registered with a host.
type ModuleManifest struct {
	Name    string           `json:"name" yaml:"name"`
	Version string           `json:"version" yaml:"version"`
	Doc     string           `json:"doc,omitempty" yaml:"doc,omitempty"`
	Exports []ExportManifest `json:"exports" yaml:"exports"`
}

// ExportManifest describes one callable entry point of a module.
type ExportManifest struct {
	RequestSchema  json.RawMessage `json:"request_schema,omitempty" yaml:"-"`
	ResponseSchema json.RawMessage `json:"response_schema,omitempty" yaml:"-"`
	Name           string          `json:"name" yaml:"name"`
	Variant        string          `json:"variant" yaml:"variant"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	ByteOriented   bool            `json:"byte_oriented,omitempty" yaml:"byte_oriented,omitempty"`
}

// Export returns the export with the given name.
func (m *ModuleManifest) Export(name string) (ExportManifest, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return ExportManifest{}, false
}

// ExportNames returns the export names in manifest order.
func (m *ModuleManifest) ExportNames() []string {
	names := make([]string, len(m.Exports))
	for i, e := range m.Exports {
		names[i] = e.Name
	}
	return names
}

// Clone returns a deep copy of the manifest.
func (m *ModuleManifest) Clone() *ModuleManifest {
	if m == nil {
		return nil
	}
	out := *m
	out.Exports = slices.Clone(m.Exports)
	for i := range out.Exports {
		out.Exports[i].RequestSchema = bytes.Clone(m.Exports[i].RequestSchema)
		out.Exports[i].ResponseSchema = bytes.Clone(m.Exports[i].ResponseSchema)
	}
	return &out
}
