package parser

import (
	"bytes"
	"errors"
	"io"

	"github.com/reglet-dev/doublecount/domain/ports"
	"gopkg.in/yaml.v3"
)

// YAMLDecoder implements ports.ConfigDecoder for YAML documents.
// Unknown keys are rejected so typos in config files surface as errors.
type YAMLDecoder struct{}

// NewYAMLDecoder creates a YAML decoder.
func NewYAMLDecoder() ports.ConfigDecoder {
	return &YAMLDecoder{}
}

// Decode unmarshals YAML bytes into out. Fields absent from data keep their
// current values. An empty document is not an error.
func (d *YAMLDecoder) Decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
