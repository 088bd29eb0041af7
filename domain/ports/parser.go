package ports

// ConfigDecoder decodes a raw configuration document into a struct.
type ConfigDecoder interface {
	// Decode unmarshals data into out, which must be a pointer.
	Decode(data []byte, out any) error
}
