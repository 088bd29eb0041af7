package hostfuncs

// HostFuncBundle is a pre-configured set of related handlers.
// Bundles allow registering multiple handlers at once.
type HostFuncBundle interface {
	// Handlers returns a map of handler names to ByteHandler functions.
	Handlers() map[string]ByteHandler
}

// StaticBundle is a HostFuncBundle with a fixed set of handlers.
type StaticBundle map[string]ByteHandler

// Handlers implements HostFuncBundle.
func (b StaticBundle) Handlers() map[string]ByteHandler {
	return b
}

// compositeBundle combines multiple bundles into one.
// Later bundles win on name clashes.
type compositeBundle struct {
	bundles []HostFuncBundle
}

func (b *compositeBundle) Handlers() map[string]ByteHandler {
	result := make(map[string]ByteHandler)
	for _, bundle := range b.bundles {
		for name, handler := range bundle.Handlers() {
			result[name] = handler
		}
	}
	return result
}

// Combine returns a bundle containing the handlers of all given bundles.
func Combine(bundles ...HostFuncBundle) HostFuncBundle {
	return &compositeBundle{bundles: bundles}
}

// WithBundle registers all handlers from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for name, handler := range bundle.Handlers() {
			if err := b.addHandler(name, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}

// WithHandler registers a typed host function with automatic JSON handling.
// The handler will be wrapped with NewJSONHandler for JSON serialization.
//
// Example usage:
//
//	WithHandler("custom_func", func(ctx context.Context, req MyRequest) MyResponse {
//	    return MyResponse{Result: req.Input}
//	})
func WithHandler[Req any, Resp any](name string, fn HostFunc[Req, Resp]) RegistryOption {
	return func(b *registryBuilder) {
		handler := NewJSONHandler(fn)
		if err := b.addHandler(name, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}
