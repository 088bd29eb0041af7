package wazero

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// AllocateExport is the guest export used to reserve response memory.
const AllocateExport = "allocate"

var errMissingAllocate = errors.New("guest module missing '" + AllocateExport + "' export")

// guestMemory is the part of api.Memory the adapter touches.
type guestMemory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// allocator reserves size bytes in guest memory and returns their offset.
type allocator func(ctx context.Context, size uint32) (uint32, error)

// guest is the calling module as seen by a host function.
type guest struct {
	mem   guestMemory
	alloc allocator
	name  string
}

func newGuest(ctx context.Context, mod api.Module) guest {
	g := guest{
		name:  GuestName(ctx, mod),
		alloc: moduleAllocator(mod),
	}
	if mem := mod.Memory(); mem != nil {
		g.mem = mem
	}
	return g
}

func moduleAllocator(mod api.Module) allocator {
	return func(ctx context.Context, size uint32) (uint32, error) {
		fn := mod.ExportedFunction(AllocateExport)
		if fn == nil {
			return 0, errMissingAllocate
		}
		results, err := fn.Call(ctx, uint64(size))
		if err != nil {
			return 0, fmt.Errorf("failed to call guest %s: %w", AllocateExport, err)
		}
		if len(results) == 0 {
			return 0, fmt.Errorf("guest %s returned no results", AllocateExport)
		}
		return uint32(results[0]), nil //nolint:gosec // G115: WASM32 pointers are always 32-bit
	}
}

// read copies length bytes at ptr out of guest memory.
func (g guest) read(ptr, length uint32) ([]byte, error) {
	if g.mem == nil {
		return nil, errors.New("guest module has no memory")
	}
	data, ok := g.mem.Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("out of range read of %d bytes at %#x", length, ptr)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// write allocates guest memory for data and returns the packed location.
func (g guest) write(ctx context.Context, data []byte) (uint64, error) {
	if g.mem == nil {
		return 0, errors.New("guest module has no memory")
	}
	ptr, err := g.alloc(ctx, uint32(len(data))) //nolint:gosec // G115: Data length is bounded by config
	if err != nil {
		return 0, err
	}
	if !g.mem.Write(ptr, data) {
		return 0, fmt.Errorf("out of range write of %d bytes at %#x", len(data), ptr)
	}
	return packPtrLen(ptr, uint32(len(data))), nil //nolint:gosec // G115: Data length is bounded by config
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
