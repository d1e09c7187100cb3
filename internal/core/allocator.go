package core

import (
	"fmt"
	"sort"
)

// Allocator manages the guest heap region. It hands out 4-byte aligned
// blocks using a first-fit free list; freed blocks are coalesced with their
// neighbors. Class records, name blobs, and instances are small and
// frequent, so fragmentation is tolerated.
type Allocator struct {
	mem  Memory
	base uint32
	size uint32

	next uint32            // bump pointer for never-recycled space
	free []allocBlock      // sorted by addr
	used map[uint32]uint32 // addr -> size
}

type allocBlock struct {
	addr uint32
	size uint32
}

// NewAllocator maps the heap region on core and returns an allocator over it.
func NewAllocator(core *ArmCore) (*Allocator, error) {
	if err := core.Map(HeapBase, HeapSize); err != nil {
		return nil, fmt.Errorf("map heap: %w", err)
	}
	return newAllocator(core, HeapBase, HeapSize), nil
}

// NewAllocatorOn builds an allocator over an already mapped region. Used by
// tests that substitute plain buffers for the emulator.
func NewAllocatorOn(mem Memory, base, size uint32) *Allocator {
	return newAllocator(mem, base, size)
}

func newAllocator(mem Memory, base, size uint32) *Allocator {
	return &Allocator{
		mem:  mem,
		base: base,
		size: size,
		next: base,
		used: make(map[uint32]uint32),
	}
}

// Alloc returns a guest address for a zeroed block of at least size bytes.
func (a *Allocator) Alloc(size uint32) (uint32, error) {
	if size == 0 {
		size = 4
	}
	size = RoundUp(size, 4)

	for i, b := range a.free {
		if b.size >= size {
			addr := b.addr
			if b.size > size {
				a.free[i] = allocBlock{addr: b.addr + size, size: b.size - size}
			} else {
				a.free = append(a.free[:i], a.free[i+1:]...)
			}
			a.used[addr] = size
			return addr, a.zero(addr, size)
		}
	}

	if a.next+size > a.base+a.size {
		return 0, fmt.Errorf("allocator exhausted: %#x bytes requested, %#x in use", size, a.next-a.base)
	}

	addr := a.next
	a.next += size
	a.used[addr] = size

	return addr, a.zero(addr, size)
}

// Free returns a block to the allocator.
func (a *Allocator) Free(addr uint32) error {
	size, ok := a.used[addr]
	if !ok {
		return fmt.Errorf("free of unallocated address %#x", addr)
	}
	delete(a.used, addr)

	a.free = append(a.free, allocBlock{addr: addr, size: size})
	sort.Slice(a.free, func(i, j int) bool { return a.free[i].addr < a.free[j].addr })

	// Coalesce adjacent blocks.
	merged := a.free[:0]
	for _, b := range a.free {
		if n := len(merged); n > 0 && merged[n-1].addr+merged[n-1].size == b.addr {
			merged[n-1].size += b.size
		} else {
			merged = append(merged, b)
		}
	}
	a.free = merged

	return nil
}

func (a *Allocator) zero(addr, size uint32) error {
	return a.mem.WriteBytes(addr, make([]byte, size))
}
