package java

import (
	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/wipij"
)

// sparseMemory is a page-map backed core.Memory so the object model can be
// exercised without the emulator.
type sparseMemory struct {
	pages map[uint32][]byte
}

const testPageSize = 0x1000

func newSparseMemory() *sparseMemory {
	return &sparseMemory{pages: make(map[uint32][]byte)}
}

func (m *sparseMemory) page(addr uint32) []byte {
	base := addr &^ (testPageSize - 1)
	p, ok := m.pages[base]
	if !ok {
		p = make([]byte, testPageSize)
		m.pages[base] = p
	}
	return p
}

func (m *sparseMemory) ReadBytes(addr, size uint32) ([]byte, error) {
	out := make([]byte, size)
	for i := uint32(0); i < size; i++ {
		p := m.page(addr + i)
		out[i] = p[(addr+i)%testPageSize]
	}
	return out, nil
}

func (m *sparseMemory) WriteBytes(addr uint32, data []byte) error {
	for i, b := range data {
		p := m.page(addr + uint32(i))
		p[(addr+uint32(i))%testPageSize] = b
	}
	return nil
}

// testHeap builds a sparse memory with an allocator and initialized PEB
// registries.
func testHeap() (*sparseMemory, *core.Allocator, error) {
	mem := newSparseMemory()
	alloc := core.NewAllocatorOn(mem, core.HeapBase, 0x100000)
	err := InitContextDataOn(mem, alloc)
	return mem, alloc, err
}

// fakeBodies hands out fake trap addresses the way the core would, without
// executing anything.
type fakeBodies struct {
	next uint32
}

func (f *fakeBodies) register(proto wipij.JavaMethodProto) (uint32, error) {
	if f.next == 0 {
		f.next = core.FunctionsBase
	}
	addr := f.next | 1
	f.next += 2
	return addr, nil
}

func noBody(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return 0, nil
}
