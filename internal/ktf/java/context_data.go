package java

import (
	"fmt"

	"github.com/jkki-i/wie/internal/core"
)

// The process-wide class registry and vtable registry are anchored in the
// guest PEB. Keeping them in guest memory makes the emulator's view the
// single source of truth; host handles never outlive or shadow it.

// Peb is the process environment block at core.PEBBase.
type Peb struct {
	JavaClassesBase uint32
	VtablesBase     uint32
}

// registry list capacity in bytes (0x400 pointer entries)
const registryCapacity = 0x1000

// InitContextData maps the PEB page, allocates the class and vtable lists,
// and writes their anchors.
func InitContextData(c *core.ArmCore, alloc *core.Allocator) error {
	if err := c.Map(core.PEBBase, core.PEBSize); err != nil {
		return fmt.Errorf("map peb: %w", err)
	}

	classesBase, err := alloc.Alloc(registryCapacity)
	if err != nil {
		return fmt.Errorf("alloc class registry: %w", err)
	}
	vtablesBase, err := alloc.Alloc(registryCapacity)
	if err != nil {
		return fmt.Errorf("alloc vtable registry: %w", err)
	}

	return writeRaw(c, core.PEBBase, &Peb{JavaClassesBase: classesBase, VtablesBase: vtablesBase})
}

// InitContextDataOn initializes the registries over plain memory with the
// PEB page already mapped. Used by tests.
func InitContextDataOn(mem core.Memory, alloc *core.Allocator) error {
	classesBase, err := alloc.Alloc(registryCapacity)
	if err != nil {
		return err
	}
	vtablesBase, err := alloc.Alloc(registryCapacity)
	if err != nil {
		return err
	}
	return writeRaw(mem, core.PEBBase, &Peb{JavaClassesBase: classesBase, VtablesBase: vtablesBase})
}

func readPeb(mem core.ByteReader) (Peb, error) {
	var peb Peb
	if err := readRaw(mem, core.PEBBase, &peb); err != nil {
		return Peb{}, fmt.Errorf("read peb: %w", err)
	}
	return peb, nil
}

// FindLoadedClass scans the class registry for a class by name. Returns nil
// when the name is not registered.
func FindLoadedClass(mem core.Memory, name string) (*JavaClass, error) {
	peb, err := readPeb(mem)
	if err != nil {
		return nil, err
	}

	cursor := peb.JavaClassesBase
	for {
		ptr, err := core.ReadU32(mem, cursor)
		if err != nil {
			return nil, err
		}
		if ptr == 0 {
			return nil, nil
		}

		class := ClassFromPtr(mem, ptr)
		className, err := class.Name()
		if err != nil {
			return nil, err
		}
		if className == name {
			return class, nil
		}

		cursor += 4
	}
}

// RegisterClass appends a class pointer to the registry. Registering an
// already present pointer is a no-op.
func RegisterClass(mem core.Memory, class *JavaClass) error {
	peb, err := readPeb(mem)
	if err != nil {
		return err
	}

	cursor := peb.JavaClassesBase
	for {
		current, err := core.ReadU32(mem, cursor)
		if err != nil {
			return err
		}
		if current == class.Ptr {
			return nil
		}
		if current == 0 {
			return core.WriteU32(mem, cursor, class.Ptr)
		}
		cursor += 4
	}
}

// VtableIndex returns the position of the class's vtable in the process
// vtable registry, appending it on first sight.
func VtableIndex(mem core.Memory, class *JavaClass) (uint32, error) {
	peb, err := readPeb(mem)
	if err != nil {
		return 0, err
	}

	raw, err := class.readRaw()
	if err != nil {
		return 0, err
	}

	cursor := peb.VtablesBase
	for {
		current, err := core.ReadU32(mem, cursor)
		if err != nil {
			return 0, err
		}
		if current == 0 {
			if err := core.WriteU32(mem, cursor, raw.PtrVtable); err != nil {
				return 0, err
			}
			break
		}
		if current == raw.PtrVtable {
			break
		}
		cursor += 4
	}

	return (cursor - peb.VtablesBase) / 4, nil
}
