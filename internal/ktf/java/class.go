package java

import (
	"fmt"

	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/log"
	"github.com/jkki-i/wie/internal/wipij"
)

// Access flags written into guest records.
const (
	accPublic      = 0x0001
	accSuper       = 0x0020
	accClassPublic = accPublic | accSuper
)

// JavaClass is a host handle to a guest class record. The guest heap owns
// the record; the handle only carries the pointer and reads through the
// emulator.
type JavaClass struct {
	Ptr uint32
	mem core.Memory
}

// ClassFromPtr wraps an existing guest class record.
func ClassFromPtr(mem core.Memory, ptr uint32) *JavaClass {
	return &JavaClass{Ptr: ptr, mem: mem}
}

func (c *JavaClass) readRaw() (rawClass, error) {
	var raw rawClass
	err := readRaw(c.mem, c.Ptr, &raw)
	return raw, err
}

func (c *JavaClass) descriptor() (rawClassDescriptor, error) {
	raw, err := c.readRaw()
	if err != nil {
		return rawClassDescriptor{}, err
	}
	if raw.PtrDescriptor == 0 {
		return rawClassDescriptor{}, fmt.Errorf("class %#x has no descriptor", c.Ptr)
	}
	var desc rawClassDescriptor
	err = readRaw(c.mem, raw.PtrDescriptor, &desc)
	return desc, err
}

// Name reads the class name from the descriptor.
func (c *JavaClass) Name() (string, error) {
	desc, err := c.descriptor()
	if err != nil {
		return "", err
	}
	return core.ReadCString(c.mem, desc.PtrName)
}

// Parent returns the superclass handle, or nil for a root class.
func (c *JavaClass) Parent() (*JavaClass, error) {
	desc, err := c.descriptor()
	if err != nil {
		return nil, err
	}
	if desc.PtrParentClass == 0 {
		return nil, nil
	}
	return ClassFromPtr(c.mem, desc.PtrParentClass), nil
}

// MethodPtrs reads the zero-terminated method pointer array.
func (c *JavaClass) MethodPtrs() ([]uint32, error) {
	desc, err := c.descriptor()
	if err != nil {
		return nil, err
	}
	return readPtrList(c.mem, desc.PtrMethods)
}

// Method scans this class's own method table for a (signature, name) match.
// The tag byte is ignored. Inherited methods are not searched: vtable
// construction flattened them into subclasses, and calls through a class
// that did not redeclare a parent method will miss. That behavior is
// inherited from the original client and kept.
func (c *JavaClass) Method(name FullName) (*JavaMethod, error) {
	ptrs, err := c.MethodPtrs()
	if err != nil {
		return nil, err
	}

	for _, ptr := range ptrs {
		method := MethodFromPtr(c.mem, ptr)
		current, err := method.FullName()
		if err != nil {
			return nil, err
		}
		if current.Equal(name) {
			return method, nil
		}
	}

	return nil, nil
}

// Field scans the class's own field table by simple name.
func (c *JavaClass) Field(name string) (*JavaField, error) {
	desc, err := c.descriptor()
	if err != nil {
		return nil, err
	}

	ptrs, err := readPtrList(c.mem, desc.PtrFields)
	if err != nil {
		return nil, err
	}

	for _, ptr := range ptrs {
		field := FieldFromPtr(c.mem, ptr)
		fullName, err := field.FullName()
		if err != nil {
			return nil, err
		}
		if fullName.Name == name {
			return field, nil
		}
	}

	return nil, nil
}

// FieldLookup resolves a field on this class or any ancestor.
func (c *JavaClass) FieldLookup(name string) (*JavaField, error) {
	hierarchy, err := c.hierarchy()
	if err != nil {
		return nil, err
	}
	for _, class := range hierarchy {
		field, err := class.Field(name)
		if err != nil {
			return nil, err
		}
		if field != nil {
			return field, nil
		}
	}
	return nil, nil
}

// FieldSize sums fields_size across the class hierarchy.
func (c *JavaClass) FieldSize() (uint32, error) {
	hierarchy, err := c.hierarchy()
	if err != nil {
		return 0, err
	}

	var total uint32
	for _, class := range hierarchy {
		desc, err := class.descriptor()
		if err != nil {
			return 0, err
		}
		total += uint32(desc.FieldsSize)
	}

	return total, nil
}

// hierarchy returns the class chain leaf-first.
func (c *JavaClass) hierarchy() ([]*JavaClass, error) {
	result := []*JavaClass{c}

	current := c
	for {
		parent, err := current.Parent()
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return result, nil
		}
		result = append(result, parent)
		current = parent
	}
}

// ElementSize returns the byte width of this array class's elements.
func (c *JavaClass) ElementSize() (uint32, error) {
	name, err := c.Name()
	if err != nil {
		return 0, err
	}
	if len(name) < 2 || name[0] != '[' {
		return 0, fmt.Errorf("%q is not an array class", name)
	}
	switch name[1] {
	case 'B', 'Z':
		return 1, nil
	case 'C', 'S':
		return 2, nil
	case 'J', 'D':
		return 8, nil
	default:
		return 4, nil
	}
}

// RegisterBodyFunc binds a host method body to a trap address.
type RegisterBodyFunc func(proto wipij.JavaMethodProto) (uint32, error)

// NewClassFromProto materializes a platform class prototype on the guest
// heap: class record, descriptor, name blob, method and field records with
// zero-terminated pointer arrays, and the flattened vtable. The descriptor
// pointer is wired into the class record only after the descriptor is fully
// written. The caller is responsible for registering the class and its
// vtable in the PEB registries.
func NewClassFromProto(mem core.Memory, alloc *core.Allocator, name string, proto wipij.JavaClassProto, parent *JavaClass, interfaces []*JavaClass, registerBody RegisterBodyFunc) (*JavaClass, error) {
	ptrClass, err := alloc.Alloc(rawSize(&rawClass{}))
	if err != nil {
		return nil, err
	}
	err = writeRaw(mem, ptrClass, &rawClass{
		PtrNext:     ptrClass + 4,
		VtableCount: uint16(len(proto.Methods)),
	})
	if err != nil {
		return nil, err
	}

	ptrMethods, err := writeMethods(mem, alloc, ptrClass, proto.Methods, registerBody)
	if err != nil {
		return nil, err
	}

	parentFieldSize := uint32(0)
	parentPtr := uint32(0)
	if parent != nil {
		parentPtr = parent.Ptr
		parentFieldSize, err = parent.FieldSize()
		if err != nil {
			return nil, err
		}
	}

	ptrFields, fieldsSize, err := writeFields(mem, alloc, ptrClass, proto.Fields, parentFieldSize)
	if err != nil {
		return nil, err
	}

	ptrInterfaces := uint32(0)
	if len(interfaces) > 0 {
		ptrInterfaces, err = alloc.Alloc(uint32(len(interfaces)+1) * 4)
		if err != nil {
			return nil, err
		}
		for i, iface := range interfaces {
			if err := core.WriteU32(mem, ptrInterfaces+uint32(i)*4, iface.Ptr); err != nil {
				return nil, err
			}
		}
	}

	ptrName, err := alloc.Alloc(uint32(len(name)) + 1)
	if err != nil {
		return nil, err
	}
	if err := core.WriteCString(mem, ptrName, name); err != nil {
		return nil, err
	}

	ptrDescriptor, err := alloc.Alloc(rawSize(&rawClassDescriptor{}))
	if err != nil {
		return nil, err
	}
	err = writeRaw(mem, ptrDescriptor, &rawClassDescriptor{
		PtrName:        ptrName,
		PtrParentClass: parentPtr,
		PtrMethods:     ptrMethods,
		PtrInterfaces:  ptrInterfaces,
		PtrFields:      ptrFields,
		MethodCount:    uint16(len(proto.Methods)),
		FieldsSize:     uint16(fieldsSize),
		AccessFlag:     accClassPublic,
	})
	if err != nil {
		return nil, err
	}

	// Descriptor is complete; only now wire it into the class record.
	if err := core.WriteU32(mem, ptrClass+8, ptrDescriptor); err != nil {
		return nil, err
	}

	class := ClassFromPtr(mem, ptrClass)

	ptrVtable, vtableLen, err := class.writeVtable(alloc)
	if err != nil {
		return nil, err
	}
	if err := core.WriteU32(mem, ptrClass+12, ptrVtable); err != nil {
		return nil, err
	}
	if err := core.WriteU16(mem, ptrClass+16, uint16(vtableLen)); err != nil {
		return nil, err
	}

	if log.L != nil {
		log.L.ClassLoad(name, ptrClass)
	}

	return class, nil
}

func writeMethods(mem core.Memory, alloc *core.Allocator, ptrClass uint32, methods []wipij.JavaMethodProto, registerBody RegisterBodyFunc) (uint32, error) {
	ptrMethods, err := alloc.Alloc(uint32(len(methods)+1) * 4)
	if err != nil {
		return 0, err
	}

	cursor := ptrMethods
	for index, method := range methods {
		fullName := FullName{Name: method.Name, Signature: method.Signature}
		blob := fullName.Bytes()

		ptrName, err := alloc.Alloc(uint32(len(blob)))
		if err != nil {
			return 0, err
		}
		if err := mem.WriteBytes(ptrName, blob); err != nil {
			return 0, err
		}

		fnBody, err := registerBody(method)
		if err != nil {
			return 0, fmt.Errorf("register %s%s: %w", method.Name, method.Signature, err)
		}

		ptrMethod, err := alloc.Alloc(rawSize(&rawMethod{}))
		if err != nil {
			return 0, err
		}
		err = writeRaw(mem, ptrMethod, &rawMethod{
			FnBody:      fnBody,
			PtrClass:    ptrClass,
			PtrName:     ptrName,
			VtableIndex: uint16(index),
			AccessFlag:  accPublic | uint16(method.Flags),
		})
		if err != nil {
			return 0, err
		}

		if err := core.WriteU32(mem, cursor, ptrMethod); err != nil {
			return 0, err
		}
		cursor += 4
	}

	// Terminating zero word is part of the allocation and already zeroed.
	return ptrMethods, nil
}

func writeFields(mem core.Memory, alloc *core.Allocator, ptrClass uint32, fields []wipij.JavaFieldProto, baseOffset uint32) (ptrFields, fieldsSize uint32, err error) {
	ptrFields, err = alloc.Alloc(uint32(len(fields)+1) * 4)
	if err != nil {
		return 0, 0, err
	}

	cursor := ptrFields
	offset := baseOffset
	for _, field := range fields {
		fullName := FullName{Name: field.Name, Signature: field.Signature}
		blob := fullName.Bytes()

		ptrName, err := alloc.Alloc(uint32(len(blob)))
		if err != nil {
			return 0, 0, err
		}
		if err := mem.WriteBytes(ptrName, blob); err != nil {
			return 0, 0, err
		}

		ptrField, err := alloc.Alloc(rawSize(&rawField{}))
		if err != nil {
			return 0, 0, err
		}
		err = writeRaw(mem, ptrField, &rawField{
			PtrClass: ptrClass,
			PtrName:  ptrName,
			Offset:   offset,
		})
		if err != nil {
			return 0, 0, err
		}

		if err := core.WriteU32(mem, cursor, ptrField); err != nil {
			return 0, 0, err
		}
		cursor += 4
		offset += wipij.FieldWidth(field.Signature)
	}

	return ptrFields, offset - baseOffset, nil
}

// writeVtable builds the flattened virtual table: method pointers walked
// from the root superclass down to this class, so inherited methods precede
// overriding and new ones.
func (c *JavaClass) writeVtable(alloc *core.Allocator) (uint32, int, error) {
	hierarchy, err := c.hierarchy()
	if err != nil {
		return 0, 0, err
	}

	// hierarchy is leaf-first; build root-first.
	var vtable []uint32
	for i := len(hierarchy) - 1; i >= 0; i-- {
		ptrs, err := hierarchy[i].MethodPtrs()
		if err != nil {
			return 0, 0, err
		}
		vtable = append(vtable, ptrs...)
	}

	ptrVtable, err := alloc.Alloc(uint32(len(vtable)+1) * 4)
	if err != nil {
		return 0, 0, err
	}
	for i, entry := range vtable {
		if err := core.WriteU32(c.mem, ptrVtable+uint32(i)*4, entry); err != nil {
			return 0, 0, err
		}
	}

	return ptrVtable, len(vtable), nil
}

// readPtrList reads a zero-terminated array of guest pointers.
func readPtrList(mem core.ByteReader, base uint32) ([]uint32, error) {
	if base == 0 {
		return nil, nil
	}

	var out []uint32
	cursor := base
	for {
		ptr, err := core.ReadU32(mem, cursor)
		if err != nil {
			return nil, err
		}
		if ptr == 0 {
			return out, nil
		}
		out = append(out, ptr)
		cursor += 4
	}
}
