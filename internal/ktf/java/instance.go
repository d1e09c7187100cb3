package java

import (
	"encoding/binary"
	"fmt"

	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/log"
)

// JavaClassInstance is a host handle to a guest object. The record is an
// 8-byte pair (fields pointer, class pointer); the field block starts with
// the vtable word, for arrays followed by the length word and the elements.
type JavaClassInstance struct {
	Ptr uint32
	mem core.Memory
}

// InstanceFromPtr wraps an existing guest instance record.
func InstanceFromPtr(mem core.Memory, ptr uint32) *JavaClassInstance {
	return &JavaClassInstance{Ptr: ptr, mem: mem}
}

// NewInstance allocates an instance of class with a zeroed field block.
func NewInstance(mem core.Memory, alloc *core.Allocator, class *JavaClass) (*JavaClassInstance, error) {
	fieldSize, err := class.FieldSize()
	if err != nil {
		return nil, err
	}

	instance, err := instantiate(mem, alloc, class, fieldSize)
	if err != nil {
		return nil, err
	}

	if log.L != nil {
		if name, err := class.Name(); err == nil {
			log.L.Instantiate(name, instance.Ptr)
		}
	}

	return instance, nil
}

// NewArrayInstance allocates an array of count elements, storing the length
// in the first word after the vtable slot.
func NewArrayInstance(mem core.Memory, alloc *core.Allocator, class *JavaClass, count uint32) (*JavaClassInstance, error) {
	elemSize, err := class.ElementSize()
	if err != nil {
		return nil, err
	}

	instance, err := instantiate(mem, alloc, class, count*elemSize+4)
	if err != nil {
		return nil, err
	}

	raw, err := instance.readRaw()
	if err != nil {
		return nil, err
	}
	if err := core.WriteU32(mem, raw.PtrFields+4, count); err != nil {
		return nil, err
	}

	if log.L != nil {
		if name, err := class.Name(); err == nil {
			log.L.Instantiate(name, instance.Ptr)
		}
	}

	return instance, nil
}

func instantiate(mem core.Memory, alloc *core.Allocator, class *JavaClass, fieldSize uint32) (*JavaClassInstance, error) {
	ptrInstance, err := alloc.Alloc(rawSize(&rawInstance{}))
	if err != nil {
		return nil, err
	}
	ptrFields, err := alloc.Alloc(fieldSize + 4)
	if err != nil {
		return nil, err
	}

	vtableIndex, err := VtableIndex(mem, class)
	if err != nil {
		return nil, err
	}

	err = writeRaw(mem, ptrInstance, &rawInstance{PtrFields: ptrFields, PtrClass: class.Ptr})
	if err != nil {
		return nil, err
	}
	if err := core.WriteU32(mem, ptrFields, (vtableIndex*4)<<5); err != nil {
		return nil, err
	}

	return InstanceFromPtr(mem, ptrInstance), nil
}

func (i *JavaClassInstance) readRaw() (rawInstance, error) {
	var raw rawInstance
	err := readRaw(i.mem, i.Ptr, &raw)
	return raw, err
}

// Class returns the instance's class.
func (i *JavaClassInstance) Class() (*JavaClass, error) {
	raw, err := i.readRaw()
	if err != nil {
		return nil, err
	}
	return ClassFromPtr(i.mem, raw.PtrClass), nil
}

// Destroy frees the field block, then the instance record.
func (i *JavaClassInstance) Destroy(alloc *core.Allocator) error {
	raw, err := i.readRaw()
	if err != nil {
		return err
	}
	if err := alloc.Free(raw.PtrFields); err != nil {
		return err
	}
	return alloc.Free(i.Ptr)
}

func (i *JavaClassInstance) fieldAddress(offset uint32) (uint32, error) {
	raw, err := i.readRaw()
	if err != nil {
		return 0, err
	}
	return raw.PtrFields + offset + 4, nil
}

// ReadField reads a word-sized field.
func (i *JavaClassInstance) ReadField(field *JavaField) (uint32, error) {
	offset, err := field.Offset()
	if err != nil {
		return 0, err
	}
	addr, err := i.fieldAddress(offset)
	if err != nil {
		return 0, err
	}
	return core.ReadU32(i.mem, addr)
}

// WriteField writes a word-sized field.
func (i *JavaClassInstance) WriteField(field *JavaField, value uint32) error {
	offset, err := field.Offset()
	if err != nil {
		return err
	}
	addr, err := i.fieldAddress(offset)
	if err != nil {
		return err
	}
	return core.WriteU32(i.mem, addr, value)
}

// ArrayLength reads the array length header.
func (i *JavaClassInstance) ArrayLength() (uint32, error) {
	raw, err := i.readRaw()
	if err != nil {
		return 0, err
	}
	return core.ReadU32(i.mem, raw.PtrFields+4)
}

// LoadArray copies length elements starting at offset into a word slice.
func (i *JavaClassInstance) LoadArray(offset, length uint32) ([]uint32, error) {
	elemSize, _, base, err := i.arrayAccess(offset, length)
	if err != nil {
		return nil, err
	}

	if length == 0 {
		return []uint32{}, nil
	}

	data, err := i.mem.ReadBytes(base, length*elemSize)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, length)
	for n := uint32(0); n < length; n++ {
		chunk := data[n*elemSize:]
		switch elemSize {
		case 1:
			out[n] = uint32(chunk[0])
		case 2:
			out[n] = uint32(binary.LittleEndian.Uint16(chunk))
		default:
			out[n] = binary.LittleEndian.Uint32(chunk)
		}
	}

	return out, nil
}

// StoreArray copies word values into the array starting at offset,
// truncating each to the element width.
func (i *JavaClassInstance) StoreArray(offset uint32, values []uint32) error {
	elemSize, _, base, err := i.arrayAccess(offset, uint32(len(values)))
	if err != nil {
		return err
	}

	data := make([]byte, uint32(len(values))*elemSize)
	for n, v := range values {
		chunk := data[uint32(n)*elemSize:]
		switch elemSize {
		case 1:
			chunk[0] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(chunk, uint16(v))
		default:
			binary.LittleEndian.PutUint32(chunk, v)
		}
	}

	return i.mem.WriteBytes(base, data)
}

// arrayAccess validates an element range and returns the element size, the
// array length, and the guest address of the first accessed element.
// Elements begin after the vtable word and the length word.
func (i *JavaClassInstance) arrayAccess(offset, length uint32) (elemSize, count, base uint32, err error) {
	class, err := i.Class()
	if err != nil {
		return 0, 0, 0, err
	}
	elemSize, err = class.ElementSize()
	if err != nil {
		return 0, 0, 0, err
	}

	count, err = i.ArrayLength()
	if err != nil {
		return 0, 0, 0, err
	}
	if offset+length > count {
		return 0, 0, 0, fmt.Errorf("array access out of range: %d+%d > %d", offset, length, count)
	}

	raw, err := i.readRaw()
	if err != nil {
		return 0, 0, 0, err
	}

	return elemSize, count, raw.PtrFields + 8 + offset*elemSize, nil
}
