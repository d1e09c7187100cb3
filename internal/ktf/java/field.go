package java

import "github.com/jkki-i/wie/internal/core"

// JavaField is a host handle to a guest field record.
type JavaField struct {
	Ptr uint32
	mem core.Memory
}

// FieldFromPtr wraps an existing guest field record.
func FieldFromPtr(mem core.Memory, ptr uint32) *JavaField {
	return &JavaField{Ptr: ptr, mem: mem}
}

func (f *JavaField) readRaw() (rawField, error) {
	var raw rawField
	err := readRaw(f.mem, f.Ptr, &raw)
	return raw, err
}

// FullName decodes the field's identity blob.
func (f *JavaField) FullName() (FullName, error) {
	raw, err := f.readRaw()
	if err != nil {
		return FullName{}, err
	}
	return ReadFullName(f.mem, raw.PtrName)
}

// Offset returns the field's byte offset within the instance field block.
func (f *JavaField) Offset() (uint32, error) {
	raw, err := f.readRaw()
	if err != nil {
		return 0, err
	}
	return raw.Offset, nil
}

// Class returns the declaring class.
func (f *JavaField) Class() (*JavaClass, error) {
	raw, err := f.readRaw()
	if err != nil {
		return nil, err
	}
	return ClassFromPtr(f.mem, raw.PtrClass), nil
}
