package java

import "github.com/jkki-i/wie/internal/core"

// JavaMethod is a host handle to a guest method record.
type JavaMethod struct {
	Ptr uint32
	mem core.Memory
}

// MethodFromPtr wraps an existing guest method record.
func MethodFromPtr(mem core.Memory, ptr uint32) *JavaMethod {
	return &JavaMethod{Ptr: ptr, mem: mem}
}

func (m *JavaMethod) readRaw() (rawMethod, error) {
	var raw rawMethod
	err := readRaw(m.mem, m.Ptr, &raw)
	return raw, err
}

// FullName decodes the method's identity blob.
func (m *JavaMethod) FullName() (FullName, error) {
	raw, err := m.readRaw()
	if err != nil {
		return FullName{}, err
	}
	return ReadFullName(m.mem, raw.PtrName)
}

// FnBody returns the callable address: a trap address for host methods, a
// guest code address otherwise.
func (m *JavaMethod) FnBody() (uint32, error) {
	raw, err := m.readRaw()
	if err != nil {
		return 0, err
	}
	return raw.FnBody, nil
}

// Class returns the declaring class.
func (m *JavaMethod) Class() (*JavaClass, error) {
	raw, err := m.readRaw()
	if err != nil {
		return nil, err
	}
	return ClassFromPtr(m.mem, raw.PtrClass), nil
}

// VtableIndex returns the method's position in its class's own method table.
func (m *JavaMethod) VtableIndex() (uint16, error) {
	raw, err := m.readRaw()
	if err != nil {
		return 0, err
	}
	return raw.VtableIndex, nil
}
