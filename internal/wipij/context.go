package wipij

import (
	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/task"
)

// ObjectRef is an opaque handle to a guest object. In the native track it is
// the guest address of the instance record; zero is null.
type ObjectRef uint32

// Null is the null object reference.
const Null ObjectRef = 0

// JavaContext is the facade platform-class implementations operate through.
// All object state lives in the guest; the context reads and writes it
// across the emulator boundary and re-enters guest code for method calls.
type JavaContext interface {
	// Instantiate allocates an instance of an "L<name>;" type descriptor.
	// It does not run <init>; callers invoke constructors explicitly.
	// Array descriptors are rejected; use InstantiateArray.
	Instantiate(typeDesc string) (ObjectRef, error)

	// InstantiateArray allocates an array of the given element descriptor,
	// synthesizing the "[<elem>" class on first use.
	InstantiateArray(elemDesc string, count uint32) (ObjectRef, error)

	// DestroyInstance frees an instance record and its field block.
	DestroyInstance(obj ObjectRef) error

	// CallMethod looks the method up by (signature, name) on the object's
	// class and re-enters the emulator at its body. At most two explicit
	// arguments are supported by the guest calling convention.
	CallMethod(obj ObjectRef, name, signature string, args []uint32) (uint32, error)

	// GetField reads a word-sized field by name.
	GetField(obj ObjectRef, name string) (uint32, error)

	// PutField writes a word-sized field by name.
	PutField(obj ObjectRef, name string, value uint32) error

	// LoadArray copies length elements starting at offset out of the array.
	LoadArray(arr ObjectRef, offset, length uint32) ([]uint32, error)

	// StoreArray copies values into the array starting at offset.
	StoreArray(arr ObjectRef, offset uint32, values []uint32) error

	// ArrayLength reads the array length header.
	ArrayLength(arr ObjectRef) (uint32, error)

	// Spawn hands a task to the cooperative executor.
	Spawn(t task.Task)

	// Backend borrows the host backend aggregate.
	Backend() *backend.System
}
