package java

import (
	"fmt"
	"strings"

	"github.com/jkki-i/wie/internal/core"
)

// FullName is the on-heap identity of a method or field, encoded as
// tag || signature || '+' || name || NUL. The tag byte is preserved and
// displayed but ignored by equality; its meaning in the original firmware
// is unknown.
type FullName struct {
	Tag       uint8
	Name      string
	Signature string
}

// ReadFullName decodes a full-name blob from guest memory.
func ReadFullName(mem core.ByteReader, ptr uint32) (FullName, error) {
	tag, err := core.ReadU8(mem, ptr)
	if err != nil {
		return FullName{}, err
	}

	value, err := core.ReadCString(mem, ptr+1)
	if err != nil {
		return FullName{}, err
	}

	sig, name, ok := strings.Cut(value, "+")
	if !ok {
		return FullName{}, fmt.Errorf("malformed full name at %#x: %q", ptr, value)
	}

	return FullName{Tag: tag, Name: name, Signature: sig}, nil
}

// Bytes encodes the full name into its on-heap form.
func (f FullName) Bytes() []byte {
	out := make([]byte, 0, len(f.Signature)+len(f.Name)+3)
	out = append(out, f.Tag)
	out = append(out, f.Signature...)
	out = append(out, '+')
	out = append(out, f.Name...)
	out = append(out, 0)
	return out
}

// Equal compares identity, ignoring the tag byte.
func (f FullName) Equal(other FullName) bool {
	return f.Signature == other.Signature && f.Name == other.Name
}

func (f FullName) String() string {
	return fmt.Sprintf("%s%s@%d", f.Name, f.Signature, f.Tag)
}
