package core

import (
	"encoding/binary"
	"fmt"
)

// ByteReader reads raw bytes from guest memory.
type ByteReader interface {
	ReadBytes(addr, size uint32) ([]byte, error)
}

// ByteWriter writes raw bytes to guest memory.
type ByteWriter interface {
	WriteBytes(addr uint32, data []byte) error
}

// Memory is guest memory access. ArmCore implements it; tests may substitute
// a plain buffer.
type Memory interface {
	ByteReader
	ByteWriter
}

// ReadU8 reads a byte from guest memory.
func ReadU8(m ByteReader, addr uint32) (uint8, error) {
	data, err := m.ReadBytes(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// ReadU16 reads a little-endian uint16 from guest memory.
func ReadU16(m ByteReader, addr uint32) (uint16, error) {
	data, err := m.ReadBytes(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

// ReadU32 reads a little-endian uint32 from guest memory.
func ReadU32(m ByteReader, addr uint32) (uint32, error) {
	data, err := m.ReadBytes(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

// WriteU8 writes a byte to guest memory.
func WriteU8(m ByteWriter, addr uint32, val uint8) error {
	return m.WriteBytes(addr, []byte{val})
}

// WriteU16 writes a little-endian uint16 to guest memory.
func WriteU16(m ByteWriter, addr uint32, val uint16) error {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, val)
	return m.WriteBytes(addr, data)
}

// WriteU32 writes a little-endian uint32 to guest memory.
func WriteU32(m ByteWriter, addr uint32, val uint32) error {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, val)
	return m.WriteBytes(addr, data)
}

// ReadCString reads a null-terminated string from guest memory. Reads go in
// small chunks; a chunk that crosses a mapping boundary falls back to
// byte-wise reads so strings near the end of a region still resolve.
func ReadCString(m ByteReader, addr uint32) (string, error) {
	var result []byte
	for {
		cursor := addr + uint32(len(result))

		chunk, err := m.ReadBytes(cursor, 64)
		if err != nil {
			chunk, err = readCStringTail(m, cursor)
			if err != nil {
				return "", fmt.Errorf("read string at %#x: %w", addr, err)
			}
		}

		for i, b := range chunk {
			if b == 0 {
				return string(append(result, chunk[:i]...)), nil
			}
		}
		result = append(result, chunk...)
		if len(result) > 0x10000 {
			return "", fmt.Errorf("unterminated string at %#x", addr)
		}
	}
}

func readCStringTail(m ByteReader, addr uint32) ([]byte, error) {
	var out []byte
	for i := uint32(0); i < 64; i++ {
		b, err := ReadU8(m, addr+i)
		if err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}
		out = append(out, b)
		if b == 0 {
			return out, nil
		}
	}
	return out, nil
}

// WriteCString writes a null-terminated string to guest memory.
func WriteCString(m ByteWriter, addr uint32, s string) error {
	return m.WriteBytes(addr, append([]byte(s), 0))
}

// RoundUp rounds size up to the given power-of-two alignment.
func RoundUp(size, align uint32) uint32 {
	return (size + align - 1) &^ (align - 1)
}
