package java

import (
	"bytes"
	"encoding/binary"

	"github.com/jkki-i/wie/internal/core"
)

// Guest-heap record layouts. These are an ABI consumed by the original ARM
// client: little-endian, 4-byte aligned, field order fixed.

type rawClass struct {
	PtrNext       uint32
	Unk1          uint32
	PtrDescriptor uint32
	PtrVtable     uint32
	VtableCount   uint16
	Unk2          uint16
}

type rawClassDescriptor struct {
	PtrName        uint32
	Unk1           uint32
	PtrParentClass uint32
	PtrMethods     uint32
	PtrInterfaces  uint32
	PtrFields      uint32
	MethodCount    uint16
	FieldsSize     uint16
	AccessFlag     uint16
	Unk6           uint16
	Unk7           uint16
	Unk8           uint16
}

type rawMethod struct {
	FnBody      uint32
	PtrClass    uint32
	Unk1        uint32
	PtrName     uint32
	Unk2        uint16
	Unk3        uint16
	VtableIndex uint16
	AccessFlag  uint16
	Unk6        uint32
}

type rawField struct {
	Unk1     uint32
	PtrClass uint32
	PtrName  uint32
	Offset   uint32
}

type rawInstance struct {
	PtrFields uint32
	PtrClass  uint32
}

func rawSize(v any) uint32 {
	return uint32(binary.Size(v))
}

func readRaw(mem core.ByteReader, addr uint32, out any) error {
	data, err := mem.ReadBytes(addr, rawSize(out))
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, out)
}

func writeRaw(mem core.ByteWriter, addr uint32, v any) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return err
	}
	return mem.WriteBytes(addr, buf.Bytes())
}
