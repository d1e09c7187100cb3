package classes

import (
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("java/lang/String", stringProto)
}

func stringProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		ParentClass: "java/lang/Object",
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "()V", Body: stringInitEmpty, Flags: wipij.MethodNone},
			{Name: "<init>", Signature: "([C)V", Body: stringInitChars, Flags: wipij.MethodNone},
			{Name: "length", Signature: "()I", Body: stringLength, Flags: wipij.MethodNone},
			{Name: "charAt", Signature: "(I)C", Body: stringCharAt, Flags: wipij.MethodNone},
		},
		Fields: []wipij.JavaFieldProto{
			{Name: "value", Signature: "[C", Flags: wipij.FieldNone},
		},
	}
}

func stringInitEmpty(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])

	value, err := ctx.InstantiateArray("C", 0)
	if err != nil {
		return 0, err
	}

	return 0, ctx.PutField(this, "value", uint32(value))
}

func stringInitChars(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	chars := args[1]

	return 0, ctx.PutField(this, "value", chars)
}

func stringLength(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])

	value, err := ctx.GetField(this, "value")
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, nil
	}

	return ctx.ArrayLength(wipij.ObjectRef(value))
}

func stringCharAt(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	index := args[1]

	value, err := ctx.GetField(this, "value")
	if err != nil {
		return 0, err
	}

	chars, err := ctx.LoadArray(wipij.ObjectRef(value), index, 1)
	if err != nil {
		return 0, err
	}

	return chars[0], nil
}

// NewString builds a guest java/lang/String from a host string. Characters
// are stored as UTF-16 code units in the backing [C array.
func NewString(ctx wipij.JavaContext, s string) (wipij.ObjectRef, error) {
	runes := []rune(s)
	units := make([]uint32, len(runes))
	for i, r := range runes {
		units[i] = uint32(uint16(r))
	}

	arr, err := ctx.InstantiateArray("C", uint32(len(units)))
	if err != nil {
		return wipij.Null, err
	}
	if err := ctx.StoreArray(arr, 0, units); err != nil {
		return wipij.Null, err
	}

	obj, err := ctx.Instantiate("Ljava/lang/String;")
	if err != nil {
		return wipij.Null, err
	}
	if _, err := ctx.CallMethod(obj, "<init>", "([C)V", []uint32{uint32(arr)}); err != nil {
		return wipij.Null, err
	}

	return obj, nil
}
