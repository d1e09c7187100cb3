package classes

import (
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("org/kwis/msp/lcdui/Display", displayProto)
}

func displayProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		ParentClass: "java/lang/Object",
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "(Lorg/kwis/msp/lcdui/Jlet;)V", Body: displayInit, Flags: wipij.MethodNone},
			{Name: "getWidth", Signature: "()I", Body: displayGetWidth, Flags: wipij.MethodNone},
			{Name: "getHeight", Signature: "()I", Body: displayGetHeight, Flags: wipij.MethodNone},
			{Name: "requestRepaint", Signature: "()V", Body: displayRequestRepaint, Flags: wipij.MethodNone},
		},
		Fields: []wipij.JavaFieldProto{
			{Name: "jlet", Signature: "Lorg/kwis/msp/lcdui/Jlet;", Flags: wipij.FieldNone},
		},
	}
}

func displayInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	jlet := args[1]

	return 0, ctx.PutField(this, "jlet", jlet)
}

func displayGetWidth(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return ctx.Backend().Window().Width(), nil
}

func displayGetHeight(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return ctx.Backend().Window().Height(), nil
}

func displayRequestRepaint(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	ctx.Backend().Window().RequestRedraw()
	return 0, nil
}
