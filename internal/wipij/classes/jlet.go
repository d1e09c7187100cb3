package classes

import (
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("org/kwis/msp/lcdui/Jlet", jletProto)
}

// activeJlet tracks the most recently initialized Jlet. The original
// firmware kept this in a static field; the native track stores it host-side
// since static storage is not part of the instance layout.
var activeJlet wipij.ObjectRef

func jletProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		ParentClass: "java/lang/Object",
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "()V", Body: jletInit, Flags: wipij.MethodNone},
			{Name: "getActiveJlet", Signature: "()Lorg/kwis/msp/lcdui/Jlet;", Body: jletGetActiveJlet, Flags: wipij.MethodStatic},
			{Name: "getEventQueue", Signature: "()Lorg/kwis/msp/lcdui/EventQueue;", Body: jletGetEventQueue, Flags: wipij.MethodNone},
		},
		Fields: []wipij.JavaFieldProto{
			{Name: "dis", Signature: "Lorg/kwis/msp/lcdui/Display;", Flags: wipij.FieldNone},
			{Name: "eq", Signature: "Lorg/kwis/msp/lcdui/EventQueue;", Flags: wipij.FieldNone},
		},
	}
}

func jletInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])

	display, err := ctx.Instantiate("Lorg/kwis/msp/lcdui/Display;")
	if err != nil {
		return 0, err
	}
	if _, err := ctx.CallMethod(display, "<init>", "(Lorg/kwis/msp/lcdui/Jlet;)V", []uint32{uint32(this)}); err != nil {
		return 0, err
	}
	if err := ctx.PutField(this, "dis", uint32(display)); err != nil {
		return 0, err
	}

	eventQueue, err := ctx.Instantiate("Lorg/kwis/msp/lcdui/EventQueue;")
	if err != nil {
		return 0, err
	}
	if _, err := ctx.CallMethod(eventQueue, "<init>", "(Lorg/kwis/msp/lcdui/Jlet;)V", []uint32{uint32(this)}); err != nil {
		return 0, err
	}
	if err := ctx.PutField(this, "eq", uint32(eventQueue)); err != nil {
		return 0, err
	}

	activeJlet = this

	return 0, nil
}

func jletGetActiveJlet(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return uint32(activeJlet), nil
}

func jletGetEventQueue(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	return ctx.GetField(this, "eq")
}
