package classes

import (
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("org/kwis/msp/lcdui/EventQueue", eventQueueProto)
}

func eventQueueProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		ParentClass: "java/lang/Object",
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "(Lorg/kwis/msp/lcdui/Jlet;)V", Body: eventQueueInit, Flags: wipij.MethodNone},
			{Name: "getNextEvent", Signature: "([I)V", Body: eventQueueGetNextEvent, Flags: wipij.MethodNone},
		},
		Fields: []wipij.JavaFieldProto{
			{Name: "jlet", Signature: "Lorg/kwis/msp/lcdui/Jlet;", Flags: wipij.FieldNone},
		},
	}
}

func eventQueueInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	jlet := args[1]

	return 0, ctx.PutField(this, "jlet", jlet)
}

// eventQueueGetNextEvent fills the caller's int array with the next queued
// event as {kind, arg}. An empty queue yields a redraw event so clients
// polling in a loop keep painting.
func eventQueueGetNextEvent(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	out := wipij.ObjectRef(args[1])

	event, ok := ctx.Backend().PopEvent()
	if !ok {
		event.Kind = 0 // redraw
	}

	return 0, ctx.StoreArray(out, 0, []uint32{uint32(event.Kind), event.Arg})
}
