package classes

import (
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("java/lang/Runtime", runtimeProto)
}

func runtimeProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		ParentClass: "java/lang/Object",
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "()V", Body: runtimeInit, Flags: wipij.MethodNone},
			{Name: "getRuntime", Signature: "()Ljava/lang/Runtime;", Body: runtimeGetRuntime, Flags: wipij.MethodStatic},
			{Name: "totalMemory", Signature: "()I", Body: runtimeTotalMemory, Flags: wipij.MethodNone},
			{Name: "freeMemory", Signature: "()I", Body: runtimeFreeMemory, Flags: wipij.MethodNone},
			{Name: "gc", Signature: "()V", Body: runtimeGc, Flags: wipij.MethodNone},
		},
	}
}

func runtimeInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return 0, nil
}

func runtimeGetRuntime(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	obj, err := ctx.Instantiate("Ljava/lang/Runtime;")
	if err != nil {
		return 0, err
	}
	if _, err := ctx.CallMethod(obj, "<init>", "()V", nil); err != nil {
		return 0, err
	}
	return uint32(obj), nil
}

func runtimeTotalMemory(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return 0x100000, nil
}

func runtimeFreeMemory(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return 0x100000, nil
}

func runtimeGc(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	// The guest heap has no collector; instances are freed explicitly.
	return 0, nil
}
