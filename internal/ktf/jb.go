package ktf

import (
	"go.uber.org/zap"

	"github.com/jkki-i/wie/internal/core"
	javabridge "github.com/jkki-i/wie/internal/ktf/java"
	"github.com/jkki-i/wie/internal/log"
)

// The WIPI JB interface is a 13-word struct the client uses to reach the
// Java bridge: {unk1, fnUnk1, unk2, unk3, getJavaMethod, unk[6], fnUnk3}.
// Named slots carry trap addresses; layout is ABI.
const jbInterfaceWords = 13

const (
	jbSlotFnUnk1        = 1
	jbSlotGetJavaMethod = 4
	jbSlotFnUnk3        = 12
)

// initTag is the tag byte the client passes in <init> lookups.
const initTag = 72

// GetWipiJBInterface materializes the JB interface struct in guest memory.
func GetWipiJBInterface(ctx *javabridge.KtfJavaContext) (uint32, error) {
	c := ctx.Core()

	fnUnk1, err := c.RegisterFunction(jbUnk1(ctx))
	if err != nil {
		return 0, err
	}
	getMethod, err := c.RegisterFunction(jbGetJavaMethod(ctx))
	if err != nil {
		return 0, err
	}
	fnUnk3, err := c.RegisterFunction(jbUnk3)
	if err != nil {
		return 0, err
	}

	address, err := ctx.Allocator().Alloc(jbInterfaceWords * 4)
	if err != nil {
		return 0, err
	}

	slots := map[uint32]uint32{
		jbSlotFnUnk1:        fnUnk1,
		jbSlotGetJavaMethod: getMethod,
		jbSlotFnUnk3:        fnUnk3,
	}
	for slot, value := range slots {
		if err := core.WriteU32(c, address+slot*4, value); err != nil {
			return 0, err
		}
	}

	return address, nil
}

// jbGetJavaMethod resolves a method on a guest class by its tagged
// full-name blob. A miss logs and returns a null method pointer; the client
// checks for zero.
func jbGetJavaMethod(ctx *javabridge.KtfJavaContext) core.RegisteredFunction {
	return func(c *core.ArmCore) (uint32, error) {
		ptrClass, err := c.ReadParam(0)
		if err != nil {
			return 0, err
		}
		ptrName, err := c.ReadParam(1)
		if err != nil {
			return 0, err
		}

		fullName, err := javabridge.ReadFullName(c, ptrName)
		if err != nil {
			return 0, err
		}

		class := javabridge.ClassFromPtr(c, ptrClass)
		method, err := class.Method(fullName)
		if err != nil {
			return 0, err
		}
		if method == nil {
			className, _ := class.Name()
			if log.L != nil {
				log.L.Error("method not found",
					zap.String("class", className),
					zap.String("name", fullName.String()),
				)
			}
			return 0, nil
		}

		if log.L != nil {
			log.L.Trace(c.PC(), "jb", "getJavaMethod", fullName.String())
		}

		return method.Ptr, nil
	}
}

// LoadJavaClass materializes the named platform class and writes its guest
// pointer to ptrTarget. Exposed to the client through the kernel bridge.
func LoadJavaClass(ctx *javabridge.KtfJavaContext) core.RegisteredFunction {
	return func(c *core.ArmCore) (uint32, error) {
		ptrTarget, err := c.ReadParam(0)
		if err != nil {
			return 0, err
		}
		name, err := core.ReadParamString(c, 1)
		if err != nil {
			return 0, err
		}

		class, err := ctx.LoadClass(name)
		if err != nil {
			return 0, err
		}

		if err := core.WriteU32(c, ptrTarget, class.Ptr); err != nil {
			return 0, err
		}

		return 0, nil
	}
}

// InstantiateJavaClass allocates an instance of a guest class and runs its
// <init>()V, the way the original kernel entry point did.
func InstantiateJavaClass(ctx *javabridge.KtfJavaContext) core.RegisteredFunction {
	return func(c *core.ArmCore) (uint32, error) {
		ptrClass, err := c.ReadParam(0)
		if err != nil {
			return 0, err
		}

		class := javabridge.ClassFromPtr(c, ptrClass)
		instance, err := javabridge.NewInstance(c, ctx.Allocator(), class)
		if err != nil {
			return 0, err
		}

		ctorName := javabridge.FullName{Tag: initTag, Name: "<init>", Signature: "()V"}
		ctor, err := class.Method(ctorName)
		if err != nil {
			return 0, err
		}
		if ctor != nil {
			fnBody, err := ctor.FnBody()
			if err != nil {
				return 0, err
			}
			if _, err := c.RunFunction(fnBody, []uint32{0, instance.Ptr}); err != nil {
				return 0, err
			}
		}

		return instance.Ptr, nil
	}
}

// jbUnk1 tail-calls into guest code: the client passes a target address and
// one argument. Semantics beyond "jump" are unknown; the original forwarded
// it the same way.
func jbUnk1(ctx *javabridge.KtfJavaContext) core.RegisteredFunction {
	return func(c *core.ArmCore) (uint32, error) {
		a0, err := c.ReadParam(0)
		if err != nil {
			return 0, err
		}
		address, err := c.ReadParam(1)
		if err != nil {
			return 0, err
		}

		if log.L != nil {
			log.L.Trace(c.PC(), "jb", "unk1", log.Hex(address))
		}

		return c.RunFunction(address, []uint32{a0})
	}
}

// jbUnk3 registers a string: the original returned the pointer unchanged.
func jbUnk3(c *core.ArmCore) (uint32, error) {
	ptrString, err := c.ReadParam(0)
	if err != nil {
		return 0, err
	}

	if log.L != nil {
		log.L.Trace(c.PC(), "jb", "unk3", log.Hex(ptrString))
	}

	return ptrString, nil
}
