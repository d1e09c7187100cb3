package java

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/log"
	"github.com/jkki-i/wie/internal/task"
	"github.com/jkki-i/wie/internal/wipij"
)

// maxCallArgs is the guest calling convention limit: R0 carries a reserved
// zero, R1 the receiver, R2 and R3 the first two arguments. More would spill
// to the stack, which the original client never does.
const maxCallArgs = 2

// KtfJavaContext is the host/guest bridge for the KTF vendor track. It
// implements wipij.JavaContext over the emulated heap: instances, classes,
// and both registries live in guest memory; host state is only the wiring.
type KtfJavaContext struct {
	core  *core.ArmCore
	alloc *core.Allocator
	sys   *backend.System
	exec  *task.Executor
}

// NewContext creates a bridge over an initialized core.
func NewContext(c *core.ArmCore, alloc *core.Allocator, sys *backend.System, exec *task.Executor) *KtfJavaContext {
	return &KtfJavaContext{core: c, alloc: alloc, sys: sys, exec: exec}
}

// Core exposes the ARM core for vendor-module glue.
func (ctx *KtfJavaContext) Core() *core.ArmCore { return ctx.core }

// Allocator exposes the guest heap allocator for vendor-module glue.
func (ctx *KtfJavaContext) Allocator() *core.Allocator { return ctx.alloc }

// LoadClass returns the guest class for name, materializing it from its
// registered prototype (or synthesizing an array class) on first use.
func (ctx *KtfJavaContext) LoadClass(name string) (*JavaClass, error) {
	class, err := FindLoadedClass(ctx.core, name)
	if err != nil {
		return nil, err
	}
	if class != nil {
		return class, nil
	}

	// Array classes are created dynamically from a fixed prototype.
	if strings.HasPrefix(name, "[") {
		return ctx.loadClassFromProto(name, wipij.ArrayProto())
	}

	proto, ok := wipij.ClassProto(name)
	if !ok {
		return nil, fmt.Errorf("no such class %s", name)
	}

	return ctx.loadClassFromProto(name, proto)
}

func (ctx *KtfJavaContext) loadClassFromProto(name string, proto wipij.JavaClassProto) (*JavaClass, error) {
	var parent *JavaClass
	if proto.ParentClass != "" {
		var err error
		parent, err = ctx.LoadClass(proto.ParentClass)
		if err != nil {
			return nil, fmt.Errorf("load parent of %s: %w", name, err)
		}
	}

	interfaces := make([]*JavaClass, 0, len(proto.Interfaces))
	for _, ifaceName := range proto.Interfaces {
		iface, err := ctx.LoadClass(ifaceName)
		if err != nil {
			return nil, fmt.Errorf("load interface of %s: %w", name, err)
		}
		interfaces = append(interfaces, iface)
	}

	class, err := NewClassFromProto(ctx.core, ctx.alloc, name, proto, parent, interfaces, ctx.registerMethodBody)
	if err != nil {
		return nil, fmt.Errorf("load class %s: %w", name, err)
	}

	if err := RegisterClass(ctx.core, class); err != nil {
		return nil, err
	}
	if _, err := VtableIndex(ctx.core, class); err != nil {
		return nil, err
	}

	return class, nil
}

// registerMethodBody binds a host method body to a trap address. The trap
// skips the reserved word in R0, reads the receiver and as many argument
// words as the signature declares, then runs the body with a fresh bridge.
func (ctx *KtfJavaContext) registerMethodBody(proto wipij.JavaMethodProto) (uint32, error) {
	params, err := wipij.SignatureParams(proto.Signature)
	if err != nil {
		return 0, err
	}
	if len(params) > maxCallArgs {
		return 0, fmt.Errorf("method %s%s declares %d parameters; the guest convention carries at most %d",
			proto.Name, proto.Signature, len(params), maxCallArgs)
	}

	body := proto.Body
	argCount := len(params)

	return ctx.core.RegisterFunction(func(c *core.ArmCore) (uint32, error) {
		// args[0] is the receiver from R1; R0 carries the reserved zero.
		args := make([]uint32, 0, argCount+1)
		for i := 1; i <= argCount+1; i++ {
			arg, err := c.ReadParam(i)
			if err != nil {
				return 0, err
			}
			args = append(args, arg)
		}

		inner := NewContext(c, ctx.alloc, ctx.sys, ctx.exec)
		return body(inner, args)
	})
}

// wipij.JavaContext implementation

// Instantiate allocates an instance of an "L<name>;" descriptor without
// running <init>.
func (ctx *KtfJavaContext) Instantiate(typeDesc string) (wipij.ObjectRef, error) {
	if strings.HasPrefix(typeDesc, "[") {
		return wipij.Null, fmt.Errorf("array descriptor %q: use InstantiateArray", typeDesc)
	}
	if !strings.HasPrefix(typeDesc, "L") || !strings.HasSuffix(typeDesc, ";") {
		return wipij.Null, fmt.Errorf("malformed type descriptor %q", typeDesc)
	}

	class, err := ctx.LoadClass(typeDesc[1 : len(typeDesc)-1])
	if err != nil {
		return wipij.Null, err
	}

	instance, err := NewInstance(ctx.core, ctx.alloc, class)
	if err != nil {
		return wipij.Null, err
	}

	return wipij.ObjectRef(instance.Ptr), nil
}

// InstantiateArray synthesizes "[<elem>" on demand and allocates an array
// with a length header.
func (ctx *KtfJavaContext) InstantiateArray(elemDesc string, count uint32) (wipij.ObjectRef, error) {
	class, err := ctx.LoadClass("[" + elemDesc)
	if err != nil {
		return wipij.Null, err
	}

	instance, err := NewArrayInstance(ctx.core, ctx.alloc, class, count)
	if err != nil {
		return wipij.Null, err
	}

	return wipij.ObjectRef(instance.Ptr), nil
}

// DestroyInstance frees the instance's field block and record.
func (ctx *KtfJavaContext) DestroyInstance(obj wipij.ObjectRef) error {
	instance, err := ctx.instance(obj)
	if err != nil {
		return err
	}
	return instance.Destroy(ctx.alloc)
}

// CallMethod resolves (signature, name) on the receiver's class and
// re-enters the emulator at the method body. R0 carries a reserved zero and
// R1 the receiver; at most two argument words follow in R2 and R3.
func (ctx *KtfJavaContext) CallMethod(obj wipij.ObjectRef, name, signature string, args []uint32) (uint32, error) {
	if len(args) > maxCallArgs {
		return 0, fmt.Errorf("call %s%s: %d args exceed the guest convention limit of %d", name, signature, len(args), maxCallArgs)
	}

	instance, err := ctx.instance(obj)
	if err != nil {
		return 0, err
	}
	class, err := instance.Class()
	if err != nil {
		return 0, err
	}
	className, err := class.Name()
	if err != nil {
		return 0, err
	}

	if log.L != nil {
		log.L.MethodCall(className, name, signature)
	}

	method, err := class.Method(FullName{Name: name, Signature: signature})
	if err != nil {
		return 0, err
	}
	if method == nil {
		if log.L != nil {
			log.L.Error("method not found",
				zap.String("class", className),
				zap.String("method", name),
				zap.String("sig", signature),
			)
		}
		return 0, fmt.Errorf("no method %s%s on %s", name, signature, className)
	}

	fnBody, err := method.FnBody()
	if err != nil {
		return 0, err
	}

	params := append([]uint32{0, uint32(obj)}, args...)

	return ctx.core.RunFunction(fnBody, params)
}

// GetField reads a word-sized field by name.
func (ctx *KtfJavaContext) GetField(obj wipij.ObjectRef, name string) (uint32, error) {
	instance, field, err := ctx.resolveField(obj, name)
	if err != nil {
		return 0, err
	}
	return instance.ReadField(field)
}

// PutField writes a word-sized field by name.
func (ctx *KtfJavaContext) PutField(obj wipij.ObjectRef, name string, value uint32) error {
	instance, field, err := ctx.resolveField(obj, name)
	if err != nil {
		return err
	}
	return instance.WriteField(field, value)
}

// LoadArray copies elements out of a guest array.
func (ctx *KtfJavaContext) LoadArray(arr wipij.ObjectRef, offset, length uint32) ([]uint32, error) {
	instance, err := ctx.instance(arr)
	if err != nil {
		return nil, err
	}
	return instance.LoadArray(offset, length)
}

// StoreArray copies values into a guest array.
func (ctx *KtfJavaContext) StoreArray(arr wipij.ObjectRef, offset uint32, values []uint32) error {
	instance, err := ctx.instance(arr)
	if err != nil {
		return err
	}
	return instance.StoreArray(offset, values)
}

// ArrayLength reads the array length header.
func (ctx *KtfJavaContext) ArrayLength(arr wipij.ObjectRef) (uint32, error) {
	instance, err := ctx.instance(arr)
	if err != nil {
		return 0, err
	}
	return instance.ArrayLength()
}

// Spawn hands a task to the cooperative executor.
func (ctx *KtfJavaContext) Spawn(t task.Task) {
	ctx.exec.Spawn(t)
}

// Backend borrows the host backend aggregate.
func (ctx *KtfJavaContext) Backend() *backend.System {
	return ctx.sys
}

func (ctx *KtfJavaContext) instance(obj wipij.ObjectRef) (*JavaClassInstance, error) {
	if obj == wipij.Null {
		return nil, fmt.Errorf("null object reference")
	}
	return InstanceFromPtr(ctx.core, uint32(obj)), nil
}

func (ctx *KtfJavaContext) resolveField(obj wipij.ObjectRef, name string) (*JavaClassInstance, *JavaField, error) {
	instance, err := ctx.instance(obj)
	if err != nil {
		return nil, nil, err
	}
	class, err := instance.Class()
	if err != nil {
		return nil, nil, err
	}
	field, err := class.FieldLookup(name)
	if err != nil {
		return nil, nil, err
	}
	if field == nil {
		className, _ := class.Name()
		return nil, nil, fmt.Errorf("no field %s on %s", name, className)
	}
	return instance, field, nil
}
