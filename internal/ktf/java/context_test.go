package java

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/task"
	"github.com/jkki-i/wie/internal/wipij"
)

// These tests drive the full bridge through the emulator: platform method
// bodies are bound to trap addresses and invoked by re-entering the CPU.

func init() {
	wipij.Register("test/Foo", func() wipij.JavaClassProto {
		return wipij.JavaClassProto{
			Methods: []wipij.JavaMethodProto{
				{Name: "<init>", Signature: "()V", Body: fooInit},
				{Name: "getX", Signature: "()I", Body: fooGetX},
				{Name: "callsH2", Signature: "()I", Body: fooCallsH2},
				{Name: "h2", Signature: "()I", Body: fooH2},
			},
			Fields: []wipij.JavaFieldProto{
				{Name: "x", Signature: "I"},
			},
		}
	})

	wipij.Register("test/Holder", func() wipij.JavaClassProto {
		return wipij.JavaClassProto{
			Fields: []wipij.JavaFieldProto{
				{Name: "child", Signature: "Ltest/Foo;"},
			},
		}
	})
}

func fooInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	return 0, ctx.PutField(this, "x", 1)
}

func fooGetX(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	return ctx.GetField(this, "x")
}

// fooCallsH2 re-enters guest dispatch from inside a host method.
func fooCallsH2(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	return ctx.CallMethod(this, "h2", "()I", nil)
}

func fooH2(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	return 42, nil
}

func newTestContext(t *testing.T) *KtfJavaContext {
	t.Helper()

	c, err := core.New()
	if err != nil {
		t.Fatalf("create core: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	alloc, err := core.NewAllocator(c)
	require.NoError(t, err)

	stack, err := alloc.Alloc(0x1000)
	require.NoError(t, err)
	c.SetSP(stack + 0x1000)

	require.NoError(t, InitContextData(c, alloc))

	sys := backend.NewSystem("test", t.TempDir(), &backend.NullWindow{W: 240, H: 320})
	return NewContext(c, alloc, sys, task.NewExecutor())
}

func TestInstantiateAndCall(t *testing.T) {
	ctx := newTestContext(t)

	obj, err := ctx.Instantiate("Ltest/Foo;")
	require.NoError(t, err)
	require.NotEqual(t, wipij.Null, obj)

	// Instantiate must not have run <init>: x is still zero.
	x, err := ctx.GetField(obj, "x")
	require.NoError(t, err)
	require.Zero(t, x)

	_, err = ctx.CallMethod(obj, "<init>", "()V", nil)
	require.NoError(t, err)

	got, err := ctx.CallMethod(obj, "getX", "()I", nil)
	require.NoError(t, err)
	require.Equal(t, uint32(1), got)
}

func TestInstantiateRejectsArrays(t *testing.T) {
	ctx := newTestContext(t)

	_, err := ctx.Instantiate("[I")
	require.Error(t, err)

	_, err = ctx.Instantiate("Foo")
	require.Error(t, err)
}

func TestHostToHostReentry(t *testing.T) {
	ctx := newTestContext(t)

	obj, err := ctx.Instantiate("Ltest/Foo;")
	require.NoError(t, err)

	// callsH2 is a host method that re-enters the emulator to dispatch h2,
	// another host method. The inner result must surface unchanged.
	got, err := ctx.CallMethod(obj, "callsH2", "()I", nil)
	require.NoError(t, err)
	require.Equal(t, uint32(42), got)
}

func TestBridgeArrayRoundTrip(t *testing.T) {
	ctx := newTestContext(t)

	arr, err := ctx.InstantiateArray("B", 4)
	require.NoError(t, err)

	require.NoError(t, ctx.StoreArray(arr, 0, []uint32{10, 20, 30, 40}))

	length, err := ctx.ArrayLength(arr)
	require.NoError(t, err)
	require.Equal(t, uint32(4), length)

	got, err := ctx.LoadArray(arr, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []uint32{20, 30}, got)
}

func TestFieldObjectCrossReference(t *testing.T) {
	ctx := newTestContext(t)

	holder, err := ctx.Instantiate("Ltest/Holder;")
	require.NoError(t, err)
	foo, err := ctx.Instantiate("Ltest/Foo;")
	require.NoError(t, err)

	require.NoError(t, ctx.PutField(holder, "child", uint32(foo)))

	got, err := ctx.GetField(holder, "child")
	require.NoError(t, err)
	require.Equal(t, uint32(foo), got)
}

func TestArrayClassSynthesis(t *testing.T) {
	ctx := newTestContext(t)

	_, err := ctx.InstantiateArray("Ltest/Foo;", 0)
	require.NoError(t, err)

	class, err := FindLoadedClass(ctx.Core(), "[Ltest/Foo;")
	require.NoError(t, err)
	require.NotNil(t, class, "array class must be registered after first use")

	// A second instantiation reuses the same class.
	arr, err := ctx.InstantiateArray("Ltest/Foo;", 2)
	require.NoError(t, err)

	instance := InstanceFromPtr(ctx.Core(), uint32(arr))
	arrClass, err := instance.Class()
	require.NoError(t, err)
	require.Equal(t, class.Ptr, arrClass.Ptr)
}

func TestDestroyInstance(t *testing.T) {
	ctx := newTestContext(t)

	obj, err := ctx.Instantiate("Ltest/Foo;")
	require.NoError(t, err)

	require.NoError(t, ctx.DestroyInstance(obj))
}

func TestCallMethodMissing(t *testing.T) {
	ctx := newTestContext(t)

	obj, err := ctx.Instantiate("Ltest/Foo;")
	require.NoError(t, err)

	_, err = ctx.CallMethod(obj, "nope", "()V", nil)
	require.Error(t, err)
}

func TestCallMethodTooManyArgs(t *testing.T) {
	ctx := newTestContext(t)

	obj, err := ctx.Instantiate("Ltest/Foo;")
	require.NoError(t, err)

	_, err = ctx.CallMethod(obj, "getX", "()I", []uint32{1, 2, 3})
	require.Error(t, err)
}

func TestLoadClassUnknown(t *testing.T) {
	ctx := newTestContext(t)

	_, err := ctx.LoadClass("does/not/Exist")
	require.Error(t, err)
}

func TestCalleeSavedRegistersSurviveReentry(t *testing.T) {
	ctx := newTestContext(t)
	c := ctx.Core()

	obj, err := ctx.Instantiate("Ltest/Foo;")
	require.NoError(t, err)

	before := c.SaveContext()

	_, err = ctx.CallMethod(obj, "callsH2", "()I", nil)
	require.NoError(t, err)

	after := c.SaveContext()
	require.Equal(t, before.R4, after.R4)
	require.Equal(t, before.R5, after.R5)
	require.Equal(t, before.R6, after.R6)
	require.Equal(t, before.R7, after.R7)
	require.Equal(t, before.R8, after.R8)
	require.Equal(t, before.SB, after.SB)
	require.Equal(t, before.SL, after.SL)
	require.Equal(t, before.FP, after.FP)
}
