package ktf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/core"
	javabridge "github.com/jkki-i/wie/internal/ktf/java"
	"github.com/jkki-i/wie/internal/task"
	"github.com/jkki-i/wie/internal/wipic"
	"github.com/jkki-i/wie/internal/wipij"
)

func init() {
	wipij.Register("test/Counted", func() wipij.JavaClassProto {
		return wipij.JavaClassProto{
			Methods: []wipij.JavaMethodProto{
				{Name: "<init>", Signature: "()V", Body: countedInit},
			},
			Fields: []wipij.JavaFieldProto{
				{Name: "inited", Signature: "I"},
			},
		}
	})
}

func countedInit(ctx wipij.JavaContext, args []uint32) (uint32, error) {
	this := wipij.ObjectRef(args[0])
	return 0, ctx.PutField(this, "inited", 1)
}

// Minimal thumb client: BX LR.
var clientStub = []byte{0x70, 0x47}

func newTestModule(t *testing.T) *Module {
	t.Helper()

	sys := backend.NewSystem("test", t.TempDir(), &backend.NullWindow{W: 240, H: 320})
	m, err := Load(clientStub, sys, task.NewExecutor())
	require.NoError(t, err)
	t.Cleanup(func() { m.Core().Close() })

	return m
}

func TestJBInterfaceLayout(t *testing.T) {
	m := newTestModule(t)

	addr, err := GetWipiJBInterface(m.JavaContext())
	require.NoError(t, err)

	for slot := uint32(0); slot < jbInterfaceWords; slot++ {
		word, err := core.ReadU32(m.Core(), addr+slot*4)
		require.NoError(t, err)

		switch slot {
		case jbSlotFnUnk1, jbSlotGetJavaMethod, jbSlotFnUnk3:
			require.NotZero(t, word, "slot %d must carry a trap address", slot)
			require.Equal(t, uint32(1), word&1, "trap addresses carry the thumb bit")
		default:
			require.Zero(t, word, "slot %d is reserved", slot)
		}
	}
}

func TestGetJavaMethodTrap(t *testing.T) {
	m := newTestModule(t)
	jctx := m.JavaContext()

	class, err := jctx.LoadClass("test/Counted")
	require.NoError(t, err)

	// Encode the lookup name the way the client does, tag and all.
	nameBlob := javabridge.FullName{Tag: 72, Name: "<init>", Signature: "()V"}.Bytes()
	ptrName, err := jctx.Allocator().Alloc(uint32(len(nameBlob)))
	require.NoError(t, err)
	require.NoError(t, m.Core().WriteBytes(ptrName, nameBlob))

	trap := jbGetJavaMethod(jctx)

	// Drive the trap through the CPU so parameters travel in registers.
	trapAddr, err := m.Core().RegisterFunction(trap)
	require.NoError(t, err)

	ptrMethod, err := m.Core().RunFunction(trapAddr, []uint32{class.Ptr, ptrName})
	require.NoError(t, err)
	require.NotZero(t, ptrMethod)

	method := javabridge.MethodFromPtr(m.Core(), ptrMethod)
	fullName, err := method.FullName()
	require.NoError(t, err)
	require.Equal(t, "<init>", fullName.Name)

	// Unknown names resolve to a null method pointer, not an error.
	missingBlob := javabridge.FullName{Name: "missing", Signature: "()V"}.Bytes()
	ptrMissing, err := jctx.Allocator().Alloc(uint32(len(missingBlob)))
	require.NoError(t, err)
	require.NoError(t, m.Core().WriteBytes(ptrMissing, missingBlob))

	result, err := m.Core().RunFunction(trapAddr, []uint32{class.Ptr, ptrMissing})
	require.NoError(t, err)
	require.Zero(t, result)
}

func TestInstantiateJavaClassRunsInit(t *testing.T) {
	m := newTestModule(t)
	jctx := m.JavaContext()

	class, err := jctx.LoadClass("test/Counted")
	require.NoError(t, err)

	trapAddr, err := m.Core().RegisterFunction(InstantiateJavaClass(jctx))
	require.NoError(t, err)

	ptrInstance, err := m.Core().RunFunction(trapAddr, []uint32{class.Ptr})
	require.NoError(t, err)
	require.NotZero(t, ptrInstance)

	inited, err := jctx.GetField(wipij.ObjectRef(ptrInstance), "inited")
	require.NoError(t, err)
	require.Equal(t, uint32(1), inited, "<init> must have run")
}

func TestLoadJavaClassTrap(t *testing.T) {
	m := newTestModule(t)
	jctx := m.JavaContext()

	target, err := jctx.Allocator().Alloc(4)
	require.NoError(t, err)

	namePtr, err := jctx.Allocator().Alloc(32)
	require.NoError(t, err)
	require.NoError(t, core.WriteCString(m.Core(), namePtr, "test/Counted"))

	trapAddr, err := m.Core().RegisterFunction(LoadJavaClass(jctx))
	require.NoError(t, err)

	_, err = m.Core().RunFunction(trapAddr, []uint32{target, namePtr})
	require.NoError(t, err)

	ptrClass, err := core.ReadU32(m.Core(), target)
	require.NoError(t, err)
	require.NotZero(t, ptrClass)

	name, err := javabridge.ClassFromPtr(m.Core(), ptrClass).Name()
	require.NoError(t, err)
	require.Equal(t, "test/Counted", name)
}

func TestCInterfaceAggregator(t *testing.T) {
	m := newTestModule(t)

	knl, err := GetWipiCKnlInterface(m.CContext())
	require.NoError(t, err)
	require.NotZero(t, knl)

	// Entry 0 of the kernel table resolves the aggregator.
	getInterface, err := core.ReadU32(m.Core(), knl)
	require.NoError(t, err)
	require.NotZero(t, getInterface)

	aggregator, err := m.Core().RunFunction(getInterface, nil)
	require.NoError(t, err)
	require.NotZero(t, aggregator)

	// Thirteen module tables, all non-null.
	for i := uint32(0); i < 13; i++ {
		table, err := core.ReadU32(m.Core(), aggregator+i*4)
		require.NoError(t, err)
		require.NotZero(t, table, "module table %d", i)
	}
}

func TestKernelAllocTrap(t *testing.T) {
	m := newTestModule(t)

	knl, err := GetWipiCKnlInterface(m.CContext())
	require.NoError(t, err)

	// Entry 1 is OEMC_knlAlloc.
	allocTrap, err := core.ReadU32(m.Core(), knl+4)
	require.NoError(t, err)

	addr, err := m.Core().RunFunction(allocTrap, []uint32{0x100})
	require.NoError(t, err)
	require.NotZero(t, addr)
	require.Zero(t, addr%4)

	// Entry 3 is OEMC_knlFree.
	freeTrap, err := core.ReadU32(m.Core(), knl+12)
	require.NoError(t, err)

	freed, err := m.Core().RunFunction(freeTrap, []uint32{addr})
	require.NoError(t, err)
	require.Equal(t, addr, freed)
}

func TestStartAppDrivesBridge(t *testing.T) {
	wipij.Register("test/MainApp", func() wipij.JavaClassProto {
		return wipij.JavaClassProto{
			Methods: []wipij.JavaMethodProto{
				{Name: "<init>", Signature: "()V", Body: func(ctx wipij.JavaContext, args []uint32) (uint32, error) {
					return 0, nil
				}},
				{Name: "startApp", Signature: "([Ljava/lang/String;)V", Body: func(ctx wipij.JavaContext, args []uint32) (uint32, error) {
					return 0, ctx.PutField(wipij.ObjectRef(args[0]), "started", args[1])
				}},
			},
			Fields: []wipij.JavaFieldProto{
				{Name: "started", Signature: "I"},
			},
		}
	})

	sys := backend.NewSystem("test", t.TempDir(), &backend.NullWindow{W: 240, H: 320})
	exec := task.NewExecutor()
	m, err := Load(clientStub, sys, exec)
	require.NoError(t, err)
	defer m.Core().Close()

	require.NoError(t, m.StartApp("test/MainApp"))
	exec.Run()

	class, err := javabridge.FindLoadedClass(m.Core(), "test/MainApp")
	require.NoError(t, err)
	require.NotNil(t, class, "main class must be loaded by the startup task")
}

func TestStubTableDense(t *testing.T) {
	methods := wipic.StubMethods(3)
	require.Len(t, methods, 64)
	for _, m := range methods {
		require.NotNil(t, m.Body)
	}
}
