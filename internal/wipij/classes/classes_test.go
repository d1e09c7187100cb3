package classes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/core"
	javabridge "github.com/jkki-i/wie/internal/ktf/java"
	"github.com/jkki-i/wie/internal/task"
	"github.com/jkki-i/wie/internal/wipij"
)

func newTestContext(t *testing.T) *javabridge.KtfJavaContext {
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

	require.NoError(t, javabridge.InitContextData(c, alloc))

	sys := backend.NewSystem("classes.test", t.TempDir(), &backend.NullWindow{W: 176, H: 220})
	return javabridge.NewContext(c, alloc, sys, task.NewExecutor())
}

func TestJletInitWiresDisplayAndQueue(t *testing.T) {
	ctx := newTestContext(t)

	jlet, err := ctx.Instantiate("Lorg/kwis/msp/lcdui/Jlet;")
	require.NoError(t, err)

	_, err = ctx.CallMethod(jlet, "<init>", "()V", nil)
	require.NoError(t, err)

	dis, err := ctx.GetField(jlet, "dis")
	require.NoError(t, err)
	require.NotZero(t, dis, "display not wired")

	eq, err := ctx.GetField(jlet, "eq")
	require.NoError(t, err)
	require.NotZero(t, eq, "event queue not wired")

	// getEventQueue returns the stored queue.
	got, err := ctx.CallMethod(jlet, "getEventQueue", "()Lorg/kwis/msp/lcdui/EventQueue;", nil)
	require.NoError(t, err)
	require.Equal(t, eq, got)

	// The initialized Jlet becomes the active one.
	active, err := ctx.CallMethod(jlet, "getActiveJlet", "()Lorg/kwis/msp/lcdui/Jlet;", nil)
	require.NoError(t, err)
	require.Equal(t, uint32(jlet), active)
}

func TestDisplayDimensions(t *testing.T) {
	ctx := newTestContext(t)

	jlet, err := ctx.Instantiate("Lorg/kwis/msp/lcdui/Jlet;")
	require.NoError(t, err)
	_, err = ctx.CallMethod(jlet, "<init>", "()V", nil)
	require.NoError(t, err)

	display, err := ctx.GetField(jlet, "dis")
	require.NoError(t, err)

	width, err := ctx.CallMethod(wipij.ObjectRef(display), "getWidth", "()I", nil)
	require.NoError(t, err)
	require.Equal(t, uint32(176), width)

	height, err := ctx.CallMethod(wipij.ObjectRef(display), "getHeight", "()I", nil)
	require.NoError(t, err)
	require.Equal(t, uint32(220), height)
}

func TestEventQueueDelivery(t *testing.T) {
	ctx := newTestContext(t)

	jlet, err := ctx.Instantiate("Lorg/kwis/msp/lcdui/Jlet;")
	require.NoError(t, err)
	_, err = ctx.CallMethod(jlet, "<init>", "()V", nil)
	require.NoError(t, err)

	eq, err := ctx.GetField(jlet, "eq")
	require.NoError(t, err)

	ctx.Backend().PushEvent(backend.Event{Kind: backend.EventKeyDown, Arg: 42})

	out, err := ctx.InstantiateArray("I", 2)
	require.NoError(t, err)

	_, err = ctx.CallMethod(wipij.ObjectRef(eq), "getNextEvent", "([I)V", []uint32{uint32(out)})
	require.NoError(t, err)

	words, err := ctx.LoadArray(out, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []uint32{uint32(backend.EventKeyDown), 42}, words)
}

func TestStringFromHost(t *testing.T) {
	ctx := newTestContext(t)

	s, err := NewString(ctx, "wipi")
	require.NoError(t, err)

	length, err := ctx.CallMethod(s, "length", "()I", nil)
	require.NoError(t, err)
	require.Equal(t, uint32(4), length)

	ch, err := ctx.CallMethod(s, "charAt", "(I)C", []uint32{1})
	require.NoError(t, err)
	require.Equal(t, uint32('i'), ch)
}

func TestRuntimeMemoryQueries(t *testing.T) {
	ctx := newTestContext(t)

	rt, err := ctx.Instantiate("Ljava/lang/Runtime;")
	require.NoError(t, err)

	total, err := ctx.CallMethod(rt, "totalMemory", "()I", nil)
	require.NoError(t, err)
	require.NotZero(t, total)
}
