package wipic

import (
	"fmt"

	"github.com/jkki-i/wie/internal/core"
)

// KernelMethods builds the kernel module table. The first entry resolves the
// WIPI C interface aggregator, which is how the client bootstraps every
// other module table.
func KernelMethods(getInterfaces func(ctx *Context) (uint32, error)) []Method {
	return []Method{
		{"OEMC_knlGetInterface", getInterfaces},
		{"OEMC_knlAlloc", knlAlloc},
		{"OEMC_knlCalloc", knlCalloc},
		{"OEMC_knlFree", knlFree},
		{"OEMC_knlGetTotalMemory", knlGetTotalMemory},
		{"OEMC_knlGetFreeMemory", knlGetFreeMemory},
		{"OEMC_knlPrintk", knlPrintk},
		{"OEMC_knlSprintk", knlSprintk},
		{"OEMC_knlGetCurTime", knlGetCurTime},
		{"OEMC_knlGetResourceID", knlGetResourceID},
		{"OEMC_knlGetResource", knlGetResource},
	}
}

func knlAlloc(ctx *Context) (uint32, error) {
	size, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	return ctx.Alloc(size)
}

func knlCalloc(ctx *Context) (uint32, error) {
	count, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	size, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}
	// Allocator zeroes blocks on Alloc.
	return ctx.Alloc(count * size)
}

func knlFree(ctx *Context) (uint32, error) {
	addr, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	if err := ctx.Free(addr); err != nil {
		return 0, err
	}
	return addr, nil
}

func knlGetTotalMemory(ctx *Context) (uint32, error) {
	return 0x100000, nil
}

func knlGetFreeMemory(ctx *Context) (uint32, error) {
	return 0x100000, nil
}

func knlPrintk(ctx *Context) (uint32, error) {
	format, err := ctx.ParamString(0)
	if err != nil {
		return 0, err
	}
	// Format arguments are not expanded; the raw format string is enough
	// for the client logs seen so far.
	fmt.Println(format)
	return 0, nil
}

func knlSprintk(ctx *Context) (uint32, error) {
	dest, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	format, err := ctx.ParamString(1)
	if err != nil {
		return 0, err
	}
	if err := core.WriteCString(ctx.core, dest, format); err != nil {
		return 0, err
	}
	return uint32(len(format)), nil
}

func knlGetCurTime(ctx *Context) (uint32, error) {
	return uint32(ctx.Backend().Time().Ticks()), nil
}

func knlGetResourceID(ctx *Context) (uint32, error) {
	path, err := ctx.ParamString(0)
	if err != nil {
		return 0, err
	}
	sizeOut, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}

	id, ok := ctx.Backend().Resource().Id(path)
	if !ok {
		// -1 means not found; the client checks for it.
		return 0xFFFFFFFF, nil
	}

	if sizeOut != 0 {
		size, err := ctx.Backend().Resource().Size(id)
		if err != nil {
			return 0, err
		}
		if err := core.WriteU32(ctx.core, sizeOut, size); err != nil {
			return 0, err
		}
	}

	return id, nil
}

func knlGetResource(ctx *Context) (uint32, error) {
	id, err := ctx.Param(0)
	if err != nil {
		return 0, err
	}
	buf, err := ctx.Param(1)
	if err != nil {
		return 0, err
	}
	bufSize, err := ctx.Param(2)
	if err != nil {
		return 0, err
	}

	data, err := ctx.Backend().Resource().Data(id)
	if err != nil {
		return 0, err
	}
	if uint32(len(data)) > bufSize {
		return 0xFFFFFFFF, nil
	}

	if err := ctx.core.WriteBytes(buf, data); err != nil {
		return 0, err
	}

	return 0, nil
}
