// Package wipic implements the WIPI C API surface: per-module method tables
// (kernel, graphics, database, media, and numbered stubs) materialized as
// guest function-pointer tables backed by host implementations.
package wipic

import (
	"fmt"

	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/log"
	"github.com/jkki-i/wie/internal/task"
)

// Context is the execution context handed to C method bodies.
type Context struct {
	core  *core.ArmCore
	alloc *core.Allocator
	sys   *backend.System
	exec  *task.Executor

	databases map[uint32]*backend.Database
	nextDB    uint32
}

// NewContext creates a C module context.
func NewContext(c *core.ArmCore, alloc *core.Allocator, sys *backend.System, exec *task.Executor) *Context {
	return &Context{
		core:      c,
		alloc:     alloc,
		sys:       sys,
		exec:      exec,
		databases: make(map[uint32]*backend.Database),
		nextDB:    1,
	}
}

// Core returns the ARM core.
func (ctx *Context) Core() *core.ArmCore { return ctx.core }

// Alloc allocates guest heap memory.
func (ctx *Context) Alloc(size uint32) (uint32, error) { return ctx.alloc.Alloc(size) }

// Free releases guest heap memory.
func (ctx *Context) Free(addr uint32) error { return ctx.alloc.Free(addr) }

// Backend returns the host backend aggregate.
func (ctx *Context) Backend() *backend.System { return ctx.sys }

// Param reads the i-th call parameter.
func (ctx *Context) Param(i int) (uint32, error) { return ctx.core.ReadParam(i) }

// ParamString reads the i-th parameter as a guest C string.
func (ctx *Context) ParamString(i int) (string, error) { return core.ReadParamString(ctx.core, i) }

// Method is one entry of a module method table.
type Method struct {
	Name string
	Body func(ctx *Context) (uint32, error)
}

// WriteMethodTable registers every method as a trap function and writes the
// resulting pointer table into guest memory, returning its address.
func WriteMethodTable(ctx *Context, category string, methods []Method) (uint32, error) {
	address, err := ctx.Alloc(uint32(len(methods)) * 4)
	if err != nil {
		return 0, err
	}

	cursor := address
	for _, method := range methods {
		m := method
		trap, err := ctx.core.RegisterFunction(func(c *core.ArmCore) (uint32, error) {
			if log.L != nil {
				log.L.Trace(c.PC(), category, m.Name, "")
			}
			return m.Body(ctx)
		})
		if err != nil {
			return 0, fmt.Errorf("register %s: %w", method.Name, err)
		}

		if err := core.WriteU32(ctx.core, cursor, trap); err != nil {
			return 0, err
		}
		cursor += 4
	}

	return address, nil
}
