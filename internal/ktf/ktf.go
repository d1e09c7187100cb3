// Package ktf runs applications in the KTF vendor format: the original ARM
// client binary executes under the CPU emulator while platform calls are
// intercepted and served by host implementations.
package ktf

import (
	"fmt"

	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/core"
	javabridge "github.com/jkki-i/wie/internal/ktf/java"
	"github.com/jkki-i/wie/internal/log"
	"github.com/jkki-i/wie/internal/task"
	"github.com/jkki-i/wie/internal/wipic"
)

// Module is one loaded KTF application.
type Module struct {
	core  *core.ArmCore
	alloc *core.Allocator
	sys   *backend.System
	exec  *task.Executor

	imageBase uint32
	jctx      *javabridge.KtfJavaContext
	cctx      *wipic.Context
}

// Load maps the client binary and initializes the guest heap, the PEB
// registries, and the bridge contexts.
func Load(clientBin []byte, sys *backend.System, exec *task.Executor) (*Module, error) {
	c, err := core.New()
	if err != nil {
		return nil, err
	}

	alloc, err := core.NewAllocator(c)
	if err != nil {
		return nil, fmt.Errorf("init allocator: %w", err)
	}

	// Map the image with extra room for zero-initialized data.
	imageBase, err := c.Load(clientBin, uint32(len(clientBin))+0x10000)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}

	// The client runs on its own guest stack.
	stack, err := alloc.Alloc(0x10000)
	if err != nil {
		return nil, err
	}
	c.SetSP(stack + 0x10000)

	if err := javabridge.InitContextData(c, alloc); err != nil {
		return nil, fmt.Errorf("init java context data: %w", err)
	}

	m := &Module{
		core:      c,
		alloc:     alloc,
		sys:       sys,
		exec:      exec,
		imageBase: imageBase,
	}
	m.jctx = javabridge.NewContext(c, alloc, sys, exec)
	m.cctx = wipic.NewContext(c, alloc, sys, exec)

	return m, nil
}

// Core returns the ARM core.
func (m *Module) Core() *core.ArmCore { return m.core }

// JavaContext returns the Java bridge.
func (m *Module) JavaContext() *javabridge.KtfJavaContext { return m.jctx }

// CContext returns the WIPI C context.
func (m *Module) CContext() *wipic.Context { return m.cctx }

// ImageBase returns the guest address the client was mapped at.
func (m *Module) ImageBase() uint32 { return m.imageBase }

// BindInterfaces materializes the guest-visible WIPI C and JB interface
// structs and returns their addresses for the client's init record.
func (m *Module) BindInterfaces() (cInterface, jbInterface uint32, err error) {
	cInterface, err = GetWipiCKnlInterface(m.cctx)
	if err != nil {
		return 0, 0, fmt.Errorf("bind C interface: %w", err)
	}

	jbInterface, err = GetWipiJBInterface(m.jctx)
	if err != nil {
		return 0, 0, fmt.Errorf("bind JB interface: %w", err)
	}

	return cInterface, jbInterface, nil
}

// StartApp loads the application's main class and spawns its startup
// sequence on the executor: <init>, then startApp with an empty string
// array, driven through the bridge.
func (m *Module) StartApp(mainClassName string) error {
	jctx := m.jctx

	jctx.Spawn(func() error {
		obj, err := jctx.Instantiate("L" + mainClassName + ";")
		if err != nil {
			return fmt.Errorf("instantiate %s: %w", mainClassName, err)
		}
		if _, err := jctx.CallMethod(obj, "<init>", "()V", nil); err != nil {
			return fmt.Errorf("%s.<init>: %w", mainClassName, err)
		}

		args, err := jctx.InstantiateArray("Ljava/lang/String;", 0)
		if err != nil {
			return err
		}
		if _, err := jctx.CallMethod(obj, "startApp", "([Ljava/lang/String;)V", []uint32{uint32(args)}); err != nil {
			return fmt.Errorf("%s.startApp: %w", mainClassName, err)
		}

		return nil
	})

	if log.L != nil {
		log.L.Info("app start queued", log.Fn(mainClassName))
	}

	return nil
}
