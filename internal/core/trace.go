package core

import (
	"encoding/binary"
	"fmt"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
	"golang.org/x/arch/arm/armasm"

	"github.com/jkki-i/wie/internal/log"
)

// EnableTrace installs a per-instruction hook that logs each executed
// instruction. ARM-mode instructions are disassembled with x/arch; Thumb halfwords are shown raw. This is a debug
// aid and slows emulation considerably.
func (c *ArmCore) EnableTrace() error {
	if c.tracing {
		return nil
	}

	hook, err := c.uc.HookAdd(uc.HOOK_CODE, func(mu uc.Unicorn, addr uint64, size uint32) {
		if log.L == nil {
			return
		}
		log.L.Trace(uint32(addr), "insn", c.disasm(uint32(addr), size), "")
	}, 1, 0)
	if err != nil {
		return fmt.Errorf("add trace hook: %w", err)
	}

	c.traceHook = hook
	c.tracing = true

	return nil
}

// DisableTrace removes the per-instruction hook.
func (c *ArmCore) DisableTrace() error {
	if !c.tracing {
		return nil
	}
	if err := c.uc.HookDel(c.traceHook); err != nil {
		return err
	}
	c.tracing = false
	return nil
}

func (c *ArmCore) disasm(addr, size uint32) string {
	data, err := c.ReadBytes(addr, size)
	if err != nil {
		return fmt.Sprintf("%#x: <unreadable>", addr)
	}

	if size == 4 {
		if inst, err := armasm.Decode(data, armasm.ModeARM); err == nil {
			return fmt.Sprintf("%#x: %s", addr, inst.String())
		}
	}

	if size == 2 {
		return fmt.Sprintf("%#x: .thumb %#04x", addr, binary.LittleEndian.Uint16(data))
	}

	return fmt.Sprintf("%#x: .word % x", addr, data)
}
