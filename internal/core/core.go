// Package core provides ARM emulation for WIPI client binaries using
// Unicorn Engine.
//
// The CPU runs Thumb code from the client image. Host functions are bound to
// trap addresses inside a reserved function region; a code hook halts
// emulation whenever PC enters that region, and RunFunction's loop dispatches
// to the registered Go function before resuming the guest.
package core

import (
	"fmt"
	"strings"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
	"go.uber.org/zap"

	"github.com/jkki-i/wie/internal/log"
)

// Guest memory layout constants
const (
	ImageBase     = 0x00100000
	FunctionsBase = 0x71000000
	FunctionsSize = 0x00001000
	HeapBase      = 0x40000000
	HeapSize      = 0x01000000 // 16MB heap
	PEBBase       = 0x7FF00000
	PEBSize       = 0x00001000

	// RunFunctionLR is the sentinel return address for RunFunction calls.
	RunFunctionLR = 0x7F000000
)

// cpsrUsr32 is the initial CPSR value (usr32 mode).
const cpsrUsr32 = 0x40000010

// ArmCore wraps Unicorn for ARM/Thumb emulation.
//
// ArmCore is single-threaded. Registered functions run between emulation
// steps and may re-enter RunFunction; they must never be invoked from a
// different goroutine.
type ArmCore struct {
	uc uc.Unicorn

	functions map[uint32]RegisteredFunction
	fnCount   int

	imageSize uint32

	traceHook uc.Hook
	tracing   bool
}

// New creates an ARM core with the function region mapped and hooked.
func New() (*ArmCore, error) {
	mu, err := uc.NewUnicorn(uc.ARCH_ARM, uc.MODE_LITTLE_ENDIAN)
	if err != nil {
		return nil, fmt.Errorf("create unicorn: %w", err)
	}

	c := &ArmCore{
		uc:        mu,
		functions: make(map[uint32]RegisteredFunction),
	}

	if err := mu.MemMapProt(FunctionsBase, FunctionsSize, uc.PROT_READ|uc.PROT_EXEC); err != nil {
		mu.Close()
		return nil, fmt.Errorf("map function region: %w", err)
	}

	// Halt emulation as soon as PC enters the trap region. The dispatch to
	// the registered function happens outside the hook, in runSome.
	_, err = mu.HookAdd(uc.HOOK_CODE, func(mu uc.Unicorn, addr uint64, size uint32) {
		mu.Stop()
	}, FunctionsBase, FunctionsBase+FunctionsSize-1)
	if err != nil {
		mu.Close()
		return nil, fmt.Errorf("add code hook: %w", err)
	}

	_, err = mu.HookAdd(uc.HOOK_MEM_INVALID, c.memHook, 1, 0)
	if err != nil {
		mu.Close()
		return nil, fmt.Errorf("add mem hook: %w", err)
	}

	if err := mu.RegWrite(uc.ARM_REG_CPSR, cpsrUsr32); err != nil {
		mu.Close()
		return nil, fmt.Errorf("set CPSR: %w", err)
	}

	return c, nil
}

// Close releases emulator resources.
func (c *ArmCore) Close() error {
	return c.uc.Close()
}

// Load maps the client image at ImageBase and writes data into it.
// mapSize covers the image plus its zero-initialized tail.
func (c *ArmCore) Load(data []byte, mapSize uint32) (uint32, error) {
	size := RoundUp(mapSize, 0x1000)
	if err := c.uc.MemMap(ImageBase, uint64(size)); err != nil {
		return 0, fmt.Errorf("map image (%#x bytes): %w", size, err)
	}
	if err := c.uc.MemWrite(ImageBase, data); err != nil {
		return 0, fmt.Errorf("write image: %w", err)
	}
	c.imageSize = size

	return ImageBase, nil
}

// Map maps a read/write region at the given guest address.
func (c *ArmCore) Map(addr, size uint32) error {
	if log.L != nil {
		log.L.Debug("map", log.Addr(addr), log.Size(size))
	}
	return c.uc.MemMapProt(uint64(addr), uint64(size), uc.PROT_READ|uc.PROT_WRITE)
}

// RegisterFunction appends a trap stub for fn in the function region and
// returns its callable address (with the Thumb bit set).
func (c *ArmCore) RegisterFunction(fn RegisteredFunction) (uint32, error) {
	addr := uint32(FunctionsBase + c.fnCount*2)
	if addr >= FunctionsBase+FunctionsSize {
		return 0, fmt.Errorf("function region exhausted (%d registered)", c.fnCount)
	}

	// Thumb BX LR. Never actually executed: the code hook halts at entry and
	// the dispatcher writes PC itself.
	if err := c.uc.MemWrite(uint64(addr), []byte{0x70, 0x47}); err != nil {
		return 0, fmt.Errorf("write trap stub: %w", err)
	}

	c.functions[addr] = fn
	c.fnCount++

	if log.L != nil {
		log.L.Debug("registered function", log.Addr(addr))
	}

	return addr | 1, nil
}

// runSome advances the CPU from the current PC until it halts, then
// dispatches if it halted inside the trap region.
func (c *ArmCore) runSome() error {
	pc := c.PC()

	if err := c.uc.Start(uint64(pc|1), RunFunctionLR); err != nil {
		return fmt.Errorf("emulation error at %#x: %w\n%s", pc, err, c.DumpRegStack())
	}

	cur := c.PC()
	if cur >= FunctionsBase && cur < FunctionsBase+FunctionsSize {
		fn, ok := c.functions[cur]
		if !ok {
			return fmt.Errorf("no function registered at trap %#x", cur)
		}

		lr := c.LR()
		result, err := fn(c)
		if err != nil {
			return fmt.Errorf("registered function at %#x: %w", cur, err)
		}
		c.writeResult(result, lr)
	}

	return nil
}

// RunFunction calls guest code at addr with the given parameters and drives
// the CPU until it returns to RunFunctionLR. Up to four parameters go in
// R0-R3; the rest are pushed on the stack. The previous CPU context is
// restored on every exit path.
func (c *ArmCore) RunFunction(addr uint32, params []uint32) (uint32, error) {
	previous := c.SaveContext()
	defer c.RestoreContext(previous)

	for i, p := range params {
		if i < 4 {
			c.setReg(paramRegs[i], p)
			continue
		}
		sp := c.SP() - 4
		if err := WriteU32(c, sp, p); err != nil {
			return 0, fmt.Errorf("push param %d: %w", i, err)
		}
		c.setReg(uc.ARM_REG_SP, sp)
	}

	c.setReg(uc.ARM_REG_PC, addr)
	c.setReg(uc.ARM_REG_LR, RunFunctionLR)

	for {
		if c.PC() == RunFunctionLR {
			break
		}
		if err := c.runSome(); err != nil {
			return 0, err
		}
	}

	return c.reg(uc.ARM_REG_R0), nil
}

var paramRegs = []int{uc.ARM_REG_R0, uc.ARM_REG_R1, uc.ARM_REG_R2, uc.ARM_REG_R3}

// ReadParam reads the i-th call parameter under the ARM calling convention:
// R0-R3 for the first four, then the stack.
func (c *ArmCore) ReadParam(i int) (uint32, error) {
	if i < 4 {
		return c.reg(paramRegs[i]), nil
	}
	return ReadU32(c, c.SP()+4*uint32(i-4))
}

// writeResult stores a registered function's result and resumes at lr.
func (c *ArmCore) writeResult(result, lr uint32) {
	c.setReg(uc.ARM_REG_R0, result)
	c.setReg(uc.ARM_REG_PC, lr)
}

// memHook reports invalid accesses with a register dump. Fetches inside the
// trap region are expected and not treated as faults.
func (c *ArmCore) memHook(mu uc.Unicorn, access int, addr uint64, size int, value int64) bool {
	if access == uc.MEM_FETCH_PROT && addr >= FunctionsBase && addr < FunctionsBase+FunctionsSize {
		return true
	}

	if log.L != nil {
		log.L.Error("invalid memory access",
			zap.Int("access", access),
			zap.Uint64("address", addr),
			zap.Int("size", size),
			zap.Int64("value", value),
			zap.String("dump", c.DumpRegStack()),
		)
	}

	return false
}

// Register accessors

func (c *ArmCore) reg(r int) uint32 {
	val, _ := c.uc.RegRead(r)
	return uint32(val)
}

func (c *ArmCore) setReg(r int, val uint32) {
	_ = c.uc.RegWrite(r, uint64(val))
}

// PC returns the program counter.
func (c *ArmCore) PC() uint32 { return c.reg(uc.ARM_REG_PC) }

// SP returns the stack pointer.
func (c *ArmCore) SP() uint32 { return c.reg(uc.ARM_REG_SP) }

// SetSP sets the stack pointer.
func (c *ArmCore) SetSP(val uint32) { c.setReg(uc.ARM_REG_SP, val) }

// LR returns the link register.
func (c *ArmCore) LR() uint32 { return c.reg(uc.ARM_REG_LR) }

// ReadBytes reads bytes from guest memory.
func (c *ArmCore) ReadBytes(addr, size uint32) ([]byte, error) {
	data, err := c.uc.MemRead(uint64(addr), uint64(size))
	if err != nil {
		return nil, fmt.Errorf("read %#x+%#x: %w", addr, size, err)
	}
	return data, nil
}

// WriteBytes writes bytes to guest memory.
func (c *ArmCore) WriteBytes(addr uint32, data []byte) error {
	if err := c.uc.MemWrite(uint64(addr), data); err != nil {
		return fmt.Errorf("write %#x+%#x: %w", addr, len(data), err)
	}
	return nil
}

// Register dump and call stack reconstruction

func (c *ArmCore) dumpRegs() string {
	return fmt.Sprintf(
		"R0: %#x R1: %#x R2: %#x R3: %#x R4: %#x R5: %#x R6: %#x R7: %#x R8: %#x\n"+
			"SB: %#x SL: %#x FP: %#x IP: %#x SP: %#x LR: %#x PC: %#x\nAPSR: %032b",
		c.reg(uc.ARM_REG_R0), c.reg(uc.ARM_REG_R1), c.reg(uc.ARM_REG_R2), c.reg(uc.ARM_REG_R3),
		c.reg(uc.ARM_REG_R4), c.reg(uc.ARM_REG_R5), c.reg(uc.ARM_REG_R6), c.reg(uc.ARM_REG_R7),
		c.reg(uc.ARM_REG_R8), c.reg(uc.ARM_REG_SB), c.reg(uc.ARM_REG_SL), c.reg(uc.ARM_REG_FP),
		c.reg(uc.ARM_REG_IP), c.SP(), c.LR(), c.PC(),
		c.reg(uc.ARM_REG_APSR),
	)
}

func (c *ArmCore) formatCallstackAddress(addr uint32) string {
	var description string
	switch {
	case addr >= ImageBase && addr < ImageBase+c.imageRange():
		description = fmt.Sprintf("client.bin+%#x", addr-ImageBase)
	case addr >= FunctionsBase && addr < FunctionsBase+FunctionsSize:
		description = "<native function>"
	default:
		description = "<unknown>"
	}
	return fmt.Sprintf("%#x: %s\n", addr, description)
}

func (c *ArmCore) imageRange() uint32 {
	if c.imageSize == 0 {
		return 0x100000
	}
	return c.imageSize
}

func (c *ArmCore) dumpCallStack() string {
	var sb strings.Builder

	sb.WriteString(c.formatCallstackAddress(c.PC()))
	if lr := c.LR(); lr != RunFunctionLR && lr != 0 {
		sb.WriteString(c.formatCallstackAddress(lr - 5))
	}

	// Heuristic: odd words on the stack that land inside the image are
	// probably Thumb return addresses.
	sp := c.SP()
	for i := uint32(0); i < 128; i++ {
		value, err := ReadU32(c, sp+i*4)
		if err != nil {
			break
		}
		if value%2 == 1 && value >= ImageBase && value < ImageBase+c.imageRange() {
			sb.WriteString(c.formatCallstackAddress(value - 5))
		}
	}

	return sb.String()
}

func (c *ArmCore) dumpStack() string {
	var sb strings.Builder
	sp := c.SP()
	for i := uint32(0); i < 16; i++ {
		value, err := ReadU32(c, sp+i*4)
		if err != nil {
			break
		}
		fmt.Fprintf(&sb, "SP+%#x: %#x\n", i*4, value)
	}
	return sb.String()
}

// DumpRegStack formats registers, a reconstructed call stack, and the top of
// the stack for fatal error reports.
func (c *ArmCore) DumpRegStack() string {
	return fmt.Sprintf("\n%s\nPossible call stack:\n%s\nStack:\n%s", c.dumpRegs(), c.dumpCallStack(), c.dumpStack())
}
