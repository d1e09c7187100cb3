package core

import uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

// Context is a saved CPU register file. RunFunction snapshots the context
// before entering guest code and restores it on every exit path.
type Context struct {
	R0, R1, R2, R3, R4, R5, R6, R7, R8 uint32
	SB, SL, FP, IP                     uint32
	SP, LR, PC                         uint32
	APSR                               uint32
}

var contextRegs = []int{
	uc.ARM_REG_R0, uc.ARM_REG_R1, uc.ARM_REG_R2, uc.ARM_REG_R3,
	uc.ARM_REG_R4, uc.ARM_REG_R5, uc.ARM_REG_R6, uc.ARM_REG_R7,
	uc.ARM_REG_R8, uc.ARM_REG_SB, uc.ARM_REG_SL, uc.ARM_REG_FP,
	uc.ARM_REG_IP, uc.ARM_REG_SP, uc.ARM_REG_LR, uc.ARM_REG_PC,
	uc.ARM_REG_APSR,
}

// SaveContext snapshots the current register file.
func (c *ArmCore) SaveContext() Context {
	var ctx Context
	for i, r := range contextRegs {
		*ctx.slot(i) = c.reg(r)
	}
	return ctx
}

// RestoreContext writes a previously saved register file back to the CPU.
func (c *ArmCore) RestoreContext(ctx Context) {
	for i, r := range contextRegs {
		c.setReg(r, *ctx.slot(i))
	}
}

func (ctx *Context) slot(i int) *uint32 {
	slots := [...]*uint32{
		&ctx.R0, &ctx.R1, &ctx.R2, &ctx.R3, &ctx.R4, &ctx.R5, &ctx.R6, &ctx.R7,
		&ctx.R8, &ctx.SB, &ctx.SL, &ctx.FP, &ctx.IP, &ctx.SP, &ctx.LR, &ctx.PC,
		&ctx.APSR,
	}
	return slots[i]
}
