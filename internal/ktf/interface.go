package ktf

import (
	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/log"
	"github.com/jkki-i/wie/internal/wipic"
)

// GetWipiCKnlInterface writes the kernel method table and returns its guest
// address. The table's first entry resolves the full interface aggregator,
// which is how the client bootstraps every other module.
func GetWipiCKnlInterface(ctx *wipic.Context) (uint32, error) {
	return wipic.WriteMethodTable(ctx, "kernel", wipic.KernelMethods(getWipiCInterfaces))
}

// getWipiCInterfaces materializes the WIPI C interface aggregator: a
// 13-pointer struct whose entries point to per-module method tables. Slot
// order is ABI; unknown modules get dense stub tables.
func getWipiCInterfaces(ctx *wipic.Context) (uint32, error) {
	if log.L != nil {
		log.L.Debug("getWipiCInterfaces")
	}

	modules := []struct {
		category string
		methods  []wipic.Method
	}{
		{"stub0", wipic.StubMethods(0)},
		{"stub1", wipic.StubMethods(1)},
		{"graphics", wipic.GraphicsMethods()},
		{"stub3", wipic.StubMethods(3)},
		{"stub4", wipic.StubMethods(4)},
		{"stub5", wipic.StubMethods(5)},
		{"database", wipic.DatabaseMethods()},
		{"stub7", wipic.StubMethods(7)},
		{"stub8", wipic.StubMethods(8)},
		{"media", wipic.MediaMethods()},
		{"stub10", wipic.StubMethods(10)},
		{"stub11", wipic.StubMethods(11)},
		{"stub12", wipic.StubMethods(12)},
	}

	address, err := ctx.Alloc(uint32(len(modules)) * 4)
	if err != nil {
		return 0, err
	}

	for i, module := range modules {
		table, err := wipic.WriteMethodTable(ctx, module.category, module.methods)
		if err != nil {
			return 0, err
		}
		if err := core.WriteU32(ctx.Core(), address+uint32(i)*4, table); err != nil {
			return 0, err
		}
	}

	return address, nil
}
