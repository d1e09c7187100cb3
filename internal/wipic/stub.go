package wipic

import (
	"fmt"

	"github.com/jkki-i/wie/internal/log"
)

// stubTableSize is the number of entries in an unknown module's table. The
// client indexes blindly into these, so the table must be dense.
const stubTableSize = 64

// StubMethods builds a table of logging no-ops for a module that is not
// implemented. Every entry returns zero.
func StubMethods(module int) []Method {
	methods := make([]Method, stubTableSize)
	for i := range methods {
		name := fmt.Sprintf("stub_%d_%d", module, i)
		methods[i] = Method{
			Name: name,
			Body: func(ctx *Context) (uint32, error) {
				if log.L != nil {
					log.L.Warn("unimplemented WIPI C call", log.Fn(name))
				}
				return 0, nil
			},
		}
	}
	return methods
}
