package core

// RegisteredFunction is a host function bound to a trap address. It runs
// between emulation steps: it may read parameters from the CPU, access guest
// memory, and re-enter the guest through RunFunction. Its result is written
// to R0 before the guest resumes at the caller's LR.
type RegisteredFunction func(c *ArmCore) (uint32, error)

// ReadParamString reads the i-th parameter as a pointer to a null-terminated
// guest string and dereferences it.
func ReadParamString(c *ArmCore, i int) (string, error) {
	ptr, err := c.ReadParam(i)
	if err != nil {
		return "", err
	}
	return ReadCString(c, ptr)
}
