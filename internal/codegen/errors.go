package codegen

import "fmt"

// UnsupportedPatternError reports a declaration that cannot be expressed as
// Go bindings.
type UnsupportedPatternError struct {
	Module      string
	Declaration string
	Reason      string
}

func (e *UnsupportedPatternError) Error() string {
	return fmt.Sprintf("module %s, %s: %s", e.Module, e.Declaration, e.Reason)
}
