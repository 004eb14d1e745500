package bytecode

import "fmt"

// DecodeError reports malformed input. Offset is the byte position in the
// module where decoding failed, or -1 when the failure concerns a reference
// between tables rather than a position.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return "decode module: " + e.Reason
	}
	return fmt.Sprintf("decode module at offset %d: %s", e.Offset, e.Reason)
}

func errorf(offset int, format string, args ...any) *DecodeError {
	return &DecodeError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
