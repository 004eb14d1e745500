package ptb

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/vk/movegen/pkg/movetypes"
	"github.com/vk/movegen/pkg/movetypes/bcs"
)

// ArgumentKind distinguishes transaction argument handles.
type ArgumentKind uint8

const (
	GasCoin ArgumentKind = iota
	PureInput
	Result
	NestedResult
)

// Argument is a handle to a value inside a transaction.
type Argument struct {
	Kind   ArgumentKind
	Index  uint16
	Nested uint16 // for NestedResult
}

func (a Argument) String() string {
	switch a.Kind {
	case GasCoin:
		return "GasCoin"
	case PureInput:
		return fmt.Sprintf("Input(%d)", a.Index)
	case Result:
		return fmt.Sprintf("Result(%d)", a.Index)
	case NestedResult:
		return fmt.Sprintf("NestedResult(%d,%d)", a.Index, a.Nested)
	default:
		return fmt.Sprintf("Argument(kind=%d)", a.Kind)
	}
}

// Function names a Move function together with its type arguments.
type Function struct {
	Package       movetypes.Address
	Module        string
	Function      string
	TypeArguments []movetypes.TypeTag
}

func (f Function) String() string {
	return fmt.Sprintf("%s::%s::%s", f.Package.ShortString(), f.Module, f.Function)
}

// MoveCall is a recorded call command.
type MoveCall struct {
	Function  Function
	Arguments []Argument
}

// Builder accumulates inputs and commands. It is not safe for concurrent use.
type Builder struct {
	inputs [][]byte
	calls  []MoveCall
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Inputs returns the BCS bytes of each pure input in order.
func (b *Builder) Inputs() [][]byte {
	return b.inputs
}

// Commands returns the recorded calls in order.
func (b *Builder) Commands() []MoveCall {
	return b.calls
}

// Pure serializes v and appends it as an input.
func (b *Builder) Pure(v any) (Argument, error) {
	raw, err := bcs.Marshal(v)
	if err != nil {
		return Argument{}, fmt.Errorf("encoding pure input: %w", err)
	}
	idx, err := safecast.Conv[uint16](len(b.inputs))
	if err != nil {
		return Argument{}, fmt.Errorf("too many inputs: %w", err)
	}
	b.inputs = append(b.inputs, raw)
	return Argument{Kind: PureInput, Index: idx}, nil
}

// MoveCall appends a call and returns the handle of its result.
func (b *Builder) MoveCall(fn Function, args []Argument) (Argument, error) {
	for _, a := range args {
		if err := b.check(a); err != nil {
			return Argument{}, fmt.Errorf("calling %s: %w", fn, err)
		}
	}
	idx, err := safecast.Conv[uint16](len(b.calls))
	if err != nil {
		return Argument{}, fmt.Errorf("too many commands: %w", err)
	}
	b.calls = append(b.calls, MoveCall{Function: fn, Arguments: args})
	return Argument{Kind: Result, Index: idx}, nil
}

// Scope opens a borrow scope on this builder.
func (b *Builder) Scope() *Scope {
	return &Scope{b: b}
}

func (b *Builder) check(a Argument) error {
	switch a.Kind {
	case GasCoin:
		return nil
	case PureInput:
		if int(a.Index) >= len(b.inputs) {
			return fmt.Errorf("argument %s refers to a missing input", a)
		}
	case Result, NestedResult:
		if int(a.Index) >= len(b.calls) {
			return fmt.Errorf("argument %s refers to a missing command", a)
		}
	default:
		return fmt.Errorf("unknown argument kind %d", a.Kind)
	}
	return nil
}
