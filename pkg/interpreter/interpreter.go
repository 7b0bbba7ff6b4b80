// Package interpreter executes the integer subset of JVM bytecode. Each
// method activation runs in its own Frame; invokestatic recurses into a new
// Frame and all activations share one Heap.
package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"teenyjvm/pkg/classfile"

	"github.com/charmbracelet/log"
)

// ClassModel is the read-only view of a parsed class the interpreter needs.
type ClassModel interface {
	FindMethod(name, descriptor string) (*classfile.Method, error)
	ResolveMethod(index uint16) (*classfile.Method, error)
	ResolveInteger(index uint16) (int32, error)
}

// Interpreter executes methods of one class against one heap.
type Interpreter struct {
	class ClassModel
	heap  *Heap

	out    io.Writer   // output writer for invokevirtual prints
	logger *log.Logger // trace sink
	trace  bool

	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed
	maxDepth int // maximum nested activations (0 = unlimited)
	depth    int // activations currently running
}

type Option func(*Interpreter)

// WithWriter sets the output writer for print instructions
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithLogger sets the logger used for instruction tracing
func WithLogger(l *log.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithTrace logs every executed instruction at debug level
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.trace = on }
}

// WithMaxSteps sets a maximum number of instructions before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithMaxDepth sets a maximum call depth before returning ErrMaxDepthExceeded
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) { i.maxDepth = n }
}

// WithHeap runs against an existing heap instead of a fresh one
func WithHeap(h *Heap) Option {
	return func(i *Interpreter) { i.heap = h }
}

// NewInterpreter creates a new Interpreter instance
func NewInterpreter(class ClassModel, opts ...Option) *Interpreter {
	it := &Interpreter{
		class:    class,
		out:      nil, // caller should set, or use WithWriter
		maxSteps: 0,   // 0 => unlimited
		maxDepth: 0,
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}
	if it.heap == nil {
		it.heap = NewHeap()
	}
	if it.logger == nil {
		it.logger = log.Default()
	}

	return it
}

// Heap returns the heap shared by every activation
func (i *Interpreter) Heap() *Heap {
	return i.heap
}

// Steps returns the number of instructions executed so far
func (i *Interpreter) Steps() int {
	return i.steps
}

// Invoke runs m with args in its leading local slots and the other slots zero
func (i *Interpreter) Invoke(m *classfile.Method, args ...int32) (Value, error) {
	if m.Code == nil {
		return Value{}, fmt.Errorf("%w: %s", ErrNoCode, m)
	}

	f := NewFrame(m)
	if len(args) > len(f.Locals) {
		return Value{}, fmt.Errorf("%w: %d arguments, max_locals %d", ErrLocalOutOfRange, len(args), len(f.Locals))
	}
	copy(f.Locals, args)

	return i.Run(f)
}

// Run executes f until it returns
func (i *Interpreter) Run(f *Frame) (Value, error) {
	if i.maxDepth > 0 && i.depth >= i.maxDepth {
		return Value{}, fmt.Errorf("%w: %d", ErrMaxDepthExceeded, i.maxDepth)
	}

	i.depth++
	defer func() { i.depth-- }()

	for {
		v, returned, err := i.Step(f)
		if err != nil {
			return Value{}, err
		}

		if returned {
			return v, nil
		}
	}
}

// Step executes the instruction at f.PC, returning (value, returned, error)
func (i *Interpreter) Step(f *Frame) (Value, bool, error) {
	pc := f.PC
	code := f.Method.Code

	if pc < 0 || pc >= len(code) {
		return Value{}, false, &Error{Method: f.Method.String(), PC: pc, Err: ErrPCOutOfRange}
	}

	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return Value{}, false, ErrMaxStepsExceeded
	}
	i.steps++

	in := opcodeAt(code, pc)
	if i.trace {
		i.logger.Debug("exec", "method", f.Method.Name, "pc", pc, "op", in, "stack", f.Stack.Array(), "locals", f.Locals)
	}

	v, returned, err := i.exec(f, in)
	if err != nil {
		// errors raised by a callee already carry its location
		var located *Error
		if errors.As(err, &located) || errors.Is(err, ErrMaxStepsExceeded) {
			return Value{}, false, err
		}
		return Value{}, false, &Error{Method: f.Method.String(), PC: pc, Opcode: in, Err: err}
	}

	return v, returned, nil
}

var (
	ErrLocalOutOfRange       = errors.New("local variable index out of range")
	ErrBranchOutOfRange      = errors.New("branch target out of range")
	ErrPCOutOfRange          = errors.New("program counter outside the code")
	ErrTruncatedInstruction  = errors.New("truncated instruction")
	ErrUnknownOpcode         = errors.New("unsupported opcode")
	ErrDivideByZero          = errors.New("division by zero")
	ErrInvalidHandle         = errors.New("invalid heap handle")
	ErrArrayIndexOutOfBounds = errors.New("array index out of bounds")
	ErrNegativeArraySize     = errors.New("negative array size")
	ErrNoCode                = errors.New("method has no code")
	ErrMaxStepsExceeded      = errors.New("maximum steps exceeded")
	ErrMaxDepthExceeded      = errors.New("maximum call depth exceeded")
)
