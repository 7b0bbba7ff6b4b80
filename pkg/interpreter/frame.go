package interpreter

import (
	"fmt"

	"teenyjvm/pkg/classfile"
	"teenyjvm/pkg/opcode"
	"teenyjvm/pkg/stack"
)

// Frame represents one method activation.
type Frame struct {
	Method *classfile.Method   // method being executed
	PC     int                 // offset of the current instruction in Method.Code
	Locals []int32             // max_locals slots, parameters first, the rest zero
	Stack  *stack.Stack[int32] // operand stack bounded by max_stack
}

// NewFrame creates a frame with zeroed locals and an empty operand stack.
func NewFrame(m *classfile.Method) *Frame {
	return &Frame{
		Method: m,
		PC:     0,
		Locals: make([]int32, m.MaxLocals),
		Stack:  stack.NewStack[int32](m.MaxStack),
	}
}

// Push pushes a value onto the operand stack.
func (f *Frame) Push(v int32) error {
	return f.Stack.Push(v)
}

// Pop pops a value from the operand stack.
func (f *Frame) Pop() (int32, error) {
	return f.Stack.Pop()
}

// Pop2 pops the right operand and then the left one.
func (f *Frame) Pop2() (left, right int32, err error) {
	if right, err = f.Pop(); err != nil {
		return 0, 0, err
	}
	if left, err = f.Pop(); err != nil {
		return 0, 0, err
	}
	return left, right, nil
}

// Local reads a local variable slot.
func (f *Frame) Local(index int) (int32, error) {
	if index < 0 || index >= len(f.Locals) {
		return 0, fmt.Errorf("%w: index %d, max_locals %d", ErrLocalOutOfRange, index, len(f.Locals))
	}
	return f.Locals[index], nil
}

// SetLocal writes a local variable slot.
func (f *Frame) SetLocal(index int, v int32) error {
	if index < 0 || index >= len(f.Locals) {
		return fmt.Errorf("%w: index %d, max_locals %d", ErrLocalOutOfRange, index, len(f.Locals))
	}
	f.Locals[index] = v
	return nil
}

// operands returns the n bytes following the instruction at pc.
func (f *Frame) operands(pc, n int) ([]byte, error) {
	code := f.Method.Code
	if pc+1+n > len(code) {
		return nil, fmt.Errorf("%w: need %d operand bytes, have %d", ErrTruncatedInstruction, n, len(code)-pc-1)
	}
	return code[pc+1 : pc+1+n], nil
}

// Jump moves PC to pc+offset, where pc is the start of the branching
// instruction.
func (f *Frame) Jump(pc int, offset int16) error {
	target := pc + int(offset)
	if target < 0 || target >= len(f.Method.Code) {
		return fmt.Errorf("%w: %d%+d = %d, code length %d", ErrBranchOutOfRange, pc, offset, target, len(f.Method.Code))
	}
	f.PC = target
	return nil
}

// branchOffset decodes the signed 16-bit offset of the branch at pc.
func (f *Frame) branchOffset(pc int) (int16, error) {
	b, err := f.operands(pc, 2)
	if err != nil {
		return 0, err
	}
	return opcode.Int16(b[0], b[1]), nil
}
