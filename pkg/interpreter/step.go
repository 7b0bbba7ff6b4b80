package interpreter

import (
	"fmt"

	"teenyjvm/pkg/opcode"
)

func opcodeAt(code []byte, pc int) opcode.Opcode {
	return opcode.Opcode(code[pc])
}

// exec runs one instruction and advances f.PC. It returns (value, returned,
// error); returned is set only by the return instructions.
func (i *Interpreter) exec(f *Frame, in opcode.Opcode) (Value, bool, error) {
	pc := f.PC

	switch in {
	case opcode.Nop:
		f.PC = pc + 1
		return Value{}, false, nil

	case opcode.IconstM1, opcode.Iconst0, opcode.Iconst1, opcode.Iconst2,
		opcode.Iconst3, opcode.Iconst4, opcode.Iconst5:
		f.PC = pc + 1
		return Value{}, false, f.Push(int32(in) - int32(opcode.Iconst0))

	case opcode.Bipush:
		b, err := f.operands(pc, 1)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 2
		return Value{}, false, f.Push(int32(int8(b[0])))

	case opcode.Sipush:
		b, err := f.operands(pc, 2)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 3
		return Value{}, false, f.Push(int32(opcode.Int16(b[0], b[1])))

	case opcode.Ldc:
		b, err := f.operands(pc, 1)
		if err != nil {
			return Value{}, false, err
		}
		v, err := i.class.ResolveInteger(uint16(b[0]))
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 2
		return Value{}, false, f.Push(v)

	case opcode.Iload, opcode.Aload:
		b, err := f.operands(pc, 1)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 2
		return Value{}, false, i.load(f, int(b[0]))

	case opcode.Iload0, opcode.Iload1, opcode.Iload2, opcode.Iload3:
		f.PC = pc + 1
		return Value{}, false, i.load(f, int(in-opcode.Iload0))

	case opcode.Aload0, opcode.Aload1, opcode.Aload2, opcode.Aload3:
		f.PC = pc + 1
		return Value{}, false, i.load(f, int(in-opcode.Aload0))

	case opcode.Istore, opcode.Astore:
		b, err := f.operands(pc, 1)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 2
		return Value{}, false, i.store(f, int(b[0]))

	case opcode.Istore0, opcode.Istore1, opcode.Istore2, opcode.Istore3:
		f.PC = pc + 1
		return Value{}, false, i.store(f, int(in-opcode.Istore0))

	case opcode.Astore0, opcode.Astore1, opcode.Astore2, opcode.Astore3:
		f.PC = pc + 1
		return Value{}, false, i.store(f, int(in-opcode.Astore0))

	case opcode.Iinc:
		b, err := f.operands(pc, 2)
		if err != nil {
			return Value{}, false, err
		}
		v, err := f.Local(int(b[0]))
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 3
		return Value{}, false, f.SetLocal(int(b[0]), v+int32(int8(b[1])))

	case opcode.Iadd, opcode.Isub, opcode.Imul, opcode.Idiv, opcode.Irem,
		opcode.Ishl, opcode.Ishr, opcode.Iushr, opcode.Iand, opcode.Ior, opcode.Ixor:
		a, b, err := f.Pop2()
		if err != nil {
			return Value{}, false, err
		}
		res, err := evalBinary(in, a, b)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 1
		return Value{}, false, f.Push(res)

	case opcode.Ineg:
		a, err := f.Pop()
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 1
		return Value{}, false, f.Push(-a)

	case opcode.Ifeq, opcode.Ifne, opcode.Iflt, opcode.Ifge, opcode.Ifgt, opcode.Ifle:
		offset, err := f.branchOffset(pc)
		if err != nil {
			return Value{}, false, err
		}
		a, err := f.Pop()
		if err != nil {
			return Value{}, false, err
		}
		return Value{}, false, branchIf(f, pc, offset, compare(in, a, 0))

	case opcode.IfIcmpeq, opcode.IfIcmpne, opcode.IfIcmplt,
		opcode.IfIcmpge, opcode.IfIcmpgt, opcode.IfIcmple:
		offset, err := f.branchOffset(pc)
		if err != nil {
			return Value{}, false, err
		}
		a, b, err := f.Pop2()
		if err != nil {
			return Value{}, false, err
		}
		return Value{}, false, branchIf(f, pc, offset, compare(in, a, b))

	case opcode.Goto:
		offset, err := f.branchOffset(pc)
		if err != nil {
			return Value{}, false, err
		}
		return Value{}, false, f.Jump(pc, offset)

	case opcode.Return:
		return Void(), true, nil

	case opcode.Ireturn, opcode.Areturn:
		v, err := f.Pop()
		if err != nil {
			return Value{}, false, err
		}
		return IntValue(v), true, nil

	case opcode.Getstatic:
		// only ever loads System.out ahead of a print
		if _, err := f.operands(pc, 2); err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 3
		return Value{}, false, nil

	case opcode.Invokevirtual:
		if _, err := f.operands(pc, 2); err != nil {
			return Value{}, false, err
		}
		v, err := f.Pop()
		if err != nil {
			return Value{}, false, err
		}
		if _, err := fmt.Fprintf(i.out, "%d\n", v); err != nil {
			return Value{}, false, fmt.Errorf("print: %w", err)
		}
		f.PC = pc + 3
		return Value{}, false, nil

	case opcode.Invokestatic:
		b, err := f.operands(pc, 2)
		if err != nil {
			return Value{}, false, err
		}
		if err := i.invokeStatic(f, opcode.Uint16(b[0], b[1])); err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 3
		return Value{}, false, nil

	case opcode.Newarray:
		// the element type operand is always T_INT here
		if _, err := f.operands(pc, 1); err != nil {
			return Value{}, false, err
		}
		count, err := f.Pop()
		if err != nil {
			return Value{}, false, err
		}
		handle, err := i.heap.Allocate(count)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 2
		return Value{}, false, f.Push(handle)

	case opcode.Arraylength:
		handle, err := f.Pop()
		if err != nil {
			return Value{}, false, err
		}
		n, err := i.heap.Length(handle)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 1
		return Value{}, false, f.Push(n)

	case opcode.Iaload:
		handle, index, err := f.Pop2()
		if err != nil {
			return Value{}, false, err
		}
		v, err := i.heap.Load(handle, index)
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 1
		return Value{}, false, f.Push(v)

	case opcode.Iastore:
		v, err := f.Pop()
		if err != nil {
			return Value{}, false, err
		}
		handle, index, err := f.Pop2()
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 1
		return Value{}, false, i.heap.Store(handle, index, v)

	case opcode.Dup:
		v, err := f.Stack.Peek()
		if err != nil {
			return Value{}, false, err
		}
		f.PC = pc + 1
		return Value{}, false, f.Push(v)

	default:
		return Value{}, false, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(in))
	}
}

func (i *Interpreter) load(f *Frame, index int) error {
	v, err := f.Local(index)
	if err != nil {
		return err
	}
	return f.Push(v)
}

func (i *Interpreter) store(f *Frame, index int) error {
	v, err := f.Pop()
	if err != nil {
		return err
	}
	return f.SetLocal(index, v)
}

// invokeStatic pops the callee's arguments off the caller's stack, runs the
// callee in a fresh frame and pushes its result, if any. The first value
// popped is the last parameter.
func (i *Interpreter) invokeStatic(caller *Frame, index uint16) error {
	m, err := i.class.ResolveMethod(index)
	if err != nil {
		return err
	}
	if m.Code == nil {
		return fmt.Errorf("%w: %s", ErrNoCode, m)
	}

	callee := NewFrame(m)
	n := m.ParamCount()
	if n > len(callee.Locals) {
		return fmt.Errorf("%w: %s takes %d parameters, max_locals %d", ErrLocalOutOfRange, m, n, len(callee.Locals))
	}
	for k := 0; k < n; k++ {
		v, err := caller.Pop()
		if err != nil {
			return err
		}
		callee.Locals[n-1-k] = v
	}

	ret, err := i.Run(callee)
	if err != nil {
		return err
	}
	if ret.Present {
		return caller.Push(ret.Int)
	}
	return nil
}

func branchIf(f *Frame, pc int, offset int16, taken bool) error {
	if taken {
		return f.Jump(pc, offset)
	}
	f.PC = pc + 3
	return nil
}

// compare evaluates the relation of an if<cond> or if_icmp<cond> opcode.
func compare(in opcode.Opcode, a, b int32) bool {
	switch in {
	case opcode.Ifeq, opcode.IfIcmpeq:
		return a == b
	case opcode.Ifne, opcode.IfIcmpne:
		return a != b
	case opcode.Iflt, opcode.IfIcmplt:
		return a < b
	case opcode.Ifge, opcode.IfIcmpge:
		return a >= b
	case opcode.Ifgt, opcode.IfIcmpgt:
		return a > b
	case opcode.Ifle, opcode.IfIcmple:
		return a <= b
	}
	panic(fmt.Sprintf("compare: %s is not a conditional branch", in))
}

// evalBinary applies a two-operand arithmetic or bitwise opcode with 32-bit
// wraparound. Shift distances use only their low five bits.
func evalBinary(in opcode.Opcode, a, b int32) (int32, error) {
	switch in {
	case opcode.Iadd:
		return a + b, nil
	case opcode.Isub:
		return a - b, nil
	case opcode.Imul:
		return a * b, nil
	case opcode.Idiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	case opcode.Irem:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a % b, nil
	case opcode.Ishl:
		return a << (uint32(b) & 0x1f), nil
	case opcode.Ishr:
		return a >> (uint32(b) & 0x1f), nil
	case opcode.Iushr:
		return int32(uint32(a) >> (uint32(b) & 0x1f)), nil
	case opcode.Iand:
		return a & b, nil
	case opcode.Ior:
		return a | b, nil
	case opcode.Ixor:
		return a ^ b, nil
	default:
		return 0, fmt.Errorf("unsupported binary op: %s", in)
	}
}
