// Package verifier statically checks method bytecode before it runs, so that
// a malformed class is rejected with every problem listed instead of failing
// at the first bad instruction it happens to reach.
package verifier

import (
	"fmt"

	"teenyjvm/pkg/classfile"
	"teenyjvm/pkg/opcode"

	"github.com/hashicorp/go-multierror"
)

// Resolver is the part of a class the verifier consults for constant pool
// operands.
type Resolver interface {
	ResolveMethod(index uint16) (*classfile.Method, error)
	ResolveInteger(index uint16) (int32, error)
}

// Problem is one defect found in a method's code.
type Problem struct {
	Method string // name and descriptor
	PC     int
	Msg    string
}

func (p *Problem) Error() string {
	return fmt.Sprintf("%s pc=%d: %s", p.Method, p.PC, p.Msg)
}

// Verify checks every method of c that has code. The returned error is a
// *multierror.Error holding one *Problem per defect, or nil.
func Verify(c *classfile.Class) error {
	var result *multierror.Error
	for _, m := range c.Methods {
		if m.Code == nil {
			continue
		}
		result = multierror.Append(result, Method(c, m))
	}
	return result.ErrorOrNil()
}

type branch struct {
	pc, target int
}

// Method checks a single method.
func Method(r Resolver, m *classfile.Method) error {
	var result *multierror.Error
	report := func(pc int, format string, args ...any) {
		result = multierror.Append(result, &Problem{Method: m.String(), PC: pc, Msg: fmt.Sprintf(format, args...)})
	}

	code := m.Code
	if len(code) == 0 {
		report(0, "empty code")
		return result.ErrorOrNil()
	}

	starts := make([]bool, len(code))
	var branches []branch
	var last opcode.Opcode
	pc := 0

decode:
	for pc < len(code) {
		op := opcode.Opcode(code[pc])
		info, ok := opcode.Lookup(op)
		if !ok {
			report(pc, "unsupported opcode 0x%02x", code[pc])
			break decode
		}
		if pc+info.Width() > len(code) {
			report(pc, "truncated %s: needs %d operand bytes, has %d", op, info.Operands.Size(), len(code)-pc-1)
			break decode
		}
		starts[pc] = true
		operands := code[pc+1 : pc+info.Width()]

		if op.IsBranch() {
			branches = append(branches, branch{pc: pc, target: pc + int(opcode.Int16(operands[0], operands[1]))})
		}

		if index, ok := localIndex(op, operands); ok && index >= m.MaxLocals {
			report(pc, "%s uses local %d, max_locals is %d", op, index, m.MaxLocals)
		}

		switch op {
		case opcode.Ldc:
			if _, err := r.ResolveInteger(uint16(operands[0])); err != nil {
				report(pc, "ldc #%d: %v", operands[0], err)
			}
		case opcode.Invokestatic:
			index := opcode.Uint16(operands[0], operands[1])
			callee, err := r.ResolveMethod(index)
			if err != nil {
				report(pc, "invokestatic #%d: %v", index, err)
			} else if callee.Code == nil {
				report(pc, "invokestatic #%d: %s has no code", index, callee)
			}
		}

		last = op
		pc += info.Width()
	}
	decoded := pc

	// decoded == len(code) only when every instruction was read in full
	if decoded == len(code) && !last.IsReturn() && last != opcode.Goto {
		report(len(code), "execution can fall off the end of the code")
	}

	for _, b := range branches {
		switch {
		case b.target < 0 || b.target >= len(code):
			report(b.pc, "branch target %d outside code of length %d", b.target, len(code))
		case b.target < decoded && !starts[b.target]:
			report(b.pc, "branch target %d is not an instruction boundary", b.target)
		}
	}

	return result.ErrorOrNil()
}

// localIndex returns the local variable slot an instruction addresses.
func localIndex(op opcode.Opcode, operands []byte) (int, bool) {
	switch op {
	case opcode.Iload, opcode.Aload, opcode.Istore, opcode.Astore, opcode.Iinc:
		return int(operands[0]), true
	case opcode.Iload0, opcode.Iload1, opcode.Iload2, opcode.Iload3:
		return int(op - opcode.Iload0), true
	case opcode.Aload0, opcode.Aload1, opcode.Aload2, opcode.Aload3:
		return int(op - opcode.Aload0), true
	case opcode.Istore0, opcode.Istore1, opcode.Istore2, opcode.Istore3:
		return int(op - opcode.Istore0), true
	case opcode.Astore0, opcode.Astore1, opcode.Astore2, opcode.Astore3:
		return int(op - opcode.Astore0), true
	}
	return 0, false
}
