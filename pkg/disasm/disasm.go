// Package disasm prints a readable listing of method bytecode.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"teenyjvm/pkg/classfile"
	"teenyjvm/pkg/color"
	"teenyjvm/pkg/opcode"
)

// Resolver supplies the constant pool lookups used to annotate operands.
type Resolver interface {
	ResolveInteger(index uint16) (int32, error)
	MemberRef(index uint16) (owner, name, descriptor string, err error)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Class disassembles every method of c.
func Class(w io.Writer, c *classfile.Class) error {
	p := &printer{w: w}
	p.printf("%s %s\n", color.BoldText("class"), c.ClassName())
	for _, m := range c.Methods {
		p.printf("\n")
		p.method(c, m)
	}
	return p.err
}

// Method disassembles a single method.
func Method(w io.Writer, r Resolver, m *classfile.Method) error {
	p := &printer{w: w}
	p.method(r, m)
	return p.err
}

func (p *printer) method(r Resolver, m *classfile.Method) {
	p.printf("%s %s  max_stack=%d max_locals=%d params=[%s]\n",
		color.GreenText("method"), color.BoldText(m.String()), m.MaxStack, m.MaxLocals, strings.Join(m.Params, " "))
	if m.Code == nil {
		p.printf("  %s\n", color.GrayText("no code"))
		return
	}

	width := len(fmt.Sprint(len(m.Code)))
	code := m.Code
	for pc := 0; pc < len(code); {
		op := opcode.Opcode(code[pc])
		info, ok := opcode.Lookup(op)
		if !ok {
			p.printf("  %s  %s\n", color.Offset(pc, width), color.RedText(fmt.Sprintf("unsupported 0x%02x", code[pc])))
			return
		}
		if pc+info.Width() > len(code) {
			p.printf("  %s  %s %s\n", color.Offset(pc, width), color.YellowText(info.Name), color.RedText("<truncated>"))
			return
		}

		ops, annotation := operands(r, pc, info, code[pc+1:pc+info.Width()])
		line := "  " + color.Offset(pc, width) + "  " + color.YellowText(info.Name)
		if ops != "" {
			line += " " + color.BlueText(ops)
		}
		if annotation != "" {
			line += "  " + color.GrayText("// "+annotation)
		}
		p.printf("%s\n", line)

		pc += info.Width()
	}
}

// operands formats the operand bytes of the instruction at pc and, for
// constant pool references, a note naming what the index refers to.
func operands(r Resolver, pc int, info opcode.Info, b []byte) (string, string) {
	switch info.Operands {
	case opcode.OperandsU8:
		if info.Opcode == opcode.Ldc {
			v, err := r.ResolveInteger(uint16(b[0]))
			return fmt.Sprintf("#%d", b[0]), note(fmt.Sprint(v), err)
		}
		return fmt.Sprint(b[0]), ""
	case opcode.OperandsS8:
		return fmt.Sprint(int8(b[0])), ""
	case opcode.OperandsS16:
		return fmt.Sprint(opcode.Int16(b[0], b[1])), ""
	case opcode.OperandsU16:
		index := opcode.Uint16(b[0], b[1])
		owner, name, descriptor, err := r.MemberRef(index)
		return fmt.Sprintf("#%d", index), note(owner+"."+name+":"+descriptor, err)
	case opcode.OperandsBranch:
		return fmt.Sprint(pc + int(opcode.Int16(b[0], b[1]))), ""
	case opcode.OperandsIinc:
		return fmt.Sprintf("%d %d", b[0], int8(b[1])), ""
	}
	return "", ""
}

func note(s string, err error) string {
	if err != nil {
		return "unresolved: " + err.Error()
	}
	return s
}
