// Package opcode defines the JVM instruction subset understood by the
// interpreter, along with the operand layout of each instruction.
package opcode

import "fmt"

// Opcode is the first byte of an instruction.
type Opcode byte

const (
	Nop Opcode = 0x00

	// Constants
	IconstM1 Opcode = 0x02
	Iconst0  Opcode = 0x03
	Iconst1  Opcode = 0x04
	Iconst2  Opcode = 0x05
	Iconst3  Opcode = 0x06
	Iconst4  Opcode = 0x07
	Iconst5  Opcode = 0x08
	Bipush   Opcode = 0x10
	Sipush   Opcode = 0x11
	Ldc      Opcode = 0x12

	// Loads
	Iload  Opcode = 0x15
	Aload  Opcode = 0x19
	Iload0 Opcode = 0x1a
	Iload1 Opcode = 0x1b
	Iload2 Opcode = 0x1c
	Iload3 Opcode = 0x1d
	Aload0 Opcode = 0x2a
	Aload1 Opcode = 0x2b
	Aload2 Opcode = 0x2c
	Aload3 Opcode = 0x2d
	Iaload Opcode = 0x2e

	// Stores
	Istore  Opcode = 0x36
	Astore  Opcode = 0x3a
	Istore0 Opcode = 0x3b
	Istore1 Opcode = 0x3c
	Istore2 Opcode = 0x3d
	Istore3 Opcode = 0x3e
	Astore0 Opcode = 0x4b
	Astore1 Opcode = 0x4c
	Astore2 Opcode = 0x4d
	Astore3 Opcode = 0x4e
	Iastore Opcode = 0x4f

	// Stack
	Dup Opcode = 0x59

	// Arithmetic and logic
	Iadd  Opcode = 0x60
	Isub  Opcode = 0x64
	Imul  Opcode = 0x68
	Idiv  Opcode = 0x6c
	Irem  Opcode = 0x70
	Ineg  Opcode = 0x74
	Ishl  Opcode = 0x78
	Ishr  Opcode = 0x7a
	Iushr Opcode = 0x7c
	Iand  Opcode = 0x7e
	Ior   Opcode = 0x80
	Ixor  Opcode = 0x82
	Iinc  Opcode = 0x84

	// Branches
	Ifeq     Opcode = 0x99
	Ifne     Opcode = 0x9a
	Iflt     Opcode = 0x9b
	Ifge     Opcode = 0x9c
	Ifgt     Opcode = 0x9d
	Ifle     Opcode = 0x9e
	IfIcmpeq Opcode = 0x9f
	IfIcmpne Opcode = 0xa0
	IfIcmplt Opcode = 0xa1
	IfIcmpge Opcode = 0xa2
	IfIcmpgt Opcode = 0xa3
	IfIcmple Opcode = 0xa4
	Goto     Opcode = 0xa7

	// Returns
	Ireturn Opcode = 0xac
	Areturn Opcode = 0xb0
	Return  Opcode = 0xb1

	// Invocation and static access
	Getstatic     Opcode = 0xb2
	Invokevirtual Opcode = 0xb6
	Invokestatic  Opcode = 0xb8

	// Arrays
	Newarray    Opcode = 0xbc
	Arraylength Opcode = 0xbe
)

// Operands describes the bytes that follow an opcode.
type Operands int

const (
	OperandsNone   Operands = iota
	OperandsU8              // unsigned byte: local index, constant index, array type
	OperandsS8              // signed byte immediate
	OperandsS16             // signed 16-bit big-endian immediate
	OperandsU16             // unsigned 16-bit big-endian constant pool index
	OperandsBranch          // signed 16-bit big-endian offset from the instruction start
	OperandsIinc            // unsigned byte local index, signed byte delta
)

// Size returns the number of operand bytes.
func (o Operands) Size() int {
	switch o {
	case OperandsU8, OperandsS8:
		return 1
	case OperandsS16, OperandsU16, OperandsBranch, OperandsIinc:
		return 2
	default:
		return 0
	}
}

// Info contains information about an opcode.
type Info struct {
	Opcode   Opcode
	Name     string
	Operands Operands
}

// Width is the full instruction length in bytes, opcode included.
func (i Info) Width() int {
	return 1 + i.Operands.Size()
}

var infos [256]*Info

func init() {
	ops := []Info{
		{Nop, "nop", OperandsNone},
		{IconstM1, "iconst_m1", OperandsNone},
		{Iconst0, "iconst_0", OperandsNone},
		{Iconst1, "iconst_1", OperandsNone},
		{Iconst2, "iconst_2", OperandsNone},
		{Iconst3, "iconst_3", OperandsNone},
		{Iconst4, "iconst_4", OperandsNone},
		{Iconst5, "iconst_5", OperandsNone},
		{Bipush, "bipush", OperandsS8},
		{Sipush, "sipush", OperandsS16},
		{Ldc, "ldc", OperandsU8},
		{Iload, "iload", OperandsU8},
		{Aload, "aload", OperandsU8},
		{Iload0, "iload_0", OperandsNone},
		{Iload1, "iload_1", OperandsNone},
		{Iload2, "iload_2", OperandsNone},
		{Iload3, "iload_3", OperandsNone},
		{Aload0, "aload_0", OperandsNone},
		{Aload1, "aload_1", OperandsNone},
		{Aload2, "aload_2", OperandsNone},
		{Aload3, "aload_3", OperandsNone},
		{Iaload, "iaload", OperandsNone},
		{Istore, "istore", OperandsU8},
		{Astore, "astore", OperandsU8},
		{Istore0, "istore_0", OperandsNone},
		{Istore1, "istore_1", OperandsNone},
		{Istore2, "istore_2", OperandsNone},
		{Istore3, "istore_3", OperandsNone},
		{Astore0, "astore_0", OperandsNone},
		{Astore1, "astore_1", OperandsNone},
		{Astore2, "astore_2", OperandsNone},
		{Astore3, "astore_3", OperandsNone},
		{Iastore, "iastore", OperandsNone},
		{Dup, "dup", OperandsNone},
		{Iadd, "iadd", OperandsNone},
		{Isub, "isub", OperandsNone},
		{Imul, "imul", OperandsNone},
		{Idiv, "idiv", OperandsNone},
		{Irem, "irem", OperandsNone},
		{Ineg, "ineg", OperandsNone},
		{Ishl, "ishl", OperandsNone},
		{Ishr, "ishr", OperandsNone},
		{Iushr, "iushr", OperandsNone},
		{Iand, "iand", OperandsNone},
		{Ior, "ior", OperandsNone},
		{Ixor, "ixor", OperandsNone},
		{Iinc, "iinc", OperandsIinc},
		{Ifeq, "ifeq", OperandsBranch},
		{Ifne, "ifne", OperandsBranch},
		{Iflt, "iflt", OperandsBranch},
		{Ifge, "ifge", OperandsBranch},
		{Ifgt, "ifgt", OperandsBranch},
		{Ifle, "ifle", OperandsBranch},
		{IfIcmpeq, "if_icmpeq", OperandsBranch},
		{IfIcmpne, "if_icmpne", OperandsBranch},
		{IfIcmplt, "if_icmplt", OperandsBranch},
		{IfIcmpge, "if_icmpge", OperandsBranch},
		{IfIcmpgt, "if_icmpgt", OperandsBranch},
		{IfIcmple, "if_icmple", OperandsBranch},
		{Goto, "goto", OperandsBranch},
		{Ireturn, "ireturn", OperandsNone},
		{Areturn, "areturn", OperandsNone},
		{Return, "return", OperandsNone},
		{Getstatic, "getstatic", OperandsU16},
		{Invokevirtual, "invokevirtual", OperandsU16},
		{Invokestatic, "invokestatic", OperandsU16},
		{Newarray, "newarray", OperandsU8},
		{Arraylength, "arraylength", OperandsNone},
	}
	for i := range ops {
		infos[ops[i].Opcode] = &ops[i]
	}
}

// Lookup returns the Info for a supported opcode.
func Lookup(op Opcode) (Info, bool) {
	if info := infos[op]; info != nil {
		return *info, true
	}
	return Info{}, false
}

// Supported reports whether op belongs to the instruction subset.
func Supported(op Opcode) bool {
	return infos[op] != nil
}

// IsBranch reports whether op carries a relative branch offset.
func (op Opcode) IsBranch() bool {
	info, ok := Lookup(op)
	return ok && info.Operands == OperandsBranch
}

// IsReturn reports whether op completes the current method.
func (op Opcode) IsReturn() bool {
	return op == Return || op == Ireturn || op == Areturn
}

func (op Opcode) String() string {
	if info, ok := Lookup(op); ok {
		return info.Name
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(op))
}

// Int16 decodes a big-endian two's-complement 16-bit value.
func Int16(hi, lo byte) int16 {
	return int16(uint16(hi)<<8 | uint16(lo))
}

// Uint16 decodes a big-endian unsigned 16-bit value.
func Uint16(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
