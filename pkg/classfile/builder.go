package classfile

import (
	"encoding/binary"
	"fmt"
)

// Builder assembles class file bytes. Constant pool entries are
// deduplicated, so asking for the same entry twice returns the same index.
type Builder struct {
	constants  []Constant
	index      map[Constant]uint16
	thisClass  uint16
	superClass uint16
	methods    []builtMethod
}

type builtMethod struct {
	access    uint16
	name      uint16
	desc      uint16
	maxStack  uint16
	maxLocals uint16
	code      []byte
}

const (
	AccPublic uint16 = 0x0001
	AccStatic uint16 = 0x0008
)

// NewBuilder starts a class with the given internal name extending
// java/lang/Object.
func NewBuilder(className string) *Builder {
	b := &Builder{
		constants: []Constant{{}},
		index:     make(map[Constant]uint16),
	}
	b.thisClass = b.Class(className)
	b.superClass = b.Class("java/lang/Object")
	b.Utf8("Code")
	return b
}

func (b *Builder) add(k Constant) uint16 {
	if idx, ok := b.index[k]; ok {
		return idx
	}
	idx := uint16(len(b.constants))
	b.constants = append(b.constants, k)
	b.index[k] = idx
	return idx
}

// Utf8 adds a Utf8 entry.
func (b *Builder) Utf8(s string) uint16 {
	return b.add(Constant{Tag: TagUtf8, Utf8: s})
}

// Integer adds an Integer entry.
func (b *Builder) Integer(v int32) uint16 {
	return b.add(Constant{Tag: TagInteger, Int: v})
}

// Class adds a Class entry.
func (b *Builder) Class(name string) uint16 {
	return b.add(Constant{Tag: TagClass, Index1: b.Utf8(name)})
}

// NameAndType adds a NameAndType entry.
func (b *Builder) NameAndType(name, descriptor string) uint16 {
	return b.add(Constant{Tag: TagNameAndType, Index1: b.Utf8(name), Index2: b.Utf8(descriptor)})
}

// Methodref adds a Methodref entry.
func (b *Builder) Methodref(class, name, descriptor string) uint16 {
	return b.add(Constant{Tag: TagMethodref, Index1: b.Class(class), Index2: b.NameAndType(name, descriptor)})
}

// Fieldref adds a Fieldref entry.
func (b *Builder) Fieldref(class, name, descriptor string) uint16 {
	return b.add(Constant{Tag: TagFieldref, Index1: b.Class(class), Index2: b.NameAndType(name, descriptor)})
}

// Method adds a method with a Code attribute.
func (b *Builder) Method(access uint16, name, descriptor string, maxStack, maxLocals int, code []byte) *Builder {
	b.methods = append(b.methods, builtMethod{
		access:    access,
		name:      b.Utf8(name),
		desc:      b.Utf8(descriptor),
		maxStack:  uint16(maxStack),
		maxLocals: uint16(maxLocals),
		code:      append([]byte(nil), code...),
	})
	return b
}

// Bytes encodes the class file.
func (b *Builder) Bytes() []byte {
	be := binary.BigEndian
	out := be.AppendUint32(nil, Magic)
	out = be.AppendUint16(out, 0)  // minor
	out = be.AppendUint16(out, 52) // major: Java 8

	out = be.AppendUint16(out, uint16(len(b.constants)))
	for _, k := range b.constants[1:] {
		out = appendConstant(out, k)
	}

	out = be.AppendUint16(out, AccPublic)
	out = be.AppendUint16(out, b.thisClass)
	out = be.AppendUint16(out, b.superClass)
	out = be.AppendUint16(out, 0) // interfaces
	out = be.AppendUint16(out, 0) // fields

	codeName := b.index[Constant{Tag: TagUtf8, Utf8: "Code"}]
	out = be.AppendUint16(out, uint16(len(b.methods)))
	for _, m := range b.methods {
		out = be.AppendUint16(out, m.access)
		out = be.AppendUint16(out, m.name)
		out = be.AppendUint16(out, m.desc)
		out = be.AppendUint16(out, 1) // attributes

		out = be.AppendUint16(out, codeName)
		out = be.AppendUint32(out, uint32(2+2+4+len(m.code)+2+2))
		out = be.AppendUint16(out, m.maxStack)
		out = be.AppendUint16(out, m.maxLocals)
		out = be.AppendUint32(out, uint32(len(m.code)))
		out = append(out, m.code...)
		out = be.AppendUint16(out, 0) // exception table
		out = be.AppendUint16(out, 0) // code attributes
	}

	return be.AppendUint16(out, 0) // class attributes
}

// Build encodes and re-parses the class.
func (b *Builder) Build() (*Class, error) {
	c, err := ParseBytes(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("built class does not parse: %w", err)
	}
	return c, nil
}

func appendConstant(out []byte, k Constant) []byte {
	be := binary.BigEndian
	out = append(out, byte(k.Tag))
	switch k.Tag {
	case TagUtf8:
		out = be.AppendUint16(out, uint16(len(k.Utf8)))
		out = append(out, k.Utf8...)
	case TagInteger, TagFloat:
		out = be.AppendUint32(out, uint32(k.Int))
	case TagLong, TagDouble:
		out = be.AppendUint64(out, uint64(k.Long))
	case TagMethodHandle:
		out = append(out, k.RefKind)
		out = be.AppendUint16(out, k.Index1)
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		out = be.AppendUint16(out, k.Index1)
	default:
		out = be.AppendUint16(out, k.Index1)
		out = be.AppendUint16(out, k.Index2)
	}
	return out
}
