// Package classfile reads JVM class files into a method table and constant
// pool, and answers the lookups the interpreter needs: methods by name and
// descriptor, methods by Methodref index, and integer constants.
package classfile

import (
	"errors"
	"fmt"
	"io"
)

const Magic uint32 = 0xCAFEBABE

var (
	ErrBadMagic       = errors.New("not a class file")
	ErrTruncated      = errors.New("truncated class file")
	ErrBadConstant    = errors.New("bad constant pool entry")
	ErrBadDescriptor  = errors.New("bad method descriptor")
	ErrMethodNotFound = errors.New("method not found")
)

// Class is a parsed class file.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	Constants    []Constant // index 0 is unused
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Methods      []*Method
}

// Method is a method_info together with its Code attribute.
type Method struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	MaxStack    int
	MaxLocals   int
	Code        []byte // nil for abstract and native methods
	Params      []string
	ReturnType  string
}

// ParamCount is the number of declared parameters, one local slot each.
func (m *Method) ParamCount() int {
	return len(m.Params)
}

// ReturnsVoid reports whether the descriptor's return type is V.
func (m *Method) ReturnsVoid() bool {
	return m.ReturnType == "V"
}

func (m *Method) String() string {
	return m.Name + m.Descriptor
}

// Parse reads a whole class file from r.
func Parse(r io.Reader) (*Class, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read class file: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes decodes a class file held in memory.
func ParseBytes(data []byte) (*Class, error) {
	r := &reader{buf: data}

	if magic := r.u4(); r.err == nil && magic != Magic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrBadMagic, magic)
	}

	c := &Class{}
	c.MinorVersion = r.u2()
	c.MajorVersion = r.u2()

	if err := c.readConstants(r); err != nil {
		return nil, err
	}

	c.AccessFlags = r.u2()
	c.ThisClass = r.u2()
	c.SuperClass = r.u2()

	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		c.Interfaces = append(c.Interfaces, r.u2())
	}

	// Fields carry nothing the interpreter uses.
	n = int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		r.u2() // access flags
		r.u2() // name
		r.u2() // descriptor
		skipAttributes(r)
	}

	n = int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		m, err := c.readMethod(r)
		if err != nil {
			return nil, err
		}
		if m != nil {
			c.Methods = append(c.Methods, m)
		}
	}

	skipAttributes(r)

	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

func (c *Class) readConstants(r *reader) error {
	count := int(r.u2())
	if r.err != nil {
		return r.err
	}
	if count == 0 {
		return fmt.Errorf("%w: constant pool count is zero", ErrBadConstant)
	}

	c.Constants = make([]Constant, count)
	for i := 1; i < count; i++ {
		k := Constant{Tag: Tag(r.u1())}
		switch k.Tag {
		case TagUtf8:
			k.Utf8 = string(r.take(int(r.u2())))
		case TagInteger, TagFloat:
			k.Int = int32(r.u4())
		case TagLong, TagDouble:
			k.Long = int64(r.u8())
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			k.Index1 = r.u2()
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
			TagDynamic, TagInvokeDynamic:
			k.Index1 = r.u2()
			k.Index2 = r.u2()
		case TagMethodHandle:
			k.RefKind = r.u1()
			k.Index1 = r.u2()
		default:
			if r.err != nil {
				return r.err
			}
			return fmt.Errorf("%w: unknown tag %d at index %d", ErrBadConstant, k.Tag, i)
		}
		if r.err != nil {
			return r.err
		}

		c.Constants[i] = k
		if k.wide() {
			i++
		}
	}

	return nil
}

func (c *Class) readMethod(r *reader) (*Method, error) {
	m := &Method{AccessFlags: r.u2()}
	nameIdx, descIdx := r.u2(), r.u2()
	if r.err != nil {
		return nil, r.err
	}

	var err error
	if m.Name, err = c.Utf8(nameIdx); err != nil {
		return nil, fmt.Errorf("method name: %w", err)
	}
	if m.Descriptor, err = c.Utf8(descIdx); err != nil {
		return nil, fmt.Errorf("method %s descriptor: %w", m.Name, err)
	}
	if m.Params, m.ReturnType, err = ParseMethodDescriptor(m.Descriptor); err != nil {
		return nil, fmt.Errorf("method %s: %w", m.Name, err)
	}

	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		attrName, err := c.Utf8(r.u2())
		length := int(r.u4())
		if r.err != nil {
			return nil, r.err
		}
		if err != nil || attrName != "Code" {
			r.take(length)
			continue
		}

		body := &reader{buf: r.take(length)}
		if r.err != nil {
			return nil, r.err
		}
		m.MaxStack = int(body.u2())
		m.MaxLocals = int(body.u2())
		m.Code = append([]byte{}, body.take(int(body.u4()))...)
		if body.err != nil {
			return nil, fmt.Errorf("method %s code attribute: %w", m, body.err)
		}
		// The exception table and nested attributes are not used.
	}

	return m, r.err
}

func skipAttributes(r *reader) {
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		r.u2()
		r.take(int(r.u4()))
	}
}

// Constant returns the constant pool entry at a 1-based index.
func (c *Class) Constant(index uint16) (Constant, error) {
	if index == 0 || int(index) >= len(c.Constants) {
		return Constant{}, fmt.Errorf("%w: index %d out of range [1, %d)", ErrBadConstant, index, len(c.Constants))
	}
	k := c.Constants[index]
	if k.Tag == 0 {
		return Constant{}, fmt.Errorf("%w: index %d is the upper half of a wide constant", ErrBadConstant, index)
	}
	return k, nil
}

func (c *Class) expect(index uint16, tags ...Tag) (Constant, error) {
	k, err := c.Constant(index)
	if err != nil {
		return Constant{}, err
	}
	for _, t := range tags {
		if k.Tag == t {
			return k, nil
		}
	}
	return Constant{}, fmt.Errorf("%w: index %d is %s, want %v", ErrBadConstant, index, k.Tag, tags)
}

// Utf8 returns the string held by a Utf8 entry.
func (c *Class) Utf8(index uint16) (string, error) {
	k, err := c.expect(index, TagUtf8)
	if err != nil {
		return "", err
	}
	return k.Utf8, nil
}

// ClassName returns the internal name of this class, or "" if the this_class
// entry is malformed.
func (c *Class) ClassName() string {
	k, err := c.expect(c.ThisClass, TagClass)
	if err != nil {
		return ""
	}
	name, _ := c.Utf8(k.Index1)
	return name
}

// MemberRef resolves a Fieldref, Methodref or InterfaceMethodref entry to
// its owner class, member name and descriptor.
func (c *Class) MemberRef(index uint16) (owner, name, descriptor string, err error) {
	ref, err := c.expect(index, TagFieldref, TagMethodref, TagInterfaceMethodref)
	if err != nil {
		return "", "", "", err
	}
	class, err := c.expect(ref.Index1, TagClass)
	if err != nil {
		return "", "", "", err
	}
	if owner, err = c.Utf8(class.Index1); err != nil {
		return "", "", "", err
	}
	nat, err := c.expect(ref.Index2, TagNameAndType)
	if err != nil {
		return "", "", "", err
	}
	if name, err = c.Utf8(nat.Index1); err != nil {
		return "", "", "", err
	}
	if descriptor, err = c.Utf8(nat.Index2); err != nil {
		return "", "", "", err
	}
	return owner, name, descriptor, nil
}

// FindMethod looks a method up by name and descriptor.
func (c *Class) FindMethod(name, descriptor string) (*Method, error) {
	for _, m := range c.Methods {
		if m.Name == name && m.Descriptor == descriptor {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s%s", ErrMethodNotFound, name, descriptor)
}

// ResolveMethod finds the method a Methodref entry names. Only methods of
// this class can be resolved.
func (c *Class) ResolveMethod(index uint16) (*Method, error) {
	_, name, descriptor, err := c.MemberRef(index)
	if err != nil {
		return nil, err
	}
	return c.FindMethod(name, descriptor)
}

// ResolveInteger returns the value of an Integer entry.
func (c *Class) ResolveInteger(index uint16) (int32, error) {
	k, err := c.expect(index, TagInteger)
	if err != nil {
		return 0, err
	}
	return k.Int, nil
}
