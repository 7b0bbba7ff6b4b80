package interpreter

import (
	"io"
	"testing"

	"teenyjvm/pkg/classfile"

	"github.com/stretchr/testify/require"
)

// fakeClass is a ClassModel backed by maps keyed on constant pool index.
type fakeClass struct {
	ints    map[uint16]int32
	methods map[uint16]*classfile.Method
}

func (c *fakeClass) FindMethod(name, descriptor string) (*classfile.Method, error) {
	for _, m := range c.methods {
		if m.Name == name && m.Descriptor == descriptor {
			return m, nil
		}
	}
	return nil, classfile.ErrMethodNotFound
}

func (c *fakeClass) ResolveMethod(index uint16) (*classfile.Method, error) {
	if m, ok := c.methods[index]; ok {
		return m, nil
	}
	return nil, classfile.ErrBadConstant
}

func (c *fakeClass) ResolveInteger(index uint16) (int32, error) {
	if v, ok := c.ints[index]; ok {
		return v, nil
	}
	return 0, classfile.ErrBadConstant
}

func newMethod(t *testing.T, name, desc string, maxStack, maxLocals int, code ...byte) *classfile.Method {
	t.Helper()
	params, ret, err := classfile.ParseMethodDescriptor(desc)
	require.NoError(t, err)
	return &classfile.Method{
		AccessFlags: classfile.AccPublic | classfile.AccStatic,
		Name:        name,
		Descriptor:  desc,
		MaxStack:    maxStack,
		MaxLocals:   maxLocals,
		Code:        code,
		Params:      params,
		ReturnType:  ret,
	}
}

// execute runs code as the body of a no-argument method with room for 8
// operands and 4 locals.
func execute(t *testing.T, code []byte, opts ...Option) (Value, error) {
	t.Helper()
	m := newMethod(t, "test", "()I", 8, 4, code...)
	opts = append([]Option{WithWriter(io.Discard)}, opts...)
	return NewInterpreter(&fakeClass{}, opts...).Invoke(m)
}

func executeInt(t *testing.T, code []byte) int32 {
	t.Helper()
	v, err := execute(t, code)
	require.NoError(t, err)
	require.True(t, v.Present, "method returned no value")
	return v.Int
}

// build assembles a class whose methods may call each other through
// Methodref entries created with b.Methodref before the code is written.
func build(t *testing.T, b *classfile.Builder) *classfile.Class {
	t.Helper()
	c, err := b.Build()
	require.NoError(t, err)
	return c
}

func hi(idx uint16) byte { return byte(idx >> 8) }
func lo(idx uint16) byte { return byte(idx) }
