package classfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleClass(t *testing.T) (*Class, *Builder) {
	t.Helper()

	b := NewBuilder("Sample")
	add := b.Methodref("Sample", "add", "(II)I")
	b.Integer(100000)
	b.Method(AccPublic|AccStatic, "add", "(II)I", 2, 2, []byte{0x1a, 0x1b, 0x60, 0xac})
	b.Method(AccPublic|AccStatic, "main", "([Ljava/lang/String;)V", 2, 1, []byte{
		0x04, 0x05, 0xb8, byte(add >> 8), byte(add), 0x3b, 0xb1,
	})

	c, err := b.Build()
	require.NoError(t, err)
	return c, b
}

func TestParseBuiltClass(t *testing.T) {
	c, _ := sampleClass(t)

	require.Equal(t, uint16(52), c.MajorVersion)
	require.Equal(t, "Sample", c.ClassName())
	require.Len(t, c.Methods, 2)

	add := c.Methods[0]
	require.Equal(t, "add", add.Name)
	require.Equal(t, "(II)I", add.Descriptor)
	require.Equal(t, 2, add.MaxStack)
	require.Equal(t, 2, add.MaxLocals)
	require.Equal(t, 2, add.ParamCount())
	require.False(t, add.ReturnsVoid())
	require.Equal(t, []byte{0x1a, 0x1b, 0x60, 0xac}, add.Code)

	main := c.Methods[1]
	require.Equal(t, 1, main.ParamCount())
	require.True(t, main.ReturnsVoid())
	require.Equal(t, "main([Ljava/lang/String;)V", main.String())
}

func TestParseReader(t *testing.T) {
	_, b := sampleClass(t)
	c, err := Parse(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	require.Len(t, c.Methods, 2)
}

func TestFindMethod(t *testing.T) {
	c, _ := sampleClass(t)

	m, err := c.FindMethod("main", "([Ljava/lang/String;)V")
	require.NoError(t, err)
	require.Equal(t, "main", m.Name)

	_, err = c.FindMethod("main", "()V")
	require.ErrorIs(t, err, ErrMethodNotFound)
}

func TestResolveMethod(t *testing.T) {
	c, b := sampleClass(t)

	m, err := c.ResolveMethod(b.Methodref("Sample", "add", "(II)I"))
	require.NoError(t, err)
	require.Equal(t, "add", m.Name)

	_, err = c.ResolveMethod(b.Integer(100000))
	require.ErrorIs(t, err, ErrBadConstant)

	_, err = c.ResolveMethod(0)
	require.ErrorIs(t, err, ErrBadConstant)
}

func TestResolveInteger(t *testing.T) {
	c, b := sampleClass(t)

	v, err := c.ResolveInteger(b.Integer(100000))
	require.NoError(t, err)
	require.Equal(t, int32(100000), v)

	_, err = c.ResolveInteger(b.Utf8("Code"))
	require.ErrorIs(t, err, ErrBadConstant)

	_, err = c.ResolveInteger(uint16(len(c.Constants)))
	require.ErrorIs(t, err, ErrBadConstant)
}

func TestMemberRef(t *testing.T) {
	b := NewBuilder("Hello")
	out := b.Fieldref("java/lang/System", "out", "Ljava/io/PrintStream;")
	c, err := b.Build()
	require.NoError(t, err)

	owner, name, desc, err := c.MemberRef(out)
	require.NoError(t, err)
	require.Equal(t, "java/lang/System", owner)
	require.Equal(t, "out", name)
	require.Equal(t, "Ljava/io/PrintStream;", desc)
}

func TestBuilderDeduplicates(t *testing.T) {
	b := NewBuilder("Dup")
	require.Equal(t, b.Integer(7), b.Integer(7))
	require.Equal(t, b.Methodref("Dup", "f", "()V"), b.Methodref("Dup", "f", "()V"))
	require.NotEqual(t, b.Integer(7), b.Integer(8))
}

func TestBadMagic(t *testing.T) {
	_, err := ParseBytes([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 52})
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestTruncated(t *testing.T) {
	_, b := sampleClass(t)
	data := b.Bytes()

	for _, n := range []int{0, 3, 10, len(data) / 2, len(data) - 1} {
		_, err := ParseBytes(data[:n])
		require.ErrorIs(t, err, ErrTruncated, "prefix of %d bytes", n)
	}
}

func TestUnknownConstantTag(t *testing.T) {
	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 52, 0, 2, 2}
	_, err := ParseBytes(data)
	require.ErrorIs(t, err, ErrBadConstant)
}

func TestWideConstantsTakeTwoSlots(t *testing.T) {
	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 52}
	data = append(data, 0, 4) // three usable slots
	data = append(data, byte(TagLong), 0, 0, 0, 0, 0, 0, 0, 9)
	data = append(data, byte(TagInteger), 0, 0, 0, 5)
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0) // flags, this, super, counts

	c, err := ParseBytes(data)
	require.NoError(t, err)
	require.Equal(t, int64(9), c.Constants[1].Long)

	_, err = c.Constant(2)
	require.ErrorIs(t, err, ErrBadConstant)

	v, err := c.ResolveInteger(3)
	require.NoError(t, err)
	require.Equal(t, int32(5), v)
}

func TestEmptyCodeAttribute(t *testing.T) {
	c, err := NewBuilder("Empty").Method(AccStatic, "nothing", "()V", 0, 0, nil).Build()
	require.NoError(t, err)

	m, err := c.FindMethod("nothing", "()V")
	require.NoError(t, err)
	require.NotNil(t, m.Code, "an empty Code attribute is still code")
	require.Empty(t, m.Code)
}
