package disasm_test

import (
	"bytes"
	"testing"

	"teenyjvm/pkg/classfile"
	"teenyjvm/pkg/color"
	"teenyjvm/pkg/disasm"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.EnableColor(false)
	m.Run()
}

func TestClassListing(t *testing.T) {
	b := classfile.NewBuilder("Demo")
	add := b.Methodref("Demo", "add", "(II)I")
	out := b.Fieldref("java/lang/System", "out", "Ljava/io/PrintStream;")
	printInt := b.Methodref("java/io/PrintStream", "println", "(I)V")
	k := b.Integer(70000)
	b.Method(classfile.AccStatic, "add", "(II)I", 2, 2, []byte{0x1a, 0x1b, 0x60, 0xac})
	b.Method(classfile.AccStatic, "main", "([Ljava/lang/String;)V", 3, 1, []byte{
		0x12, byte(k), // 0
		0x10, 0xfe, // 2
		0xb8, byte(add >> 8), byte(add), // 4
		0x3b,             // 7
		0x84, 0, 0xff, // 8
		0x1a,             // 11
		0x9e, 0xff, 0xff, // 12: ifle -1 -> 11
		0xb2, byte(out >> 8), byte(out), // 15
		0x1a,                                    // 18
		0xb6, byte(printInt >> 8), byte(printInt), // 19
		0xb1, // 22
	})
	c, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, disasm.Class(&buf, c))
	got := buf.String()

	for _, want := range []string{
		"class Demo",
		"method add(II)I  max_stack=2 max_locals=2 params=[I I]",
		"   0  ldc #",
		"// 70000",
		"   2  bipush -2",
		"   4  invokestatic #",
		"// Demo.add:(II)I",
		"   8  iinc 0 -1",
		"  12  ifle 11",
		"// java/lang/System.out:Ljava/io/PrintStream;",
		"// java/io/PrintStream.println:(I)V",
		"  22  return",
	} {
		require.Contains(t, got, want)
	}
}

func TestMethodStopsAtBadCode(t *testing.T) {
	c, err := classfile.NewBuilder("X").Build()
	require.NoError(t, err)

	tests := []struct {
		name string
		code []byte
		want string
	}{
		{"unsupported", []byte{0x04, 0xbf, 0x04}, "1  unsupported 0xbf\n"},
		{"truncated", []byte{0x11, 0x01}, "0  sipush <truncated>\n"},
		{"unresolved ldc", []byte{0x12, 0x63, 0xb1}, "unresolved:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			m := &classfile.Method{Name: "m", Descriptor: "()V", Code: tt.code}
			require.NoError(t, disasm.Method(&buf, c, m))
			require.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestMethodWithoutCode(t *testing.T) {
	c, err := classfile.NewBuilder("X").Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, disasm.Method(&buf, c, &classfile.Method{Name: "n", Descriptor: "()V"}))
	require.Contains(t, buf.String(), "no code")
}
