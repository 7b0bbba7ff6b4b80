package opcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		op    Opcode
		name  string
		width int
	}{
		{Nop, "nop", 1},
		{IconstM1, "iconst_m1", 1},
		{Bipush, "bipush", 2},
		{Sipush, "sipush", 3},
		{Ldc, "ldc", 2},
		{Iload, "iload", 2},
		{Iload3, "iload_3", 1},
		{Istore0, "istore_0", 1},
		{Iinc, "iinc", 3},
		{Ifle, "ifle", 3},
		{IfIcmpge, "if_icmpge", 3},
		{Goto, "goto", 3},
		{Ireturn, "ireturn", 1},
		{Invokestatic, "invokestatic", 3},
		{Newarray, "newarray", 2},
		{Arraylength, "arraylength", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := Lookup(tt.op)
			require.True(t, ok)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.width, info.Width())
			require.Equal(t, tt.name, tt.op.String())
		})
	}
}

func TestUnsupported(t *testing.T) {
	// lconst_0, fadd, athrow
	for _, b := range []byte{0x09, 0x62, 0xbf} {
		_, ok := Lookup(Opcode(b))
		require.False(t, ok)
		require.False(t, Supported(Opcode(b)))
	}
	require.Equal(t, "unknown(0xbf)", Opcode(0xbf).String())
}

func TestBranchAndReturnClasses(t *testing.T) {
	require.True(t, Goto.IsBranch())
	require.True(t, IfIcmpeq.IsBranch())
	require.False(t, Iinc.IsBranch())

	require.True(t, Return.IsReturn())
	require.True(t, Ireturn.IsReturn())
	require.True(t, Areturn.IsReturn())
	require.False(t, Invokestatic.IsReturn())
}

func TestInt16(t *testing.T) {
	require.Equal(t, int16(-1), Int16(0xff, 0xff))
	require.Equal(t, int16(-32768), Int16(0x80, 0x00))
	require.Equal(t, int16(0x0107), Int16(0x01, 0x07))
	require.Equal(t, uint16(0xfffe), Uint16(0xff, 0xfe))
}
