package verifier_test

import (
	"errors"
	"testing"

	"teenyjvm/pkg/classfile"
	"teenyjvm/pkg/verifier"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func problems(t *testing.T, err error) []*verifier.Problem {
	t.Helper()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr), "want *multierror.Error, got %T", err)

	var out []*verifier.Problem
	for _, e := range merr.Errors {
		var p *verifier.Problem
		require.True(t, errors.As(e, &p), "want *verifier.Problem, got %T", e)
		out = append(out, p)
	}
	return out
}

func TestVerifyValidClass(t *testing.T) {
	b := classfile.NewBuilder("Ok")
	add := b.Methodref("Ok", "add", "(II)I")
	k := b.Integer(100000)
	b.Method(classfile.AccStatic, "add", "(II)I", 2, 2, []byte{0x1a, 0x1b, 0x60, 0xac})
	b.Method(classfile.AccStatic, "main", "([Ljava/lang/String;)V", 2, 2, []byte{
		0x12, byte(k), // 0: ldc
		0x04,                            // 2: iconst_1
		0xb8, byte(add >> 8), byte(add), // 3: invokestatic add
		0x3c,             // 6: istore_1
		0x1b,             // 7: iload_1
		0x99, 0x00, 0x06, // 8: ifeq +6 -> 14
		0xa7, 0x00, 0x03, // 11: goto +3 -> 14
		0xb1, // 14: return
	})
	c, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, verifier.Verify(c))
}

func TestVerifyCollectsEveryProblem(t *testing.T) {
	b := classfile.NewBuilder("Bad")
	missing := b.Methodref("Bad", "missing", "()V")
	name := b.Utf8("not an integer")
	b.Method(classfile.AccStatic, "locals", "()V", 1, 1, []byte{0x1b, 0x3c, 0x84, 5, 1, 0xb1})
	b.Method(classfile.AccStatic, "consts", "()V", 1, 0, []byte{
		0x12, byte(name),
		0xb8, byte(missing >> 8), byte(missing),
		0xb1,
	})
	b.Method(classfile.AccStatic, "branches", "()V", 1, 1, []byte{
		0xa7, 0x00, 0x40, // goto 64
		0x10, 0x01, // bipush 1
		0xa7, 0xff, 0xff, // goto 4, inside bipush
		0xb1,
	})
	b.Method(classfile.AccStatic, "falls", "()V", 1, 1, []byte{0x04, 0x3b})
	c, err := b.Build()
	require.NoError(t, err)

	got := problems(t, verifier.Verify(c))

	type key struct {
		method string
		pc     int
	}
	found := map[key]bool{}
	for _, p := range got {
		found[key{p.Method, p.PC}] = true
	}

	for _, want := range []key{
		{"locals()V", 0},
		{"locals()V", 1},
		{"locals()V", 2},
		{"consts()V", 0},
		{"consts()V", 2},
		{"branches()V", 0},
		{"branches()V", 5},
		{"falls()V", 2},
	} {
		require.True(t, found[want], "missing problem %+v in %v", want, got)
	}
	require.Len(t, got, 8)
}

func TestVerifyMethodDecodingStops(t *testing.T) {
	c, err := classfile.NewBuilder("X").Build()
	require.NoError(t, err)

	tests := []struct {
		name string
		code []byte
		msg  string
	}{
		{"unsupported opcode", []byte{0x04, 0xbf, 0xb1}, "unsupported opcode 0xbf"},
		{"truncated", []byte{0x04, 0x11, 0x00}, "truncated sipush"},
		{"empty", []byte{}, "empty code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &classfile.Method{Name: "m", Descriptor: "()V", MaxStack: 2, MaxLocals: 0, Code: tt.code}
			got := problems(t, verifier.Method(c, m))
			require.Len(t, got, 1)
			require.Contains(t, got[0].Msg, tt.msg)
		})
	}
}

func TestVerifySkipsMethodsWithoutCode(t *testing.T) {
	c, err := classfile.NewBuilder("Abstract").Build()
	require.NoError(t, err)
	c.Methods = append(c.Methods, &classfile.Method{Name: "native", Descriptor: "()V"})

	require.NoError(t, verifier.Verify(c))
}

func TestProblemError(t *testing.T) {
	p := &verifier.Problem{Method: "f()V", PC: 7, Msg: "bad"}
	require.Equal(t, "f()V pc=7: bad", p.Error())
}
