package interpreter

import "strconv"

// Value is the outcome of a completed method: either no value (void) or one
// 32-bit integer, which for areturn is a heap handle.
type Value struct {
	Present bool
	Int     int32
}

// Void is the result of the return instruction.
func Void() Value {
	return Value{}
}

// IntValue is the result of ireturn and areturn.
func IntValue(v int32) Value {
	return Value{Present: true, Int: v}
}

// String renders the value as a string.
func (v Value) String() string {
	if !v.Present {
		return "<void>"
	}
	return strconv.FormatInt(int64(v.Int), 10)
}
