package classfile

import (
	"fmt"
	"strings"
)

// ParseMethodDescriptor splits a method descriptor such as "(I[II)V" into
// its parameter field types and return type.
func ParseMethodDescriptor(desc string) (params []string, ret string, err error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, "", fmt.Errorf("%w: %q does not start with '('", ErrBadDescriptor, desc)
	}

	i := 1
	for i < len(desc) && desc[i] != ')' {
		n, err := fieldTypeLen(desc[i:])
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q: %v", ErrBadDescriptor, desc, err)
		}
		params = append(params, desc[i:i+n])
		i += n
	}
	if i >= len(desc) {
		return nil, "", fmt.Errorf("%w: %q is missing ')'", ErrBadDescriptor, desc)
	}

	ret = desc[i+1:]
	if ret == "V" {
		return params, ret, nil
	}
	n, err := fieldTypeLen(ret)
	if err != nil || n != len(ret) {
		return nil, "", fmt.Errorf("%w: %q has a malformed return type", ErrBadDescriptor, desc)
	}

	return params, ret, nil
}

// fieldTypeLen returns the length of the field type at the start of s.
func fieldTypeLen(s string) (int, error) {
	dims := 0
	for dims < len(s) && s[dims] == '[' {
		dims++
	}
	if dims == len(s) {
		return 0, fmt.Errorf("unterminated array type")
	}

	switch s[dims] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return dims + 1, nil
	case 'L':
		end := strings.IndexByte(s[dims:], ';')
		if end < 2 {
			return 0, fmt.Errorf("unterminated class type")
		}
		return dims + end + 1, nil
	default:
		return 0, fmt.Errorf("unexpected %q", s[dims])
	}
}
