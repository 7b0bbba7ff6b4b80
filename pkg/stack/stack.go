package stack

import "errors"

var (
	ErrOverflow  = errors.New("operand stack overflow")
	ErrUnderflow = errors.New("operand stack underflow")
)

// Stack is a LIFO with a fixed capacity set at creation.
type Stack[T any] struct {
	a   []T
	l   int
	max int
}

// NewStack creates a stack that holds at most capacity elements
func NewStack[T any](capacity int, elm ...T) *Stack[T] {
	stack := Stack[T]{
		a:   make([]T, 0, capacity),
		l:   0,
		max: capacity,
	}

	for _, e := range elm {
		stack.l++
		stack.a = append(stack.a, e)
	}

	return &stack
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) error {
	if s.l >= s.max {
		return ErrOverflow
	}

	s.l++
	s.a = append(s.a, elm)

	return nil
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if s.l < 1 {
		return zero, ErrUnderflow
	}

	s.l--
	elm := s.a[s.l]
	s.a = s.a[:s.l]

	return elm, nil
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (T, error) {
	var zero T
	if s.l < 1 {
		return zero, ErrUnderflow
	}

	return s.a[s.l-1], nil
}

// Size returns the number of elements on the stack
func (s *Stack[T]) Size() int {
	return s.l
}

// Cap returns the capacity the stack was created with
func (s *Stack[T]) Cap() int {
	return s.max
}

// Array returns a copy of the stack contents, bottom first
func (s *Stack[T]) Array() []T {
	return append([]T(nil), s.a...)
}
