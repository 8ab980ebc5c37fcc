package object

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyStack is returned when popping or peeking an empty stack.
var ErrEmptyStack = errors.New("empty stack")

// Stack is a LIFO of values, the top is the end of the slice.
type Stack []Value

// Push adds v to the top of the stack.
func (s *Stack) Push(v Value) {
	*s = append(*s, v)
}

// Pop removes and returns the top of the stack.
func (s *Stack) Pop() (Value, error) {
	top, err := s.Peek()
	if err != nil {
		return nil, err
	}
	(*s)[len(*s)-1] = nil
	*s = (*s)[:len(*s)-1]
	return top, nil
}

// Peek returns the top of the stack without removing it.
func (s *Stack) Peek() (Value, error) {
	if len(*s) == 0 {
		return nil, ErrEmptyStack
	}
	return (*s)[len(*s)-1], nil
}

// Len is the number of values on the stack.
func (s *Stack) Len() int {
	return len(*s)
}

// Clear removes every value.
func (s *Stack) Clear() {
	*s = (*s)[:0]
}

func (s *Stack) String() string {
	var b strings.Builder
	b.WriteString("Stack contents:\n")
	for i, v := range *s {
		fmt.Fprintf(&b, "%d: %s\n", i, v.DebugString())
	}
	b.WriteString("End of stack contents\n")
	return b.String()
}
