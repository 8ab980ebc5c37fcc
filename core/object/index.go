package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIndexable is returned when indexing a value without items.
	ErrNotIndexable = errors.New("value can't be indexed")
	// ErrIndexRange is returned for indexes outside the value.
	ErrIndexRange = errors.New("index out of range")
)

// Length is the number of items of a List or Pipe, bytes of a String or
// Literal, or tokens of a Quotation.
func Length(v Value) (int, error) {
	switch v := v.(type) {
	case *List:
		return len(v.Items), nil
	case *Pipe:
		return len(v.List.Items), nil
	case *String:
		return len(v.Content), nil
	case *Literal:
		return len(v.Text), nil
	case *Quotation:
		return len(v.Tokens), nil
	default:
		return 0, fmt.Errorf("cannot index a %s: %w", v.TypeName(), ErrNotIndexable)
	}
}

// Index returns element i of v, negative indexes count from the end.
func Index(v Value, i int) (Value, error) {
	n, err := Length(v)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, rangeError(v, i, n)
	}

	switch v := v.(type) {
	case *List:
		return v.Items[i], nil
	case *Pipe:
		return v.List.Items[i], nil
	case *String:
		return NewString(v.Content[i : i+1]), nil
	case *Literal:
		return &Literal{Text: v.Text[i : i+1]}, nil
	default:
		q := v.(*Quotation)
		return &Quotation{Tokens: q.Tokens[i : i+1 : i+1]}, nil
	}
}

// Slice returns the elements of v from start up to but excluding end.
// Negative bounds count from the end. Redirects aren't carried over.
func Slice(v Value, start, end int) (Value, error) {
	n, err := Length(v)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 || start > n {
		return nil, rangeError(v, start, n)
	}
	if end < start || end > n {
		return nil, rangeError(v, end, n)
	}

	switch v := v.(type) {
	case *List:
		return &List{Items: copyItems(v.Items[start:end])}, nil
	case *Pipe:
		return &Pipe{List: &List{Items: copyItems(v.List.Items[start:end])}}, nil
	case *String:
		return NewString(v.Content[start:end]), nil
	case *Literal:
		return &Literal{Text: v.Text[start:end]}, nil
	default:
		q := v.(*Quotation)
		return &Quotation{Tokens: q.Tokens[start:end:end]}, nil
	}
}

func copyItems(items []Value) []Value {
	out := make([]Value, len(items))
	copy(out, items)
	return out
}

func rangeError(v Value, i, n int) error {
	return fmt.Errorf("index %d out of range for %s with length %d: %w", i, v.TypeName(), n, ErrIndexRange)
}
