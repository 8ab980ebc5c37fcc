package object

import (
	"fmt"
	"testing"

	"github.com/josephlewis42/mshell/core/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleStack_String() {
	var s Stack
	s.Push(&Integer{Value: 5})
	s.Push(&List{Items: []Value{&Literal{Text: "echo"}, NewString("hi")}})

	fmt.Print(s.String())

	// Output: Stack contents:
	// 0: 5
	// 1: [echo "hi"]
	// End of stack contents
}

func TestStack(t *testing.T) {
	var s Stack

	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrEmptyStack)
	_, err = s.Peek()
	assert.ErrorIs(t, err, ErrEmptyStack)

	s.Push(&Integer{Value: 1})
	s.Push(&Boolean{Value: true})
	assert.Equal(t, 2, s.Len())

	top, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, &Boolean{Value: true}, top)

	top, err = s.Pop()
	require.NoError(t, err)
	assert.Equal(t, &Boolean{Value: true}, top)
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestParseString(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{`""`, ""},
		{`"plain"`, "plain"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"cr\r"`, "cr\r"},
		{`"back\\slash"`, `back\slash`},
		{`"say \"hi\""`, `say "hi"`},
		{`"\\n"`, `\n`},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			s, err := ParseString(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s.Content)
			assert.Equal(t, tc.raw, s.Raw)
		})
	}
}

func TestParseStringErrors(t *testing.T) {
	for _, raw := range []string{`abc`, `"`, `"\q"`, `"abc\"`} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseString(raw)
			assert.Error(t, err)
		})
	}
}

func TestCommandLine(t *testing.T) {
	cases := []struct {
		value      Value
		text       string
		lineable   bool
		typeName   string
		debugValue string
	}{
		{&Literal{Text: "ls"}, "ls", true, "Literal", "ls"},
		{NewString("a b"), "a b", true, "String", `"a b"`},
		{&Integer{Value: -4}, "-4", true, "Integer", "-4"},
		{&Boolean{Value: false}, "", false, "Boolean", "false"},
		{&List{Items: []Value{&Integer{Value: 1}}}, "", false, "List", "[1]"},
		{&Quotation{Tokens: lexer.Tokenize("1 2 +")[:3]}, "", false, "Quotation", "(1 2 +)"},
		{&Pipe{List: &List{Items: []Value{
			&List{Items: []Value{&Literal{Text: "ls"}}},
			&List{Items: []Value{&Literal{Text: "wc"}}},
		}}}, "", false, "Pipe", "[ls] | [wc]"},
	}

	for _, tc := range cases {
		t.Run(tc.typeName, func(t *testing.T) {
			text, ok := tc.value.CommandLine()
			assert.Equal(t, tc.text, text)
			assert.Equal(t, tc.lineable, ok)
			assert.Equal(t, tc.typeName, tc.value.TypeName())
			assert.Equal(t, tc.debugValue, tc.value.DebugString())
		})
	}
}

func TestIndex(t *testing.T) {
	list := &List{Items: []Value{&Literal{Text: "a"}, &Literal{Text: "b"}, &Literal{Text: "c"}}}
	tokens := lexer.Tokenize("1 2 3")
	quote := &Quotation{Tokens: tokens[:3:3]}

	cases := []struct {
		name     string
		v        Value
		i        int
		expected string
	}{
		{"list", list, 1, "b"},
		{"list from end", list, -1, "c"},
		{"string", NewString("hey"), 0, `"h"`},
		{"literal", &Literal{Text: "hey"}, -1, "y"},
		{"quotation", quote, 2, "(3)"},
		{"pipe", &Pipe{List: list}, 0, "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Index(tc.v, tc.i)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v.DebugString())
		})
	}

	_, err := Index(list, 3)
	assert.ErrorIs(t, err, ErrIndexRange)
	assert.EqualError(t, err, "index 3 out of range for List with length 3: index out of range")
	_, err = Index(list, -4)
	assert.ErrorIs(t, err, ErrIndexRange)
	_, err = Index(&Integer{Value: 1}, 0)
	assert.ErrorIs(t, err, ErrNotIndexable)
}

func TestSlice(t *testing.T) {
	list := &List{
		Items:    []Value{&Literal{Text: "a"}, &Literal{Text: "b"}, &Literal{Text: "c"}},
		Redirect: Redirect{OutputFile: "out.txt"},
	}

	v, err := Slice(list, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "[b c]", v.DebugString())
	assert.Empty(t, v.(*List).OutputFile)

	v.(*List).Items[0] = &Literal{Text: "changed"}
	assert.Equal(t, "[a b c]", list.DebugString())

	v, err = Slice(list, -2, -1)
	require.NoError(t, err)
	assert.Equal(t, "[b]", v.DebugString())

	v, err = Slice(NewString("hello"), 1, -1)
	require.NoError(t, err)
	assert.Equal(t, `"ell"`, v.DebugString())

	v, err = Slice(list, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "[]", v.DebugString())

	tokens := lexer.Tokenize("1 2 3")
	v, err = Slice(&Quotation{Tokens: tokens[:3:3]}, 1, 3)
	require.NoError(t, err)
	q := v.(*Quotation)
	assert.Len(t, q.Tokens, 2)
	assert.Equal(t, 2, cap(q.Tokens))

	_, err = Slice(list, 2, 1)
	assert.ErrorIs(t, err, ErrIndexRange)
	_, err = Slice(list, 0, 4)
	assert.ErrorIs(t, err, ErrIndexRange)
	_, err = Slice(list, -4, 2)
	assert.ErrorIs(t, err, ErrIndexRange)
	_, err = Slice(&Boolean{Value: true}, 0, 0)
	assert.ErrorIs(t, err, ErrNotIndexable)
}

func TestLength(t *testing.T) {
	n, err := Length(&Pipe{List: &List{Items: []Value{&List{}, &List{}}}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = Length(&Integer{Value: 5})
	assert.ErrorIs(t, err, ErrNotIndexable)
}
