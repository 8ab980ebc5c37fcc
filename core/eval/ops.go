package eval

import (
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/mshell/core/lexer"
	"github.com/josephlewis42/mshell/core/object"
)

// pop2 pops the top two values. top was pushed last.
func pop2(t lexer.Token, stack *object.Stack) (top, second object.Value, err error) {
	if stack.Len() < 2 {
		return nil, nil, newError(t, ErrEmptyStack, "'%s' requires two values on the stack, found %d", t.Lexeme, stack.Len())
	}
	top, _ = stack.Pop()
	second, _ = stack.Pop()
	return top, second, nil
}

func (e *Evaluator) integer(t lexer.Token, stack *object.Stack) error {
	n, err := strconv.ParseInt(t.Lexeme, 10, 32)
	if err != nil {
		return wrapError(t, ErrSyntax, err, "invalid integer %s", t.Lexeme)
	}
	stack.Push(&object.Integer{Value: int32(n)})
	return nil
}

func (e *Evaluator) equals(t lexer.Token, stack *object.Stack) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}

	a, aok := second.(*object.Integer)
	b, bok := top.(*object.Integer)
	if !aok || !bok {
		return newError(t, ErrType, "cannot compare a %s to a %s with '='", second.TypeName(), top.TypeName())
	}

	stack.Push(&object.Boolean{Value: a.Value == b.Value})
	return nil
}

func (e *Evaluator) not(t lexer.Token, stack *object.Stack) error {
	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "cannot 'not' an empty stack")
	}

	b, ok := obj.(*object.Boolean)
	if !ok {
		return newError(t, ErrType, "cannot 'not' a %s", obj.TypeName())
	}

	stack.Push(&object.Boolean{Value: !b.Value})
	return nil
}

func (e *Evaluator) andOr(t lexer.Token, stack *object.Stack) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}

	a, aok := second.(*object.Boolean)
	b, bok := top.(*object.Boolean)
	if !aok || !bok {
		return newError(t, ErrType, "cannot '%s' a %s and a %s", t.Lexeme, second.TypeName(), top.TypeName())
	}

	result := a.Value && b.Value
	if t.Kind == lexer.Or {
		result = a.Value || b.Value
	}
	stack.Push(&object.Boolean{Value: result})
	return nil
}

// compare handles the ordering operators. < and > fall back to redirection
// when the operands aren't integers.
func (e *Evaluator) compare(t lexer.Token, stack *object.Stack) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}

	a, aok := second.(*object.Integer)
	b, bok := top.(*object.Integer)
	if aok && bok {
		var result bool
		switch t.Kind {
		case lexer.GreaterThanOrEqual:
			result = a.Value >= b.Value
		case lexer.LessThanOrEqual:
			result = a.Value <= b.Value
		case lexer.LessThan:
			result = a.Value < b.Value
		case lexer.GreaterThan:
			result = a.Value > b.Value
		}
		stack.Push(&object.Boolean{Value: result})
		return nil
	}

	if t.Kind == lexer.LessThan || t.Kind == lexer.GreaterThan {
		return e.redirect(t, stack, second, top)
	}

	return newError(t, ErrType, "cannot apply '%s' to a %s and a %s", t.Lexeme, second.TypeName(), top.TypeName())
}

// redirect attaches a file to a list or quotation and pushes it back. The
// file name may be on either side of the target.
//
// The target is modified in place, not copied: a list or quotation stored in
// a variable carries the redirect from then on.
func (e *Evaluator) redirect(t lexer.Token, stack *object.Stack, second, top object.Value) error {
	target, path := second, top
	if _, ok := textOf(path); !ok {
		target, path = top, second
	}

	file, ok := textOf(path)
	if !ok {
		return newError(t, ErrType, "cannot redirect a %s to a %s, expected a string or literal file name", second.TypeName(), top.TypeName())
	}

	var redirect *object.Redirect
	switch target := target.(type) {
	case *object.List:
		redirect = &target.Redirect

	case *object.Quotation:
		redirect = &target.Redirect
		// Every process in the quotation appends, so start from empty.
		if t.Kind != lexer.LessThan {
			if err := e.Runner.Truncate(file); err != nil {
				return wrapError(t, ErrProcess, err, "redirect failed")
			}
		}

	case *object.Pipe:
		return newError(t, ErrType, "cannot redirect a Pipe, add the redirect to the first or last list of the pipeline")

	default:
		return newError(t, ErrType, "cannot redirect a %s, expected a list or quotation", target.TypeName())
	}

	switch t.Kind {
	case lexer.GreaterThan:
		redirect.OutputFile = file
	case lexer.LessThan:
		redirect.InputFile = file
	case lexer.StderrRedirect:
		redirect.ErrorFile = file
	}
	stack.Push(target)
	return nil
}

// textOf returns the text of a String or Literal.
func textOf(v object.Value) (string, bool) {
	switch v := v.(type) {
	case *object.String:
		return v.Content, true
	case *object.Literal:
		return v.Text, true
	default:
		return "", false
	}
}

// index applies :N:, N:, :N and N:M to the value on top of the stack.
func (e *Evaluator) index(t lexer.Token, stack *object.Stack) error {
	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "cannot index an empty stack")
	}

	parts := strings.Split(t.Lexeme, ":")
	bounds := make([]int, 0, 2)
	for _, part := range parts {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return wrapError(t, ErrSyntax, err, "invalid index %s", t.Lexeme)
		}
		bounds = append(bounds, n)
	}

	length, err := object.Length(obj)
	if err != nil {
		return newError(t, ErrType, "cannot index a %s with '%s'", obj.TypeName(), t.Lexeme)
	}

	var result object.Value
	switch t.Kind {
	case lexer.Indexer:
		result, err = object.Index(obj, bounds[0])
	case lexer.StartIndexer:
		result, err = object.Slice(obj, bounds[0], length)
	case lexer.EndIndexer:
		result, err = object.Slice(obj, 0, bounds[0])
	default:
		result, err = object.Slice(obj, bounds[0], bounds[1])
	}

	if err != nil {
		return wrapError(t, ErrArgument, err, "bad index '%s'", t.Lexeme)
	}

	stack.Push(result)
	return nil
}

func (e *Evaluator) minus(t lexer.Token, stack *object.Stack) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}

	a, aok := second.(*object.Integer)
	b, bok := top.(*object.Integer)
	if !aok || !bok {
		return newError(t, ErrType, "cannot subtract a %s from a %s", top.TypeName(), second.TypeName())
	}

	stack.Push(&object.Integer{Value: a.Value - b.Value})
	return nil
}

func (e *Evaluator) plus(t lexer.Token, stack *object.Stack) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}

	switch a := second.(type) {
	case *object.Integer:
		if b, ok := top.(*object.Integer); ok {
			stack.Push(&object.Integer{Value: a.Value + b.Value})
			return nil
		}
	case *object.Literal:
		if b, ok := top.(*object.Literal); ok {
			stack.Push(&object.Literal{Text: a.Text + b.Text})
			return nil
		}
	}

	left, lok := textOf(second)
	right, rok := textOf(top)
	if !lok || !rok {
		return newError(t, ErrType, "cannot add a %s and a %s", second.TypeName(), top.TypeName())
	}

	stack.Push(object.NewString(left + right))
	return nil
}

func (e *Evaluator) store(t lexer.Token, stack *object.Stack) error {
	name := strings.TrimPrefix(t.Lexeme, "@")

	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "nothing on the stack to store into variable %s", name)
	}

	e.Variables[name] = obj
	return nil
}

func (e *Evaluator) retrieve(t lexer.Token, stack *object.Stack) error {
	name := t.Lexeme[:len(t.Lexeme)-1]

	obj, ok := e.Variables[name]
	if !ok {
		return newError(t, ErrUndefinedVariable, "could not find variable %s, defined variables: %s", name, strings.Join(e.VariableNames(), ", "))
	}

	stack.Push(obj)
	return nil
}

// VariableNames returns the defined variable names, sorted.
func (e *Evaluator) VariableNames() []string {
	names := make([]string, 0, len(e.Variables))
	for name := range e.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Evaluator) pipe(t lexer.Token, stack *object.Stack) error {
	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "cannot pipe an empty stack")
	}

	list, ok := obj.(*object.List)
	if !ok {
		return newError(t, ErrType, "argument for pipe expected to be a list, received a %s", obj.TypeName())
	}

	stack.Push(&object.Pipe{List: list})
	return nil
}
