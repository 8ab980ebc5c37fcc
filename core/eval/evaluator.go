// Package eval implements the mshell stack machine.
//
// Evaluate walks a token slice against a value stack. Nested constructs
// (lists, if branches, loop bodies, interpreted quotations) are evaluated by
// calling Evaluate recursively on a sub-slice of the same token buffer.
package eval

import (
	"os"

	"github.com/josephlewis42/mshell/core/lexer"
	"github.com/josephlewis42/mshell/core/object"
	"github.com/josephlewis42/mshell/core/process"
)

const (
	// NoBreak is the break depth of a result that didn't hit a break.
	NoBreak = -1

	// DefaultMaxLoopIterations is the iteration cap of a single loop.
	DefaultMaxLoopIterations = 15000
)

// Result is the outcome of a successful evaluation.
type Result struct {
	// BreakDepth is NoBreak, or the number of loop levels a break asked to
	// unwind.
	BreakDepth int
}

var noBreak = Result{BreakDepth: NoBreak}

// Evaluator holds the state shared by every evaluation of a program: the
// global variable table, the loop depth and the process runner. It is not
// safe for concurrent use.
type Evaluator struct {
	// Variables is the single, unscoped variable table.
	Variables map[string]object.Value
	// Args holds the positional arguments of the script.
	Args []string
	// Runner launches processes and provides the interpreter's standard I/O.
	Runner *process.Runner
	// MaxLoopIterations caps each loop, values < 1 use the default.
	MaxLoopIterations int
	// StopOnError aborts evaluation when an executed process exits non-zero.
	StopOnError bool
	// HomeDir resolves ~ expansion.
	HomeDir func() (string, error)

	loopDepth int
}

// New creates an evaluator that launches processes with runner.
func New(runner *process.Runner) *Evaluator {
	return &Evaluator{
		Variables:         make(map[string]object.Value),
		Runner:            runner,
		MaxLoopIterations: DefaultMaxLoopIterations,
		HomeDir:           os.UserHomeDir,
	}
}

// Run evaluates a complete program. A break reaching the top level is not an
// error.
func (e *Evaluator) Run(tokens []lexer.Token, stack *object.Stack) error {
	if err := lexer.Err(tokens); err != nil {
		return err
	}

	_, err := e.Evaluate(tokens, stack, process.Context{})
	return err
}

// Evaluate interprets tokens against stack. It stops at the end of the slice,
// an EOF token, the first error, or a break.
func (e *Evaluator) Evaluate(tokens []lexer.Token, stack *object.Stack, ctx process.Context) (Result, error) {
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]

		var err error
		switch t.Kind {
		case lexer.EOF:
			return noBreak, nil

		case lexer.Literal:
			err = e.literal(t, stack, ctx)

		case lexer.LeftSquareBracket:
			var end int
			end, err = matching(tokens, i, lexer.LeftSquareBracket, lexer.RightSquareBracket)
			if err == nil {
				err = e.list(tokens[i+1:end], stack, ctx)
				i = end
			}

		case lexer.LeftParen:
			var end int
			end, err = matching(tokens, i, lexer.LeftParen, lexer.RightParen)
			if err == nil {
				// Full slice expression: the view shares the buffer but can't
				// grow into it.
				stack.Push(&object.Quotation{Tokens: tokens[i+1 : end : end]})
				i = end
			}

		case lexer.RightSquareBracket, lexer.RightParen:
			err = newError(t, ErrSyntax, "found unbalanced '%s'", t.Lexeme)

		case lexer.If:
			res, err := e.evalIf(t, stack, ctx)
			if err != nil || res.BreakDepth != NoBreak {
				return res, err
			}

		case lexer.Execute, lexer.Question:
			err = e.execute(t, stack, ctx)

		case lexer.Integer:
			err = e.integer(t, stack)

		case lexer.String:
			var s *object.String
			s, err = object.ParseString(t.Lexeme)
			if err != nil {
				err = wrapError(t, ErrSyntax, err, "error parsing string")
			} else {
				stack.Push(s)
			}

		case lexer.True:
			stack.Push(&object.Boolean{Value: true})

		case lexer.False:
			stack.Push(&object.Boolean{Value: false})

		case lexer.Loop:
			err = e.loop(t, stack, ctx)

		case lexer.Break:
			return Result{BreakDepth: 1}, nil

		case lexer.Equals:
			err = e.equals(t, stack)

		case lexer.Not:
			err = e.not(t, stack)

		case lexer.And, lexer.Or:
			err = e.andOr(t, stack)

		case lexer.GreaterThanOrEqual, lexer.LessThanOrEqual, lexer.LessThan, lexer.GreaterThan:
			err = e.compare(t, stack)

		case lexer.StderrRedirect:
			var top, second object.Value
			top, second, err = pop2(t, stack)
			if err == nil {
				err = e.redirect(t, stack, second, top)
			}

		case lexer.Indexer, lexer.StartIndexer, lexer.EndIndexer, lexer.SliceIndexer:
			err = e.index(t, stack)

		case lexer.Minus:
			err = e.minus(t, stack)

		case lexer.Plus:
			err = e.plus(t, stack)

		case lexer.VarStore:
			err = e.store(t, stack)

		case lexer.VarRetrieve:
			err = e.retrieve(t, stack)

		case lexer.Pipe:
			err = e.pipe(t, stack)

		case lexer.Interpret:
			res, err := e.interpret(t, stack, ctx)
			if err != nil || res.BreakDepth != NoBreak {
				return res, err
			}

		case lexer.Error:
			err = newError(t, ErrSyntax, "%s", t.Message)

		default:
			err = newError(t, ErrSyntax, "unexpected token %s %q", t.Kind, t.Lexeme)
		}

		if err != nil {
			return noBreak, err
		}
	}

	return noBreak, nil
}

// matching returns the index of the token closing the bracket opened at
// tokens[open]. Only brackets of the same kind are counted.
func matching(tokens []lexer.Token, open int, left, right lexer.Kind) (int, error) {
	var openers []int
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case left:
			openers = append(openers, i)
		case right:
			openers = openers[:len(openers)-1]
			if len(openers) == 0 {
				return i, nil
			}
		case lexer.EOF:
			return 0, unbalanced(tokens[open], tokens[i])
		}
	}
	return 0, unbalanced(tokens[open], tokens[len(tokens)-1])
}

func unbalanced(opener, at lexer.Token) error {
	name := "bracket"
	if opener.Kind == lexer.LeftParen {
		name = "parenthesis"
	}
	return newError(at, ErrSyntax, "found unbalanced %s, '%s' opened at %s is never closed", name, opener.Lexeme, opener.Pos())
}

// list evaluates body on an isolated stack and pushes the result as a List.
func (e *Evaluator) list(body []lexer.Token, stack *object.Stack, ctx process.Context) error {
	var listStack object.Stack
	res, err := e.Evaluate(body, &listStack, ctx)
	if err != nil {
		return err
	}
	if res.BreakDepth != NoBreak {
		// Only a non-empty body can break.
		return newError(body[0], ErrBreak, "encountered break within list")
	}

	// The isolated stack holds the items bottom to top, which is source order.
	items := make([]object.Value, listStack.Len())
	copy(items, listStack)
	stack.Push(&object.List{Items: items})
	return nil
}

func (e *Evaluator) evalIf(t lexer.Token, stack *object.Stack, ctx process.Context) (Result, error) {
	obj, err := stack.Pop()
	if err != nil {
		return noBreak, newError(t, ErrEmptyStack, "cannot do an 'if' on an empty stack")
	}

	list, ok := obj.(*object.List)
	if !ok {
		return noBreak, newError(t, ErrType, "argument for if expected to be a list of quotations, received a %s", obj.TypeName())
	}

	if len(list.Items) < 2 {
		return noBreak, newError(t, ErrArgument, "if statement requires at least two arguments, found %d", len(list.Items))
	}

	branches := make([]*object.Quotation, len(list.Items))
	for i, item := range list.Items {
		q, ok := item.(*object.Quotation)
		if !ok {
			return noBreak, newError(t, ErrType, "item %d in if statement is not a quotation, received a %s", i, item.TypeName())
		}
		branches[i] = q
	}

	for i := 0; i+1 < len(branches); i += 2 {
		conditionNum := i/2 + 1

		res, err := e.Evaluate(branches[i].Tokens, stack, ctx)
		if err != nil {
			return noBreak, err
		}
		if res.BreakDepth != NoBreak {
			return noBreak, newError(t, ErrBreak, "encountered break within condition #%d of if statement", conditionNum)
		}

		top, err := stack.Pop()
		if err != nil {
			return noBreak, newError(t, ErrEmptyStack, "found an empty stack when evaluating condition #%d", conditionNum)
		}

		truthy, err := isTruthy(top)
		if err != nil {
			return noBreak, newError(t, ErrType, "expected an integer or boolean for condition #%d, received a %s", conditionNum, top.TypeName())
		}

		if truthy {
			return e.Evaluate(branches[i+1].Tokens, stack, ctx)
		}
	}

	if len(branches)%2 == 1 {
		return e.Evaluate(branches[len(branches)-1].Tokens, stack, ctx)
	}

	return noBreak, nil
}

// isTruthy follows the process convention: integer 0 is success.
func isTruthy(v object.Value) (bool, error) {
	switch v := v.(type) {
	case *object.Integer:
		return v.Value == 0, nil
	case *object.Boolean:
		return v.Value, nil
	default:
		return false, ErrType
	}
}

func (e *Evaluator) popQuotation(t lexer.Token, stack *object.Stack, op string) (*object.Quotation, error) {
	obj, err := stack.Pop()
	if err != nil {
		return nil, newError(t, ErrEmptyStack, "cannot %s an empty stack", op)
	}

	q, ok := obj.(*object.Quotation)
	if !ok {
		return nil, newError(t, ErrType, "argument for %s expected to be a quotation, received a %s", op, obj.TypeName())
	}
	return q, nil
}

// quotationContext applies the redirects of q on top of ctx.
func quotationContext(ctx process.Context, q *object.Quotation) process.Context {
	if q.InputFile != "" {
		ctx.InputFile = q.InputFile
	}
	if q.OutputFile != "" {
		ctx.OutputFile = q.OutputFile
	}
	if q.ErrorFile != "" {
		ctx.ErrorFile = q.ErrorFile
	}
	return ctx
}

func (e *Evaluator) loop(t lexer.Token, stack *object.Stack, ctx process.Context) error {
	q, err := e.popQuotation(t, stack, "loop")
	if err != nil {
		return err
	}

	if len(q.Tokens) == 0 {
		return newError(t, ErrArgument, "loop quotation needs a minimum of one token")
	}

	maxIterations := e.MaxLoopIterations
	if maxIterations < 1 {
		maxIterations = DefaultMaxLoopIterations
	}

	loopCtx := quotationContext(ctx, q)

	e.loopDepth++
	depth := e.loopDepth
	defer func() { e.loopDepth-- }()

	for iteration := 0; ; iteration++ {
		if iteration >= maxIterations {
			return newError(t, ErrInfiniteLoop, "loop exceeded %d iterations, looks like an infinite loop", maxIterations)
		}

		res, err := e.Evaluate(q.Tokens, stack, loopCtx)
		if err != nil {
			return err
		}

		// A break of depth 1 unwinds exactly this loop.
		if (e.loopDepth+1)-res.BreakDepth <= depth {
			return nil
		}
	}
}

// interpret evaluates a quotation inline against the current stack.
func (e *Evaluator) interpret(t lexer.Token, stack *object.Stack, ctx process.Context) (Result, error) {
	q, err := e.popQuotation(t, stack, "interpret")
	if err != nil {
		return noBreak, err
	}

	return e.Evaluate(q.Tokens, stack, quotationContext(ctx, q))
}
