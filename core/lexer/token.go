package lexer

import (
	"fmt"
	"io"
)

// Kind identifies the type of a Token.
type Kind int

const (
	EOF Kind = iota
	Error
	LeftSquareBracket
	RightSquareBracket
	LeftParen
	RightParen
	Execute
	Pipe
	Question
	String
	Minus
	Plus
	Equals
	Interpret
	If
	Loop
	Break
	Not
	And
	Or
	GreaterThanOrEqual
	LessThanOrEqual
	LessThan
	GreaterThan
	True
	False
	VarRetrieve
	VarStore
	Integer
	Double
	Literal
	StderrRedirect
	Indexer
	StartIndexer
	EndIndexer
	SliceIndexer
)

var kindNames = [...]string{
	EOF:                "EOF",
	Error:              "ERROR",
	LeftSquareBracket:  "LEFT_SQUARE_BRACKET",
	RightSquareBracket: "RIGHT_SQUARE_BRACKET",
	LeftParen:          "LEFT_PAREN",
	RightParen:         "RIGHT_PAREN",
	Execute:            "EXECUTE",
	Pipe:               "PIPE",
	Question:           "QUESTION",
	String:             "STRING",
	Minus:              "MINUS",
	Plus:               "PLUS",
	Equals:             "EQUALS",
	Interpret:          "INTERPRET",
	If:                 "IF",
	Loop:               "LOOP",
	Break:              "BREAK",
	Not:                "NOT",
	And:                "AND",
	Or:                 "OR",
	GreaterThanOrEqual: "GREATERTHANOREQUAL",
	LessThanOrEqual:    "LESSTHANOREQUAL",
	LessThan:           "LESSTHAN",
	GreaterThan:        "GREATERTHAN",
	True:               "TRUE",
	False:              "FALSE",
	VarRetrieve:        "VARRETRIEVE",
	VarStore:           "VARSTORE",
	Integer:            "INTEGER",
	Double:             "DOUBLE",
	Literal:            "LITERAL",
	StderrRedirect:     "STDERRREDIRECT",
	Indexer:            "INDEXER",
	StartIndexer:       "STARTINDEXER",
	EndIndexer:         "ENDINDEXER",
	SliceIndexer:       "SLICEINDEXER",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps the reserved words and operators to their token kinds. A
// literal run that exactly matches a key is never treated as a Literal.
var Keywords = map[string]Kind{
	"-":     Minus,
	"+":     Plus,
	"=":     Equals,
	"x":     Interpret,
	"if":    If,
	"loop":  Loop,
	"break": Break,
	"not":   Not,
	"and":   And,
	"or":    Or,
	">=":    GreaterThanOrEqual,
	"<=":    LessThanOrEqual,
	"<":     LessThan,
	">":     GreaterThan,
	"true":  True,
	"false": False,
}

// Token is a single lexical unit. Tokens are immutable once produced.
type Token struct {
	// Line and Column are 1-based and point at the first character.
	Line   int
	Column int
	// Offset is the byte offset of the first character in the source.
	Offset int
	// Lexeme holds the raw source text of the token.
	Lexeme string
	Kind   Kind
	// Message describes the problem for Error tokens.
	Message string
}

// Pos renders the token position as LINE:COL.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d:%s %s", t.Line, t.Column, t.Kind, t.Lexeme)
}

// Dump writes one line per token in the LINE:COL:KIND LEXEME format.
func Dump(w io.Writer, tokens []Token) error {
	for _, t := range tokens {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return nil
}
