// Package lexer converts mshell source text into position-tagged tokens.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer scans source text left to right.
type Lexer struct {
	input string

	// start/current are byte offsets, line/col describe current.
	start   int
	current int
	line    int
	col     int

	startLine int
	startCol  int
}

// New creates a lexer over input.
func New(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Tokenize scans the entire input. The returned slice always ends with either
// an EOF or an Error token, callers must stop on either.
func Tokenize(input string) []Token {
	return New(input).Tokenize()
}

// Tokenize scans the remaining input.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		t := l.Next()
		tokens = append(tokens, t)
		if t.Kind == Error || t.Kind == EOF {
			return tokens
		}
	}
}

// Err returns the lex error carried by the final token of tokens, if any.
func Err(tokens []Token) error {
	if len(tokens) == 0 {
		return nil
	}
	if last := tokens[len(tokens)-1]; last.Kind == Error {
		return &SyntaxError{Token: last}
	}
	return nil
}

// SyntaxError is returned for unterminated strings and invalid escapes.
type SyntaxError struct {
	Token Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Token.Message)
}

// Position returns where the bad token starts.
func (e *SyntaxError) Position() (line, column int) {
	return e.Token.Line, e.Token.Column
}

// Message is the error text without its position.
func (e *SyntaxError) Message() string {
	return e.Token.Message
}

// Next scans a single token.
func (l *Lexer) Next() Token {
	l.skipWhitespace()
	l.start = l.current
	l.startLine = l.line
	l.startCol = l.col

	if l.atEnd() {
		return l.makeToken(EOF)
	}

	c := l.advance()
	switch c {
	case '"':
		return l.scanString()
	case '[':
		return l.makeToken(LeftSquareBracket)
	case ']':
		return l.makeToken(RightSquareBracket)
	case '(':
		return l.makeToken(LeftParen)
	case ')':
		return l.makeToken(RightParen)
	case ';':
		return l.makeToken(Execute)
	case '|':
		return l.makeToken(Pipe)
	case '?':
		return l.makeToken(Question)
	}

	return l.scanLiteral()
}

func (l *Lexer) atEnd() bool {
	return l.current >= len(l.input)
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.current:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.input[l.current:])
	l.current += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) makeToken(kind Kind) Token {
	return Token{
		Line:   l.startLine,
		Column: l.startCol,
		Offset: l.start,
		Lexeme: l.input[l.start:l.current],
		Kind:   kind,
	}
}

func (l *Lexer) errorToken(format string, a ...interface{}) Token {
	t := l.makeToken(Error)
	t.Message = fmt.Sprintf(format, a...)
	return t
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '#':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// scanString is entered after the opening quote has been consumed.
func (l *Lexer) scanString() Token {
	inEscape := false
	for {
		if l.atEnd() {
			return l.errorToken("unterminated string")
		}
		line, col := l.line, l.col
		c := l.advance()
		switch {
		case inEscape:
			if !isEscapable(c) {
				return l.errorToken("invalid escape character '%c' at %d:%d", c, line, col)
			}
			inEscape = false
		case c == '\\':
			inEscape = true
		case c == '"':
			return l.makeToken(String)
		}
	}
}

func isEscapable(c rune) bool {
	switch c {
	case 'n', 't', 'r', '\\', '"':
		return true
	}
	return false
}

func isLiteralTerminator(c rune) bool {
	switch c {
	case ']', ')', '<', '>', ';', '?':
		return true
	}
	return unicode.IsSpace(c)
}

func (l *Lexer) scanLiteral() Token {
	for !l.atEnd() && !isLiteralTerminator(l.peek()) {
		l.advance()
	}

	text := l.input[l.start:l.current]
	if text == "2" && l.peek() == '>' {
		l.advance()
		return l.makeToken(StderrRedirect)
	}

	return l.makeToken(Classify(text))
}

// Classify determines the kind of a literal run of text.
func Classify(text string) Kind {
	if kind, ok := Keywords[text]; ok {
		return kind
	}
	switch {
	case strings.HasSuffix(text, "!"):
		return VarRetrieve
	case strings.HasPrefix(text, "@"):
		return VarStore
	}
	if kind, ok := indexKind(text); ok {
		return kind
	}
	if _, err := strconv.ParseInt(text, 10, 32); err == nil {
		return Integer
	}
	if looksNumeric(text) {
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			return Double
		}
	}
	return Literal
}

// looksNumeric keeps words like "inf" and "nan", which strconv accepts as
// floats, classified as literals.
func looksNumeric(text string) bool {
	if text == "" {
		return false
	}
	switch c := text[0]; {
	case c >= '0' && c <= '9', c == '.', c == '+', c == '-':
		return strings.ContainsAny(text, "0123456789")
	}
	return false
}

// indexKind recognizes :N:, N:, :N and N:M where each N may be negative.
func indexKind(text string) (Kind, bool) {
	parts := strings.Split(text, ":")
	switch {
	case len(parts) == 3 && parts[0] == "" && isIndex(parts[1]) && parts[2] == "":
		return Indexer, true
	case len(parts) != 2:
		return 0, false
	case parts[0] == "" && isIndex(parts[1]):
		return EndIndexer, true
	case isIndex(parts[0]) && parts[1] == "":
		return StartIndexer, true
	case isIndex(parts[0]) && isIndex(parts[1]):
		return SliceIndexer, true
	}
	return 0, false
}

func isIndex(text string) bool {
	text = strings.TrimPrefix(text, "-")
	if text == "" {
		return false
	}
	for _, c := range text {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
