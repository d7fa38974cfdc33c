package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType uint64
type stateFunc func(l *Lexer) stateFunc

const (
	EOF rune = 0

	TokenError TokenType = iota
	TokenEOF
	TokenNumber
	TokenString
	TokenChar

	TokenIdentifier
	TokenKeyword
	TokenOperator

	TokenLineComment
	TokenBlockComment
	TokenDirective

	TokenNewline
	TokenIndent
	TokenDedent
)

var tokenNames = map[TokenType]string{
	TokenError:        "Error",
	TokenEOF:          "EOF",
	TokenNumber:       "Number",
	TokenString:       "String",
	TokenChar:         "Char",
	TokenIdentifier:   "Identifier",
	TokenKeyword:      "Keyword",
	TokenOperator:     "Operator",
	TokenLineComment:  "LineComment",
	TokenBlockComment: "BlockComment",
	TokenDirective:    "Directive",
	TokenNewline:      "Newline",
	TokenIndent:       "Indent",
	TokenDedent:       "Dedent",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", uint64(t))
}

type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Typ   TokenType
	Value string
	Pos   Position
	// End is the byte offset just past the token.
	End int
}

func (t Token) Is(typ TokenType, value string) bool {
	return t.Typ == typ && t.Value == value
}

func (t Token) IsOperator(value string) bool {
	return t.Is(TokenOperator, value)
}

func (t Token) IsKeyword(value string) bool {
	return t.Is(TokenKeyword, value)
}

func (t Token) IsComment() bool {
	return t.Typ == TokenLineComment || t.Typ == TokenBlockComment
}

// Error is a scanning failure at a source position.
type Error struct {
	Pos Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

type Lexer struct {
	src     string
	dialect *Dialect

	pos   int
	start int
	line  int
	col   int

	startPos Position

	tokens []Token
	err    *Error

	// Indentation tracking, only used when the dialect is indentation sensitive.
	indents     []int
	depth       int
	atLineStart bool
}

func NewLexer(src string, dialect *Dialect) *Lexer {
	return &Lexer{
		src:         src,
		dialect:     dialect,
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Run scans the whole input. The returned slice always ends with TokenEOF
// when err is nil.
func (l *Lexer) Run() ([]Token, error) {
	for state := startState; state != nil; {
		state = state(l)
	}

	if l.err != nil {
		return nil, l.err
	}

	return l.tokens, nil
}

func startState(l *Lexer) stateFunc {
	if l.dialect.Indentation {
		return indentState
	}

	return defaultState
}

func defaultState(l *Lexer) stateFunc {
	for {
		l.mark()

		switch r := l.peek(); {
		case r == EOF && l.pos >= len(l.src):
			return eofState
		case r == '\n':
			l.next()
			if l.dialect.Indentation && l.depth == 0 {
				l.emitNewline()
				l.atLineStart = true
				return indentState
			}
			continue
		case r == '\\' && l.peekAt(1) == '\n':
			l.next()
			l.next()
			continue
		case unicode.IsSpace(r):
			l.next()
			continue
		case '0' <= r && r <= '9', r == '.' && isDigit(l.peekAt(1)):
			return numberState
		case r == '"':
			return stringState
		case r == '\'':
			if l.dialect.CharLiterals {
				return charState
			}
			return stringState
		case unicode.IsLetter(r) || r == '_' || (r == '$' && l.dialect.DollarIdentifiers):
			return identifierState
		case r == '#' && l.dialect.LineComment == "#":
			return lineCommentState
		case r == '#' && l.dialect.Directives:
			return directiveState
		case l.dialect.LineComment != "" && strings.HasPrefix(l.src[l.pos:], l.dialect.LineComment):
			return lineCommentState
		case l.dialect.BlockComments && strings.HasPrefix(l.src[l.pos:], "/*"):
			return blockCommentState
		default:
			return operatorState
		}
	}
}

func eofState(l *Lexer) stateFunc {
	if l.dialect.Indentation {
		if n := len(l.tokens); n > 0 && l.tokens[n-1].Typ != TokenNewline && l.tokens[n-1].Typ != TokenDedent {
			l.emitValue(TokenNewline, "")
		}

		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			l.emitValue(TokenDedent, "")
		}
	}

	l.emitValue(TokenEOF, "")
	return nil
}

// indentState runs at the beginning of every logical line of an indentation
// sensitive dialect. Blank and comment-only lines never change the indentation.
func indentState(l *Lexer) stateFunc {
	l.mark()

	width := 0
	for r := l.peek(); r == ' ' || r == '\t'; r = l.peek() {
		if r == '\t' {
			width += 4 - width%4
		} else {
			width++
		}
		l.next()
	}

	switch r := l.peek(); {
	case r == EOF && l.pos >= len(l.src):
		return eofState
	case r == '\n' || r == '\r':
		l.next()
		return indentState
	case r == '#':
		l.mark()
		l.scanLineComment()
		if l.peek() == '\n' {
			l.next()
		}
		return indentState
	}

	l.atLineStart = false
	l.mark()

	current := l.indents[len(l.indents)-1]
	if width > current {
		l.indents = append(l.indents, width)
		l.emitValue(TokenIndent, "")
		return defaultState
	}

	for width < l.indents[len(l.indents)-1] {
		l.indents = l.indents[:len(l.indents)-1]
		l.emitValue(TokenDedent, "")
	}

	if width != l.indents[len(l.indents)-1] {
		return l.errorf("unindent does not match any outer indentation level")
	}

	return defaultState
}

func numberState(l *Lexer) stateFunc {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.next()
		l.next()
		for r := l.peek(); isHexDigit(r) || r == '_'; r = l.peek() {
			l.next()
		}
	} else {
		for r := l.peek(); isDigit(r) || r == '_' || r == '.'; r = l.peek() {
			l.next()
		}

		if r := l.peek(); r == 'e' || r == 'E' {
			if isDigit(l.peekAt(1)) || ((l.peekAt(1) == '+' || l.peekAt(1) == '-') && isDigit(l.peekAt(2))) {
				l.next()
				l.next()
				for isDigit(l.peek()) {
					l.next()
				}
			}
		}
	}

	for r := l.peek(); strings.ContainsRune(l.dialect.NumberSuffixes, r) && r != EOF; r = l.peek() {
		l.next()
	}

	return l.emit(TokenNumber)
}

func stringState(l *Lexer) stateFunc {
	quote := l.next()

	if l.dialect.TripleQuotes && l.peek() == quote && l.peekAt(1) == quote {
		l.next()
		l.next()
		return l.tripleQuoted(quote)
	}

	for r := l.next(); r != quote; r = l.next() {
		switch r {
		case EOF, '\n':
			return l.errorf("unclosed string: %s", l.src[l.start:l.pos])
		case '\\':
			l.next()
		}
	}

	return l.emit(TokenString)
}

func (l *Lexer) tripleQuoted(quote rune) stateFunc {
	for {
		r := l.next()
		switch {
		case r == EOF && l.pos >= len(l.src):
			return l.errorf("unclosed triple-quoted string")
		case r == '\\':
			l.next()
		case r == quote && l.peek() == quote && l.peekAt(1) == quote:
			l.next()
			l.next()
			return l.emit(TokenString)
		}
	}
}

func charState(l *Lexer) stateFunc {
	l.next() // Skip the leading quote

	for r := l.next(); r != '\''; r = l.next() {
		switch r {
		case EOF, '\n':
			return l.errorf("unclosed character literal: %s", l.src[l.start:l.pos])
		case '\\':
			l.next()
		}
	}

	return l.emit(TokenChar)
}

func identifierState(l *Lexer) stateFunc {
	for r := l.peek(); isIdentifierRune(r) || (r == '$' && l.dialect.DollarIdentifiers); r = l.peek() {
		l.next()
	}

	id := l.src[l.start:l.pos]

	// Python string prefixes (f"...", r'...') glue onto the literal
	if l.dialect.StringPrefixes != "" && isStringPrefix(id, l.dialect.StringPrefixes) {
		if r := l.peek(); r == '"' || r == '\'' {
			return stringState
		}
	}

	if l.dialect.Keywords[id] {
		return l.emit(TokenKeyword)
	}

	return l.emit(TokenIdentifier)
}

func operatorState(l *Lexer) stateFunc {
	rest := l.src[l.pos:]
	for _, op := range l.dialect.operators() {
		if !strings.HasPrefix(rest, op) {
			continue
		}

		for range op {
			l.next()
		}

		if l.dialect.Indentation {
			switch op {
			case "(", "[", "{":
				l.depth++
			case ")", "]", "}":
				if l.depth > 0 {
					l.depth--
				}
			}
		}

		return l.emit(TokenOperator)
	}

	r := l.next()
	return l.errorf("invalid symbol '%c'", r)
}

func lineCommentState(l *Lexer) stateFunc {
	l.scanLineComment()
	return defaultState
}

func (l *Lexer) scanLineComment() {
	l.pos += len(l.dialect.LineComment)
	l.col += len(l.dialect.LineComment)

	var text strings.Builder
	for r := l.peek(); r != '\n' && !(r == EOF && l.pos >= len(l.src)); r = l.peek() {
		text.WriteRune(l.next())
	}

	l.emitValue(TokenLineComment, strings.TrimRight(text.String(), "\r"))
}

func blockCommentState(l *Lexer) stateFunc {
	l.next()
	l.next()

	var text strings.Builder
	for !strings.HasPrefix(l.src[l.pos:], "*/") {
		if l.pos >= len(l.src) {
			return l.errorf("unclosed block comment")
		}

		text.WriteRune(l.next())
	}

	l.next()
	l.next()

	l.emitValue(TokenBlockComment, text.String())
	return defaultState
}

func directiveState(l *Lexer) stateFunc {
	var line strings.Builder
	for r := l.peek(); r != '\n' && !(r == EOF && l.pos >= len(l.src)); r = l.peek() {
		if r == '\\' && l.peekAt(1) == '\n' {
			l.next()
			l.next()
			line.WriteRune(' ')
			continue
		}

		line.WriteRune(l.next())
	}

	l.emitValue(TokenDirective, strings.TrimSpace(line.String()))
	return defaultState
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = &Error{
		Pos: l.startPos,
		Msg: fmt.Sprintf(format, args...),
	}

	return nil
}

// mark starts a new token at the current position.
func (l *Lexer) mark() {
	l.start = l.pos
	l.startPos = Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) emit(t TokenType) stateFunc {
	l.emitValue(t, l.src[l.start:l.pos])
	return defaultState
}

func (l *Lexer) emitValue(t TokenType, val string) {
	l.tokens = append(l.tokens, Token{
		Typ:   t,
		Value: val,
		Pos:   l.startPos,
		End:   l.pos,
	})
}

func (l *Lexer) emitNewline() {
	n := len(l.tokens)
	if n == 0 {
		return
	}

	switch l.tokens[n-1].Typ {
	case TokenNewline, TokenIndent, TokenDedent:
		return
	}

	l.emitValue(TokenNewline, "")
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) rune {
	pos := l.pos
	for i := 0; ; i++ {
		if pos >= len(l.src) {
			return EOF
		}

		r, size := utf8.DecodeRuneInString(l.src[pos:])
		if i == n {
			return r
		}

		pos += size
	}
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.src) {
		return EOF
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isStringPrefix(id, allowed string) bool {
	if len(id) > 2 {
		return false
	}

	for _, r := range id {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}

	return true
}
