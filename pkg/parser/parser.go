// Package parser turns source text into a concrete syntax tree. There is one
// recursive descent parser for the C family (C and Java dialects) and one for
// Python.
package parser

import (
	"fmt"

	"go.crosslang.dev/pkg/cst"
	"go.crosslang.dev/pkg/lexer"
)

// SyntaxError is returned when the source cannot be parsed.
type SyntaxError struct {
	Pos lexer.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

type base struct {
	src    string
	tokens []lexer.Token
	pos    int

	// Comments skipped while looking for the next significant token. The
	// statement loops drain them so comments survive as statements.
	comments []*cst.Node
}

func (p *base) init(src string, dialect *lexer.Dialect) error {
	tokens, err := lexer.NewLexer(src, dialect).Run()
	if err != nil {
		if lexErr, ok := err.(*lexer.Error); ok {
			return &SyntaxError{Pos: lexErr.Pos, Msg: lexErr.Msg}
		}

		return err
	}

	p.src = src
	p.tokens = tokens
	p.pos = 0

	return nil
}

// run invokes parse and converts a bailout into an error.
func (p *base) run(parse func() *cst.Node) (root *cst.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			syntaxErr, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}

			root, err = nil, syntaxErr
		}
	}()

	return parse(), nil
}

func (p *base) peek() lexer.Token {
	for p.tokens[p.pos].IsComment() {
		p.comments = append(p.comments, p.comment(p.tokens[p.pos]))
		p.pos++
	}

	return p.tokens[p.pos]
}

// peekAt looks n significant tokens ahead without consuming comments.
func (p *base) peekAt(n int) lexer.Token {
	i := p.pos
	for {
		for p.tokens[i].IsComment() {
			i++
		}

		if n == 0 || p.tokens[i].Typ == lexer.TokenEOF {
			return p.tokens[i]
		}

		n--
		i++
	}
}

func (p *base) next() lexer.Token {
	tok := p.peek()
	if tok.Typ != lexer.TokenEOF {
		p.pos++
	}

	return tok
}

// last returns the most recently consumed token.
func (p *base) last() lexer.Token {
	for i := p.pos - 1; i >= 0; i-- {
		if !p.tokens[i].IsComment() {
			return p.tokens[i]
		}
	}

	return p.tokens[0]
}

func (p *base) check(value string) bool {
	tok := p.peek()
	return (tok.Typ == lexer.TokenOperator || tok.Typ == lexer.TokenKeyword) && tok.Value == value
}

func (p *base) checkType(typ lexer.TokenType) bool {
	return p.peek().Typ == typ
}

func (p *base) consume(value string) bool {
	if !p.check(value) {
		return false
	}

	p.next()
	return true
}

func (p *base) expect(value string) lexer.Token {
	if !p.check(value) {
		p.errorf(p.peek(), "expected '%s', found %s", value, describe(p.peek()))
	}

	return p.next()
}

func (p *base) expectType(typ lexer.TokenType, what string) lexer.Token {
	if !p.checkType(typ) {
		p.errorf(p.peek(), "expected %s, found %s", what, describe(p.peek()))
	}

	return p.next()
}

func (p *base) errorf(tok lexer.Token, format string, args ...interface{}) {
	panic(&SyntaxError{
		Pos: tok.Pos,
		Msg: fmt.Sprintf(format, args...),
	})
}

// drainComments returns the comments collected so far as statement nodes.
func (p *base) drainComments() []*cst.Node {
	p.peek()

	comments := p.comments
	p.comments = nil

	return comments
}

// dropComments forgets the pending comments, collected after the first
// saved ones, that lie inside node.
func (p *base) dropComments(saved int, node *cst.Node) {
	kept := p.comments[:saved]
	for _, c := range p.comments[saved:] {
		if c.Start.Offset >= node.End {
			kept = append(kept, c)
		}
	}

	p.comments = kept
}

func (p *base) comment(tok lexer.Token) *cst.Node {
	return cst.Leaf(cst.KindComment, tok)
}

// skip consumes an unsupported construct and returns it as an opaque node.
// The construct ends at the first ';' at nesting depth zero or, unless
// toSemicolon is set, at the '}' closing the first top level brace group.
// A brace group followed by catch or finally keeps going.
func (p *base) skip(kind cst.Kind, toSemicolon bool) *cst.Node {
	node := cst.Leaf(kind, p.peek())

	defer p.dropComments(len(p.comments), node)

	depth := 0
	for {
		tok := p.next()
		node.Close(tok)

		switch {
		case tok.Typ == lexer.TokenEOF:
			if depth > 0 {
				p.errorf(tok, "unexpected end of input")
			}
			return node
		case tok.IsOperator("(") || tok.IsOperator("[") || tok.IsOperator("{"):
			depth++
		case tok.IsOperator(")") || tok.IsOperator("]"):
			depth--
		case tok.IsOperator("}"):
			depth--
			if depth == 0 && !toSemicolon && !p.check(";") && !p.check("catch") && !p.check("finally") {
				return node
			}
		case tok.IsOperator(";") && depth == 0:
			return node
		}
	}
}

func describe(tok lexer.Token) string {
	switch tok.Typ {
	case lexer.TokenEOF:
		return "end of input"
	case lexer.TokenNewline:
		return "end of line"
	case lexer.TokenIndent:
		return "indent"
	case lexer.TokenDedent:
		return "dedent"
	}

	return fmt.Sprintf("'%s'", tok.Value)
}
