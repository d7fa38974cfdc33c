package parser

import (
	"go.crosslang.dev/pkg/cst"
	"go.crosslang.dev/pkg/lexer"
)

type Python struct{}

func NewPython() *Python {
	return &Python{}
}

func (*Python) Parse(src string) (*cst.Node, error) {
	p := &python{}
	if err := p.init(src, lexer.Python); err != nil {
		return nil, err
	}

	return p.run(p.module)
}

type python struct {
	base
}

var pythonPrecedence = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4, ">>": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "//": 6, "%": 6, "@": 6,
}

var augmentedOperators = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true, "%=": true,
	"**=": true, "&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

var comparisonOperators = map[string]bool{
	"<": true, ">": true, "==": true, ">=": true, "<=": true, "!=": true,
}

func (p *python) module() *cst.Node {
	root := cst.New(cst.KindModule, p.peek().Pos)

	for {
		root.Append(p.drainComments()...)

		switch tok := p.peek(); tok.Typ {
		case lexer.TokenEOF:
			return root
		case lexer.TokenNewline:
			p.next()
		case lexer.TokenIndent:
			p.errorf(tok, "unexpected indent")
		default:
			root.Append(p.statement()...)
		}
	}
}

// block parses the suite after a ':'.
func (p *python) block() *cst.Node {
	colon := p.expect(":")
	block := cst.Leaf(cst.KindBlock, colon)

	if !p.checkType(lexer.TokenNewline) {
		block.Append(p.simpleStatements()...)
		return block
	}

	p.next()
	p.expectType(lexer.TokenIndent, "indented block")
	column := p.peek().Pos.Column

	for {
		tok := p.peek()
		if tok.Typ == lexer.TokenDedent {
			block.Append(p.commentsIndentedTo(column)...)
			p.next()
			return block
		}

		block.Append(p.drainComments()...)

		if tok.Typ == lexer.TokenEOF {
			return block
		}

		if tok.Typ == lexer.TokenNewline {
			p.next()
			continue
		}

		block.Append(p.statement()...)
	}
}

// commentsIndentedTo takes the leading pending comments indented at least
// to column. Comments the lexer emitted before a dedent but written further
// left stay pending for the enclosing block.
func (p *python) commentsIndentedTo(column int) []*cst.Node {
	i := 0
	for i < len(p.comments) && p.comments[i].Start.Column >= column {
		i++
	}

	taken := p.comments[:i:i]
	p.comments = p.comments[i:]

	return taken
}

func (p *python) statement() []*cst.Node {
	tok := p.peek()

	switch {
	case tok.IsKeyword("def"):
		return []*cst.Node{p.function()}
	case tok.IsKeyword("if"):
		return []*cst.Node{p.ifStatement()}
	case tok.IsKeyword("while"):
		return []*cst.Node{p.whileStatement()}
	case tok.IsKeyword("for"):
		return []*cst.Node{p.forStatement()}
	case tok.IsKeyword("class") || tok.IsKeyword("try") || tok.IsKeyword("with") || tok.IsOperator("@") ||
		(tok.Typ == lexer.TokenIdentifier && (tok.Value == "async" || tok.Value == "match") && p.peekAt(1).Typ != lexer.TokenOperator):
		return []*cst.Node{p.skipCompound()}
	}

	return p.simpleStatements()
}

// simpleStatements parses a line of ';' separated statements.
func (p *python) simpleStatements() []*cst.Node {
	var stmts []*cst.Node

	for {
		stmts = append(stmts, p.simpleStatement())

		if !p.consume(";") || p.checkType(lexer.TokenNewline) || p.checkType(lexer.TokenEOF) {
			break
		}
	}

	switch {
	case p.checkType(lexer.TokenNewline):
		p.next()
	case p.checkType(lexer.TokenEOF), p.checkType(lexer.TokenDedent):
	default:
		p.errorf(p.peek(), "unexpected %s", describe(p.peek()))
	}

	return stmts
}

func (p *python) simpleStatement() *cst.Node {
	tok := p.peek()

	switch {
	case tok.IsKeyword("pass"):
		return cst.Leaf(cst.KindPass, p.next())
	case tok.IsKeyword("break"):
		return cst.Leaf(cst.KindBreak, p.next())
	case tok.IsKeyword("continue"):
		return cst.Leaf(cst.KindContinue, p.next())
	case tok.IsKeyword("return"):
		ret := cst.Leaf(cst.KindReturn, p.next())
		if p.startsExpression() {
			ret.SetField("value", p.expressionList())
		}

		return ret
	case tok.IsKeyword("import") || tok.IsKeyword("from"):
		return p.skipLine(cst.KindImport)
	case tok.IsKeyword("global") || tok.IsKeyword("nonlocal") || tok.IsKeyword("del") ||
		tok.IsKeyword("raise") || tok.IsKeyword("assert") || tok.IsKeyword("yield"):
		return p.skipLine(cst.KindUnsupported)
	}

	left := p.expressionList()

	switch next := p.peek(); {
	case next.IsOperator("="):
		return p.assignment(left)
	case next.Typ == lexer.TokenOperator && augmentedOperators[next.Value]:
		p.next()
		node := cst.New(cst.KindAugmented, left.Start)
		node.SetField("left", left)
		node.SetField("operator", cst.Leaf(cst.KindOperator, next))
		node.SetField("right", p.expressionList())

		return node
	case next.IsOperator(":") && left.Is(cst.KindIdentifier, cst.KindSubscript, cst.KindMember):
		p.next()
		node := cst.New(cst.KindAnnotatedDecl, left.Start)
		node.SetField("left", left)
		node.SetField("type", p.test())
		if p.consume("=") {
			node.SetField("value", p.expressionList())
		}

		return node
	}

	stmt := cst.New(cst.KindExpressionStatement, left.Start)
	return stmt.Append(left)
}

// assignment parses chained targets: a = b = 0 nests to the right.
func (p *python) assignment(left *cst.Node) *cst.Node {
	op := p.expect("=")

	node := cst.New(cst.KindAssignment, left.Start)
	node.SetField("left", left)
	node.SetField("operator", cst.Leaf(cst.KindOperator, op))

	right := p.expressionList()
	if p.check("=") {
		right = p.assignment(right)
	}
	node.SetField("right", right)

	return node
}

// skipLine turns the rest of the logical line into an opaque node. The
// NEWLINE is left for the caller.
func (p *python) skipLine(kind cst.Kind) *cst.Node {
	node := cst.Leaf(kind, p.peek())

	for !p.checkType(lexer.TokenNewline) && !p.checkType(lexer.TokenEOF) && !p.check(";") {
		node.Close(p.next())
	}

	return node
}

// skipCompound consumes a compound statement together with its clauses, such
// as a try with its except and finally blocks.
func (p *python) skipCompound() *cst.Node {
	node := cst.Leaf(cst.KindUnsupported, p.peek())

	defer p.dropComments(len(p.comments), node)

	for {
		decorator := p.check("@")

		for !p.checkType(lexer.TokenNewline) && !p.checkType(lexer.TokenEOF) {
			node.Close(p.next())
		}
		p.next()

		if p.checkType(lexer.TokenIndent) {
			depth := 0
			for {
				tok := p.next()
				node.Close(tok)

				if tok.Typ == lexer.TokenIndent {
					depth++
				} else if tok.Typ == lexer.TokenDedent {
					depth--
				}

				if depth == 0 || tok.Typ == lexer.TokenEOF {
					break
				}
			}
		}

		if decorator {
			continue
		}

		if !p.check("except") && !p.check("finally") && !p.check("else") && !p.check("elif") &&
			!(p.checkType(lexer.TokenIdentifier) && p.peek().Value == "case") {
			return node
		}
	}
}

func (p *python) function() *cst.Node {
	fn := cst.Leaf(cst.KindFunction, p.next())
	fn.SetField("name", cst.Leaf(cst.KindIdentifier, p.expectType(lexer.TokenIdentifier, "function name")))

	params := cst.Leaf(cst.KindArguments, p.expect("("))
	for !p.check(")") {
		if len(params.Children) > 0 {
			p.expect(",")
			if p.check(")") {
				break
			}
		}

		params.Append(p.parameter())
	}
	params.Close(p.expect(")"))
	fn.SetField("parameters", params)

	if p.consume("->") {
		fn.SetField("type", p.test())
	}

	fn.SetField("body", p.block())
	return fn
}

func (p *python) parameter() *cst.Node {
	tok := p.peek()
	param := cst.New(cst.KindParameter, tok.Pos)

	if tok.IsOperator("*") || tok.IsOperator("**") || tok.IsOperator("/") {
		param.SetField("splat", cst.Leaf(cst.KindOperator, p.next()))
		if !p.checkType(lexer.TokenIdentifier) {
			return param
		}
	}

	param.SetField("name", cst.Leaf(cst.KindIdentifier, p.expectType(lexer.TokenIdentifier, "parameter name")))

	if p.consume(":") {
		param.SetField("type", p.test())
	}

	if p.consume("=") {
		param.SetField("value", p.test())
	}

	return param
}

func (p *python) ifStatement() *cst.Node {
	stmt := cst.Leaf(cst.KindIf, p.next())
	stmt.SetField("condition", p.namedTest())
	stmt.SetField("consequence", p.block())

	for p.check("elif") {
		elif := cst.Leaf(cst.KindElif, p.next())
		elif.SetField("condition", p.namedTest())
		elif.SetField("consequence", p.block())
		stmt.Append(elif)
	}

	if p.check("else") {
		stmt.SetField("alternative", p.elseClause())
	}

	return stmt
}

func (p *python) elseClause() *cst.Node {
	clause := cst.Leaf(cst.KindElse, p.next())
	clause.SetField("body", p.block())

	return clause
}

func (p *python) whileStatement() *cst.Node {
	stmt := cst.Leaf(cst.KindWhile, p.next())
	stmt.SetField("condition", p.namedTest())
	stmt.SetField("body", p.block())

	if p.check("else") {
		stmt.SetField("alternative", p.elseClause())
	}

	return stmt
}

func (p *python) forStatement() *cst.Node {
	stmt := cst.Leaf(cst.KindForIn, p.next())
	stmt.SetField("left", p.targetList())
	p.expect("in")
	stmt.SetField("right", p.expressionList())
	stmt.SetField("body", p.block())

	if p.check("else") {
		stmt.SetField("alternative", p.elseClause())
	}

	return stmt
}

func (p *python) targetList() *cst.Node {
	first := p.bitwise(1)
	if !p.check(",") {
		return first
	}

	tuple := cst.New(cst.KindTuple, first.Start)
	tuple.Append(first)
	for p.consume(",") && !p.check("in") {
		tuple.Append(p.bitwise(1))
	}

	return tuple
}

func (p *python) startsExpression() bool {
	tok := p.peek()

	switch tok.Typ {
	case lexer.TokenNumber, lexer.TokenString, lexer.TokenIdentifier:
		return true
	case lexer.TokenKeyword:
		switch tok.Value {
		case "True", "False", "None", "not", "lambda":
			return true
		}
	case lexer.TokenOperator:
		switch tok.Value {
		case "(", "[", "{", "-", "+", "~", "*":
			return true
		}
	}

	return false
}

// expressionList parses a comma separated list. More than one element, or a
// trailing comma, makes a tuple.
func (p *python) expressionList() *cst.Node {
	first := p.starTest()
	if !p.check(",") {
		return first
	}

	tuple := cst.New(cst.KindTuple, first.Start)
	tuple.Append(first)
	for p.consume(",") && p.startsExpression() {
		tuple.Append(p.starTest())
	}

	return tuple
}

func (p *python) starTest() *cst.Node {
	if p.check("*") {
		star := p.next()
		node := cst.Leaf(cst.KindUnsupported, star)
		node.Append(p.bitwise(1))

		return node
	}

	return p.test()
}

// namedTest allows an assignment expression, which is kept opaque.
func (p *python) namedTest() *cst.Node {
	expr := p.test()
	if !p.check(":=") {
		return expr
	}
	p.next()

	node := cst.New(cst.KindUnsupported, expr.Start)
	node.Token = lexer.Token{Typ: lexer.TokenOperator, Value: ":=", Pos: expr.Start}
	node.Append(expr, p.test())

	return node
}

func (p *python) test() *cst.Node {
	if p.check("lambda") {
		return p.lambda()
	}

	expr := p.orTest()
	if !p.check("if") {
		return expr
	}
	p.next()

	node := cst.New(cst.KindConditional, expr.Start)
	node.SetField("consequence", expr)
	node.SetField("condition", p.orTest())
	p.expect("else")
	node.SetField("alternative", p.test())

	return node
}

func (p *python) lambda() *cst.Node {
	node := cst.Leaf(cst.KindLambda, p.next())
	for !p.check(":") {
		if p.checkType(lexer.TokenNewline) || p.checkType(lexer.TokenEOF) {
			p.errorf(p.peek(), "expected ':', found %s", describe(p.peek()))
		}
		p.next()
	}
	p.next()
	node.SetField("body", p.test())

	return node
}

func (p *python) booleanOperator(op string, operand func() *cst.Node) *cst.Node {
	left := operand()

	for p.check(op) {
		tok := p.next()

		node := cst.New(cst.KindBooleanOp, left.Start)
		node.SetField("left", left)
		node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
		node.SetField("right", operand())

		left = node
	}

	return left
}

func (p *python) orTest() *cst.Node {
	return p.booleanOperator("or", p.andTest)
}

func (p *python) andTest() *cst.Node {
	return p.booleanOperator("and", p.notTest)
}

func (p *python) notTest() *cst.Node {
	if !p.check("not") {
		return p.comparison()
	}

	node := cst.Leaf(cst.KindNot, p.next())
	node.SetField("argument", p.notTest())

	return node
}

func (p *python) comparisonOperator() (lexer.Token, bool) {
	tok := p.peek()

	switch {
	case tok.Typ == lexer.TokenOperator && comparisonOperators[tok.Value]:
		return p.next(), true
	case tok.IsKeyword("in"):
		return p.next(), true
	case tok.IsKeyword("not") && p.peekAt(1).IsKeyword("in"):
		p.next()
		in := p.next()
		tok.Value = "not in"
		tok.End = in.End

		return tok, true
	case tok.IsKeyword("is"):
		p.next()
		if p.check("not") {
			not := p.next()
			tok.Value = "is not"
			tok.End = not.End
		}

		return tok, true
	}

	return tok, false
}

// comparison keeps chains flat: operands and operators alternate in the
// children.
func (p *python) comparison() *cst.Node {
	first := p.bitwise(1)

	op, ok := p.comparisonOperator()
	if !ok {
		return first
	}

	node := cst.New(cst.KindComparison, first.Start)
	node.Append(first)

	for ok {
		node.Append(cst.Leaf(cst.KindOperator, op), p.bitwise(1))
		op, ok = p.comparisonOperator()
	}

	return node
}

func (p *python) bitwise(minPrec int) *cst.Node {
	left := p.factor()

	for {
		tok := p.peek()
		if tok.Typ != lexer.TokenOperator {
			return left
		}

		prec := pythonPrecedence[tok.Value]
		if prec == 0 || prec < minPrec {
			return left
		}
		p.next()

		node := cst.New(cst.KindBinary, left.Start)
		node.SetField("left", left)
		node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
		node.SetField("right", p.bitwise(prec+1))

		left = node
	}
}

func (p *python) factor() *cst.Node {
	tok := p.peek()
	if tok.IsOperator("-") || tok.IsOperator("+") || tok.IsOperator("~") {
		p.next()

		node := cst.Leaf(cst.KindUnary, tok)
		node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
		node.SetField("argument", p.factor())

		return node
	}

	return p.power()
}

func (p *python) power() *cst.Node {
	base := p.trailers(p.atom())
	if !p.check("**") {
		return base
	}

	tok := p.next()

	node := cst.New(cst.KindBinary, base.Start)
	node.SetField("left", base)
	node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
	node.SetField("right", p.factor())

	return node
}

func (p *python) trailers(expr *cst.Node) *cst.Node {
	for {
		tok := p.peek()

		switch {
		case tok.IsOperator("("):
			call := cst.New(cst.KindCall, expr.Start)
			call.SetField("function", expr)
			call.SetField("arguments", p.arguments())
			expr = call
		case tok.IsOperator("["):
			expr = p.subscript(expr)
		case tok.IsOperator("."):
			p.next()
			member := cst.New(cst.KindMember, expr.Start)
			member.SetField("argument", expr)
			member.SetField("operator", cst.Leaf(cst.KindOperator, tok))
			member.SetField("field", cst.Leaf(cst.KindIdentifier, p.expectType(lexer.TokenIdentifier, "attribute name")))
			expr = member
		default:
			return expr
		}
	}
}

func (p *python) subscript(expr *cst.Node) *cst.Node {
	open := p.next()

	if p.check(":") {
		return p.skipBracket(open, expr)
	}

	index := p.expressionList()
	if p.check(":") {
		return p.skipBracket(open, expr)
	}

	sub := cst.New(cst.KindSubscript, expr.Start)
	sub.SetField("argument", expr)
	sub.SetField("index", index)
	sub.Close(p.expect("]"))

	return sub
}

// skipBracket consumes tokens up to the bracket matching open, which has
// already been consumed. The result is an opaque node starting at from, or at
// open when from is nil.
func (p *python) skipBracket(open lexer.Token, from *cst.Node) *cst.Node {
	node := cst.Leaf(cst.KindUnsupported, open)
	if from != nil {
		node.Start = from.Start
		node.Token = lexer.Token{Typ: lexer.TokenOperator, Value: "slice", Pos: from.Start}
	}

	depth := 1
	for depth > 0 {
		tok := p.next()
		node.Close(tok)

		switch {
		case tok.Typ == lexer.TokenEOF:
			p.errorf(tok, "unexpected end of input")
		case tok.IsOperator("(") || tok.IsOperator("[") || tok.IsOperator("{"):
			depth++
		case tok.IsOperator(")") || tok.IsOperator("]") || tok.IsOperator("}"):
			depth--
		}
	}

	return node
}

func (p *python) arguments() *cst.Node {
	open := p.expect("(")
	args := cst.Leaf(cst.KindArguments, open)

	for !p.check(")") {
		if len(args.Children) > 0 {
			p.expect(",")
			if p.check(")") {
				break
			}
		}

		tok := p.peek()
		switch {
		case tok.IsOperator("*") || tok.IsOperator("**"):
			p.next()
			splat := cst.Leaf(cst.KindUnsupported, tok)
			splat.Append(p.test())
			args.Append(splat)
		case tok.Typ == lexer.TokenIdentifier && p.peekAt(1).IsOperator("="):
			kw := cst.New(cst.KindKeywordArg, tok.Pos)
			kw.SetField("name", cst.Leaf(cst.KindIdentifier, p.next()))
			p.next()
			kw.SetField("value", p.test())
			args.Append(kw)
		default:
			arg := p.namedTest()
			if p.check("for") {
				// generator expression argument
				gen := p.skipBracket(open, arg)
				args.Append(gen)
				args.Close(p.last())

				return args
			}
			args.Append(arg)
		}
	}
	args.Close(p.expect(")"))

	return args
}

func (p *python) atom() *cst.Node {
	tok := p.peek()

	switch tok.Typ {
	case lexer.TokenNumber:
		return cst.Leaf(cst.KindNumber, p.next())
	case lexer.TokenIdentifier:
		return cst.Leaf(cst.KindIdentifier, p.next())
	case lexer.TokenString:
		str := cst.Leaf(cst.KindString, p.next())
		// implicit concatenation becomes an explicit one
		for p.checkType(lexer.TokenString) {
			next := p.next()

			concat := cst.New(cst.KindBinary, str.Start)
			concat.SetField("left", str)
			concat.SetField("operator", cst.Leaf(cst.KindOperator, lexer.Token{Typ: lexer.TokenOperator, Value: "+", Pos: next.Pos, End: next.Pos.Offset}))
			concat.SetField("right", cst.Leaf(cst.KindString, next))
			str = concat
		}

		return str
	}

	switch {
	case tok.IsKeyword("True"):
		return cst.Leaf(cst.KindTrue, p.next())
	case tok.IsKeyword("False"):
		return cst.Leaf(cst.KindFalse, p.next())
	case tok.IsKeyword("None"):
		return cst.Leaf(cst.KindNull, p.next())
	case tok.IsOperator("("):
		return p.parenthesized()
	case tok.IsOperator("["):
		return p.list()
	case tok.IsOperator("{"):
		p.next()
		node := p.skipBracket(tok, nil)
		node.Kind = cst.KindDict

		return node
	}

	p.errorf(tok, "unexpected %s", describe(tok))
	return nil
}

func (p *python) parenthesized() *cst.Node {
	open := p.next()

	if p.check(")") {
		return cst.Leaf(cst.KindTuple, open).Close(p.next())
	}

	first := p.namedTest()
	if p.check("for") {
		return p.skipBracket(open, first)
	}

	if !p.check(",") {
		paren := cst.Leaf(cst.KindParenthesized, open)
		paren.Append(first)
		paren.Close(p.expect(")"))

		return paren
	}

	tuple := cst.Leaf(cst.KindTuple, open)
	tuple.Append(first)
	for p.consume(",") && !p.check(")") {
		tuple.Append(p.test())
	}
	tuple.Close(p.expect(")"))

	return tuple
}

func (p *python) list() *cst.Node {
	open := p.next()
	list := cst.Leaf(cst.KindList, open)

	for !p.check("]") {
		if len(list.Children) > 0 {
			p.expect(",")
			if p.check("]") {
				break
			}
		}

		elem := p.starTest()
		if p.check("for") {
			// comprehension
			node := p.skipBracket(open, elem)
			node.Start = open.Pos
			node.Token = open

			return node
		}

		list.Append(elem)
	}
	list.Close(p.expect("]"))

	return list
}
