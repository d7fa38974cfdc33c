package parser

import (
	"go.crosslang.dev/pkg/cst"
	"go.crosslang.dev/pkg/lexer"
)

// CLike parses C and Java. The two grammars share statements and
// expressions; they differ at the top level, where C has functions, globals
// and preprocessor lines while Java wraps everything in classes.
type CLike struct {
	dialect *lexer.Dialect
	java    bool
}

func NewC() *CLike {
	return &CLike{dialect: lexer.C}
}

func NewJava() *CLike {
	return &CLike{dialect: lexer.Java, java: true}
}

func (c *CLike) Parse(src string) (*cst.Node, error) {
	p := &clike{java: c.java}
	if err := p.init(src, c.dialect); err != nil {
		return nil, err
	}

	if p.java {
		return p.run(p.compilationUnit)
	}

	return p.run(p.translationUnit)
}

type clike struct {
	base
	java bool
}

var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, "<=": 7, ">": 7, ">=": 7, "instanceof": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

var assignmentOperators = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, ">>>=": true,
}

var cBaseTypes = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"bool": true, "_Bool": true,
}

var cTypedefs = map[string]bool{
	"size_t": true, "ssize_t": true, "ptrdiff_t": true,
	"int8_t": true, "int16_t": true, "int32_t": true, "int64_t": true,
	"uint8_t": true, "uint16_t": true, "uint32_t": true, "uint64_t": true,
}

var cQualifiers = map[string]bool{
	"const": true, "static": true, "extern": true, "register": true,
	"volatile": true, "auto": true,
}

var javaPrimitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "void": true, "var": true,
}

var javaModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "static": true,
	"final": true, "abstract": true, "synchronized": true, "volatile": true,
}

func (p *clike) translationUnit() *cst.Node {
	root := cst.New(cst.KindTranslationUnit, p.peek().Pos)

	for {
		root.Append(p.drainComments()...)

		tok := p.peek()
		switch {
		case tok.Typ == lexer.TokenEOF:
			return root
		case tok.Typ == lexer.TokenDirective:
			root.Append(p.directive())
		case tok.IsKeyword("typedef") || ((tok.IsKeyword("struct") || tok.IsKeyword("union") || tok.IsKeyword("enum")) && p.peekAt(2).IsOperator("{")):
			root.Append(p.skip(cst.KindUnsupported, true))
		case tok.IsOperator(";"):
			p.next()
		default:
			root.Append(p.external())
		}
	}
}

func (p *clike) directive() *cst.Node {
	tok := p.next()

	switch name := directiveName(tok.Value); name {
	case "include":
		return cst.Leaf(cst.KindInclude, tok)
	case "define":
		return cst.Leaf(cst.KindDefine, tok)
	}

	return cst.Leaf(cst.KindDirective, tok)
}

func directiveName(text string) string {
	i := 1
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}

	j := i
	for j < len(text) && text[j] >= 'a' && text[j] <= 'z' {
		j++
	}

	return text[i:j]
}

// external parses a function definition, a prototype or a global declaration.
func (p *clike) external() *cst.Node {
	n := p.typeAt(0)
	if n == 0 || p.peekAt(n).Typ != lexer.TokenIdentifier {
		p.errorf(p.peek(), "expected declaration, found %s", describe(p.peek()))
	}

	if p.peekAt(n + 1).IsOperator("(") {
		return p.function(p.typeSpec())
	}

	decl := p.declaration(p.typeSpec())
	p.expect(";")

	return decl
}

func (p *clike) compilationUnit() *cst.Node {
	root := cst.New(cst.KindTranslationUnit, p.peek().Pos)

	for {
		root.Append(p.drainComments()...)

		tok := p.peek()
		switch {
		case tok.Typ == lexer.TokenEOF:
			return root
		case tok.IsKeyword("package"):
			root.Append(p.skip(cst.KindPackage, true))
		case tok.IsKeyword("import"):
			root.Append(p.skip(cst.KindImport, true))
		case tok.IsOperator(";"):
			p.next()
		default:
			root.Append(p.typeDeclaration())
		}
	}
}

// modifiers consumes annotations and modifier keywords. The returned map
// holds the keywords seen.
func (p *clike) modifiers() map[string]lexer.Token {
	seen := make(map[string]lexer.Token)

	for {
		tok := p.peek()
		switch {
		case tok.IsOperator("@") && !p.peekAt(1).IsKeyword("interface"):
			p.next()
			p.expectType(lexer.TokenIdentifier, "annotation name")
			if p.check("(") {
				p.skipParens()
			}
		case tok.Typ == lexer.TokenKeyword && javaModifiers[tok.Value]:
			seen[tok.Value] = p.next()
		default:
			return seen
		}
	}
}

func (p *clike) skipParens() {
	depth := 0
	for {
		tok := p.next()
		switch {
		case tok.Typ == lexer.TokenEOF:
			p.errorf(tok, "unexpected end of input")
		case tok.IsOperator("("):
			depth++
		case tok.IsOperator(")"):
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *clike) typeDeclaration() *cst.Node {
	start := p.peek()
	p.modifiers()

	if !p.check("class") {
		// interfaces, enums and records
		node := p.skip(cst.KindUnsupported, false)
		node.Start = start.Pos
		node.Token = start

		return node
	}

	p.next()
	class := cst.New(cst.KindClass, start.Pos)
	class.Token = start
	class.SetField("name", cst.Leaf(cst.KindIdentifier, p.expectType(lexer.TokenIdentifier, "class name")))

	for !p.check("{") {
		if p.checkType(lexer.TokenEOF) {
			p.errorf(p.peek(), "expected '{', found end of input")
		}
		p.next()
	}

	p.expect("{")
	for {
		class.Append(p.drainComments()...)

		if p.check("}") {
			break
		}

		if p.checkType(lexer.TokenEOF) {
			p.errorf(p.peek(), "expected '}', found end of input")
		}

		if p.consume(";") {
			continue
		}

		class.Append(p.member(class.Field("name").Text()))
	}
	class.Close(p.expect("}"))

	return class
}

func (p *clike) member(className string) *cst.Node {
	start := p.peek()
	mods := p.modifiers()

	tok := p.peek()
	switch {
	case tok.IsKeyword("class") || tok.IsKeyword("interface") || tok.IsKeyword("enum") || tok.IsOperator("@"):
		return p.unsupportedFrom(start, false)
	case tok.IsOperator("{"):
		// initializer block
		return p.unsupportedFrom(start, false)
	case tok.Typ == lexer.TokenIdentifier && tok.Value == className && p.peekAt(1).IsOperator("("):
		// constructor
		return p.unsupportedFrom(start, false)
	case tok.IsOperator("<"):
		// generic method
		return p.unsupportedFrom(start, false)
	}

	n := p.typeAt(0)
	if n == 0 || p.peekAt(n).Typ != lexer.TokenIdentifier {
		p.errorf(tok, "expected member declaration, found %s", describe(tok))
	}

	typ := p.typeSpec()
	for name, mod := range mods {
		if name == "static" || name == "final" {
			typ.SetField(name, cst.Leaf(cst.KindOperator, mod))
		}
	}
	typ.Start = start.Pos

	if p.peekAt(1).IsOperator("(") {
		return p.function(typ)
	}

	field := p.declaration(typ)
	field.Kind = cst.KindField
	field.Close(p.expect(";"))

	return field
}

func (p *clike) unsupportedFrom(start lexer.Token, toSemicolon bool) *cst.Node {
	node := p.skip(cst.KindUnsupported, toSemicolon)
	node.Token = start
	node.Start = start.Pos

	return node
}

// typeAt reports how many tokens, starting i significant tokens ahead, form
// a type. Zero means no type starts there.
func (p *clike) typeAt(i int) int {
	n := i
	for {
		tok := p.peekAt(n)
		if tok.Typ != lexer.TokenKeyword || !(cQualifiers[tok.Value] || (p.java && tok.Value == "final")) {
			break
		}
		n++
	}

	tok := p.peekAt(n)
	switch {
	case p.java && tok.Typ == lexer.TokenKeyword && javaPrimitives[tok.Value]:
		n++
	case p.java && tok.Typ == lexer.TokenIdentifier:
		after := p.javaReferenceType(n)
		if after == 0 {
			return 0
		}
		n = after
	case !p.java && tok.Typ == lexer.TokenKeyword && cBaseTypes[tok.Value]:
		for next := p.peekAt(n); next.Typ == lexer.TokenKeyword && cBaseTypes[next.Value]; next = p.peekAt(n) {
			n++
		}
	case !p.java && (tok.IsKeyword("struct") || tok.IsKeyword("union") || tok.IsKeyword("enum")):
		if p.peekAt(n+1).Typ != lexer.TokenIdentifier {
			return 0
		}
		n += 2
	case !p.java && tok.Typ == lexer.TokenIdentifier:
		if !cTypedefs[tok.Value] {
			next := p.peekAt(n + 1)
			if next.Typ != lexer.TokenIdentifier && !(next.IsOperator("*") && p.peekAt(n+2).Typ == lexer.TokenIdentifier && p.isDeclaratorEnd(n+3)) {
				return 0
			}
		}
		n++
	default:
		return 0
	}

	for p.peekAt(n).IsOperator("*") && !p.java {
		n++
	}

	for p.java && p.peekAt(n).IsOperator("[") && p.peekAt(n+1).IsOperator("]") {
		n += 2
	}

	return n - i
}

func (p *clike) isDeclaratorEnd(i int) bool {
	tok := p.peekAt(i)
	return tok.IsOperator(";") || tok.IsOperator("=") || tok.IsOperator(",") || tok.IsOperator("[") || tok.IsOperator("(") || tok.IsOperator(")")
}

// javaReferenceType returns the index just past a class type such as
// String, java.util.List<Integer> or int[] at i, or zero when the tokens are
// an expression instead.
func (p *clike) javaReferenceType(i int) int {
	n := i + 1
	for p.peekAt(n).IsOperator(".") && p.peekAt(n+1).Typ == lexer.TokenIdentifier {
		n += 2
	}

	if p.peekAt(n).IsOperator("<") {
		depth := 0
	generics:
		for {
			tok := p.peekAt(n)
			switch {
			case tok.IsOperator("<"):
				depth++
			case tok.IsOperator(">"):
				depth--
			case tok.IsOperator(">>"):
				depth -= 2
			case tok.IsOperator(">>>"):
				depth -= 3
			case tok.Typ == lexer.TokenIdentifier || tok.IsOperator(",") || tok.IsOperator("?") || tok.IsOperator(".") ||
				tok.IsKeyword("extends") || tok.IsKeyword("super") || tok.IsOperator("[") || tok.IsOperator("]"):
			default:
				return 0
			}
			n++

			if depth <= 0 {
				break generics
			}
		}
	}

	next := p.peekAt(n)
	if next.Typ == lexer.TokenIdentifier || next.IsOperator("...") ||
		(next.IsOperator("[") && p.peekAt(n+1).IsOperator("]")) {
		return n
	}

	return 0
}

// typeSpec consumes the type found by typeAt.
func (p *clike) typeSpec() *cst.Node {
	n := p.typeAt(0)
	if n == 0 {
		p.errorf(p.peek(), "expected type, found %s", describe(p.peek()))
	}

	first := p.peek()
	node := cst.New(cst.KindType, first.Pos)

	var name lexer.Token
	for i := 0; i < n; i++ {
		tok := p.next()
		node.Close(tok)

		switch {
		case tok.Typ == lexer.TokenKeyword && (cQualifiers[tok.Value] || tok.Value == "final"):
			node.SetField(tok.Value, cst.Leaf(cst.KindOperator, tok))
		case tok.IsOperator("*"):
			node.Append(cst.Leaf(cst.KindOperator, tok))
		case tok.IsOperator("[") && p.check("]"):
			closing := p.next()
			i++

			brackets := tok
			brackets.Value = "[]"
			brackets.End = closing.End
			node.Append(cst.Leaf(cst.KindOperator, brackets))
		default:
			if name.Value == "" {
				name = tok
			} else {
				sep := " "
				if tok.Typ == lexer.TokenOperator || name.Value[len(name.Value)-1] == '.' ||
					name.Value[len(name.Value)-1] == '<' || name.Value[len(name.Value)-1] == ',' {
					sep = ""
				}
				name.Value += sep + tok.Value
			}
		}
	}

	node.Token = name
	return node
}

func (p *clike) function(ret *cst.Node) *cst.Node {
	fn := cst.New(cst.KindFunction, ret.Start)
	fn.SetField("type", ret)
	fn.SetField("name", cst.Leaf(cst.KindIdentifier, p.expectType(lexer.TokenIdentifier, "function name")))
	fn.SetField("parameters", p.parameters())

	for {
		p.modifiers()
		if !p.consume("throws") {
			break
		}

		p.typeSpecOrName()
		for p.consume(",") {
			p.typeSpecOrName()
		}
	}

	if p.check(";") {
		fn.Kind = cst.KindPrototype
		fn.Close(p.next())

		return fn
	}

	fn.SetField("body", p.block())
	return fn
}

func (p *clike) typeSpecOrName() {
	p.expectType(lexer.TokenIdentifier, "type name")
	for p.check(".") {
		p.next()
		p.expectType(lexer.TokenIdentifier, "type name")
	}
}

func (p *clike) parameters() *cst.Node {
	open := p.expect("(")
	params := cst.Leaf(cst.KindArguments, open)

	if p.check("void") && p.peekAt(1).IsOperator(")") {
		p.next()
	}

	for !p.check(")") {
		if len(params.Children) > 0 {
			p.expect(",")
		}

		p.modifiers()

		typ := p.typeSpec()
		param := cst.New(cst.KindParameter, typ.Start)
		param.SetField("type", typ)

		if p.check("...") {
			dots := p.next()
			dots.Value = "[]"
			typ.Append(cst.Leaf(cst.KindOperator, dots))
		}

		if p.checkType(lexer.TokenIdentifier) {
			param.SetField("name", cst.Leaf(cst.KindIdentifier, p.next()))
		}

		for p.check("[") {
			open := p.next()
			for !p.check("]") {
				p.conditional()
			}
			closing := p.expect("]")

			open.Value = "[]"
			open.End = closing.End
			typ.Append(cst.Leaf(cst.KindOperator, open))
		}

		params.Append(param)
	}
	params.Close(p.expect(")"))

	return params
}

// declaration parses the declarators following typ, without the ';'.
func (p *clike) declaration(typ *cst.Node) *cst.Node {
	decl := cst.New(cst.KindDeclaration, typ.Start)
	decl.SetField("type", typ)

	for {
		var pointer lexer.Token
		for !p.java && p.check("*") {
			star := p.next()
			if pointer.Value == "" {
				pointer = star
			} else {
				pointer.Value += "*"
				pointer.End = star.End
			}
		}

		name := p.expectType(lexer.TokenIdentifier, "identifier")
		declarator := cst.Leaf(cst.KindDeclarator, name)
		declarator.SetField("name", cst.Leaf(cst.KindIdentifier, name))
		if pointer.Value != "" {
			declarator.SetField("pointer", cst.Leaf(cst.KindOperator, pointer))
		}

		for p.check("[") {
			open := p.next()
			if p.check("]") {
				declarator.Append(cst.Leaf(cst.KindEmpty, open).Close(p.next()))
				continue
			}

			declarator.Append(p.expression())
			declarator.Close(p.expect("]"))
		}

		if p.consume("=") {
			declarator.SetField("value", p.initializer())
		}

		decl.Append(declarator)

		if !p.consume(",") {
			return decl
		}
	}
}

func (p *clike) initializer() *cst.Node {
	if !p.check("{") {
		return p.assignment()
	}

	list := cst.Leaf(cst.KindInitializer, p.next())
	for !p.check("}") {
		list.Append(p.initializer())
		if !p.consume(",") {
			break
		}
	}
	list.Close(p.expect("}"))

	return list
}

func (p *clike) isDeclaration() bool {
	n := p.typeAt(0)
	return n > 0 && p.peekAt(n).Typ == lexer.TokenIdentifier
}

func (p *clike) block() *cst.Node {
	block := cst.Leaf(cst.KindBlock, p.expect("{"))

	for {
		block.Append(p.drainComments()...)

		if p.check("}") {
			break
		}

		if p.checkType(lexer.TokenEOF) {
			p.errorf(p.peek(), "expected '}', found end of input")
		}

		block.Append(p.statement())
	}
	block.Close(p.next())

	return block
}

func (p *clike) statement() *cst.Node {
	tok := p.peek()

	switch {
	case tok.IsOperator("{"):
		return p.block()
	case tok.IsOperator(";"):
		return cst.Leaf(cst.KindEmpty, p.next())
	case tok.IsKeyword("if"):
		return p.ifStatement()
	case tok.IsKeyword("for"):
		return p.forStatement()
	case tok.IsKeyword("while"):
		return p.whileStatement()
	case tok.IsKeyword("do"):
		return p.doStatement()
	case tok.IsKeyword("return"):
		ret := cst.Leaf(cst.KindReturn, p.next())
		if !p.check(";") {
			ret.SetField("value", p.expression())
		}
		ret.Close(p.expect(";"))

		return ret
	case tok.IsKeyword("break"):
		return cst.Leaf(cst.KindBreak, p.next()).Close(p.expect(";"))
	case tok.IsKeyword("continue"):
		return cst.Leaf(cst.KindContinue, p.next()).Close(p.expect(";"))
	case tok.Typ == lexer.TokenDirective:
		return p.directive()
	case p.isDeclaration():
		decl := p.declaration(p.typeSpec())
		decl.Close(p.expect(";"))

		return decl
	case tok.Typ == lexer.TokenKeyword && isUnsupportedStatement(tok.Value):
		return p.skip(cst.KindUnsupported, false)
	case tok.Typ == lexer.TokenIdentifier && p.peekAt(1).IsOperator(":"):
		// labeled statement
		return p.skip(cst.KindUnsupported, false)
	}

	stmt := cst.New(cst.KindExpressionStatement, tok.Pos)
	stmt.Append(p.expression())
	for p.check(",") {
		p.next()
		stmt.Append(p.expression())
	}
	stmt.Close(p.expect(";"))

	return stmt
}

func isUnsupportedStatement(keyword string) bool {
	switch keyword {
	case "switch", "try", "throw", "goto", "synchronized", "assert",
		"class", "interface", "enum", "struct", "union", "typedef", "case", "default":
		return true
	}

	return false
}

func (p *clike) parenthesized() *cst.Node {
	p.expect("(")
	expr := p.expression()
	p.expect(")")

	return expr
}

func (p *clike) ifStatement() *cst.Node {
	stmt := cst.Leaf(cst.KindIf, p.next())
	stmt.SetField("condition", p.parenthesized())
	stmt.SetField("consequence", p.statement())

	if p.check("else") {
		p.next()
		stmt.SetField("alternative", p.statement())
	}

	return stmt
}

func (p *clike) forStatement() *cst.Node {
	keyword := p.next()
	p.expect("(")

	if p.java {
		if n := p.typeAt(0); n > 0 && p.peekAt(n).Typ == lexer.TokenIdentifier && p.peekAt(n+1).IsOperator(":") {
			stmt := cst.Leaf(cst.KindForEach, keyword)
			stmt.SetField("type", p.typeSpec())
			stmt.SetField("name", cst.Leaf(cst.KindIdentifier, p.next()))
			p.expect(":")
			stmt.SetField("value", p.expression())
			p.expect(")")
			stmt.SetField("body", p.statement())

			return stmt
		}
	}

	stmt := cst.Leaf(cst.KindFor, keyword)

	switch {
	case p.check(";"):
	case p.isDeclaration():
		stmt.SetField("initializer", p.declaration(p.typeSpec()))
	default:
		init := cst.New(cst.KindExpressionStatement, p.peek().Pos)
		init.Append(p.expression())
		for p.consume(",") {
			init.Append(p.expression())
		}
		stmt.SetField("initializer", init)
	}
	p.expect(";")

	if !p.check(";") {
		stmt.SetField("condition", p.expression())
	}
	p.expect(";")

	if !p.check(")") {
		update := cst.New(cst.KindExpressionStatement, p.peek().Pos)
		update.Append(p.expression())
		for p.consume(",") {
			update.Append(p.expression())
		}
		stmt.SetField("update", update)
	}
	p.expect(")")

	stmt.SetField("body", p.statement())
	return stmt
}

func (p *clike) whileStatement() *cst.Node {
	stmt := cst.Leaf(cst.KindWhile, p.next())
	stmt.SetField("condition", p.parenthesized())
	stmt.SetField("body", p.statement())

	return stmt
}

func (p *clike) doStatement() *cst.Node {
	stmt := cst.Leaf(cst.KindDoWhile, p.next())
	stmt.SetField("body", p.statement())
	p.expect("while")
	stmt.SetField("condition", p.parenthesized())
	stmt.Close(p.expect(";"))

	return stmt
}

func (p *clike) expression() *cst.Node {
	return p.assignment()
}

func (p *clike) assignment() *cst.Node {
	left := p.conditional()

	tok := p.peek()
	if tok.Typ != lexer.TokenOperator || !assignmentOperators[tok.Value] {
		return left
	}
	p.next()

	node := cst.New(cst.KindAssignment, left.Start)
	node.SetField("left", left)
	node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
	node.SetField("right", p.assignment())

	return node
}

func (p *clike) conditional() *cst.Node {
	cond := p.binary(1)
	if !p.check("?") {
		return cond
	}
	p.next()

	node := cst.New(cst.KindConditional, cond.Start)
	node.SetField("condition", cond)
	node.SetField("consequence", p.expression())
	p.expect(":")
	node.SetField("alternative", p.conditional())

	return node
}

func (p *clike) precedence(tok lexer.Token) int {
	switch {
	case tok.Typ == lexer.TokenOperator:
	case tok.IsKeyword("instanceof"):
	default:
		return 0
	}

	if tok.Value == ">>>" && !p.java {
		return 0
	}

	return binaryPrecedence[tok.Value]
}

func (p *clike) binary(minPrec int) *cst.Node {
	left := p.unary()

	for {
		tok := p.peek()
		prec := p.precedence(tok)
		if prec == 0 || prec < minPrec {
			return left
		}
		p.next()

		node := cst.New(cst.KindBinary, left.Start)
		node.SetField("left", left)
		node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
		node.SetField("right", p.binary(prec+1))

		left = node
	}
}

func (p *clike) unary() *cst.Node {
	tok := p.peek()

	switch {
	case tok.IsOperator("++") || tok.IsOperator("--"):
		p.next()
		node := cst.Leaf(cst.KindUpdate, tok)
		node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
		node.SetField("argument", p.unary())

		return node
	case tok.IsOperator("!") || tok.IsOperator("~") || tok.IsOperator("-") || tok.IsOperator("+") ||
		(!p.java && (tok.IsOperator("*") || tok.IsOperator("&"))):
		p.next()
		node := cst.Leaf(cst.KindUnary, tok)
		node.SetField("operator", cst.Leaf(cst.KindOperator, tok))
		node.SetField("argument", p.unary())

		return node
	case tok.IsKeyword("sizeof"):
		p.next()
		node := cst.Leaf(cst.KindSizeof, tok)
		if p.check("(") && p.typeAt(1) > 0 && p.peekAt(1+p.typeAt(1)).IsOperator(")") {
			p.next()
			node.SetField("type", p.typeSpec())
			node.Close(p.expect(")"))
		} else {
			node.SetField("value", p.unary())
		}

		return node
	case tok.IsOperator("(") && p.isCast():
		p.next()
		node := cst.Leaf(cst.KindCast, tok)
		node.SetField("type", p.typeSpec())
		p.expect(")")
		node.SetField("value", p.unary())

		return node
	}

	return p.postfix(p.primary())
}

// isCast reports whether the '(' ahead opens a cast. Java casts are only
// recognized for primitive types and String.
func (p *clike) isCast() bool {
	if p.java {
		inner := p.peekAt(1)
		if !(inner.Typ == lexer.TokenKeyword && javaPrimitives[inner.Value]) && !(inner.Typ == lexer.TokenIdentifier && inner.Value == "String") {
			return false
		}

		n := 2
		for p.peekAt(n).IsOperator("[") && p.peekAt(n+1).IsOperator("]") {
			n += 2
		}

		return p.peekAt(n).IsOperator(")")
	}

	tok := p.peekAt(1)
	if tok.Typ == lexer.TokenIdentifier && !cTypedefs[tok.Value] {
		return false
	}

	n := p.typeAt(1)
	return n > 0 && p.peekAt(1+n).IsOperator(")")
}

func (p *clike) postfix(expr *cst.Node) *cst.Node {
	for {
		tok := p.peek()

		switch {
		case tok.IsOperator("("):
			call := cst.New(cst.KindCall, expr.Start)
			call.SetField("function", expr)
			call.SetField("arguments", p.arguments())
			expr = call
		case tok.IsOperator("["):
			p.next()
			sub := cst.New(cst.KindSubscript, expr.Start)
			sub.SetField("argument", expr)
			sub.SetField("index", p.expression())
			sub.Close(p.expect("]"))
			expr = sub
		case tok.IsOperator(".") || tok.IsOperator("->"):
			p.next()
			member := cst.New(cst.KindMember, expr.Start)
			member.SetField("argument", expr)
			member.SetField("operator", cst.Leaf(cst.KindOperator, tok))
			member.SetField("field", cst.Leaf(cst.KindIdentifier, p.memberName()))
			expr = member
		case tok.IsOperator("++") || tok.IsOperator("--"):
			p.next()
			update := cst.New(cst.KindUpdate, expr.Start)
			update.Token = tok
			update.SetField("argument", expr)
			update.SetField("operator", cst.Leaf(cst.KindOperator, tok))
			expr = update
		default:
			return expr
		}
	}
}

// memberName accepts keywords such as length or class after a dot.
func (p *clike) memberName() lexer.Token {
	tok := p.peek()
	if tok.Typ != lexer.TokenIdentifier && tok.Typ != lexer.TokenKeyword {
		p.errorf(tok, "expected member name, found %s", describe(tok))
	}

	return p.next()
}

func (p *clike) arguments() *cst.Node {
	args := cst.Leaf(cst.KindArguments, p.expect("("))

	for !p.check(")") {
		if len(args.Children) > 0 {
			p.expect(",")
		}

		args.Append(p.assignment())
	}
	args.Close(p.expect(")"))

	return args
}

func (p *clike) primary() *cst.Node {
	tok := p.peek()

	switch tok.Typ {
	case lexer.TokenNumber:
		return cst.Leaf(cst.KindNumber, p.next())
	case lexer.TokenChar:
		return cst.Leaf(cst.KindChar, p.next())
	case lexer.TokenString:
		str := p.next()
		// adjacent literals concatenate
		for p.checkType(lexer.TokenString) {
			next := p.next()
			str.Value = str.Value[:len(str.Value)-1] + next.Value[1:]
			str.End = next.End
		}

		return cst.Leaf(cst.KindString, str)
	case lexer.TokenIdentifier:
		return cst.Leaf(cst.KindIdentifier, p.next())
	}

	switch {
	case tok.IsKeyword("true"):
		return cst.Leaf(cst.KindTrue, p.next())
	case tok.IsKeyword("false"):
		return cst.Leaf(cst.KindFalse, p.next())
	case tok.IsKeyword("null"):
		return cst.Leaf(cst.KindNull, p.next())
	case tok.IsKeyword("this") || tok.IsKeyword("super"):
		return cst.Leaf(cst.KindIdentifier, p.next())
	case tok.IsKeyword("new"):
		return p.newExpression()
	case tok.IsOperator("("):
		p.next()
		paren := cst.Leaf(cst.KindParenthesized, tok)
		paren.Append(p.expression())
		paren.Close(p.expect(")"))

		return paren
	case tok.IsOperator("{"):
		return p.initializer()
	}

	p.errorf(tok, "unexpected %s", describe(tok))
	return nil
}

// newExpression parses array creation. Object creation is kept as an opaque
// node.
func (p *clike) newExpression() *cst.Node {
	keyword := p.next()

	base := p.peek()
	if !(base.Typ == lexer.TokenKeyword && javaPrimitives[base.Value]) && base.Typ != lexer.TokenIdentifier {
		p.errorf(base, "expected type after new, found %s", describe(base))
	}
	p.next()

	if base.Typ == lexer.TokenIdentifier {
		for p.check(".") {
			p.next()
			base.Value += "." + p.expectType(lexer.TokenIdentifier, "type name").Value
		}
	}

	if !p.check("[") {
		node := cst.Leaf(cst.KindUnsupported, keyword)
		if p.check("<") {
			for !p.check("(") {
				p.next()
			}
		}
		if p.check("(") {
			node.End = p.arguments().End
		}
		if p.check("{") {
			node.End = p.skip(cst.KindUnsupported, false).End
		}

		return node
	}

	node := cst.Leaf(cst.KindNewArray, keyword)
	typ := cst.Leaf(cst.KindType, base)
	node.SetField("type", typ)

	for p.check("[") {
		open := p.next()
		if p.check("]") {
			brackets := open
			brackets.Value = "[]"
			brackets.End = p.next().End
			typ.Append(cst.Leaf(cst.KindOperator, brackets))
			continue
		}

		node.Append(p.expression())
		closing := p.expect("]")

		brackets := open
		brackets.Value = "[]"
		brackets.End = closing.End
		typ.Append(cst.Leaf(cst.KindOperator, brackets))
	}

	if p.check("{") {
		node.SetField("value", p.initializer())
	}
	node.Close(p.last())

	return node
}
