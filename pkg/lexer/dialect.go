package lexer

import "sort"

// Dialect configures the scanner for one source language.
type Dialect struct {
	Name     string
	Keywords map[string]bool

	LineComment   string
	BlockComments bool
	Directives    bool

	CharLiterals      bool
	TripleQuotes      bool
	StringPrefixes    string
	NumberSuffixes    string
	DollarIdentifiers bool

	// Indentation turns on NEWLINE/INDENT/DEDENT tokens.
	Indentation bool

	ops []string
}

func (d *Dialect) operators() []string {
	return d.ops
}

func newDialect(d Dialect, operators ...string) *Dialect {
	ops := append([]string(nil), operators...)
	sort.SliceStable(ops, func(i, j int) bool {
		return len(ops[i]) > len(ops[j])
	})

	d.ops = ops
	return &d
}

func keywords(words ...string) map[string]bool {
	table := make(map[string]bool, len(words))
	for _, w := range words {
		table[w] = true
	}

	return table
}

var cFamilyOperators = []string{
	"<<=", ">>=", "...",
	"->", "++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"&&", "||", "==", "!=", "<=", ">=", "<<", ">>",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!", "=", "<", ">",
	"?", ":", ";", ",", ".", "(", ")", "[", "]", "{", "}",
}

var C = newDialect(Dialect{
	Name: "c",
	Keywords: keywords(
		"auto", "break", "case", "char", "const", "continue", "default", "do",
		"double", "else", "enum", "extern", "float", "for", "goto", "if", "int",
		"long", "register", "return", "short", "signed", "sizeof", "static",
		"struct", "switch", "typedef", "union", "unsigned", "void", "volatile",
		"while", "bool", "_Bool", "true", "false",
	),
	LineComment:    "//",
	BlockComments:  true,
	Directives:     true,
	CharLiterals:   true,
	NumberSuffixes: "uUlLfF",
}, cFamilyOperators...)

var Java = newDialect(Dialect{
	Name: "java",
	Keywords: keywords(
		"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
		"class", "const", "continue", "default", "do", "double", "else", "enum",
		"extends", "final", "finally", "float", "for", "if", "implements",
		"import", "instanceof", "int", "interface", "long", "new", "package",
		"private", "protected", "public", "return", "short", "static", "super",
		"switch", "synchronized", "this", "throw", "throws", "try", "void",
		"volatile", "while", "var", "true", "false", "null",
	),
	LineComment:       "//",
	BlockComments:     true,
	CharLiterals:      true,
	NumberSuffixes:    "lLfFdD",
	DollarIdentifiers: true,
}, append([]string{">>>=", ">>>", "::", "@"}, cFamilyOperators...)...)

var Python = newDialect(Dialect{
	Name: "python",
	Keywords: keywords(
		"False", "None", "True", "and", "as", "assert", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally", "for",
		"from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not",
		"or", "pass", "raise", "return", "try", "while", "with", "yield",
	),
	LineComment:    "#",
	TripleQuotes:   true,
	StringPrefixes: "fFrRbBuU",
	Indentation:    true,
},
	"**=", "//=", ">>=", "<<=",
	"**", "//", "->", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ":=",
	"==", "!=", "<=", ">=", "<<", ">>",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "=", "<", ">",
	":", ";", ",", ".", "(", ")", "[", "]", "{", "}", "@",
)
