// Package core holds the per-request translation state shared by visitors and
// generators, along with the interfaces and errors that connect them.
package core

import (
	"fmt"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/lexer"
)

// ScopeMode decides what a nested context sees of its parent's symbols.
type ScopeMode int

const (
	// ScopeInherit reads through to the parent and shadows on write.
	ScopeInherit ScopeMode = iota
	// ScopeIsolated starts from an empty symbol table.
	ScopeIsolated
)

func (m ScopeMode) String() string {
	if m == ScopeIsolated {
		return "isolated"
	}

	return "inherit"
}

// ParseScopeMode accepts "inherit" or "isolated".
func ParseScopeMode(name string) (ScopeMode, error) {
	switch name {
	case "inherit", "":
		return ScopeInherit, nil
	case "isolated":
		return ScopeIsolated, nil
	}

	return ScopeInherit, fmt.Errorf("unknown scope mode %q", name)
}

// Context is the mutable state of one translation. It is created per request
// and never shared between requests.
type Context struct {
	Source Language
	Target Language
	// Input is the source text being translated.
	Input string

	CurrentFunction string
	CurrentClass    string

	// Scope is the mode used for the nested scopes of function bodies and
	// blocks.
	Scope  ScopeMode
	Indent string

	Parsers    map[Language]Parser
	Visitors   map[Language]Visitor
	Generators *GeneratorRegistry

	symbols *SymbolTable
	sink    *sink
}

// sink is shared by a context and every context nested in it.
type sink struct {
	warnings []Warning
	features map[Feature]bool
}

func NewContext(source, target Language, input string) *Context {
	return &Context{
		Source:   source,
		Target:   target,
		Input:    input,
		Indent:   "    ",
		Parsers:  make(map[Language]Parser),
		Visitors: make(map[Language]Visitor),
		symbols:  NewSymbolTable(),
		sink:     &sink{features: make(map[Feature]bool)},
	}
}

func (c *Context) AddSymbol(sym *Symbol) {
	c.symbols.Add(sym)
}

func (c *Context) GetSymbol(name string) *Symbol {
	return c.symbols.Get(name)
}

func (c *Context) HasSymbol(name string) bool {
	return c.symbols.Has(name)
}

func (c *Context) Symbols() *SymbolTable {
	return c.symbols
}

// Nested returns a context for an inner scope. Registries, warnings and
// features are shared with c.
func (c *Context) Nested(mode ScopeMode) *Context {
	nested := *c

	if mode == ScopeIsolated {
		nested.symbols = NewSymbolTable()
	} else {
		nested.symbols = c.symbols.Inherit()
	}

	return &nested
}

// Block returns a nested context using the configured scope mode.
func (c *Context) Block() *Context {
	return c.Nested(c.Scope)
}

func (c *Context) Warn(w Warning) {
	c.sink.warnings = append(c.sink.warnings, w)
}

func (c *Context) Warnf(kind string, pos lexer.Position, format string, args ...interface{}) {
	c.Warn(Warning{
		Kind:    kind,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Unsupported records an unsupported construct and returns the matching
// placeholder.
func (c *Context) Unsupported(pos lexer.Position, construct, text string) *ast.Placeholder {
	c.Warn(WarningFrom(&UnsupportedError{Position: pos, Construct: construct}))

	return &ast.Placeholder{
		Text:   text,
		Reason: "unsupported " + construct,
	}
}

// Warnings returns the accumulated warnings in order.
func (c *Context) Warnings() []Warning {
	return append([]Warning(nil), c.sink.warnings...)
}

func (c *Context) Require(f Feature) {
	c.sink.features[f] = true
}

func (c *Context) Requires(f Feature) bool {
	return c.sink.features[f]
}

// Generate renders node with the generator registered for its kind.
func (c *Context) Generate(node ast.Node) (string, error) {
	if node == nil {
		return "", &GenerationError{Node: "nil", Msg: "missing node"}
	}

	if c.Generators == nil {
		return "", &GenerationError{Node: node.Kind().String(), Msg: "no generators for " + c.Target.String()}
	}

	g, ok := c.Generators.Lookup(node.Kind())
	if !ok || !g.CanGenerate(node) {
		return "", &UnsupportedError{Construct: fmt.Sprintf("%s in %s", node.Kind(), c.Target.DisplayName())}
	}

	return g.Generate(node, c)
}
