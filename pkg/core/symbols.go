package core

import (
	"sort"

	"go.crosslang.dev/pkg/ast"
)

type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolArray
	SymbolFunction
	SymbolParameter
	SymbolConstant
	// SymbolCounter is a loop counter running up from a non-negative start.
	SymbolCounter
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolArray:
		return "array"
	case SymbolFunction:
		return "function"
	case SymbolParameter:
		return "parameter"
	case SymbolConstant:
		return "constant"
	case SymbolCounter:
		return "counter"
	}

	return "unknown"
}

// Symbol is what the translator knows about a name. For functions Type is the
// return type and Params the parameter types.
type Symbol struct {
	Name   string
	Type   ast.Type
	Value  ast.Expr
	Kind   SymbolKind
	Params []ast.Type
}

// SymbolTable maps names to symbols. A table created with Inherit reads
// through to its parent; writes always land in the table itself.
type SymbolTable struct {
	Entries map[string]*Symbol
	parent  *SymbolTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Entries: make(map[string]*Symbol),
	}
}

// Inherit returns an empty child scope of t.
func (t *SymbolTable) Inherit() *SymbolTable {
	child := NewSymbolTable()
	child.parent = t

	return child
}

func (t *SymbolTable) Add(sym *Symbol) {
	t.Entries[sym.Name] = sym
}

func (t *SymbolTable) Get(name string) *Symbol {
	for scope := t; scope != nil; scope = scope.parent {
		if sym, ok := scope.Entries[name]; ok {
			return sym
		}
	}

	return nil
}

func (t *SymbolTable) Has(name string) bool {
	return t.Get(name) != nil
}

// Local reports whether name is declared in t itself rather than a parent.
func (t *SymbolTable) Local(name string) bool {
	_, ok := t.Entries[name]
	return ok
}

// Merge copies every entry of t2 into t, overwriting existing names.
func (t *SymbolTable) Merge(t2 *SymbolTable) {
	for name, sym := range t2.Entries {
		t.Entries[name] = sym
	}
}

// Copy returns a table with the same entries and parent. Symbols are shared.
func (t *SymbolTable) Copy() *SymbolTable {
	t2 := NewSymbolTable()
	t2.parent = t.parent

	for k, v := range t.Entries {
		t2.Entries[k] = v
	}

	return t2
}

// Names lists the names declared in t itself, sorted.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.Entries))
	for name := range t.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
