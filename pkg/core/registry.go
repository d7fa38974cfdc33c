package core

import (
	"fmt"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/cst"
)

type Parser interface {
	Parse(src string) (*cst.Node, error)
}

// Visitor lowers the CST of one source language into the AST.
type Visitor interface {
	// EntryPoint locates the node holding the program's entry point.
	EntryPoint(root *cst.Node) (*cst.Node, error)
	Visit(root, entry *cst.Node, ctx *Context) (*ast.Program, error)
}

// Generator renders one node kind as target source text.
type Generator interface {
	CanGenerate(node ast.Node) bool
	Generate(node ast.Node, ctx *Context) (string, error)
}

// Backend turns a whole program into target source.
type Backend interface {
	Language() Language
	// Generators is nil for backends that do not render node by node.
	Generators() *GeneratorRegistry
	Assemble(p *ast.Program, ctx *Context) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface for a single
// node kind.
type GeneratorFunc struct {
	For ast.Kind
	Fn  func(node ast.Node, ctx *Context) (string, error)
}

func (g GeneratorFunc) CanGenerate(node ast.Node) bool {
	return node != nil && node.Kind() == g.For
}

func (g GeneratorFunc) Generate(node ast.Node, ctx *Context) (string, error) {
	return g.Fn(node, ctx)
}

// GeneratorRegistry maps every AST kind to the generator of one target.
type GeneratorRegistry struct {
	target     Language
	generators map[ast.Kind]Generator
}

func NewGeneratorRegistry(target Language) *GeneratorRegistry {
	return &GeneratorRegistry{
		target:     target,
		generators: make(map[ast.Kind]Generator),
	}
}

func (r *GeneratorRegistry) Target() Language {
	return r.target
}

func (r *GeneratorRegistry) Register(kind ast.Kind, g Generator) *GeneratorRegistry {
	r.generators[kind] = g
	return r
}

// Func registers fn as the generator for kind.
func (r *GeneratorRegistry) Func(kind ast.Kind, fn func(node ast.Node, ctx *Context) (string, error)) *GeneratorRegistry {
	return r.Register(kind, GeneratorFunc{For: kind, Fn: fn})
}

func (r *GeneratorRegistry) Lookup(kind ast.Kind) (Generator, bool) {
	g, ok := r.generators[kind]
	return g, ok
}

// Missing lists the kinds without a generator.
func (r *GeneratorRegistry) Missing() []ast.Kind {
	var missing []ast.Kind
	for _, kind := range ast.Kinds() {
		if _, ok := r.generators[kind]; !ok {
			missing = append(missing, kind)
		}
	}

	return missing
}

// Validate fails unless every node kind has a generator.
func (r *GeneratorRegistry) Validate() error {
	if missing := r.Missing(); len(missing) > 0 {
		return fmt.Errorf("%s generators missing for %v", r.target, missing)
	}

	return nil
}
