// Package translator runs the translation pipeline for one ordered pair of
// languages: parse, find the entry point, visit into the AST and assemble the
// target program.
package translator

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/generator/c"
	"go.crosslang.dev/pkg/generator/java"
	"go.crosslang.dev/pkg/generator/llvm"
	"go.crosslang.dev/pkg/generator/python"
	"go.crosslang.dev/pkg/logger"
	"go.crosslang.dev/pkg/parser"
	"go.crosslang.dev/pkg/visitor"
)

type Stage int

const (
	StageParsing Stage = iota
	StageEntryPoint
	StageVisiting
	StageGenerating
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageParsing:
		return "Parsing"
	case StageEntryPoint:
		return "EntryPointResolution"
	case StageVisiting:
		return "Visiting"
	case StageGenerating:
		return "Generating"
	case StageDone:
		return "Done"
	}

	return "Failed"
}

type Options struct {
	// Scope is the scope mode of nested blocks.
	Scope core.ScopeMode
	// Logger receives a debug line per stage. The slog default is used
	// when nil.
	Logger *slog.Logger
	// ClassName names the generated Java class. The source class, or Main,
	// is used when empty.
	ClassName string
	// Indent is one level of indentation, four spaces when empty.
	Indent string
}

// Result is the outcome of one translation. Code always holds something to
// show: the translated program, or the source commented out after a
// description of the failure.
type Result struct {
	Code     string
	Warnings []core.Warning
	// Stage is StageDone on success and the failing stage otherwise.
	Stage Stage
	Err   error
}

func (r *Result) Success() bool {
	return r.Err == nil
}

// Translator translates from one language into another. Its registries are
// built by New and only read afterwards, so Translate may be called
// concurrently.
type Translator struct {
	source  core.Language
	target  core.Language
	parser  core.Parser
	visitor core.Visitor
	backend core.Backend
	opts    Options
	log     *slog.Logger
}

// New builds the translator for source into target.
func New(source, target core.Language, opts Options) (*Translator, error) {
	if !source.IsSource() {
		return nil, fmt.Errorf("cannot translate from %s", source)
	}
	if !target.IsTarget() {
		return nil, fmt.Errorf("cannot translate to %s", target)
	}
	if source == target {
		return nil, fmt.Errorf("source and target are both %s", source.DisplayName())
	}

	p, v := frontend(source)
	b := backend(target)

	if r := b.Generators(); r != nil {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Translator{
		source:  source,
		target:  target,
		parser:  p,
		visitor: v,
		backend: b,
		opts:    opts,
		log:     log.With("source", source.String(), "target", target.String()),
	}, nil
}

func frontend(lang core.Language) (core.Parser, core.Visitor) {
	switch lang {
	case core.Java:
		return parser.NewJava(), visitor.NewJava()
	case core.C:
		return parser.NewC(), visitor.NewC()
	default:
		return parser.NewPython(), visitor.NewPython()
	}
}

func backend(lang core.Language) core.Backend {
	switch lang {
	case core.Java:
		return java.New()
	case core.C:
		return c.New()
	case core.LLVM:
		return llvm.New()
	default:
		return python.New()
	}
}

// Pairs lists every supported (source, target) pair.
func Pairs() [][2]core.Language {
	var pairs [][2]core.Language
	for _, s := range core.Sources() {
		for _, t := range core.Targets() {
			if s != t {
				pairs = append(pairs, [2]core.Language{s, t})
			}
		}
	}

	return pairs
}

func (t *Translator) Source() core.Language {
	return t.source
}

func (t *Translator) Target() core.Language {
	return t.target
}

func (t *Translator) newContext(src string) *core.Context {
	ctx := core.NewContext(t.source, t.target, src)
	ctx.Scope = t.opts.Scope
	if t.opts.Indent != "" {
		ctx.Indent = t.opts.Indent
	}

	ctx.Parsers[t.source] = t.parser
	ctx.Visitors[t.source] = t.visitor
	ctx.Generators = t.backend.Generators()

	return ctx
}

// Translate runs the whole pipeline over src. Any stage failing aborts the
// translation; the warnings gathered until then are still returned.
func (t *Translator) Translate(src string) *Result {
	ctx := t.newContext(src)

	code, stage, err := t.run(src, ctx)
	for _, w := range ctx.Warnings() {
		logger.LogWarning(t.log, w.Kind, w.Pos.Line, w.Pos.Column, w.Message)
	}

	if err != nil {
		stage = failedStage(stage, err)
		logger.LogFailure(t.log, stage.String(), err)

		return &Result{
			Code:     t.failure(src, err),
			Warnings: ctx.Warnings(),
			Stage:    stage,
			Err:      err,
		}
	}

	return &Result{
		Code:     code,
		Warnings: ctx.Warnings(),
		Stage:    StageDone,
	}
}

func (t *Translator) run(src string, ctx *core.Context) (code string, stage Stage, err error) {
	defer func() {
		if r := recover(); r != nil {
			code, err = "", &core.GenerationError{Node: "program", Msg: fmt.Sprintf("internal error during %s", stage), Cause: fmt.Errorf("%v", r)}
		}
	}()

	stage = StageParsing
	logger.LogPhase(t.log, stage.String())
	root, err := ctx.Parsers[t.source].Parse(src)
	if err != nil {
		return "", stage, parseError(err)
	}
	logger.LogPhaseComplete(t.log, stage.String(), "children", len(root.Children))

	stage = StageEntryPoint
	logger.LogPhase(t.log, stage.String())
	entry, err := ctx.Visitors[t.source].EntryPoint(root)
	if err != nil {
		return "", stage, err
	}
	logger.LogPhaseComplete(t.log, stage.String(), "entry", string(entry.Kind))

	stage = StageVisiting
	logger.LogPhase(t.log, stage.String())
	program, err := ctx.Visitors[t.source].Visit(root, entry, ctx)
	if err != nil {
		return "", stage, err
	}
	if t.opts.ClassName != "" {
		ctx.CurrentClass = t.opts.ClassName
	}
	logger.LogPhaseComplete(t.log, stage.String(),
		"globals", len(program.Globals),
		"functions", len(program.Functions),
		"statements", len(program.Main))

	stage = StageGenerating
	logger.LogPhase(t.log, stage.String())
	code, err = t.backend.Assemble(program, ctx)
	if err != nil {
		return "", stage, err
	}
	logger.LogPhaseComplete(t.log, stage.String(), "bytes", len(code))

	return code, StageDone, nil
}

// parseError turns what the parser returned into a ParseError.
func parseError(err error) error {
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &core.ParseError{Position: syntaxErr.Pos, Msg: syntaxErr.Msg, Cause: err}
	}

	return &core.ParseError{Msg: err.Error(), Cause: err}
}

// failedStage attributes fatal errors to the stage their kind belongs to.
func failedStage(stage Stage, err error) Stage {
	var parseErr *core.ParseError
	var entryErr *core.EntryPointError

	switch {
	case errors.As(err, &parseErr):
		return StageParsing
	case errors.As(err, &entryErr):
		return StageEntryPoint
	}

	return stage
}

// Comment markers of the targets, used to embed the source of a failed
// translation.
var commentMarkers = map[core.Language]string{
	core.Python: "#",
	core.Java:   "//",
	core.C:      "//",
	core.LLVM:   ";",
}

// failure comments src out under a header describing err.
func (t *Translator) failure(src string, err error) string {
	return FailureCode(t.source, t.target, src, err)
}

// FailureCode renders src as a comment of target, preceded by a header
// saying why the translation from source failed.
func FailureCode(source, target core.Language, src string, err error) string {
	marker, ok := commentMarkers[target]
	if !ok {
		marker = "//"
	}

	var header strings.Builder
	fmt.Fprintf(&header, "Translation from %s to %s failed.\n", source.DisplayName(), target.DisplayName())
	if err != nil {
		fmt.Fprintf(&header, "%s\n", err)
	}
	header.WriteString("\nOriginal source:\n")

	body := generator.Prefix(header.String(), marker)
	if strings.TrimSpace(src) != "" {
		body += "\n" + marker + "\n" + generator.Prefix(src, marker)
	}

	return body + "\n"
}
