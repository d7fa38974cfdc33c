// Package casefile reads translation test cases written as Markdown.
//
// A case starts at a heading of the form "Test: name". The first fenced code
// block after it is the input; its info string names the input language.
// Every later fence is an expectation keyed by its own info string:
//
//	## Test: hello
//	```python
//	print("hi")
//	```
//	```c
//	...
//	```
//
// Fences without an info string are prose and ignored.
package casefile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const testPrefix = "Test: "

type Fence struct {
	Info    string
	Content string
	Line    int
}

type Case struct {
	Name   string
	Line   int
	Input  Fence
	Expect []Fence
}

// Expected returns the content of the expectation fence tagged info.
func (c *Case) Expected(info string) (string, bool) {
	for _, f := range c.Expect {
		if f.Info == info {
			return f.Content, true
		}
	}

	return "", false
}

// Parse extracts the cases of a Markdown document. When known is not empty,
// a fence tagged with anything else is an error.
func Parse(src []byte, known ...string) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	r := &reader{src: src, known: known}
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			if err := r.heading(n); err != nil {
				return ast.WalkStop, err
			}
		case *ast.FencedCodeBlock:
			if err := r.fence(n); err != nil {
				return ast.WalkStop, err
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.flush(); err != nil {
		return nil, err
	}

	return r.cases, nil
}

// ReadFile parses the cases of the Markdown file at path.
func ReadFile(path string, known ...string) ([]Case, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cases, err := Parse(src, known...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cases, nil
}

type reader struct {
	src     []byte
	known   []string
	cases   []Case
	current *Case
}

func (r *reader) heading(n *ast.Heading) error {
	title := headingText(n, r.src)
	if !strings.HasPrefix(title, testPrefix) {
		return nil
	}

	if err := r.flush(); err != nil {
		return err
	}

	r.current = &Case{
		Name: strings.TrimSpace(strings.TrimPrefix(title, testPrefix)),
		Line: r.line(n.Lines()),
	}

	return nil
}

func (r *reader) fence(n *ast.FencedCodeBlock) error {
	info := string(n.Language(r.src))
	if info == "" {
		return nil
	}

	line := r.line(n.Lines())
	if r.current == nil {
		return fmt.Errorf("line %d: %s fence found outside of test case", line, info)
	}

	if !r.isKnown(info) {
		return fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, info, r.current.Name)
	}

	f := Fence{Info: info, Content: fenceContent(n, r.src), Line: line}

	if r.current.Input.Info == "" {
		r.current.Input = f
		return nil
	}

	if _, dup := r.current.Expected(info); dup {
		return fmt.Errorf("line %d: multiple %s fences in test '%s'", line, info, r.current.Name)
	}

	r.current.Expect = append(r.current.Expect, f)
	return nil
}

func (r *reader) isKnown(info string) bool {
	if len(r.known) == 0 {
		return true
	}

	for _, k := range r.known {
		if k == info {
			return true
		}
	}

	return false
}

// flush validates and keeps the case being read.
func (r *reader) flush() error {
	c := r.current
	if c == nil {
		return nil
	}
	r.current = nil

	if c.Input.Info == "" {
		return fmt.Errorf("test '%s' has no input fence", c.Name)
	}
	if len(c.Expect) == 0 {
		return fmt.Errorf("test '%s' has no expectation fences", c.Name)
	}

	r.cases = append(r.cases, *c)
	return nil
}

// line is the one based line of the first segment in lines.
func (r *reader) line(lines *text.Segments) int {
	if lines.Len() == 0 {
		return 0
	}

	return bytes.Count(r.src[:lines.At(0).Start], []byte("\n")) + 1
}

func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

func fenceContent(n *ast.FencedCodeBlock, src []byte) string {
	var buf bytes.Buffer

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}

	return buf.String()
}
