package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"go.crosslang.dev/pkg/translator"
)

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)

	var c common
	c.register(fs)
	from := fs.String("from", "", "source language")
	to := fs.String("to", "", "target language")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts, err := c.options(os.Stderr)
	if err != nil {
		return fail(os.Stderr, err)
	}

	source, target, err := pair(*from, *to)
	if err != nil {
		return fail(os.Stderr, err)
	}

	t, err := translator.New(source, target, opts)
	if err != nil {
		return fail(os.Stderr, err)
	}

	fmt.Printf("%s %s: %s to %s\nA blank line translates the snippet, Ctrl+D exits.\n",
		appName, version, source.DisplayName(), target.DisplayName())

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readSnippet(ln)
		if !ok {
			fmt.Println()
			return 0
		}

		if strings.TrimSpace(src) == "" {
			continue
		}

		res := t.Translate(src)
		printWarnings(os.Stderr, res.Warnings)
		if res.Err != nil {
			printError(os.Stderr, res.Err)
			continue
		}

		fmt.Print(res.Code)
	}
}

// readSnippet collects lines until a blank one. Each line goes into the
// history as typed.
func readSnippet(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return b.String(), b.Len() > 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}

		ln.AppendHistory(line)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
