package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.crosslang.dev/pkg/translator"
)

func cmdTranslate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var c common
	c.register(fs)
	from := fs.String("from", "", "source language")
	to := fs.String("to", "", "target language")
	out := fs.String("o", "", "write the translation to this file instead of stdout")
	class := fs.String("class", "", "name of the generated Java class")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts, err := c.options(stderr)
	if err != nil {
		return fail(stderr, err)
	}
	opts.ClassName = *class

	source, target, err := pair(*from, *to)
	if err != nil {
		return fail(stderr, err)
	}

	var src []byte
	switch fs.NArg() {
	case 0:
		src, err = io.ReadAll(stdin)
	case 1:
		src, err = os.ReadFile(fs.Arg(0))
	default:
		return fail(stderr, fmt.Errorf("translate takes at most one file"))
	}
	if err != nil {
		return fail(stderr, err)
	}

	t, err := translator.New(source, target, opts)
	if err != nil {
		return fail(stderr, err)
	}

	res := t.Translate(string(src))
	printWarnings(stderr, res.Warnings)

	if *out != "" {
		if err := os.WriteFile(*out, []byte(res.Code), 0o644); err != nil {
			return fail(stderr, err)
		}
	} else {
		fmt.Fprint(stdout, res.Code)
	}

	if res.Err != nil {
		printError(stderr, res.Err)
		return 1
	}

	return 0
}
