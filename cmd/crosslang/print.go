package main

import (
	"errors"
	"fmt"
	"io"

	"go.crosslang.dev/pkg/core"
)

func printWarnings(w io.Writer, warnings []core.Warning) {
	for _, warn := range warnings {
		at := ""
		if warn.Pos.Line > 0 {
			at = " at " + warn.Pos.String()
		}

		switch warn.Kind {
		case "Unsupported":
			fmt.Fprintln(w, "Unsupported construct:", warn.Message+at)
		case "Generation":
			fmt.Fprintln(w, "Could not generate:", warn.Message+at)
		case "Approximation":
			fmt.Fprintln(w, "Approximation:", warn.Message+at)
		default:
			fmt.Fprintln(w, "Warning:", warn.String())
		}
	}
}

func printError(w io.Writer, err error) {
	var (
		parseErr *core.ParseError
		entryErr *core.EntryPointError
		genErr   *core.GenerationError
	)

	switch {
	case errors.As(err, &parseErr):
		fmt.Fprintln(w, "Parse error:", parseErr.Msg, "at", parseErr.Position)
	case errors.As(err, &entryErr):
		fmt.Fprintln(w, "Entry point not found:", entryErr.Msg)
	case errors.As(err, &genErr):
		fmt.Fprintln(w, "Generation failed:", genErr.Error())
	default:
		fmt.Fprintln(w, "Error:", err)
	}
}
