package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/logger"
	"go.crosslang.dev/pkg/translator"
)

const (
	appName     = "crosslang"
	version     = "0.1.0"
	historyFile = ".crosslang_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "translate":
		os.Exit(cmdTranslate(os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
	case "serve-json":
		os.Exit(cmdServe(os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(appName, version)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `%s %s translates programs between Python, Java and C.

Usage:
  %s translate -from LANG -to LANG [-o FILE] [-class NAME] [FILE]
                                                      Translate FILE or stdin
  %s serve-json                                       Answer JSON requests, one per line
  %s repl -from LANG -to LANG                         Translate snippets interactively
  %s version                                          Print the version

Sources: python, java, c. Targets: python, java, c, llvm.
Every command accepts -log-level debug|info|warn|error, -log-format text|json
and -scope inherit|isolated.
`, appName, version, appName, appName, appName, appName)
}

// common are the flags every command shares.
type common struct {
	logLevel  string
	logFormat string
	scope     string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&c.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&c.scope, "scope", "inherit", "what nested blocks see of outer names: inherit or isolated")
}

// options sets up logging on stderr and returns the translator options.
func (c *common) options(stderr io.Writer) (translator.Options, error) {
	level, err := logger.ParseLevel(c.logLevel)
	if err != nil {
		return translator.Options{}, err
	}

	cfg := logger.DefaultConfig()
	cfg.Level, cfg.Format, cfg.Output = level, c.logFormat, stderr

	l, err := logger.Init(cfg)
	if err != nil {
		return translator.Options{}, err
	}

	scope, err := core.ParseScopeMode(c.scope)
	if err != nil {
		return translator.Options{}, err
	}

	return translator.Options{Scope: scope, Logger: l}, nil
}

// pair reads the -from and -to flags.
func pair(from, to string) (core.Language, core.Language, error) {
	if from == "" || to == "" {
		return "", "", fmt.Errorf("both -from and -to are required")
	}

	source, err := core.ParseLanguage(from)
	if err != nil {
		return "", "", err
	}

	target, err := core.ParseLanguage(to)
	if err != nil {
		return "", "", err
	}

	return source, target, nil
}

func fail(stderr io.Writer, err error) int {
	logger.Debug("command failed", "error", err)
	fmt.Fprintf(stderr, "%s: %v\n", appName, err)
	return 1
}
