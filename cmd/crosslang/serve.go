package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"io"
	"strings"

	"go.crosslang.dev/pkg/logger"
	"go.crosslang.dev/pkg/translator"
)

// Requests carry whole programs on one line.
const maxRequest = 16 << 20

func cmdServe(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve-json", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts, err := c.options(stderr)
	if err != nil {
		return fail(stderr, err)
	}

	logger.Info("serving translation requests")
	if err := serve(translator.NewService(opts), stdin, stdout); err != nil {
		return fail(stderr, err)
	}

	return 0
}

// serve answers each request line with one response line. A line that is
// not a request gets a failed response.
func serve(s *translator.Service, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxRequest)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req translator.Request
		var resp translator.Response
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			logger.Warn("bad request", "error", err)
			resp = translator.Response{Warnings: []string{}, Error: "bad request: " + err.Error()}
		} else {
			resp = s.Handle(req)
		}

		if err := enc.Encode(resp); err != nil {
			return err
		}
	}

	return scanner.Err()
}
