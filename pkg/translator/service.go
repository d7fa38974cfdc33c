package translator

import (
	"fmt"
	"strings"
	"sync"

	"go.crosslang.dev/pkg/core"
)

// Request is one translation asked for by the surrounding service.
type Request struct {
	SourceCode     string `json:"source_code"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type Response struct {
	Success  bool     `json:"success"`
	Code     string   `json:"code"`
	Warnings []string `json:"warnings"`
	Error    string   `json:"error,omitempty"`
}

// Service answers requests for any supported pair. Translators are built on
// first use and kept.
type Service struct {
	opts Options

	mu          sync.Mutex
	translators map[[2]core.Language]*Translator
}

func NewService(opts Options) *Service {
	return &Service{
		opts:        opts,
		translators: make(map[[2]core.Language]*Translator),
	}
}

func (s *Service) translator(source, target core.Language) (*Translator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]core.Language{source, target}
	if t, ok := s.translators[key]; ok {
		return t, nil
	}

	t, err := New(source, target, s.opts)
	if err != nil {
		return nil, err
	}

	s.translators[key] = t
	return t, nil
}

// Handle validates req and translates it.
func (s *Service) Handle(req Request) Response {
	source, target, err := validate(req)
	if err != nil {
		return invalid(req, target, err)
	}

	t, err := s.translator(source, target)
	if err != nil {
		return invalid(req, target, err)
	}

	return NewResponse(t.Translate(req.SourceCode))
}

func validate(req Request) (source, target core.Language, err error) {
	target, targetErr := core.ParseLanguage(req.TargetLanguage)
	if targetErr != nil {
		return "", "", fmt.Errorf("target language: %w", targetErr)
	}
	if !target.IsTarget() {
		return "", "", fmt.Errorf("%s is not a target language", target.DisplayName())
	}

	source, err = core.ParseLanguage(req.SourceLanguage)
	if err != nil {
		return "", target, fmt.Errorf("source language: %w", err)
	}
	if !source.IsSource() {
		return "", target, fmt.Errorf("%s is not a source language", source.DisplayName())
	}
	if source == target {
		return "", target, fmt.Errorf("source and target language are both %s", source.DisplayName())
	}

	return source, target, nil
}

// invalid answers a request that could not be translated at all. The source
// comes back commented out; a target that is not known gets // comments.
func invalid(req Request, target core.Language, err error) Response {
	if target == "" {
		target = core.Language(strings.ToLower(strings.TrimSpace(req.TargetLanguage)))
	}
	if target == "" {
		target = "unknown"
	}

	source, _ := core.ParseLanguage(req.SourceLanguage)
	if source == "" {
		source = core.Language(req.SourceLanguage)
	}

	return Response{
		Success:  false,
		Code:     FailureCode(source, target, req.SourceCode, err),
		Warnings: []string{},
		Error:    err.Error(),
	}
}

// NewResponse converts a result into its wire form.
func NewResponse(r *Result) Response {
	warnings := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = w.String()
	}

	resp := Response{
		Success:  r.Success(),
		Code:     r.Code,
		Warnings: warnings,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}

	return resp
}

var defaultService = sync.OnceValue(func() *Service {
	return NewService(Options{})
})

// Handle answers req with the default options.
func Handle(req Request) Response {
	return defaultService().Handle(req)
}
