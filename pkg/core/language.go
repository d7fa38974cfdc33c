package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Language string

const (
	Python Language = "python"
	Java   Language = "java"
	C      Language = "c"
	// LLVM is only available as a target.
	LLVM Language = "llvm"
)

var languageAliases = map[string]Language{
	"python":  Python,
	"python3": Python,
	"py":      Python,
	"java":    Java,
	"c":       C,
	"llvm":    LLVM,
	"ll":      LLVM,
	"llvm-ir": LLVM,
}

// ParseLanguage accepts a language name or one of its common aliases.
func ParseLanguage(name string) (Language, error) {
	if lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lang, nil
	}

	return "", fmt.Errorf("unknown language %q", name)
}

// Sources lists the languages that can be translated from.
func Sources() []Language {
	return []Language{Python, Java, C}
}

// Targets lists the languages that can be translated to.
func Targets() []Language {
	return []Language{Python, Java, C, LLVM}
}

func (l Language) IsSource() bool {
	return l == Python || l == Java || l == C
}

func (l Language) IsTarget() bool {
	return l.IsSource() || l == LLVM
}

func (l Language) String() string {
	return string(l)
}

// DisplayName is the name used in messages, e.g. "Java" or "LLVM IR".
func (l Language) DisplayName() string {
	if l == LLVM {
		return cases.Upper(language.English).String(string(l)) + " IR"
	}

	return cases.Title(language.English).String(string(l))
}

// Feature is an optional capability of the generated program that needs an
// import or include in the target.
type Feature int

const (
	FeatureBool Feature = iota
	FeatureIO
	FeatureMath
	FeatureString
	FeatureStdlib
	FeatureSys
	FeatureArrays
)

func (f Feature) String() string {
	switch f {
	case FeatureBool:
		return "bool"
	case FeatureIO:
		return "io"
	case FeatureMath:
		return "math"
	case FeatureString:
		return "string"
	case FeatureStdlib:
		return "stdlib"
	case FeatureSys:
		return "sys"
	case FeatureArrays:
		return "arrays"
	}

	return "unknown"
}
