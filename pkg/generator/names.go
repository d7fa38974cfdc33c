package generator

import (
	"strconv"
	"strings"

	"go.crosslang.dev/pkg/ast"
)

// Rename appends underscores to a name until it no longer clashes with a
// reserved word of the target.
func Rename(name string, reserved map[string]bool) string {
	for reserved[name] {
		name += "_"
	}

	return name
}

// Reserved builds a set of reserved words.
func Reserved(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}

	return set
}

// Number renders a numeric literal. Python drops suffixes, Java and C have
// no 0o prefix and C has no binary literals.
func Number(lit *ast.Literal, style Style) string {
	value := lit.Value
	lower := strings.ToLower(value)

	if lit.Type == ast.LiteralFloat {
		value = FloatText(value)
	} else {
		switch {
		case strings.HasPrefix(lower, "0o") && style != StylePython:
			value = "0" + value[2:]
		case strings.HasPrefix(lower, "0b") && style == StyleC:
			if n, err := strconv.ParseUint(value[2:], 2, 64); err == nil {
				value = strconv.FormatUint(n, 10)
			}
		}
	}

	switch style {
	case StyleJava:
		switch {
		case strings.ContainsAny(lit.Suffix, "lL"):
			value += "L"
		case strings.ContainsAny(lit.Suffix, "fF"):
			value += "f"
		}
	case StyleC:
		value += strings.Map(func(r rune) rune {
			if r == 'd' || r == 'D' {
				return -1
			}
			return r
		}, lit.Suffix)
	}

	return value
}

// FloatText makes sure a floating point literal does not read as an
// integer.
func FloatText(v string) string {
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "0x") || strings.ContainsAny(lower, ".e") || strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return v
	}

	return v + ".0"
}
