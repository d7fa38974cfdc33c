package test

import (
	"math/rand"
	"strings"
)

// Vocabularies of well formed tokens, separated by ';'. Joining any sequence of
// them with whitespace must always scan without error.
const (
	CTokens      = "int;main;(;);{;};\"this is a string\";\"\";\"escaped \\\" quote\";'c';'\\n';+;-;*;/;%;==;!=;<=;>=;&&;||;<<;>>;+=;++;--;?;:;,;.;->;123;0x1F;4.5f;10L;printf;//comment\n;/* block comment */;\n"
	JavaTokens   = "class;Main;public;static;void;(;);{;};[;];\"this is a string\";'x';System;.;out;println;+;-;>>>;>>>=;==;&&;||;123;2.5d;7L;true;false;null;//comment\n;/* block */;\n"
	PythonTokens = "def;main;(;);[;];:;\"this is a string\";'single';f\"x={x}\";r'raw';+;-;**;//;//=;==;and;or;not;True;False;None;123;4.5;x;# comment\n"
)

func GetRandomTokens(vocabulary string, size int) string {
	return GetRandomTokensWithSep(vocabulary, size, " ")
}

func GetRandomTokensWithSep(vocabulary string, size int, sep string) string {
	valid := strings.Split(vocabulary, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
