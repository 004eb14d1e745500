package gotype

import (
	"go/token"
	"strings"
	"unicode"
)

// Exported turns a Move identifier into an exported Go identifier:
// snake_case becomes CamelCase and the first letter is upper-cased.
// Existing capitals are kept, so "SUI" stays "SUI".
func Exported(s string) string {
	var sb strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		// An identifier made only of underscores.
		return "X" + s
	}
	out := sb.String()
	if !unicode.IsLetter(rune(out[0])) {
		out = "X" + out
	}
	return out
}

// PackageName returns the Go package name, and directory name, used for a
// Move module or package alias. Go keywords and "main", which names a
// command and cannot be imported, get a trailing underscore.
func PackageName(s string) string {
	s = strings.ToLower(s)
	if token.IsKeyword(s) || s == "main" {
		return s + "_"
	}
	return s
}

// Escape appends an underscore to Go keywords so s can be used as a plain
// identifier.
func Escape(s string) string {
	if token.IsKeyword(s) {
		return s + "_"
	}
	return s
}
