package gen

import (
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
)

// rules holds the inflection rules shared by all name transforms.
var rules = inflect.NewDefaultRuleset()

// camel returns the upper camel-case form: "is_implicit" -> "IsImplicit".
func camel(s string) string {
	if s == "" {
		return s
	}
	return rules.Camelize(s)
}

// lowerCamel returns the lower camel-case form: "is_implicit" -> "isImplicit".
func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	return rules.CamelizeDownFirst(s)
}

// tableize returns the pluralized snake-case table name: "CallExpr" -> "call_exprs".
// Only the last word is inflected, so "Alias" -> "aliases".
func tableize(s string) string {
	return rules.Pluralize(underscore(s))
}

// underscore returns the snake-case form without pluralization.
func underscore(s string) string {
	return rules.Underscore(s)
}

// isClassName reports whether a type name refers to a class rather than to
// a primitive type. Classes are named in upper camel-case.
func isClassName(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
