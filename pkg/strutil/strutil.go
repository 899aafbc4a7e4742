// Package strutil holds small string helpers shared across layers.
package strutil

import (
	"strings"
	"unicode"
)

// TrimStrings trims whitespace in place for each of the given string pointers.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// ToSnakeCase converts a CamelCase identifier to snake_case for user-facing
// field names in validation messages.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// DigitsAndDot strips every rune that is not a digit or a decimal point.
// Used when parsing free-text currency fields like "$4,500.00".
func DigitsAndDot(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
