// Package expr detects, extracts, and validates {{path}} placeholders embedded
// in configurable field values.
//
// A value is an expression purely by its shape: any "{{...}}" substring makes
// it one. None of the functions in this package fail; malformed input yields
// false or an empty result.
package expr

import (
	"regexp"
	"strings"
)

var (
	// placeholderRegex matches {{path}} tokens, non-greedy between the braces.
	placeholderRegex = regexp.MustCompile(`\{\{(.*?)\}\}`)
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// IsExpression reports whether s contains at least one {{...}} substring.
func IsExpression(s string) bool {
	return placeholderRegex.MatchString(s)
}

// ExtractReferences returns every {{...}} capture of s, trimmed, in
// left-to-right order. Duplicates are kept.
func ExtractReferences(s string) []string {
	matches := placeholderRegex.FindAllStringSubmatch(s, -1)
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			result = append(result, strings.TrimSpace(m[1]))
		}
	}
	return result
}

// FirstReference returns the first reference in s, if any.
func FirstReference(s string) (string, bool) {
	m := placeholderRegex.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// IsWellFormed reports whether s starts with "{{", ends with "}}" and holds as
// many "{{" as "}}".
//
// This is a shallow balance check, not a parser: the nested "{{a{{b}}}}"
// passes.
func IsWellFormed(s string) bool {
	return strings.HasPrefix(s, openDelim) &&
		strings.HasSuffix(s, closeDelim) &&
		strings.Count(s, openDelim) == strings.Count(s, closeDelim)
}

// Wrap turns a variable path into a placeholder token.
func Wrap(path string) string {
	return openDelim + path + closeDelim
}

// Insert places the {{path}} token into value, replacing the runes in
// [start, end). Offsets count runes, not bytes, so a multi-byte character is
// never split. When the range is invalid the token is appended after a space.
func Insert(value, path string, start, end int) string {
	token := Wrap(path)
	runes := []rune(value)
	if start < 0 || end < start || end > len(runes) {
		return value + " " + token
	}
	return string(runes[:start]) + token + string(runes[end:])
}

// Unique returns the distinct references across all values, in first-seen order.
func Unique(values ...string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, v := range values {
		for _, ref := range ExtractReferences(v) {
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			result = append(result, ref)
		}
	}
	return result
}
