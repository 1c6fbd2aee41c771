// Package narrative provides text helpers for authored content: placeholder
// substitution for role overlays and display casing for snake_case ids.
package narrative

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-z][a-z0-9_]*)\s*\}\}`)

// Substitute replaces {{token}} placeholders in text with their mapped
// values. Placeholders without a mapping are left as-is so that a partial
// overlay never eats unrelated tokens.
func Substitute(text string, subs map[string]string) string {
	if len(subs) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		token := placeholderRegex.FindStringSubmatch(match)[1]
		if v, ok := subs[token]; ok {
			return v
		}
		return match
	})
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a snake_case id as a human-readable title.
// "financial_pressure" becomes "Financial Pressure".
func DisplayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
