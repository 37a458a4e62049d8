// Package normalize cleans raw CSV cell text from the Opencoesione extract:
// European decimal commas, N/A sentinels, stray quotes and whitespace.
package normalize

import (
	"strconv"
	"strings"
)

// Amount converts a raw numeric cell into a float64. Empty cells and the
// "N/A"/"NULL" sentinels mean "no value" and yield 0. The decimal comma is
// replaced with a point before parsing. A malformed cell also yields 0:
// bad numbers in the source are treated as missing, never as fatal.
func Amount(raw string) float64 {
	switch raw {
	case "", "N/A", "NULL":
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// Text trims surrounding whitespace and one layer of enclosing quote
// characters from a raw cell.
func Text(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
