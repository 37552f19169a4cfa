package core

import "strings"

// Normalize folds case and collapses whitespace so that "  John   DOE " and
// "john doe" compare equal. It is used for comparisons only; stored and
// displayed values keep their original spelling.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
