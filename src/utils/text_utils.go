package utils

import "strings"

// NormalizeDescription canonicalizes a transaction description for use
// as an identity-key component and as a mapping-store key: trim,
// collapse internal whitespace, uppercase. Every component that
// compares descriptions must go through this one function.
func NormalizeDescription(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
