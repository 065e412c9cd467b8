package persistence

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NameKey is the comparison form of an intern or venue name: trimmed,
// NFC-composed and Unicode case-folded. Repositories store it beside the
// name and importers key their caches by it, so both agree on "same name".
func NameKey(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}
