package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Recognized roster columns, in normalized form.
const (
	ColVenue           = "local"
	ColName            = "nome"
	ColRegistration    = "ra"
	ColSupervisorEmail = "email_supervisor"
	ColSupervisorName  = "nome_supervisor"
	ColSupervisorPhone = "telefone_supervisor"
	ColTerm            = "periodo"
	ColEmail           = "email"
	ColStartDate       = "data_inicio"
	ColEndDate         = "data_fim"
	ColWorkingHours    = "horarios"
)

// RequiredColumns must appear in every roster header.
var RequiredColumns = []string{ColName, ColRegistration}

var dateColumns = map[string]bool{
	ColStartDate: true,
	ColEndDate:   true,
}

// NormalizeKey folds a header cell to its column key: accents removed,
// lower-cased, trimmed, and inner spaces or hyphens joined by underscores.
// "Data Início" becomes "data_inicio".
func NormalizeKey(header string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		header,
	)
	if err != nil {
		folded = header
	}
	folded = strings.TrimPrefix(folded, "\ufeff")
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	}), "_")
}
