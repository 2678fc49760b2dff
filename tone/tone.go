// Package tone defines the closed set of rewriting styles a note can be
// polished with. Each style has a title-case label used for display and
// stored notes, and a lowercase wire value used by the polish service.
package tone

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style is a rewriting tone for the polish service.
type Style string

// The full set of supported styles.
const (
	Casual       Style = "Casual"
	Professional Style = "Professional"
	Formal       Style = "Formal"
	Friendly     Style = "Friendly"
	Concise      Style = "Concise"
)

// Styles lists all styles in display order.
var Styles = []Style{Casual, Professional, Formal, Friendly, Concise}

var titler = cases.Title(language.English)

// Label returns the display label, e.g. "Professional".
func (s Style) Label() string {
	return string(s)
}

// WireValue returns the value sent to the polish service, e.g. "professional".
func (s Style) WireValue() string {
	return strings.ToLower(string(s))
}

// Valid reports whether s is one of the enumerated styles.
func (s Style) Valid() bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// Parse resolves a stored or wire style string to a Style. Matching is
// case-insensitive: "concise", "Concise", and "CONCISE" all resolve to
// Concise. Unknown values return ok=false; consumers treat that as
// no selection, never as a failure.
func Parse(value string) (Style, bool) {
	canonical := Style(titler.String(strings.ToLower(strings.TrimSpace(value))))
	if canonical.Valid() {
		return canonical, true
	}
	return "", false
}
