package view

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Category is the semantic bucket a free-text status falls into.
type Category int

const (
	CategoryDefault Category = iota
	CategoryLeave
	CategoryActive
	CategoryInactive
	CategoryVacation
	CategoryAR
	CategoryLicense
)

// leaveToken is matched by containment; every other category by equality.
const leaveToken = "afastamento"

// LeaveTableLabel replaces any leave status in the tabular view.
const LeaveTableLabel = "Afastamento"

// Placeholder is shown for missing values.
const Placeholder = "—"

var exactCategories = map[string]Category{
	"ativo":   CategoryActive,
	"inativo": CategoryInactive,
	"ferias":  CategoryVacation,
	"ar":      CategoryAR,
	"licenca": CategoryLicense,
}

var categoryNames = map[Category]string{
	CategoryDefault:  "default",
	CategoryLeave:    "afastamento",
	CategoryActive:   "ativo",
	CategoryInactive: "inativo",
	CategoryVacation: "ferias",
	CategoryAR:       "ar",
	CategoryLicense:  "licenca",
}

var categoryColors = map[Category]string{
	CategoryDefault:  "slate",
	CategoryLeave:    "purple",
	CategoryActive:   "green",
	CategoryInactive: "red",
	CategoryVacation: "yellow",
	CategoryAR:       "blue",
	CategoryLicense:  "orange",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return categoryNames[CategoryDefault]
}

// Color is the badge color family of the category.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return categoryColors[CategoryDefault]
}

// Normalize strips accents, surrounding space and case from a status.
func Normalize(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}

// Classify maps a free-text status to its category.
func Classify(status string) Category {
	key := Normalize(status)
	if strings.Contains(key, leaveToken) {
		return CategoryLeave
	}
	if c, ok := exactCategories[key]; ok {
		return c
	}
	return CategoryDefault
}

// TableLabel is the status text for the tabular view. Leave statuses are
// shortened; everything else is shown as stored.
func TableLabel(status *string) string {
	if status == nil || strings.TrimSpace(*status) == "" {
		return Placeholder
	}
	if Classify(*status) == CategoryLeave {
		return LeaveTableLabel
	}
	return *status
}

// DetailLabel is the status text for the detail view: always the stored value.
func DetailLabel(status *string) string {
	if status == nil || strings.TrimSpace(*status) == "" {
		return Placeholder
	}
	return *status
}
