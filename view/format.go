package view

import (
	"strings"
	"time"

	"github.com/gnemet/staffgrid"
)

// DisplayDateLayout is how dates are rendered to users.
const DisplayDateLayout = "02/01/2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	staffgrid.DateLayout,
	DisplayDateLayout,
}

// ParseDate accepts the date shapes the view and users produce.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Display renders a nullable text value.
func Display(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return Placeholder
	}
	return *v
}

// FormatDate renders a date as DD/MM/YYYY. Unparsable input is passed through.
func FormatDate(v *string) string {
	if v == nil || *v == "" {
		return Placeholder
	}
	t, ok := ParseDate(*v)
	if !ok {
		return *v
	}
	return t.Format(DisplayDateLayout)
}

// Cell renders column c of r for the tabular view.
func Cell(r staffgrid.Record, c staffgrid.Column) string {
	switch {
	case c == staffgrid.ColID:
		v, _ := r.Value(c)
		return v
	case c == staffgrid.ColStatus:
		return TableLabel(r.Status)
	case c.Kind() == staffgrid.KindTemporal:
		return FormatDate(ptr(r.Value(c)))
	}
	return Display(ptr(r.Value(c)))
}

// Field is one labelled value of the detail view.
type Field struct {
	Column staffgrid.Column
	Label  string
	Value  string
}

// DetailFields splits every column of r into filled and empty fields, in
// column order. Empty fields are the ones the detail view hides by default.
func DetailFields(r staffgrid.Record) (filled, empty []Field) {
	for _, c := range staffgrid.Columns() {
		raw, ok := r.Value(c)
		f := Field{Column: c, Label: c.Label()}
		switch {
		case c == staffgrid.ColStatus:
			f.Value = DetailLabel(r.Status)
		case c.Kind() == staffgrid.KindTemporal:
			f.Value = FormatDate(ptr(raw, ok))
		default:
			f.Value = Display(ptr(raw, ok))
		}

		if !ok || strings.TrimSpace(raw) == "" {
			empty = append(empty, f)
		} else {
			filled = append(filled, f)
		}
	}
	return filled, empty
}

func ptr(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}
