package view

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gnemet/staffgrid"
)

// SortState is the client-side ordering of the page on screen. It is
// independent of the server sort that chose which rows are on the page.
// The zero value orders by id ascending.
type SortState struct {
	Key staffgrid.Column
	Dir staffgrid.Direction
}

// Toggle applies a click on a column header: a new key starts descending,
// the current key flips direction.
func (s *SortState) Toggle(key staffgrid.Column) {
	if s.Key != key {
		*s = SortState{Key: key, Dir: staffgrid.Desc}
		return
	}
	if s.Dir == staffgrid.Desc {
		s.Dir = staffgrid.Asc
	} else {
		s.Dir = staffgrid.Desc
	}
}

// sortKey is the extracted comparison value of one record. Exactly one of
// num, at or text is meaningful, selected by kind.
type sortKey struct {
	kind staffgrid.Kind
	null bool
	num  int64
	at   time.Time
	text string
}

func extractKey(r staffgrid.Record, c staffgrid.Column) sortKey {
	k := sortKey{kind: c.Kind()}
	v, ok := r.Value(c)
	if !ok {
		k.null = true
		return k
	}

	switch k.kind {
	case staffgrid.KindNumeric:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			k.null = true
			return k
		}
		k.num = n
	case staffgrid.KindTemporal:
		t, ok := ParseDate(v)
		if !ok {
			k.null = true
			return k
		}
		k.at = t
	default:
		k.text = strings.ToLower(strings.TrimSpace(v))
		k.null = k.text == ""
	}
	return k
}

// compareKeys orders two non-null keys of the same kind ascending.
func compareKeys(a, b sortKey) int {
	switch a.kind {
	case staffgrid.KindNumeric:
		return cmp.Compare(a.num, b.num)
	case staffgrid.KindTemporal:
		return a.at.Compare(b.at)
	}
	return strings.Compare(a.text, b.text)
}

type keyedRecord struct {
	key sortKey
	rec staffgrid.Record
}

// Sort returns a reordered copy of records. Null or empty values always
// come last; the direction only reverses the non-null run.
func Sort(records []staffgrid.Record, s SortState) []staffgrid.Record {
	keyed := make([]keyedRecord, len(records))
	for i, r := range records {
		keyed[i] = keyedRecord{key: extractKey(r, s.Key), rec: r}
	}

	slices.SortStableFunc(keyed, func(a, b keyedRecord) int {
		switch {
		case a.key.null && b.key.null:
			return 0
		case a.key.null:
			return 1
		case b.key.null:
			return -1
		}
		return compareKeys(a.key, b.key)
	})

	if s.Dir == staffgrid.Desc {
		n := slices.IndexFunc(keyed, func(k keyedRecord) bool { return k.key.null })
		if n < 0 {
			n = len(keyed)
		}
		slices.Reverse(keyed[:n])
	}

	out := make([]staffgrid.Record, len(keyed))
	for i, k := range keyed {
		out[i] = k.rec
	}
	return out
}
