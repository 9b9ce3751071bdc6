package staffgrid

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Request control keys. Every other query-string key is a candidate filter.
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamSortBy   = "sortBy"
	ParamSortDir  = "sortDir"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 200

	// MaxPage keeps (page-1)*pageSize within int for every allowed page size.
	MaxPage = math.MaxInt/MaxPageSize + 1
)

// Direction is the sort order of a column.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// ParseDirection returns Desc only for a case-insensitive "desc".
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

// String returns the wire form ("asc" or "desc").
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

func (d Direction) sql() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Sort is the server-side ordering of a request.
type Sort struct {
	Column    Column
	Direction Direction
}

// Filter is a case-insensitive, unanchored substring match on one column.
type Filter struct {
	Column Column
	Value  string
}

// Params is the validated form of a request: filters, sort and paging.
type Params struct {
	Filters  []Filter
	Sort     Sort
	Page     int
	PageSize int
}

// Offset is the number of rows skipped before the current page.
// It saturates rather than overflow.
func (p Params) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt / p.PageSize * p.PageSize
	}
	return (p.Page - 1) * p.PageSize
}

// Values encodes p back into query-string form; ParseParams reproduces p from it.
func (p Params) Values() url.Values {
	q := url.Values{}
	q.Set(ParamPage, fmt.Sprintf("%d", p.Page))
	q.Set(ParamPageSize, fmt.Sprintf("%d", p.PageSize))
	q.Set(ParamSortBy, p.Sort.Column.Name())
	q.Set(ParamSortDir, p.Sort.Direction.String())
	for _, f := range p.Filters {
		q.Set(f.Column.Name(), f.Value)
	}
	return q
}

// ParseParams turns raw query-string values into Params. It never fails:
// malformed or out-of-range input is clamped to a safe default and
// unknown keys are dropped.
func ParseParams(q url.Values) Params {
	p := Params{
		Page:     parsePage(q.Get(ParamPage)),
		PageSize: parsePageSize(q.Get(ParamPageSize)),
		Sort: Sort{
			Column:    DefaultSortColumn,
			Direction: ParseDirection(q.Get(ParamSortDir)),
		},
	}

	if c, ok := LookupColumn(q.Get(ParamSortBy)); ok && c.Sortable() {
		p.Sort.Column = c
	}

	// Walk the static column list rather than the map so the emitted SQL is
	// identical for identical input.
	for _, c := range Columns() {
		if !c.Filterable() {
			continue
		}
		if v := q.Get(c.Name()); v != "" {
			p.Filters = append(p.Filters, Filter{Column: c, Value: v})
		}
	}
	return p
}

func parsePage(s string) int {
	page, ok := leadingInt(s)
	if !ok || page < 1 {
		return DefaultPage
	}
	return min(page, MaxPage)
}

func parsePageSize(s string) int {
	size, ok := leadingInt(s)
	switch {
	case !ok || size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// leadingInt reads an optional sign and the digits after it, ignoring any
// trailing text. Values outside the int range saturate.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

// Query is the pair of statements issued for one request. Both share the
// same WHERE clause and filter arguments.
type Query struct {
	Data      string
	DataArgs  []interface{}
	Count     string
	CountArgs []interface{}
}

// BuildQuery renders the data and count statements for p.
func BuildQuery(p Params) Query {
	where, args := buildWhere(p.Filters)

	countQuery := "SELECT COUNT(*) FROM " + ViewName
	if where != "" {
		countQuery += " " + where
	}

	limitIdx := len(args) + 1
	dataQuery := fmt.Sprintf("SELECT %s FROM %s", selectList(), ViewName)
	if where != "" {
		dataQuery += " " + where
	}
	dataQuery += fmt.Sprintf(" %s LIMIT $%d OFFSET $%d", buildOrder(p.Sort), limitIdx, limitIdx+1)

	dataArgs := make([]interface{}, 0, len(args)+2)
	dataArgs = append(dataArgs, args...)
	dataArgs = append(dataArgs, p.PageSize, p.Offset())

	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)

	return Query{
		Data:      dataQuery,
		DataArgs:  dataArgs,
		Count:     countQuery,
		CountArgs: countArgs,
	}
}

func selectList() string {
	idents := make([]string, 0, numColumns)
	for c := Column(0); c < numColumns; c++ {
		idents = append(idents, c.ident())
	}
	return strings.Join(idents, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps v so it only ever matches as a literal substring.
func likePattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}

func buildWhere(filters []Filter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	argIdx := 1

	for _, f := range filters {
		if !f.Column.Filterable() || f.Value == "" {
			continue
		}
		target := f.Column.ident()
		if f.Column.Kind() != KindText {
			target = fmt.Sprintf("CAST(%s AS TEXT)", target)
		}
		clauses = append(clauses, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, target, argIdx))
		args = append(args, likePattern(f.Value))
		argIdx++
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func buildOrder(s Sort) string {
	col := s.Column
	if !col.Sortable() {
		col = DefaultSortColumn
	}
	order := fmt.Sprintf("ORDER BY %s %s", col.ident(), s.Direction.sql())
	if col != ColID {
		// Ties on the sort column would otherwise make page boundaries unstable.
		order += ", " + ColID.ident() + " ASC"
	}
	return order
}
