package staffgrid

import (
	"math"
	"net/url"
	"strings"
	"testing"
)

func TestParseParamsDropsUnknownFilterKeys(t *testing.T) {
	hostile := []string{
		"password",
		"id",
		"nome` OR 1=1 --",
		`"nome"`,
		"nome; DROP TABLE usuarios",
		"1=1",
		"usuarios.senha",
		"NOME",
		"",
	}
	baseline := BuildQuery(ParseParams(url.Values{}))
	for _, key := range hostile {
		q := url.Values{}
		q.Set(key, "x' OR '1'='1")
		p := ParseParams(q)
		if len(p.Filters) != 0 {
			t.Errorf("key %q: expected no filters, got %v", key, p.Filters)
		}

		query := BuildQuery(p)
		if strings.Contains(query.Data, "WHERE") || strings.Contains(query.Count, "WHERE") {
			t.Errorf("key %q: unexpected WHERE clause in %q", key, query.Data)
		}
		if query.Data != baseline.Data || query.Count != baseline.Count {
			t.Errorf("key %q changed the query text: %q", key, query.Data)
		}
		if len(query.CountArgs) != 0 {
			t.Errorf("key %q: expected no count args, got %v", key, query.CountArgs)
		}
	}
}

func TestParseParamsKeepsAllowlistedFilters(t *testing.T) {
	q := url.Values{}
	q.Set("regional", "Sul")
	q.Set("nome", "Ana")
	q.Set("cargo", "")
	q.Set("unknown", "x")
	q.Set("page", "3")

	p := ParseParams(q)
	if len(p.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %v", p.Filters)
	}
	// Declaration order, not query-string order.
	if p.Filters[0].Column != ColNome || p.Filters[1].Column != ColRegional {
		t.Errorf("unexpected filter order: %v", p.Filters)
	}
}

func TestValuesAreOnlyBound(t *testing.T) {
	q := url.Values{}
	q.Set("nome", "'; DROP TABLE vw_colaboradores_completos; --")
	query := BuildQuery(ParseParams(q))

	if strings.Contains(query.Data, "DROP") || strings.Contains(query.Count, "DROP") {
		t.Fatalf("filter value interpolated into SQL: %q", query.Data)
	}
	want := `%'; DROP TABLE vw\_colaboradores\_completos; --%`
	if query.CountArgs[0] != want {
		t.Errorf("expected bound pattern %q, got %q", want, query.CountArgs[0])
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"Ana", "%Ana%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\dir`, `%c:\\dir%`},
	} {
		if got := likePattern(tc.in); got != tc.want {
			t.Errorf("likePattern(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPageSizeIsClamped(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  int
	}{
		{"", 20},
		{"0", 20},
		{"-5", 20},
		{"abc", 20},
		{"1", 1},
		{"15", 15},
		{"200", 200},
		{"201", 200},
		{"99999", 200},
		{"99999999999999999999", 200},
		{"-99999999999999999999", 20},
		{"12abc", 12},
		{" 30 ", 30},
	} {
		q := url.Values{}
		q.Set(ParamPageSize, tc.input)
		p := ParseParams(q)
		if p.PageSize != tc.want {
			t.Errorf("pageSize %q: got %d, want %d", tc.input, p.PageSize, tc.want)
		}

		query := BuildQuery(p)
		limit := query.DataArgs[len(query.DataArgs)-2].(int)
		if limit < 1 || limit > MaxPageSize {
			t.Errorf("pageSize %q: LIMIT %d out of range", tc.input, limit)
		}
	}
}

func TestPageIsCoerced(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  int
	}{
		{"", 1},
		{"0", 1},
		{"-3", 1},
		{"two", 1},
		{"2", 2},
		{"7", 7},
		{"3rd", 3},
		{"922337203685477580", MaxPage},
		{"99999999999999999999999", MaxPage},
	} {
		q := url.Values{}
		q.Set(ParamPage, tc.input)
		if got := ParseParams(q).Page; got != tc.want {
			t.Errorf("page %q: got %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestHugePageNeverOverflowsOffset(t *testing.T) {
	for _, page := range []string{"922337203685477580", "9223372036854775807", "99999999999999999999999"} {
		for _, size := range []string{"1", "20", "200"} {
			q := url.Values{}
			q.Set(ParamPage, page)
			q.Set(ParamPageSize, size)
			p := ParseParams(q)

			query := BuildQuery(p)
			offset := query.DataArgs[len(query.DataArgs)-1].(int)
			if offset < 0 {
				t.Errorf("page=%s pageSize=%s: negative OFFSET %d", page, size, offset)
			}
			if offset != p.Offset() {
				t.Errorf("page=%s pageSize=%s: bound offset %d, Offset() %d", page, size, offset, p.Offset())
			}
		}
	}
}

func TestOffsetSaturates(t *testing.T) {
	for _, tc := range []struct {
		p    Params
		want int
	}{
		{Params{Page: 1, PageSize: 20}, 0},
		{Params{Page: 3, PageSize: 20}, 40},
		{Params{Page: 0, PageSize: 20}, 0},
		{Params{Page: -4, PageSize: 20}, 0},
		{Params{Page: math.MaxInt, PageSize: 20}, math.MaxInt / 20 * 20},
	} {
		if got := tc.p.Offset(); got != tc.want {
			t.Errorf("Offset(%+v) = %d, want %d", tc.p, got, tc.want)
		}
	}
}

func TestSortFallsBackToDefault(t *testing.T) {
	for _, tc := range []struct {
		sortBy string
		want   Column
	}{
		{"", ColNome},
		{"unknownField", ColNome},
		{"nome; DROP TABLE x", ColNome},
		{"password", ColNome},
		{"Nome", ColNome},
		{"id", ColID},
		{"data_admissao", ColDataAdmissao},
		{"regional", ColRegional},
	} {
		q := url.Values{}
		q.Set(ParamSortBy, tc.sortBy)
		if got := ParseParams(q).Sort.Column; got != tc.want {
			t.Errorf("sortBy %q: got %v, want %v", tc.sortBy, got, tc.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Direction
	}{
		{"", Asc},
		{"asc", Asc},
		{"desc", Desc},
		{"DESC", Desc},
		{"Desc", Desc},
		{"descending", Asc},
		{"down", Asc},
	} {
		if got := ParseDirection(tc.in); got != tc.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBuildQueryEmptyFilters(t *testing.T) {
	q := url.Values{}
	q.Set(ParamPage, "1")
	query := BuildQuery(ParseParams(q))

	if query.Count != "SELECT COUNT(*) FROM vw_colaboradores_completos" {
		t.Errorf("unexpected count query: %q", query.Count)
	}
	wantData := "SELECT " + selectList() + ` FROM vw_colaboradores_completos ORDER BY "nome" ASC, "id" ASC LIMIT $1 OFFSET $2`
	if query.Data != wantData {
		t.Errorf("unexpected data query:\n got %q\nwant %q", query.Data, wantData)
	}
	if len(query.DataArgs) != 2 || query.DataArgs[0] != 20 || query.DataArgs[1] != 0 {
		t.Errorf("unexpected data args: %v", query.DataArgs)
	}
}

func TestBuildQuerySharesWhereClause(t *testing.T) {
	q := url.Values{}
	q.Set("nome", "Ana")
	q.Set("data_admissao", "2020")
	q.Set(ParamPage, "2")
	q.Set(ParamPageSize, "10")
	query := BuildQuery(ParseParams(q))

	where := `WHERE "nome" ILIKE $1 ESCAPE '\' AND CAST("data_admissao" AS TEXT) ILIKE $2 ESCAPE '\'`
	if !strings.HasSuffix(query.Count, where) {
		t.Errorf("count query missing where: %q", query.Count)
	}
	if !strings.Contains(query.Data, where+" ORDER BY") {
		t.Errorf("data query missing where: %q", query.Data)
	}
	if !strings.HasSuffix(query.Data, "LIMIT $3 OFFSET $4") {
		t.Errorf("data query has wrong limit placeholders: %q", query.Data)
	}
	if len(query.DataArgs) != 4 || query.DataArgs[2] != 10 || query.DataArgs[3] != 10 {
		t.Errorf("unexpected data args: %v", query.DataArgs)
	}
	for i, a := range query.CountArgs {
		if query.DataArgs[i] != a {
			t.Errorf("arg %d differs between count and data: %v vs %v", i, a, query.DataArgs[i])
		}
	}
}

func TestBuildOrder(t *testing.T) {
	for _, tc := range []struct {
		sort Sort
		want string
	}{
		{Sort{ColNome, Asc}, `ORDER BY "nome" ASC, "id" ASC`},
		{Sort{ColNome, Desc}, `ORDER BY "nome" DESC, "id" ASC`},
		{Sort{ColID, Desc}, `ORDER BY "id" DESC`},
		{Sort{Column(-1), Desc}, `ORDER BY "nome" DESC, "id" ASC`},
		{Sort{numColumns, Asc}, `ORDER BY "nome" ASC, "id" ASC`},
	} {
		if got := buildOrder(tc.sort); got != tc.want {
			t.Errorf("buildOrder(%v) = %q, want %q", tc.sort, got, tc.want)
		}
	}
}

func TestParamsValuesRoundTrip(t *testing.T) {
	q := url.Values{}
	q.Set("nome", "Ana")
	q.Set("status_colaborador", "ativo")
	q.Set(ParamSortBy, "regional")
	q.Set(ParamSortDir, "desc")
	q.Set(ParamPage, "4")
	q.Set(ParamPageSize, "50")

	p := ParseParams(q)
	again := ParseParams(p.Values())
	if BuildQuery(p).Data != BuildQuery(again).Data {
		t.Errorf("round trip changed the query: %v vs %v", p, again)
	}
	if again.Page != 4 || again.PageSize != 50 || again.Sort != (Sort{ColRegional, Desc}) {
		t.Errorf("round trip lost paging or sort: %+v", again)
	}
}
