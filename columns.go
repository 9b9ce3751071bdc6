package staffgrid

// ViewName is the precomputed personnel view every query reads from.
const ViewName = "vw_colaboradores_completos"

// Column identifies one column of the personnel view. The set is closed:
// SQL identifiers are only ever taken from the static columnDefs table.
type Column int

const (
	ColID Column = iota
	ColChapa
	ColNome
	ColCPF
	ColEmail
	ColCargo
	ColFuncao
	ColDataAdmissao
	ColDataDemissao
	ColChefe
	ColChefeSubstituto
	ColStatus
	ColRegional
	ColDepartamento
	ColDivisao
	ColAssessoria
	ColFazenda
	ColDiretoria
	ColGabinete
	ColNivel

	numColumns
)

// Kind selects how values of a column are compared.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindTemporal
)

type columnDef struct {
	name    string // wire name, also the JSON field
	ident   string // quoted SQL identifier
	label   string
	kind    Kind
	inTable bool // shown in the tabular view (all columns appear in the detail view)
}

var columnDefs = [numColumns]columnDef{
	ColID:              {"id", `"id"`, "ID", KindNumeric, true},
	ColChapa:           {"chapa", `"chapa"`, "Chapa", KindText, true},
	ColNome:            {"nome", `"nome"`, "Nome", KindText, true},
	ColCPF:             {"cpf", `"cpf"`, "CPF", KindText, true},
	ColEmail:           {"email", `"email"`, "Email", KindText, true},
	ColCargo:           {"cargo", `"cargo"`, "Cargo", KindText, true},
	ColFuncao:          {"funcao", `"funcao"`, "Função", KindText, true},
	ColDataAdmissao:    {"data_admissao", `"data_admissao"`, "Data Admissão", KindTemporal, true},
	ColDataDemissao:    {"data_demissao", `"data_demissao"`, "Data Demissão", KindTemporal, false},
	ColChefe:           {"chefe", `"chefe"`, "Chefe", KindText, true},
	ColChefeSubstituto: {"chefe_substituto", `"chefe_substituto"`, "Chefe Substituto", KindText, true},
	ColStatus:          {"status_colaborador", `"status_colaborador"`, "Status", KindText, true},
	ColRegional:        {"regional", `"regional"`, "Regional", KindText, true},
	ColDepartamento:    {"departamento", `"departamento"`, "Departamento", KindText, true},
	ColDivisao:         {"divisao", `"divisao"`, "Divisão", KindText, false},
	ColAssessoria:      {"assessoria", `"assessoria"`, "Assessoria", KindText, false},
	ColFazenda:         {"fazenda", `"fazenda"`, "Fazenda", KindText, false},
	ColDiretoria:       {"diretoria", `"diretoria"`, "Diretoria", KindText, false},
	ColGabinete:        {"gabinete", `"gabinete"`, "Gabinete", KindText, false},
	ColNivel:           {"nivel", `"nivel"`, "Nível", KindText, true},
}

var columnsByName = func() map[string]Column {
	m := make(map[string]Column, numColumns)
	for c := Column(0); c < numColumns; c++ {
		m[columnDefs[c].name] = c
	}
	return m
}()

// DefaultSortColumn is used whenever sortBy is missing or not sortable.
const DefaultSortColumn = ColNome

// Columns returns every view column in declaration order.
func Columns() []Column {
	cols := make([]Column, 0, numColumns)
	for c := Column(0); c < numColumns; c++ {
		cols = append(cols, c)
	}
	return cols
}

// TableColumns returns the columns rendered in the tabular view.
func TableColumns() []Column {
	var cols []Column
	for c := Column(0); c < numColumns; c++ {
		if columnDefs[c].inTable {
			cols = append(cols, c)
		}
	}
	return cols
}

// LookupColumn maps a wire name to its Column.
func LookupColumn(name string) (Column, bool) {
	c, ok := columnsByName[name]
	return c, ok
}

// IsFilterable reports whether name may be used as a substring filter key.
func IsFilterable(name string) bool {
	c, ok := columnsByName[name]
	return ok && c.Filterable()
}

// IsSortable reports whether name may be used as the server sort column.
func IsSortable(name string) bool {
	c, ok := columnsByName[name]
	return ok && c.Sortable()
}

func (c Column) valid() bool { return c >= 0 && c < numColumns }

// Filterable is true for every column except the identifier.
func (c Column) Filterable() bool { return c.valid() && c != ColID }

// Sortable is true for every column, the identifier included.
func (c Column) Sortable() bool { return c.valid() }

// Name is the wire name used in query strings and JSON.
func (c Column) Name() string {
	if !c.valid() {
		return ""
	}
	return columnDefs[c].name
}

// Label is the human readable column header.
func (c Column) Label() string {
	if !c.valid() {
		return ""
	}
	return columnDefs[c].label
}

func (c Column) Kind() Kind {
	if !c.valid() {
		return KindText
	}
	return columnDefs[c].kind
}

func (c Column) String() string { return c.Name() }

// ident returns the quoted SQL identifier. Callers must hold a valid Column.
func (c Column) ident() string { return columnDefs[c].ident }
