package staffgrid

import (
	"database/sql"
	"strconv"
)

// DateLayout is the wire format of the admission and termination dates.
const DateLayout = "2006-01-02"

// Record is one row of the personnel view. Every attribute except ID may be null.
type Record struct {
	ID              int64   `json:"id"`
	Chapa           *string `json:"chapa"`
	Nome            *string `json:"nome"`
	CPF             *string `json:"cpf"`
	Email           *string `json:"email"`
	Cargo           *string `json:"cargo"`
	Funcao          *string `json:"funcao"`
	DataAdmissao    *string `json:"data_admissao"`
	DataDemissao    *string `json:"data_demissao"`
	Chefe           *string `json:"chefe"`
	ChefeSubstituto *string `json:"chefe_substituto"`
	Status          *string `json:"status_colaborador"`
	Regional        *string `json:"regional"`
	Departamento    *string `json:"departamento"`
	Divisao         *string `json:"divisao"`
	Assessoria      *string `json:"assessoria"`
	Fazenda         *string `json:"fazenda"`
	Diretoria       *string `json:"diretoria"`
	Gabinete        *string `json:"gabinete"`
	Nivel           *string `json:"nivel"`
}

// field returns a pointer to the nullable attribute backing c, or nil for ColID.
func (r *Record) field(c Column) **string {
	switch c {
	case ColChapa:
		return &r.Chapa
	case ColNome:
		return &r.Nome
	case ColCPF:
		return &r.CPF
	case ColEmail:
		return &r.Email
	case ColCargo:
		return &r.Cargo
	case ColFuncao:
		return &r.Funcao
	case ColDataAdmissao:
		return &r.DataAdmissao
	case ColDataDemissao:
		return &r.DataDemissao
	case ColChefe:
		return &r.Chefe
	case ColChefeSubstituto:
		return &r.ChefeSubstituto
	case ColStatus:
		return &r.Status
	case ColRegional:
		return &r.Regional
	case ColDepartamento:
		return &r.Departamento
	case ColDivisao:
		return &r.Divisao
	case ColAssessoria:
		return &r.Assessoria
	case ColFazenda:
		return &r.Fazenda
	case ColDiretoria:
		return &r.Diretoria
	case ColGabinete:
		return &r.Gabinete
	case ColNivel:
		return &r.Nivel
	}
	return nil
}

// Value returns the raw text of column c and whether it is non-null.
// The identifier is rendered in base 10 and is never null.
func (r Record) Value(c Column) (string, bool) {
	if c == ColID {
		return strconv.FormatInt(r.ID, 10), true
	}
	p := r.field(c)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Set assigns the text of column c. ColID is ignored; use the ID field.
func (r *Record) Set(c Column, v string) {
	if p := r.field(c); p != nil {
		*p = &v
	}
}

// scanner is satisfied by *sql.Rows and *sql.Row.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads one row selected with selectList().
func scanRecord(s scanner) (Record, error) {
	var (
		rec   Record
		texts [numColumns]sql.NullString
		dates [numColumns]sql.NullTime
	)
	dest := make([]interface{}, 0, numColumns)
	for c := Column(0); c < numColumns; c++ {
		switch {
		case c == ColID:
			dest = append(dest, &rec.ID)
		case c.Kind() == KindTemporal:
			dest = append(dest, &dates[c])
		default:
			dest = append(dest, &texts[c])
		}
	}
	if err := s.Scan(dest...); err != nil {
		return Record{}, err
	}

	for c := Column(1); c < numColumns; c++ {
		if c.Kind() == KindTemporal {
			if dates[c].Valid {
				rec.Set(c, dates[c].Time.Format(DateLayout))
			}
			continue
		}
		if texts[c].Valid {
			rec.Set(c, texts[c].String)
		}
	}
	return rec, nil
}
