package catalog

import (
	"slices"

	"github.com/tuannm99/mydb/internal/record"
)

type ForeignKey struct {
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table"`
	RefColumns []string `json:"ref_columns"`
}

// TableSchema is the catalog entry of one table. Columns keep declaration
// order, which is also the row layout.
type TableSchema struct {
	Name           string
	Columns        []record.Column
	NotNull        []string
	PrimaryKey     []string
	ForeignKeys    []ForeignKey
	ReferenceCount int
}

func (s *TableSchema) Record() record.Schema {
	return record.Schema{Cols: s.Columns}
}

func (s *TableSchema) ColumnNames() []string {
	return s.Record().Names()
}

func (s *TableSchema) Column(name string) (record.Column, bool) {
	i := s.Record().Index(name)
	if i < 0 {
		return record.Column{}, false
	}
	return s.Columns[i], true
}

func (s *TableSchema) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}

func (s *TableSchema) IsPrimaryKey(col string) bool {
	return slices.Contains(s.PrimaryKey, col)
}

func (s *TableSchema) IsForeignKey(col string) bool {
	for _, fk := range s.ForeignKeys {
		if slices.Contains(fk.Columns, col) {
			return true
		}
	}
	return false
}

// IsNotNull covers explicit NOT NULL and primary-key membership.
func (s *TableSchema) IsNotNull(col string) bool {
	return s.IsPrimaryKey(col) || slices.Contains(s.NotNull, col)
}

// ReferencedTables lists the target of every foreign key, one entry per key.
func (s *TableSchema) ReferencedTables() []string {
	out := make([]string, 0, len(s.ForeignKeys))
	for _, fk := range s.ForeignKeys {
		out = append(out, fk.RefTable)
	}
	return out
}

func (s *TableSchema) finalizeNullability() {
	for i := range s.Columns {
		s.Columns[i].Nullable = !s.IsNotNull(s.Columns[i].Name)
	}
}

// ---- CREATE TABLE input ----

type ColumnDef struct {
	Name    string
	Type    record.ColumnType
	NotNull bool
}

type ForeignKeyDef struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// TableDef is a proposed table as written in CREATE TABLE. PrimaryKeys holds
// one entry per PRIMARY KEY clause so duplicates can be detected.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	PrimaryKeys [][]string
	ForeignKeys []ForeignKeyDef
}
