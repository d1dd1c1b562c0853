package planner

import (
	"errors"
	"fmt"

	"github.com/tuannm99/mydb/internal/catalog"
	"github.com/tuannm99/mydb/internal/record"
	"github.com/tuannm99/mydb/internal/sql/parser"
	"github.com/tuannm99/mydb/internal/sql/predicate"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

// Schemas is the part of the catalog the planner reads.
type Schemas interface {
	// LoadTable returns catalog.ErrTableNotFound for unknown tables.
	LoadTable(table string) (*catalog.TableSchema, error)
}

// BuildPlan builds a physical plan from an AST Statement. Statements that
// need no planning (DROP, DESC, SHOW TABLES, UPDATE, EXIT) are rejected.
func BuildPlan(stmt parser.Statement, db Schemas) (Plan, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return buildCreateTablePlan(s), nil
	case *parser.InsertStmt:
		return buildInsertPlan(s, db)
	case *parser.SelectStmt:
		return buildSelectPlan(s, db)
	case *parser.DeleteStmt:
		return buildDeletePlan(s, db)
	default:
		return nil, fmt.Errorf("planner: unsupported statement type %T", stmt)
	}
}

func buildCreateTablePlan(s *parser.CreateTableStmt) *CreateTablePlan {
	def := catalog.TableDef{Name: s.TableName, PrimaryKeys: s.PrimaryKeys}
	for _, c := range s.Columns {
		def.Columns = append(def.Columns, catalog.ColumnDef{Name: c.Name, Type: c.Type, NotNull: c.NotNull})
	}
	for _, fk := range s.ForeignKeys {
		def.ForeignKeys = append(def.ForeignKeys, catalog.ForeignKeyDef{
			Columns:    fk.Columns,
			RefTable:   fk.RefTable,
			RefColumns: fk.RefColumns,
		})
	}
	return &CreateTablePlan{Def: def}
}

// loadTable maps a missing table to NoSuchTable.
func loadTable(db Schemas, name string) (*catalog.TableSchema, error) {
	ts, err := db.LoadTable(name)
	if errors.Is(err, catalog.ErrTableNotFound) {
		return nil, sqlerr.NoSuchTable()
	}
	return ts, err
}

func buildInsertPlan(s *parser.InsertStmt, db Schemas) (Plan, error) {
	ts, err := loadTable(db, s.TableName)
	if err != nil {
		return nil, err
	}
	values, err := BindInsertValues(ts, s.Columns, s.Values)
	if err != nil {
		return nil, err
	}
	return &InsertPlan{Table: ts, Values: values}, nil
}

// BindInsertValues checks the literals against the schema and returns the
// values in schema order, strings cut to their declared bound. A nil columns
// list means positional.
func BindInsertValues(ts *catalog.TableSchema, columns []string, lits []*parser.Literal) ([]any, error) {
	n := len(ts.Columns)
	if len(lits) != n || (columns != nil && len(columns) != n) {
		return nil, sqlerr.InsertTypeMismatch()
	}

	targets := columns
	if targets == nil {
		targets = ts.ColumnNames()
	}

	out := make([]any, n)
	seen := make([]bool, n)
	for i, name := range targets {
		pos := ts.Record().Index(name)
		if pos < 0 {
			return nil, sqlerr.InsertColumnExistence(name)
		}
		col := ts.Columns[pos]
		v := lits[i].Value

		if v == nil {
			if ts.IsNotNull(col.Name) {
				return nil, sqlerr.InsertColumnNonNullable(col.Name)
			}
		} else {
			typ, _ := record.TypeOf(v)
			if !typ.Compatible(col.Type) {
				return nil, sqlerr.InsertTypeMismatch()
			}
			if str, ok := v.(string); ok && col.Type.Bounded() {
				v = record.Truncate(str, col.Type.Length)
			}
		}

		// A repeated column leaves another one unset.
		if seen[pos] {
			return nil, sqlerr.InsertTypeMismatch()
		}
		seen[pos] = true
		out[pos] = v
	}
	return out, nil
}

func buildDeletePlan(s *parser.DeleteStmt, db Schemas) (Plan, error) {
	ts, err := loadTable(db, s.TableName)
	if err != nil {
		return nil, err
	}
	filter, err := predicate.Bind(s.Where, predicate.NewScope(predicate.Table{Name: ts.Name, Columns: ts.Columns}))
	if err != nil {
		return nil, err
	}
	return &DeletePlan{Table: ts, Filter: filter}, nil
}

func buildSelectPlan(s *parser.SelectStmt, db Schemas) (Plan, error) {
	if len(s.From) != 1 {
		return nil, sqlerr.Unsupported("Selecting from multiple tables")
	}
	from := s.From[0]

	ts, err := db.LoadTable(from.Name)
	if errors.Is(err, catalog.ErrTableNotFound) {
		return nil, sqlerr.SelectTableExistence(from.Name)
	}
	if err != nil {
		return nil, err
	}

	scope := predicate.NewScope(predicate.Table{Name: ts.Name, Alias: from.Alias, Columns: ts.Columns})
	plan := &SeqScanPlan{Table: ts}

	if len(s.Columns) == 0 {
		plan.Columns = ts.ColumnNames()
	} else {
		for _, ref := range s.Columns {
			pos, _, err := scope.Resolve(ref)
			if err != nil {
				return nil, sqlerr.SelectColumnResolve(ref.Column)
			}
			plan.Projection = append(plan.Projection, pos)
			plan.Columns = append(plan.Columns, ref.Column)
		}
	}

	if plan.Filter, err = predicate.Bind(s.Where, scope); err != nil {
		return nil, err
	}
	return plan, nil
}
