package executor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tuannm99/mydb/internal/catalog"
	"github.com/tuannm99/mydb/internal/heap"
	"github.com/tuannm99/mydb/internal/record"
	"github.com/tuannm99/mydb/internal/sql/parser"
	"github.com/tuannm99/mydb/internal/sql/planner"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

// executorDB is a small seam for unit-testing Executor without a real catalog.
type executorDB interface {
	CreateTable(def catalog.TableDef) (*catalog.TableSchema, error)
	DropTable(table string) error
	// LoadTable returns catalog.ErrTableNotFound for unknown tables.
	LoadTable(table string) (*catalog.TableSchema, error)
	ListTables() ([]string, error)
	OpenRows(table string, schema record.Schema, create bool) (*heap.Table, error)
}

// realDB adapts *catalog.Catalog to executorDB.
type realDB struct {
	cat *catalog.Catalog
}

func (r realDB) CreateTable(def catalog.TableDef) (*catalog.TableSchema, error) {
	return r.cat.CreateTable(def)
}
func (r realDB) DropTable(table string) error { return r.cat.DropTable(table) }
func (r realDB) LoadTable(table string) (*catalog.TableSchema, error) {
	return r.cat.Load(table)
}
func (r realDB) ListTables() ([]string, error) { return r.cat.List() }
func (r realDB) OpenRows(table string, schema record.Schema, create bool) (*heap.Table, error) {
	return heap.Open(r.cat.Opener(), catalog.RowStoreName(table), schema, create)
}

// Executor runs parsed statements against the catalog and the row stores.
type Executor struct {
	DB  executorDB
	log *zap.Logger
}

func NewExecutor(cat *catalog.Catalog, log *zap.Logger) *Executor {
	return newExecutor(realDB{cat: cat}, log)
}

func newExecutor(db executorDB, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{DB: db, log: log}
}

// ExecSQL is the top-level entry: SQL string -> Result.
func (e *Executor) ExecSQL(sql string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		e.log.Debug("executor: syntax error", zap.Error(errors.Unwrap(err)))
		return nil, err
	}
	return e.Exec(stmt)
}

// Exec dispatches one statement. Failures reported to the user are
// *sqlerr.Error values; anything else is a storage fault.
func (e *Executor) Exec(stmt parser.Statement) (*Result, error) {
	e.log.Debug("executor: dispatch", zap.String("stmt", fmt.Sprintf("%T", stmt)))

	switch s := stmt.(type) {
	case *parser.CreateTableStmt, *parser.InsertStmt, *parser.DeleteStmt, *parser.SelectStmt:
		return e.execPlanned(s)
	case *parser.DropTableStmt:
		return e.execDropTable(s)
	case *parser.DescribeStmt:
		return e.execDescribe(s)
	case *parser.ShowTablesStmt:
		return e.execShowTables()
	case *parser.UpdateStmt:
		return status("'UPDATE' requested"), nil
	case *parser.ExitStmt:
		return &Result{Kind: KindExit}, nil
	default:
		return nil, fmt.Errorf("executor: unsupported statement type %T", stmt)
	}
}

func (e *Executor) execCreateTable(p *planner.CreateTablePlan) (*Result, error) {
	ts, err := e.DB.CreateTable(p.Def)
	if err != nil {
		return nil, err
	}
	return status("'%s' table is created", ts.Name), nil
}

func (e *Executor) execDropTable(s *parser.DropTableStmt) (*Result, error) {
	if err := e.DB.DropTable(s.TableName); err != nil {
		return nil, err
	}
	return status("'%s' table is dropped", s.TableName), nil
}

// loadTable maps a missing table to NoSuchTable.
func (e *Executor) loadTable(name string) (*catalog.TableSchema, error) {
	ts, err := e.DB.LoadTable(name)
	if errors.Is(err, catalog.ErrTableNotFound) {
		return nil, sqlerr.NoSuchTable()
	}
	return ts, err
}

func (e *Executor) execDescribe(s *parser.DescribeStmt) (*Result, error) {
	ts, err := e.loadTable(s.TableName)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindDescribe, Table: ts.Name, Columns: describeHeader}
	for _, col := range ts.Columns {
		null := "Y"
		if ts.IsNotNull(col.Name) {
			null = "N"
		}
		key := ""
		switch {
		case ts.IsPrimaryKey(col.Name):
			key = "PRI"
		case ts.IsForeignKey(col.Name):
			key = "FOR"
		}
		res.Rows = append(res.Rows, []any{col.Name, col.Type.String(), null, key})
	}
	return res, nil
}

func (e *Executor) execShowTables() (*Result, error) {
	names, err := e.DB.ListTables()
	if err != nil {
		return nil, err
	}
	res := &Result{Kind: KindTables, Columns: []string{"table_name"}}
	for _, n := range names {
		res.Rows = append(res.Rows, []any{n})
	}
	return res, nil
}

// execPlanned runs the statements that go through the planner.
func (e *Executor) execPlanned(stmt parser.Statement) (*Result, error) {
	plan, err := planner.BuildPlan(stmt, e.DB)
	if err != nil {
		return nil, err
	}
	switch p := plan.(type) {
	case *planner.CreateTablePlan:
		return e.execCreateTable(p)
	case *planner.InsertPlan:
		return e.execInsert(p)
	case *planner.DeletePlan:
		return e.execDelete(p)
	case *planner.SeqScanPlan:
		return e.execSeqScan(p)
	default:
		return nil, fmt.Errorf("executor: unsupported plan type %T", plan)
	}
}

func (e *Executor) execInsert(p *planner.InsertPlan) (res *Result, err error) {
	tbl, err := e.DB.OpenRows(p.Table.Name, p.Table.Record(), true)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := tbl.Close(); err == nil && cerr != nil {
			res, err = nil, cerr
		}
	}()

	if _, err := tbl.Insert(p.Values); err != nil {
		return nil, err
	}
	return &Result{Kind: KindStatus, Message: "The row is inserted", AffectedRows: 1}, nil
}

func (e *Executor) execDelete(p *planner.DeletePlan) (res *Result, err error) {
	tbl, err := e.DB.OpenRows(p.Table.Name, p.Table.Record(), false)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := tbl.Close(); err == nil && cerr != nil {
			res, err = nil, cerr
		}
	}()

	// Collect first so a failing row leaves the table untouched.
	var victims []heap.RowID
	err = tbl.Scan(func(id heap.RowID, row []any) error {
		ok, err := p.Filter.Match(row)
		if err != nil {
			return err
		}
		if ok {
			victims = append(victims, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := tbl.Delete(victims); err != nil {
		return nil, err
	}
	e.log.Debug("executor: rows deleted", zap.String("table", p.Table.Name), zap.Int("count", len(victims)))
	return &Result{
		Kind:         KindStatus,
		Message:      fmt.Sprintf("%d row(s) are deleted", len(victims)),
		AffectedRows: int64(len(victims)),
	}, nil
}

func (e *Executor) execSeqScan(p *planner.SeqScanPlan) (res *Result, err error) {
	tbl, err := e.DB.OpenRows(p.Table.Name, p.Table.Record(), false)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := tbl.Close(); err == nil && cerr != nil {
			res, err = nil, cerr
		}
	}()

	res = &Result{Kind: KindRows, Columns: p.Columns}
	err = tbl.Scan(func(_ heap.RowID, row []any) error {
		ok, err := p.Filter.Match(row)
		if err != nil || !ok {
			return err
		}
		res.Rows = append(res.Rows, p.Project(row))
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.AffectedRows = int64(len(res.Rows))
	return res, nil
}
