package executor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/mydb/internal/catalog"
	"github.com/tuannm99/mydb/internal/heap"
	"github.com/tuannm99/mydb/internal/kv"
	"github.com/tuannm99/mydb/internal/record"
	"github.com/tuannm99/mydb/internal/sql/parser"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

// ---- fakes ----

type fakeDB struct {
	tables  map[string]*catalog.TableSchema
	rows    *kv.MemOpener
	created []catalog.TableDef
	dropped []string
	listErr error
}

func newFakeDB(tables ...*catalog.TableSchema) *fakeDB {
	f := &fakeDB{tables: map[string]*catalog.TableSchema{}, rows: kv.NewMemOpener()}
	for _, t := range tables {
		f.tables[t.Name] = t
	}
	return f
}

func (f *fakeDB) CreateTable(def catalog.TableDef) (*catalog.TableSchema, error) {
	f.created = append(f.created, def)
	return &catalog.TableSchema{Name: def.Name}, nil
}

func (f *fakeDB) DropTable(table string) error {
	f.dropped = append(f.dropped, table)
	return nil
}

func (f *fakeDB) LoadTable(table string) (*catalog.TableSchema, error) {
	t, ok := f.tables[table]
	if !ok {
		return nil, catalog.ErrTableNotFound
	}
	return t, nil
}

func (f *fakeDB) ListTables() ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []string
	for n := range f.tables {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeDB) OpenRows(table string, schema record.Schema, create bool) (*heap.Table, error) {
	return heap.Open(f.rows, catalog.RowStoreName(table), schema, create)
}

func peopleSchema() *catalog.TableSchema {
	return &catalog.TableSchema{
		Name: "people",
		Columns: []record.Column{
			{Name: "id", Type: record.Int()},
			{Name: "name", Type: record.Char(5), Nullable: true},
			{Name: "born", Type: record.Date(), Nullable: true},
		},
		PrimaryKey: []string{"id"},
	}
}

func newRealExecutor(t *testing.T) *Executor {
	t.Helper()
	return NewExecutor(catalog.New(kv.NewMemOpener(), nil), nil)
}

func mustExec(t *testing.T, e *Executor, sql string) *Result {
	t.Helper()
	res, err := e.ExecSQL(sql)
	require.NoError(t, err, sql)
	return res
}

func render(t *testing.T, r *Result) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "MY_DB> "))
	return buf.String()
}

// ---- tests: dispatch through the seam ----

func TestExec_CreateTableTranslatesDefinition(t *testing.T) {
	db := newFakeDB()
	e := newExecutor(db, nil)

	res := mustExec(t, e, "create table a (x int not null, y char(3), primary key (x), foreign key (y) references b (k));")
	assert.Equal(t, "'a' table is created", res.Message)

	require.Len(t, db.created, 1)
	assert.Equal(t, catalog.TableDef{
		Name: "a",
		Columns: []catalog.ColumnDef{
			{Name: "x", Type: record.Int(), NotNull: true},
			{Name: "y", Type: record.Char(3)},
		},
		PrimaryKeys: [][]string{{"x"}},
		ForeignKeys: []catalog.ForeignKeyDef{{Columns: []string{"y"}, RefTable: "b", RefColumns: []string{"k"}}},
	}, db.created[0])
}

func TestExec_DropTable(t *testing.T) {
	db := newFakeDB()
	e := newExecutor(db, nil)

	res := mustExec(t, e, "DROP TABLE People;")
	assert.Equal(t, "'people' table is dropped", res.Message)
	assert.Equal(t, []string{"people"}, db.dropped)
}

func TestExec_UpdateIsAcknowledgedOnly(t *testing.T) {
	db := newFakeDB(peopleSchema())
	e := newExecutor(db, nil)

	mustExec(t, e, "insert into people values (1, 'ann', null);")
	res := mustExec(t, e, "update people set name = 'bob' where id = 1;")
	assert.Equal(t, "'UPDATE' requested", res.Message)

	sel := mustExec(t, e, "select * from people;")
	assert.Equal(t, [][]any{{int64(1), "ann", nil}}, sel.Rows)
}

func TestExec_Exit(t *testing.T) {
	res := mustExec(t, newExecutor(newFakeDB(), nil), "exit;")
	assert.Equal(t, KindExit, res.Kind)
	assert.Empty(t, render(t, res))
}

func TestExec_SyntaxError(t *testing.T) {
	_, err := newExecutor(newFakeDB(), nil).ExecSQL("selec * from t;")
	require.ErrorIs(t, err, sqlerr.ErrSyntax)
	assert.Equal(t, "Syntax error", err.Error())
}

func TestExec_ShowTablesStorageError(t *testing.T) {
	db := newFakeDB()
	db.listErr = errors.New("disk gone")
	_, err := newExecutor(db, nil).ExecSQL("show tables;")
	require.EqualError(t, err, "disk gone")
}

func TestExec_UnknownStatement(t *testing.T) {
	type bogus struct{ parser.ShowTablesStmt }
	_, err := newExecutor(newFakeDB(), nil).Exec(&bogus{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported statement")
}

// ---- tests: INSERT ----

func TestInsert_Errors(t *testing.T) {
	cases := []struct {
		sql  string
		want error
		msg  string
	}{
		{"insert into ghost values (1);", sqlerr.ErrNoSuchTable, "No such table"},
		{"insert into people values (1, 'a');", sqlerr.ErrInsertTypeMismatch, "Insertion has failed: Types are not matched"},
		{"insert into people (id, name) values (1, 'a', null);", sqlerr.ErrInsertTypeMismatch, ""},
		{"insert into people values ('1', 'a', null);", sqlerr.ErrInsertTypeMismatch, ""},
		{"insert into people values (1, 2, null);", sqlerr.ErrInsertTypeMismatch, ""},
		{"insert into people values (1, 'a', 'b');", sqlerr.ErrInsertTypeMismatch, ""},
		{"insert into people (id, nick, born) values (1, 'a', null);", sqlerr.ErrInsertColumnExistence, "Insertion has failed: 'nick' does not exist"},
		{"insert into people values (null, 'a', null);", sqlerr.ErrInsertColumnNonNullable, "Insertion has failed: 'id' is not nullable"},
		{"insert into people (id, id, born) values (1, 2, null);", sqlerr.ErrInsertTypeMismatch, ""},
	}
	for _, tc := range cases {
		e := newExecutor(newFakeDB(peopleSchema()), nil)
		_, err := e.ExecSQL(tc.sql)
		require.ErrorIs(t, err, tc.want, tc.sql)
		if tc.msg != "" {
			assert.Equal(t, tc.msg, err.Error(), tc.sql)
		}

		sel := mustExec(t, e, "select * from people;")
		assert.Empty(t, sel.Rows, "failed insert must not write: %s", tc.sql)
	}
}

func TestInsert_NotNullColumn(t *testing.T) {
	s := peopleSchema()
	s.NotNull = []string{"born"}
	s.Columns[2].Nullable = false
	e := newExecutor(newFakeDB(s), nil)

	_, err := e.ExecSQL("insert into people values (1, 'a', null);")
	require.ErrorIs(t, err, sqlerr.ErrInsertColumnNonNullable)
	assert.Equal(t, "Insertion has failed: 'born' is not nullable", err.Error())
}

func TestInsert_ReordersAndTruncates(t *testing.T) {
	e := newExecutor(newFakeDB(peopleSchema()), nil)

	res := mustExec(t, e, "insert into people (born, name, id) values (1999-12-31, 'abcdefgh', 7);")
	assert.Equal(t, "The row is inserted", res.Message)
	assert.Equal(t, int64(1), res.AffectedRows)

	sel := mustExec(t, e, "select * from people;")
	require.Len(t, sel.Rows, 1)
	assert.Equal(t, int64(7), sel.Rows[0][0])
	assert.Equal(t, "abcde", sel.Rows[0][1])
	assert.Equal(t, "1999-12-31", record.Format(sel.Rows[0][2]))
}

// ---- tests: DELETE / SELECT ----

func seedSample(t *testing.T, e *Executor) {
	t.Helper()
	mustExec(t, e, "create table t (id int, name char(10));")
	mustExec(t, e, "insert into t values (1, 'a');")
	mustExec(t, e, "insert into t values (2, 'b');")
	mustExec(t, e, "insert into t values (3, null);")
}

func TestDelete_SampleProperties(t *testing.T) {
	e := newRealExecutor(t)
	seedSample(t, e)
	res := mustExec(t, e, "delete from t where id > 1;")
	assert.Equal(t, "2 row(s) are deleted", res.Message)

	e = newRealExecutor(t)
	seedSample(t, e)
	res = mustExec(t, e, "delete from t where name is null;")
	assert.Equal(t, "1 row(s) are deleted", res.Message)

	e = newRealExecutor(t)
	seedSample(t, e)
	_, err := e.ExecSQL("delete from t where age = 3;")
	require.ErrorIs(t, err, sqlerr.ErrWhereColumnNotExist)
	_, err = e.ExecSQL("delete from t where other.nocol > 1;")
	require.ErrorIs(t, err, sqlerr.ErrWhereColumnNotExist)
	sel := mustExec(t, e, "select * from t;")
	assert.Len(t, sel.Rows, 3)
}

func TestDelete_AllRows(t *testing.T) {
	e := newRealExecutor(t)
	seedSample(t, e)

	res := mustExec(t, e, "delete from t;")
	assert.Equal(t, "3 row(s) are deleted", res.Message)
	res = mustExec(t, e, "delete from t;")
	assert.Equal(t, "0 row(s) are deleted", res.Message)
}

func TestDelete_NoSuchTable(t *testing.T) {
	_, err := newRealExecutor(t).ExecSQL("delete from t;")
	require.ErrorIs(t, err, sqlerr.ErrNoSuchTable)
}

func TestDelete_IncomparableAbortsWholeStatement(t *testing.T) {
	e := newRealExecutor(t)
	seedSample(t, e)

	_, err := e.ExecSQL("delete from t where id = 1 or name > 3;")
	require.ErrorIs(t, err, sqlerr.ErrWhereIncomparable)

	sel := mustExec(t, e, "select * from t;")
	assert.Len(t, sel.Rows, 3)
}

func TestSelect_RoundTripAndWhere(t *testing.T) {
	e := newRealExecutor(t)
	seedSample(t, e)

	res := mustExec(t, e, "select * from t where name = 'a' or id = 3;")
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.ElementsMatch(t, [][]any{{int64(1), "a"}, {int64(3), nil}}, res.Rows)

	res = mustExec(t, e, "select x.name from t as x where x.id = 2;")
	assert.Equal(t, []string{"name"}, res.Columns)
	assert.Equal(t, [][]any{{"b"}}, res.Rows)
}

func TestSelect_Errors(t *testing.T) {
	e := newRealExecutor(t)
	seedSample(t, e)

	_, err := e.ExecSQL("select * from nope;")
	require.ErrorIs(t, err, sqlerr.ErrSelectTableExistence)
	assert.Equal(t, "Selection has failed: 'nope' does not exist", err.Error())

	_, err = e.ExecSQL("select age from t;")
	require.ErrorIs(t, err, sqlerr.ErrSelectColumnResolve)

	_, err = e.ExecSQL("select * from t, t2;")
	require.ErrorIs(t, err, sqlerr.ErrUnsupported)

	_, err = e.ExecSQL("select * from t where u.id = 1;")
	require.ErrorIs(t, err, sqlerr.ErrWhereTableNotSpecified)
}

func TestSelect_EmptyTableWithoutRowStore(t *testing.T) {
	e := newRealExecutor(t)
	mustExec(t, e, "create table e (id int);")
	res := mustExec(t, e, "select * from e;")
	assert.Empty(t, res.Rows)
}

// ---- tests: DESCRIBE / SHOW / rendering ----

func TestDescribe_Markers(t *testing.T) {
	e := newRealExecutor(t)
	mustExec(t, e, "create table s (id char(10), name char(20) not null, primary key (id));")
	mustExec(t, e, "create table r (sid char(10), note date, primary key (sid), foreign key (sid) references s (id));")

	res := mustExec(t, e, "desc r;")
	assert.Equal(t, [][]any{
		{"sid", "char(10)", "N", "PRI"},
		{"note", "date", "Y", ""},
	}, res.Rows)

	res = mustExec(t, e, "describe s;")
	assert.Equal(t, [][]any{
		{"id", "char(10)", "N", "PRI"},
		{"name", "char(20)", "N", ""},
	}, res.Rows)

	again := mustExec(t, e, "explain s;")
	assert.Equal(t, render(t, res), render(t, again))

	_, err := e.ExecSQL("desc nope;")
	require.ErrorIs(t, err, sqlerr.ErrNoSuchTable)
}

func TestDescribe_ForeignKeyMarker(t *testing.T) {
	e := newRealExecutor(t)
	mustExec(t, e, "create table s (id int, primary key (id));")
	mustExec(t, e, "create table r (k int, sid int, primary key (k), foreign key (sid) references s (id));")

	res := mustExec(t, e, "desc r;")
	assert.Equal(t, []any{"sid", "int", "Y", "FOR"}, res.Rows[1])
}

func TestRender_Describe(t *testing.T) {
	res := &Result{
		Kind:  KindDescribe,
		Table: "t",
		Rows:  [][]any{{"id", "int", "N", "PRI"}},
	}
	want := describeRule + "\n" +
		"table_name [t]\n" +
		"column_name          type            null       key       \n" +
		"id                   int             N          PRI       \n" +
		describeRule + "\n"
	assert.Equal(t, want, render(t, res))
}

func TestRender_SelectAndShow(t *testing.T) {
	res := &Result{Kind: KindRows, Columns: []string{"id", "name"}, Rows: [][]any{{int64(1), nil}}}
	line := "----------------------------------------\n"
	want := line +
		"id                   name                 \n" +
		line +
		"1                    null                 \n" +
		line
	assert.Equal(t, want, render(t, res))

	show := &Result{Kind: KindTables, Rows: [][]any{{"a"}, {"b"}}}
	assert.Equal(t, describeRule+"\na\nb\n"+describeRule+"\n", render(t, show))

	st := status("%d row(s) are deleted", 2)
	assert.Equal(t, "MY_DB> 2 row(s) are deleted\n", render(t, st))
}

func TestShowTables(t *testing.T) {
	e := newRealExecutor(t)
	mustExec(t, e, "create table b (x int);")
	mustExec(t, e, "create table a (x int);")

	res := mustExec(t, e, "show tables;")
	assert.Equal(t, [][]any{{"a"}, {"b"}}, res.Rows)

	mustExec(t, e, "drop table a;")
	res = mustExec(t, e, "show tables;")
	assert.Equal(t, [][]any{{"b"}}, res.Rows)
}

func TestDropTable_RemovesRows(t *testing.T) {
	e := newRealExecutor(t)
	seedSample(t, e)

	mustExec(t, e, "drop table t;")
	mustExec(t, e, "create table t (id int, name char(10));")
	res := mustExec(t, e, "select * from t;")
	assert.Empty(t, res.Rows)
}
