package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/mydb/internal/engine"
	"github.com/tuannm99/mydb/internal/kv"
)

func newSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	db := engine.OpenWith(kv.NewMemOpener(), nil)
	t.Cleanup(func() { _ = db.Close() })
	out := &bytes.Buffer{}
	return &session{db: db, out: out, prompt: "MY_DB> "}, out
}

func TestSplitStatements(t *testing.T) {
	cases := []struct {
		in    string
		stmts []string
		rest  string
	}{
		{"show tables;", []string{"show tables;"}, ""},
		{"desc a; desc b;  ", []string{"desc a;", "desc b;"}, "  "},
		{"insert into t values ('a;b');", []string{"insert into t values ('a;b');"}, ""},
		{`insert into t values ("it's;");`, []string{`insert into t values ("it's;");`}, ""},
		{"select * from t", nil, "select * from t"},
		{";;", nil, ""},
		{"desc a; select 'x", []string{"desc a;"}, " select 'x"},
	}
	for _, c := range cases {
		stmts, rest := splitStatements(c.in)
		assert.Equal(t, c.stmts, stmts, c.in)
		assert.Equal(t, c.rest, rest, c.in)
	}
}

func TestSession_MultiLineStatement(t *testing.T) {
	s, out := newSession(t)

	require.False(t, s.Feed("create table t ("))
	require.True(t, s.Incomplete())
	require.False(t, s.Feed("  a int not null);"))
	require.False(t, s.Incomplete())

	assert.Equal(t, "MY_DB> 't' table is created\n", out.String())
}

func TestSession_SeveralStatementsPerLine(t *testing.T) {
	s, out := newSession(t)

	s.Feed("create table t (a int); insert into t values (1); insert into t values (2);")
	assert.Equal(t,
		"MY_DB> 't' table is created\nMY_DB> The row is inserted\nMY_DB> The row is inserted\n",
		out.String())
}

func TestSession_SyntaxErrorStopsLine(t *testing.T) {
	s, out := newSession(t)

	s.Feed("create table t (a int); selec * from t; insert into t values (1);")
	assert.Equal(t, "MY_DB> 't' table is created\nMY_DB> Syntax error\n", out.String())

	out.Reset()
	s.Feed("select * from t;")
	assert.NotContains(t, out.String(), "1 ")
}

func TestSession_ExecutionErrorContinues(t *testing.T) {
	s, out := newSession(t)

	s.Feed("drop table nope; show tables;")
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "MY_DB> No such table", lines[0])
	assert.Equal(t, lines[1], lines[2])
}

func TestSession_Exit(t *testing.T) {
	s, out := newSession(t)

	assert.True(t, s.Feed("exit; show tables;"))
	assert.Empty(t, out.String())
}

func TestSession_Reset(t *testing.T) {
	s, _ := newSession(t)

	s.Feed("select * from")
	require.True(t, s.Incomplete())
	s.Reset()
	require.False(t, s.Incomplete())
}

func TestCompactOneLine(t *testing.T) {
	assert.Equal(t, "select * from t where a = 1;", compactOneLine("select *\n  from t\twhere a = 1;\n"))
	assert.Equal(t, "", compactOneLine(" \n "))
}
