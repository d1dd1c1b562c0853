package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tuannm99/mydb/internal/record"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

var (
	ErrEmptyStatement   = errors.New("parser: empty statement")
	ErrNullCheckOperand = errors.New("parser: IS NULL needs a column operand")
	ErrBadDate          = errors.New("parser: invalid date literal")
)

// Parse parses a single SQL statement into an AST.
// Policy: statement MUST end with ';'. Every failure is a *sqlerr.Error of
// kind KindSyntax wrapping the detail.
func Parse(sql string) (Statement, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, sqlerr.Syntax(ErrEmptyStatement)
	}
	line, err := sqlParser.ParseString("", sql)
	if err != nil {
		return nil, sqlerr.Syntax(err)
	}
	stmt, err := lowerStatement(line.Stmt)
	if err != nil {
		return nil, sqlerr.Syntax(err)
	}
	return stmt, nil
}

func ident(s string) string { return strings.ToLower(s) }

func idents(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = ident(s)
	}
	return out
}

func lowerStatement(g *gStatement) (Statement, error) {
	switch {
	case g.Create != nil:
		return lowerCreateTable(g.Create), nil
	case g.Drop != nil:
		return &DropTableStmt{TableName: ident(g.Drop.Name)}, nil
	case g.Describe != nil:
		return &DescribeStmt{TableName: ident(g.Describe.Name)}, nil
	case g.Show != nil:
		return &ShowTablesStmt{}, nil
	case g.Select != nil:
		return lowerSelect(g.Select)
	case g.Insert != nil:
		return lowerInsert(g.Insert)
	case g.Delete != nil:
		where, err := lowerWhere(g.Delete.Where)
		if err != nil {
			return nil, err
		}
		return &DeleteStmt{TableName: ident(g.Delete.Table), Where: where}, nil
	case g.Update != nil:
		return lowerUpdate(g.Update)
	case g.Exit:
		return &ExitStmt{}, nil
	default:
		return nil, ErrEmptyStatement
	}
}

func lowerCreateTable(g *gCreateTable) *CreateTableStmt {
	s := &CreateTableStmt{TableName: ident(g.Name)}
	for _, el := range g.Elements {
		switch {
		case el.PrimaryKey != nil:
			s.PrimaryKeys = append(s.PrimaryKeys, idents(el.PrimaryKey.Columns))
		case el.ForeignKey != nil:
			s.ForeignKeys = append(s.ForeignKeys, ForeignKeyDef{
				Columns:    idents(el.ForeignKey.Columns),
				RefTable:   ident(el.ForeignKey.RefTable),
				RefColumns: idents(el.ForeignKey.RefColumns),
			})
		case el.Column != nil:
			s.Columns = append(s.Columns, ColumnDef{
				Name:    ident(el.Column.Name),
				Type:    lowerType(el.Column.Type),
				NotNull: el.Column.NotNull,
			})
		}
	}
	return s
}

func lowerType(g *gType) record.ColumnType {
	switch {
	case g.Char != nil:
		return record.Char(int(*g.Char))
	case g.Date:
		return record.Date()
	default:
		return record.Int()
	}
}

func lowerSelect(g *gSelect) (*SelectStmt, error) {
	s := &SelectStmt{}
	if !g.Projection.All {
		for _, c := range g.Projection.Columns {
			s.Columns = append(s.Columns, lowerColumnRef(c))
		}
	}
	for _, t := range g.From {
		s.From = append(s.From, TableRef{Name: ident(t.Name), Alias: ident(t.Alias)})
	}
	where, err := lowerWhere(g.Where)
	if err != nil {
		return nil, err
	}
	s.Where = where
	return s, nil
}

func lowerInsert(g *gInsert) (*InsertStmt, error) {
	s := &InsertStmt{TableName: ident(g.Table), Columns: idents(g.Columns)}
	for _, v := range g.Values {
		lit, err := lowerValue(v)
		if err != nil {
			return nil, err
		}
		s.Values = append(s.Values, lit)
	}
	return s, nil
}

func lowerUpdate(g *gUpdate) (*UpdateStmt, error) {
	s := &UpdateStmt{TableName: ident(g.Table)}
	for _, a := range g.Set {
		lit, err := lowerValue(a.Value)
		if err != nil {
			return nil, err
		}
		s.Set = append(s.Set, Assignment{Column: ident(a.Column), Value: lit})
	}
	where, err := lowerWhere(g.Where)
	if err != nil {
		return nil, err
	}
	s.Where = where
	return s, nil
}

func lowerValue(g *gValue) (*Literal, error) {
	switch {
	case g.Null:
		return &Literal{Value: nil}, nil
	case g.Date != nil:
		return dateLiteral(*g.Date)
	case g.Int != nil:
		return &Literal{Value: *g.Int}, nil
	case g.String != nil:
		return &Literal{Value: unquote(*g.String)}, nil
	}
	return nil, fmt.Errorf("parser: empty value")
}

func dateLiteral(s string) (*Literal, error) {
	d, err := record.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return &Literal{Value: d}, nil
}

// unquote strips the surrounding quote pair; there are no escapes.
func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func lowerColumnRef(g *gColumnRef) *ColumnRef {
	if g.Second == "" {
		return &ColumnRef{Column: ident(g.First)}
	}
	return &ColumnRef{Table: ident(g.First), Column: ident(g.Second)}
}

// ----- WHERE -----

func lowerWhere(g *gOr) (Expr, error) {
	if g == nil {
		return nil, nil
	}
	return lowerOr(g)
}

// Single-child OR/AND nodes collapse into their child.
func lowerOr(g *gOr) (Expr, error) {
	terms := make([]Expr, 0, len(g.Terms))
	for _, t := range g.Terms {
		e, err := lowerAnd(t)
		if err != nil {
			return nil, err
		}
		terms = append(terms, e)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &OrExpr{Terms: terms}, nil
}

func lowerAnd(g *gAnd) (Expr, error) {
	factors := make([]Expr, 0, len(g.Factors))
	for _, f := range g.Factors {
		e, err := lowerFactor(f)
		if err != nil {
			return nil, err
		}
		factors = append(factors, e)
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return &AndExpr{Factors: factors}, nil
}

func lowerFactor(g *gFactor) (Expr, error) {
	var (
		e   Expr
		err error
	)
	if g.Test.Paren != nil {
		var inner Expr
		inner, err = lowerOr(g.Test.Paren)
		e = &ParenExpr{X: inner}
	} else {
		e, err = lowerPredicate(g.Test.Pred)
	}
	if err != nil {
		return nil, err
	}
	if g.Not {
		return &NotExpr{X: e}, nil
	}
	return e, nil
}

func lowerPredicate(g *gPredicate) (Expr, error) {
	left, err := lowerOperand(g.Left)
	if err != nil {
		return nil, err
	}
	if g.Tail.Null != nil {
		col, ok := left.(*ColumnRef)
		if !ok {
			return nil, ErrNullCheckOperand
		}
		return &NullCheck{Column: col, Not: g.Tail.Null.Not}, nil
	}

	right, err := lowerOperand(g.Tail.Compare.Right)
	if err != nil {
		return nil, err
	}
	op, err := compareOp(g.Tail.Compare.Op)
	if err != nil {
		return nil, err
	}
	return &Comparison{Left: left, Op: op, Right: right}, nil
}

func lowerOperand(g *gOperand) (Operand, error) {
	switch {
	case g.Date != nil:
		return dateLiteral(*g.Date)
	case g.Int != nil:
		return &Literal{Value: *g.Int}, nil
	case g.String != nil:
		return &Literal{Value: unquote(*g.String)}, nil
	default:
		return lowerColumnRef(g.Column), nil
	}
}

func compareOp(s string) (CompareOp, error) {
	switch s {
	case "=":
		return OpEq, nil
	case "!=", "<>":
		return OpNe, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGe, nil
	}
	return 0, fmt.Errorf("parser: unknown operator %q", s)
}
