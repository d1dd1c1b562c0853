// Package predicate evaluates WHERE clauses against one row at a time.
//
// A clause is first bound to a Scope, which resolves every column reference
// and checks that compared operands have compatible types. Binding is where
// all Where* errors come from; evaluating a bound predicate only fails on
// malformed rows.
//
// Evaluation uses three-valued logic: a comparison involving NULL is
// Unknown, NOT Unknown stays Unknown, and only rows that evaluate to True
// match.
package predicate

import (
	"fmt"

	"github.com/tuannm99/mydb/internal/record"
	"github.com/tuannm99/mydb/internal/sql/parser"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

type Truth uint8

const (
	False Truth = iota
	True
	Unknown
)

func (t Truth) String() string {
	switch t {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

func (t Truth) not() Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// Table is one table in scope. Qualified references may use either its name
// or its alias.
type Table struct {
	Name    string
	Alias   string
	Columns []record.Column
}

// Scope lists the tables visible to a WHERE clause. Row values are laid out
// table after table, each in column declaration order.
type Scope struct {
	tables []Table
	slots  []slot
}

type slot struct {
	table int
	col   record.Column
}

func NewScope(tables ...Table) *Scope {
	sc := &Scope{tables: tables}
	for ti, t := range tables {
		for _, c := range t.Columns {
			sc.slots = append(sc.slots, slot{table: ti, col: c})
		}
	}
	return sc
}

// Width is the number of values a row bound to this scope carries.
func (sc *Scope) Width() int { return len(sc.slots) }

// Resolve returns the row position and type of a column reference.
func (sc *Scope) Resolve(ref *parser.ColumnRef) (int, record.ColumnType, error) {
	pos, matches := -1, 0
	for i, s := range sc.slots {
		if s.col.Name == ref.Column {
			if pos < 0 {
				pos = i
			}
			matches++
		}
	}
	if matches == 0 {
		return -1, record.ColumnType{}, sqlerr.WhereColumnNotExist()
	}

	if ref.Table != "" {
		// The column exists somewhere; the qualifier must name its table.
		ti := sc.table(ref.Table)
		for i, s := range sc.slots {
			if ti >= 0 && s.table == ti && s.col.Name == ref.Column {
				return i, s.col.Type, nil
			}
		}
		return -1, record.ColumnType{}, sqlerr.WhereTableNotSpecified()
	}

	if matches > 1 {
		return -1, record.ColumnType{}, sqlerr.WhereAmbiguousReference()
	}
	return pos, sc.slots[pos].col.Type, nil
}

func (sc *Scope) table(qualifier string) int {
	for i, t := range sc.tables {
		if t.Name == qualifier || (t.Alias != "" && t.Alias == qualifier) {
			return i
		}
	}
	return -1
}

// Predicate is a WHERE clause bound to a scope.
type Predicate struct {
	root  node
	width int
}

// Bind resolves expr against sc. A nil expr binds to a predicate that
// matches every row.
func Bind(expr parser.Expr, sc *Scope) (*Predicate, error) {
	p := &Predicate{width: sc.Width()}
	if expr == nil {
		return p, nil
	}
	root, err := bind(expr, sc)
	if err != nil {
		return nil, err
	}
	p.root = root
	return p, nil
}

// Eval returns the truth value of the predicate for row.
func (p *Predicate) Eval(row []any) (Truth, error) {
	if len(row) != p.width {
		return Unknown, fmt.Errorf("predicate: row has %d values, scope has %d columns", len(row), p.width)
	}
	if p.root == nil {
		return True, nil
	}
	return p.root.eval(row)
}

// Match reports whether row satisfies the predicate.
func (p *Predicate) Match(row []any) (bool, error) {
	t, err := p.Eval(row)
	return t == True, err
}
