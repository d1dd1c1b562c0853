package predicate

import (
	"fmt"

	"github.com/tuannm99/mydb/internal/record"
	"github.com/tuannm99/mydb/internal/sql/parser"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

type node interface {
	eval(row []any) (Truth, error)
}

type orNode []node

func (n orNode) eval(row []any) (Truth, error) {
	out := False
	for _, c := range n {
		t, err := c.eval(row)
		if err != nil {
			return Unknown, err
		}
		if t == True {
			return True, nil
		}
		if t == Unknown {
			out = Unknown
		}
	}
	return out, nil
}

type andNode []node

func (n andNode) eval(row []any) (Truth, error) {
	out := True
	for _, c := range n {
		t, err := c.eval(row)
		if err != nil {
			return Unknown, err
		}
		if t == False {
			return False, nil
		}
		if t == Unknown {
			out = Unknown
		}
	}
	return out, nil
}

type notNode struct{ x node }

func (n notNode) eval(row []any) (Truth, error) {
	t, err := n.x.eval(row)
	return t.not(), err
}

type nullNode struct {
	pos int
	not bool
}

func (n nullNode) eval(row []any) (Truth, error) {
	isNull := row[n.pos] == nil
	if isNull != n.not {
		return True, nil
	}
	return False, nil
}

// operand is either a column position or a constant.
type operand struct {
	pos   int // -1 for a literal
	value any
}

func (o operand) get(row []any) any {
	if o.pos < 0 {
		return o.value
	}
	return row[o.pos]
}

type compareNode struct {
	left, right operand
	op          parser.CompareOp
}

func (n compareNode) eval(row []any) (Truth, error) {
	a, b := n.left.get(row), n.right.get(row)
	if a == nil || b == nil {
		return Unknown, nil
	}
	c, err := record.Compare(a, b)
	if err != nil {
		return Unknown, err
	}

	var ok bool
	switch n.op {
	case parser.OpEq:
		ok = c == 0
	case parser.OpNe:
		ok = c != 0
	case parser.OpLt:
		ok = c < 0
	case parser.OpLe:
		ok = c <= 0
	case parser.OpGt:
		ok = c > 0
	case parser.OpGe:
		ok = c >= 0
	default:
		return Unknown, fmt.Errorf("predicate: unknown operator %d", n.op)
	}
	if ok {
		return True, nil
	}
	return False, nil
}

func bind(e parser.Expr, sc *Scope) (node, error) {
	switch x := e.(type) {
	case *parser.OrExpr:
		out := make(orNode, 0, len(x.Terms))
		for _, t := range x.Terms {
			n, err := bind(t, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil

	case *parser.AndExpr:
		out := make(andNode, 0, len(x.Factors))
		for _, f := range x.Factors {
			n, err := bind(f, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil

	case *parser.NotExpr:
		n, err := bind(x.X, sc)
		if err != nil {
			return nil, err
		}
		return notNode{x: n}, nil

	case *parser.ParenExpr:
		return bind(x.X, sc)

	case *parser.NullCheck:
		pos, _, err := sc.Resolve(x.Column)
		if err != nil {
			return nil, err
		}
		return nullNode{pos: pos, not: x.Not}, nil

	case *parser.Comparison:
		left, lt, err := bindOperand(x.Left, sc)
		if err != nil {
			return nil, err
		}
		right, rt, err := bindOperand(x.Right, sc)
		if err != nil {
			return nil, err
		}
		if !lt.Compatible(rt) {
			return nil, sqlerr.WhereIncomparable()
		}
		return compareNode{left: left, right: right, op: x.Op}, nil

	default:
		return nil, fmt.Errorf("predicate: unexpected expression %T", e)
	}
}

func bindOperand(o parser.Operand, sc *Scope) (operand, record.ColumnType, error) {
	switch x := o.(type) {
	case *parser.ColumnRef:
		pos, typ, err := sc.Resolve(x)
		if err != nil {
			return operand{}, record.ColumnType{}, err
		}
		return operand{pos: pos}, typ, nil
	case *parser.Literal:
		typ, ok := record.TypeOf(x.Value)
		if !ok {
			// NULL literals never reach comparisons through the grammar.
			return operand{}, record.ColumnType{}, sqlerr.WhereIncomparable()
		}
		return operand{pos: -1, value: x.Value}, typ, nil
	default:
		return operand{}, record.ColumnType{}, fmt.Errorf("predicate: unexpected operand %T", o)
	}
}
