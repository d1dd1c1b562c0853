package planner

import (
	"github.com/tuannm99/mydb/internal/catalog"
	"github.com/tuannm99/mydb/internal/sql/predicate"
)

// Plan is the interface for executable plans.
type Plan interface {
	planNode()
}

// ----- Plan nodes -----

type CreateTablePlan struct {
	Def catalog.TableDef
}

func (*CreateTablePlan) planNode() {}

// InsertPlan carries one row, already checked and in schema order.
type InsertPlan struct {
	Table  *catalog.TableSchema
	Values []any
}

func (*InsertPlan) planNode() {}

// SeqScanPlan reads every row of Table, keeps those Filter matches and
// projects them. A nil Projection keeps all columns.
type SeqScanPlan struct {
	Table      *catalog.TableSchema
	Columns    []string
	Projection []int
	Filter     *predicate.Predicate
}

func (*SeqScanPlan) planNode() {}

// Project returns the output row for a stored row.
func (p *SeqScanPlan) Project(row []any) []any {
	if p.Projection == nil {
		out := make([]any, len(row))
		copy(out, row)
		return out
	}
	out := make([]any, len(p.Projection))
	for i, pos := range p.Projection {
		out[i] = row[pos]
	}
	return out
}

type DeletePlan struct {
	Table  *catalog.TableSchema
	Filter *predicate.Predicate
}

func (*DeletePlan) planNode() {}
