package parser

import "github.com/tuannm99/mydb/internal/record"

// Statement is the root interface for all SQL statements.
type Statement interface {
	stmtNode()
}

// ----- CREATE TABLE -----
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

// CreateTableStmt keeps every PRIMARY KEY clause as written; rejecting a
// second one is the catalog's job.
type CreateTableStmt struct {
	TableName   string
	Columns     []ColumnDef
	PrimaryKeys [][]string
	ForeignKeys []ForeignKeyDef
}

func (*CreateTableStmt) stmtNode() {}

// ----- DROP TABLE -----
type DropTableStmt struct {
	TableName string
}

func (*DropTableStmt) stmtNode() {}

// ----- DESC / DESCRIBE / EXPLAIN -----
type DescribeStmt struct {
	TableName string
}

func (*DescribeStmt) stmtNode() {}

// ----- SHOW TABLES -----
type ShowTablesStmt struct{}

func (*ShowTablesStmt) stmtNode() {}

// ----- SELECT -----
type TableRef struct {
	Name  string
	Alias string // empty when not aliased
}

type SelectStmt struct {
	Columns []*ColumnRef // empty means '*'
	From    []TableRef
	Where   Expr // nil when absent
}

func (*SelectStmt) stmtNode() {}

// ----- INSERT -----
type InsertStmt struct {
	TableName string
	Columns   []string // nil means positional
	Values    []*Literal
}

func (*InsertStmt) stmtNode() {}

// ----- DELETE -----
type DeleteStmt struct {
	TableName string
	Where     Expr
}

func (*DeleteStmt) stmtNode() {}

// ----- UPDATE -----
type Assignment struct {
	Column string
	Value  *Literal
}

type UpdateStmt struct {
	TableName string
	Set       []Assignment
	Where     Expr
}

func (*UpdateStmt) stmtNode() {}

// ----- EXIT -----
type ExitStmt struct{}

func (*ExitStmt) stmtNode() {}

// ----- Expressions -----

// Expr is a node of a WHERE clause: *OrExpr, *AndExpr, *NotExpr, *ParenExpr,
// *Comparison or *NullCheck.
type Expr interface {
	exprNode()
}

type OrExpr struct {
	Terms []Expr
}

type AndExpr struct {
	Factors []Expr
}

type NotExpr struct {
	X Expr
}

type ParenExpr struct {
	X Expr
}

type CompareOp uint8

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var opText = [...]string{"=", "!=", "<", "<=", ">", ">="}

func (o CompareOp) String() string { return opText[o] }

type Comparison struct {
	Left  Operand
	Op    CompareOp
	Right Operand
}

// NullCheck is "col IS [NOT] NULL".
type NullCheck struct {
	Column *ColumnRef
	Not    bool
}

func (*OrExpr) exprNode()     {}
func (*AndExpr) exprNode()    {}
func (*NotExpr) exprNode()    {}
func (*ParenExpr) exprNode()  {}
func (*Comparison) exprNode() {}
func (*NullCheck) exprNode()  {}

// Operand is one side of a comparison: *ColumnRef or *Literal.
type Operand interface {
	operandNode()
}

// ColumnRef is "[table.]column".
type ColumnRef struct {
	Table  string
	Column string
}

// Literal holds int64, string, time.Time or nil for NULL.
type Literal struct {
	Value any
}

func (*ColumnRef) operandNode() {}
func (*Literal) operandNode()   {}
