package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Keywords are matched case-insensitively and only on word boundaries, so
// identifiers such as "created_at" or "keys" still lex as Ident.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Keyword", Pattern: `(?i)\b(?:CREATE|TABLES|TABLE|DROP|DESCRIBE|DESC|EXPLAIN|SHOW|SELECT|FROM|WHERE|INSERT|INTO|VALUES|DELETE|UPDATE|SET|EXIT|PRIMARY|FOREIGN|KEY|REFERENCES|NOT|NULL|IS|AND|OR|AS|INT|CHAR|DATE)\b`},
	{Name: "Date", Pattern: `\d{4}-\d{2}-\d{2}`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `<=|>=|!=|<>|=|<|>`},
	{Name: "Punct", Pattern: `[(),;.*]`},
})

var sqlParser = participle.MustBuild[gLine](
	participle.Lexer(sqlLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
	participle.UseLookahead(2),
)

type gLine struct {
	Stmt *gStatement `parser:"@@ ';'"`
}

type gStatement struct {
	Create   *gCreateTable `parser:"  @@"`
	Drop     *gDropTable   `parser:"| @@"`
	Describe *gDescribe    `parser:"| @@"`
	Show     *gShowTables  `parser:"| @@"`
	Select   *gSelect      `parser:"| @@"`
	Insert   *gInsert      `parser:"| @@"`
	Delete   *gDelete      `parser:"| @@"`
	Update   *gUpdate      `parser:"| @@"`
	Exit     bool          `parser:"| @'exit'"`
}

type gCreateTable struct {
	Name     string           `parser:"'create' 'table' @Ident"`
	Elements []*gTableElement `parser:"'(' @@ (',' @@)* ')'"`
}

type gTableElement struct {
	PrimaryKey *gPrimaryKey `parser:"  @@"`
	ForeignKey *gForeignKey `parser:"| @@"`
	Column     *gColumnDef  `parser:"| @@"`
}

type gPrimaryKey struct {
	Columns []string `parser:"'primary' 'key' '(' @Ident (',' @Ident)* ')'"`
}

type gForeignKey struct {
	Columns    []string `parser:"'foreign' 'key' '(' @Ident (',' @Ident)* ')'"`
	RefTable   string   `parser:"'references' @Ident"`
	RefColumns []string `parser:"'(' @Ident (',' @Ident)* ')'"`
}

type gColumnDef struct {
	Name    string `parser:"@Ident"`
	Type    *gType `parser:"@@"`
	NotNull bool   `parser:"@('not' 'null')?"`
}

type gType struct {
	Int  bool   `parser:"  @'int'"`
	Char *int64 `parser:"| 'char' '(' @Int ')'"`
	Date bool   `parser:"| @'date'"`
}

type gDropTable struct {
	Name string `parser:"'drop' 'table' @Ident"`
}

type gDescribe struct {
	Name string `parser:"('describe' | 'desc' | 'explain') @Ident"`
}

type gShowTables struct {
	Tables bool `parser:"'show' @'tables'"`
}

type gSelect struct {
	Projection *gProjection `parser:"'select' @@"`
	From       []*gTableRef `parser:"'from' @@ (',' @@)*"`
	Where      *gOr         `parser:"('where' @@)?"`
}

type gProjection struct {
	All     bool          `parser:"  @'*'"`
	Columns []*gColumnRef `parser:"| @@ (',' @@)*"`
}

type gTableRef struct {
	Name  string `parser:"@Ident"`
	Alias string `parser:"('as' @Ident)?"`
}

type gInsert struct {
	Table   string    `parser:"'insert' 'into' @Ident"`
	Columns []string  `parser:"('(' @Ident (',' @Ident)* ')')?"`
	Values  []*gValue `parser:"'values' '(' @@ (',' @@)* ')'"`
}

type gDelete struct {
	Table string `parser:"'delete' 'from' @Ident"`
	Where *gOr   `parser:"('where' @@)?"`
}

type gUpdate struct {
	Table string     `parser:"'update' @Ident"`
	Set   []*gAssign `parser:"'set' @@ (',' @@)*"`
	Where *gOr       `parser:"('where' @@)?"`
}

type gAssign struct {
	Column string  `parser:"@Ident '='"`
	Value  *gValue `parser:"@@"`
}

type gValue struct {
	Null   bool    `parser:"  @'null'"`
	Date   *string `parser:"| @Date"`
	Int    *int64  `parser:"| @Int"`
	String *string `parser:"| @String"`
}

// ----- WHERE -----

type gOr struct {
	Terms []*gAnd `parser:"@@ ('or' @@)*"`
}

type gAnd struct {
	Factors []*gFactor `parser:"@@ ('and' @@)*"`
}

type gFactor struct {
	Not  bool   `parser:"@'not'?"`
	Test *gTest `parser:"@@"`
}

type gTest struct {
	Paren *gOr        `parser:"  '(' @@ ')'"`
	Pred  *gPredicate `parser:"| @@"`
}

type gPredicate struct {
	Left *gOperand  `parser:"@@"`
	Tail *gPredTail `parser:"@@"`
}

type gPredTail struct {
	Null    *gNullTail    `parser:"  @@"`
	Compare *gCompareTail `parser:"| @@"`
}

type gNullTail struct {
	Is  bool `parser:"@'is'"`
	Not bool `parser:"@'not'? 'null'"`
}

type gCompareTail struct {
	Op    string    `parser:"@Operator"`
	Right *gOperand `parser:"@@"`
}

type gOperand struct {
	Date   *string     `parser:"  @Date"`
	Int    *int64      `parser:"| @Int"`
	String *string     `parser:"| @String"`
	Column *gColumnRef `parser:"| @@"`
}

type gColumnRef struct {
	First  string `parser:"@Ident"`
	Second string `parser:"('.' @Ident)?"`
}
