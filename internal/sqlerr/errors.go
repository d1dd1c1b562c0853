// Package sqlerr holds the user-facing error taxonomy. Every error carries a
// Kind so callers can match with errors.Is against the package sentinels,
// while Error() returns the exact status line shown to the user.
package sqlerr

import "fmt"

type Kind uint8

const (
	KindUnknown Kind = iota

	// schema
	KindTableExistence
	KindNoSuchTable
	KindDuplicateColumnDef
	KindDuplicatePrimaryKeyDef
	KindNonExistingColumnDef
	KindCharLength

	// referential
	KindReferenceTableExistence
	KindReferenceColumnExistence
	KindReferenceNonPrimaryKey
	KindReferenceType
	KindReferenceSelf
	KindDropReferencedTable

	// dml
	KindSelectTableExistence
	KindSelectColumnResolve
	KindInsertTypeMismatch
	KindInsertColumnExistence
	KindInsertColumnNonNullable

	// where
	KindWhereColumnNotExist
	KindWhereTableNotSpecified
	KindWhereAmbiguousReference
	KindWhereIncomparable

	KindSyntax
	KindUnsupported
)

var kindNames = map[Kind]string{
	KindUnknown:                  "Unknown",
	KindTableExistence:           "TableExistenceError",
	KindNoSuchTable:              "NoSuchTable",
	KindDuplicateColumnDef:       "DuplicateColumnDefError",
	KindDuplicatePrimaryKeyDef:   "DuplicatePrimaryKeyDefError",
	KindNonExistingColumnDef:     "NonExistingColumnDefError",
	KindCharLength:               "CharLengthError",
	KindReferenceTableExistence:  "ReferenceTableExistenceError",
	KindReferenceColumnExistence: "ReferenceColumnExistenceError",
	KindReferenceNonPrimaryKey:   "ReferenceNonPrimaryKeyError",
	KindReferenceType:            "ReferenceTypeError",
	KindReferenceSelf:            "ReferenceSelfError",
	KindDropReferencedTable:      "DropReferencedTableError",
	KindSelectTableExistence:     "SelectTableExistenceError",
	KindSelectColumnResolve:      "SelectColumnResolveError",
	KindInsertTypeMismatch:       "InsertTypeMismatchError",
	KindInsertColumnExistence:    "InsertColumnExistenceError",
	KindInsertColumnNonNullable:  "InsertColumnNonNullableError",
	KindWhereColumnNotExist:      "WhereColumnNotExist",
	KindWhereTableNotSpecified:   "WhereTableNotSpecified",
	KindWhereAmbiguousReference:  "WhereAmbiguousReference",
	KindWhereIncomparable:        "WhereIncomparableError",
	KindSyntax:                   "SyntaxError",
	KindUnsupported:              "UnsupportedError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is a categorized, user-visible failure.
type Error struct {
	Kind    Kind
	Message string

	// Cause is set for syntax errors to keep the parser detail.
	Cause error
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is reports whether target is a sentinel (or any *Error) of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrTableExistence           = &Error{Kind: KindTableExistence}
	ErrNoSuchTable              = &Error{Kind: KindNoSuchTable}
	ErrDuplicateColumnDef       = &Error{Kind: KindDuplicateColumnDef}
	ErrDuplicatePrimaryKeyDef   = &Error{Kind: KindDuplicatePrimaryKeyDef}
	ErrNonExistingColumnDef     = &Error{Kind: KindNonExistingColumnDef}
	ErrCharLength               = &Error{Kind: KindCharLength}
	ErrReferenceTableExistence  = &Error{Kind: KindReferenceTableExistence}
	ErrReferenceColumnExistence = &Error{Kind: KindReferenceColumnExistence}
	ErrReferenceNonPrimaryKey   = &Error{Kind: KindReferenceNonPrimaryKey}
	ErrReferenceType            = &Error{Kind: KindReferenceType}
	ErrReferenceSelf            = &Error{Kind: KindReferenceSelf}
	ErrDropReferencedTable      = &Error{Kind: KindDropReferencedTable}
	ErrSelectTableExistence     = &Error{Kind: KindSelectTableExistence}
	ErrSelectColumnResolve      = &Error{Kind: KindSelectColumnResolve}
	ErrInsertTypeMismatch       = &Error{Kind: KindInsertTypeMismatch}
	ErrInsertColumnExistence    = &Error{Kind: KindInsertColumnExistence}
	ErrInsertColumnNonNullable  = &Error{Kind: KindInsertColumnNonNullable}
	ErrWhereColumnNotExist      = &Error{Kind: KindWhereColumnNotExist}
	ErrWhereTableNotSpecified   = &Error{Kind: KindWhereTableNotSpecified}
	ErrWhereAmbiguousReference  = &Error{Kind: KindWhereAmbiguousReference}
	ErrWhereIncomparable        = &Error{Kind: KindWhereIncomparable}
	ErrSyntax                   = &Error{Kind: KindSyntax}
	ErrUnsupported              = &Error{Kind: KindUnsupported}
)

// ---- constructors: messages match the interactive tool's status lines ----

func TableExistence() *Error {
	return newf(KindTableExistence, "Create table has failed: table with the same name already exists")
}

func NoSuchTable() *Error { return newf(KindNoSuchTable, "No such table") }

func DuplicateColumnDef() *Error {
	return newf(KindDuplicateColumnDef, "Create table has failed: column definition is duplicated")
}

func DuplicatePrimaryKeyDef() *Error {
	return newf(KindDuplicatePrimaryKeyDef, "Create table has failed: primary key definition is duplicated")
}

func NonExistingColumnDef(column string) *Error {
	return newf(KindNonExistingColumnDef, "Create table has failed: %s does not exist in column definition", column)
}

func CharLength() *Error { return newf(KindCharLength, "Char length should be over 0") }

func ReferenceTableExistence() *Error {
	return newf(KindReferenceTableExistence, "Create table has failed: foreign key references non existing table")
}

func ReferenceColumnExistence() *Error {
	return newf(KindReferenceColumnExistence, "Create table has failed: foreign key references non existing column")
}

func ReferenceNonPrimaryKey() *Error {
	return newf(KindReferenceNonPrimaryKey, "Create table has failed: foreign key references non primary key column")
}

func ReferenceType() *Error {
	return newf(KindReferenceType, "Create table has failed: foreign key references wrong type")
}

func ReferenceSelf() *Error {
	return newf(KindReferenceSelf, "Create table has failed: cannot reference itself")
}

func DropReferencedTable(table string) *Error {
	return newf(KindDropReferencedTable, "Drop table has failed: '%s' is referenced by other table", table)
}

func SelectTableExistence(table string) *Error {
	return newf(KindSelectTableExistence, "Selection has failed: '%s' does not exist", table)
}

func SelectColumnResolve(column string) *Error {
	return newf(KindSelectColumnResolve, "Selection has failed: fail to resolve '%s'", column)
}

func InsertTypeMismatch() *Error {
	return newf(KindInsertTypeMismatch, "Insertion has failed: Types are not matched")
}

func InsertColumnExistence(column string) *Error {
	return newf(KindInsertColumnExistence, "Insertion has failed: '%s' does not exist", column)
}

func InsertColumnNonNullable(column string) *Error {
	return newf(KindInsertColumnNonNullable, "Insertion has failed: '%s' is not nullable", column)
}

func WhereColumnNotExist() *Error {
	return newf(KindWhereColumnNotExist, "Where clause trying to reference non existing column")
}

func WhereTableNotSpecified() *Error {
	return newf(KindWhereTableNotSpecified, "Where clause trying to reference tables which are not specified")
}

func WhereAmbiguousReference() *Error {
	return newf(KindWhereAmbiguousReference, "Where clause contains ambiguous reference")
}

func WhereIncomparable() *Error {
	return newf(KindWhereIncomparable, "Where clause trying to compare incomparable values")
}

// Syntax keeps the parser detail for logs; the user only sees "Syntax error".
func Syntax(detail error) *Error {
	e := newf(KindSyntax, "Syntax error")
	e.Cause = detail
	return e
}

func Unsupported(what string) *Error {
	return newf(KindUnsupported, "%s is not supported", what)
}
