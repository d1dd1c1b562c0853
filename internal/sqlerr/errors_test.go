package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := DropReferencedTable("lectures")
	require.ErrorIs(t, err, ErrDropReferencedTable)
	assert.False(t, errors.Is(err, ErrNoSuchTable))

	// Wrapped errors still match their sentinel.
	wrapped := fmt.Errorf("executor: %w", InsertColumnExistence("age"))
	require.ErrorIs(t, wrapped, ErrInsertColumnExistence)

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, KindInsertColumnExistence, e.Kind)

	assert.False(t, errors.Is(errors.New("No such table"), ErrNoSuchTable))
	assert.False(t, NoSuchTable().Is(errors.New("No such table")))
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t, "No such table", NoSuchTable().Error())
	assert.Equal(t, "Drop table has failed: 'lectures' is referenced by other table",
		DropReferencedTable("lectures").Error())
	assert.Equal(t, "Insertion has failed: 'age' does not exist", InsertColumnExistence("age").Error())
	assert.Equal(t, "Selecting from multiple tables is not supported",
		Unsupported("Selecting from multiple tables").Error())

	// Sentinels carry no message and fall back to the kind name.
	assert.Equal(t, "ReferenceTypeError", ErrReferenceType.Error())
}

func TestSyntax_UnwrapsCause(t *testing.T) {
	cause := errors.New("unexpected token \"selec\"")
	err := Syntax(cause)

	assert.Equal(t, "Syntax error", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrSyntax)

	assert.Nil(t, NoSuchTable().Unwrap())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "WhereColumnNotExist", KindWhereColumnNotExist.String())
	assert.Equal(t, "Unknown", KindUnknown.String())
	assert.Equal(t, "Kind(200)", Kind(200).String())
}
