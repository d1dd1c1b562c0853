package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnType_String(t *testing.T) {
	assert.Equal(t, "int", Int().String())
	assert.Equal(t, "char(10)", Char(10).String())
	assert.Equal(t, "date", Date().String())
	assert.Equal(t, "str", String().String())
}

func TestColumnType_Compatible(t *testing.T) {
	assert.True(t, Char(3).Compatible(Char(10)))
	assert.True(t, Char(3).Compatible(String()))
	assert.True(t, String().Compatible(Char(3)))
	assert.True(t, Int().Compatible(Int()))
	assert.False(t, Int().Compatible(Char(3)))
	assert.False(t, Date().Compatible(String()))
}

func TestColumnType_JSON(t *testing.T) {
	b, err := json.Marshal(Char(8))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"char","length":8}`, string(b))

	var got ColumnType
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"DATE"}`), &got))
	assert.Equal(t, Date(), got)

	require.Error(t, json.Unmarshal([]byte(`{"kind":"blob"}`), &got))
}

func TestSchema_Index(t *testing.T) {
	s := makeTestSchema()
	assert.Equal(t, 0, s.Index("id"))
	assert.Equal(t, 2, s.Index("born"))
	assert.Equal(t, -1, s.Index("missing"))
	assert.Equal(t, []string{"id", "name", "born"}, s.Names())
}

func TestCompare(t *testing.T) {
	c, err := Compare(int64(1), int64(2))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare("b", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	d1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err = Compare(d2, d1)
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = Compare(int64(1), "1")
	require.ErrorIs(t, err, ErrIncomparable)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "가나", Truncate("가나다", 2))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "null", Format(nil))
	assert.Equal(t, "-3", Format(int64(-3)))
	assert.Equal(t, "x", Format("x"))
	assert.Equal(t, "2022-02-03", Format(time.Date(2022, 2, 3, 0, 0, 0, 0, time.UTC)))
}
