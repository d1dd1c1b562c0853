package record

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindChar
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindChar:
		return "char"
	case KindDate:
		return "date"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindInt, KindChar, KindDate:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("record: unknown column kind %d", uint8(k))
	}
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "int":
		*k = KindInt
	case "char":
		*k = KindChar
	case "date":
		*k = KindDate
	default:
		return fmt.Errorf("record: unknown column kind %q", string(b))
	}
	return nil
}

// ColumnType is a declared column type or the type of a literal.
// For KindChar, Length is the declared bound; a zero Length is the
// unbounded string type carried by string literals.
type ColumnType struct {
	Kind   Kind `json:"kind"`
	Length int  `json:"length,omitempty"`
}

func Int() ColumnType       { return ColumnType{Kind: KindInt} }
func Char(n int) ColumnType { return ColumnType{Kind: KindChar, Length: n} }
func Date() ColumnType      { return ColumnType{Kind: KindDate} }
func String() ColumnType    { return ColumnType{Kind: KindChar} }

func (t ColumnType) Bounded() bool { return t.Kind == KindChar && t.Length > 0 }

// Compatible reports whether values of the two types may be compared or
// paired. Any char(n) matches any char(m) and the unbounded string type.
func (t ColumnType) Compatible(o ColumnType) bool {
	return t.Kind == o.Kind
}

func (t ColumnType) String() string {
	switch {
	case t.Kind == KindChar && t.Length > 0:
		return "char(" + strconv.Itoa(t.Length) + ")"
	case t.Kind == KindChar:
		return "str"
	default:
		return t.Kind.String()
	}
}

type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

type Schema struct {
	Cols []Column
}

func (s Schema) NumCols() int { return len(s.Cols) }

// Index returns the position of the named column or -1.
func (s Schema) Index(name string) int {
	for i := range s.Cols {
		if s.Cols[i].Name == name {
			return i
		}
	}
	return -1
}

func (s Schema) Names() []string {
	out := make([]string, len(s.Cols))
	for i, c := range s.Cols {
		out[i] = c.Name
	}
	return out
}
