package catalog

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/tuannm99/mydb/internal/kv"
	"github.com/tuannm99/mydb/internal/record"
)

var (
	ErrTableNotFound     = errors.New("catalog: table not found")
	ErrNegativeRefCount  = errors.New("catalog: reference count below zero")
	ErrCorruptSchemaData = errors.New("catalog: corrupt schema data")
)

const (
	schemaSuffix = ".schema"
	rowsSuffix   = ".rows"

	columnPrefix = "col/"

	keyColumnNames    = "meta/column_names"
	keyNotNull        = "meta/not_null"
	keyPrimaryKey     = "meta/primary_key"
	keyForeignKey     = "meta/foreign_key"
	keyReferenceCount = "meta/reference_count"
)

func SchemaStoreName(table string) string { return table + schemaSuffix }
func RowStoreName(table string) string    { return table + rowsSuffix }

// Catalog owns the schema stores, one durable map per table.
type Catalog struct {
	opener kv.Opener
	log    *zap.Logger
}

func New(opener kv.Opener, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{opener: opener, log: log}
}

// Opener exposes the underlying durable map service for the row stores.
func (c *Catalog) Opener() kv.Opener { return c.opener }

func (c *Catalog) Exists(table string) (bool, error) {
	return c.opener.Exists(SchemaStoreName(table))
}

// List returns all table names in lexical order.
func (c *Catalog) List() ([]string, error) {
	names, err := c.opener.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		if t, ok := strings.CutSuffix(n, schemaSuffix); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *Catalog) Load(table string) (*TableSchema, error) {
	st, err := c.opener.Open(SchemaStoreName(table), false)
	if errors.Is(err, kv.ErrStoreNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	s := &TableSchema{Name: table}

	var names []string
	if err := getJSON(st, keyColumnNames, &names); err != nil {
		return nil, err
	}
	for _, n := range names {
		var typ record.ColumnType
		if err := getJSON(st, columnPrefix+n, &typ); err != nil {
			return nil, err
		}
		s.Columns = append(s.Columns, record.Column{Name: n, Type: typ})
	}
	if err := getJSON(st, keyNotNull, &s.NotNull); err != nil {
		return nil, err
	}
	if err := getJSON(st, keyPrimaryKey, &s.PrimaryKey); err != nil {
		return nil, err
	}
	if err := getJSON(st, keyForeignKey, &s.ForeignKeys); err != nil {
		return nil, err
	}
	if err := getJSON(st, keyReferenceCount, &s.ReferenceCount); err != nil {
		return nil, err
	}
	s.finalizeNullability()
	return s, nil
}

// save writes a brand new schema store.
func (c *Catalog) save(s *TableSchema) (err error) {
	st, err := c.opener.Open(SchemaStoreName(s.Name), true)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); err == nil {
			err = cerr
		}
	}()

	for _, col := range s.Columns {
		if err := putJSON(st, columnPrefix+col.Name, col.Type, false); err != nil {
			return err
		}
	}
	meta := []struct {
		key string
		v   any
	}{
		{keyColumnNames, s.ColumnNames()},
		{keyNotNull, nonNil(s.NotNull)},
		{keyPrimaryKey, nonNil(s.PrimaryKey)},
		{keyForeignKey, nonNilFK(s.ForeignKeys)},
		{keyReferenceCount, s.ReferenceCount},
	}
	for _, m := range meta {
		if err := putJSON(st, m.key, m.v, true); err != nil {
			return err
		}
	}
	return nil
}

// adjustReferenceCount adds delta to the reference count of table.
func (c *Catalog) adjustReferenceCount(table string, delta int) (err error) {
	st, err := c.opener.Open(SchemaStoreName(table), false)
	if errors.Is(err, kv.ErrStoreNotFound) {
		return ErrTableNotFound
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); err == nil {
			err = cerr
		}
	}()

	var n int
	if err := getJSON(st, keyReferenceCount, &n); err != nil {
		return err
	}
	n += delta
	if n < 0 {
		return fmt.Errorf("%w: table=%s", ErrNegativeRefCount, table)
	}
	return putJSON(st, keyReferenceCount, n, true)
}

// removeOrphanRows deletes a row store that has no schema, as a drop
// interrupted after its schema store was removed leaves behind.
func (c *Catalog) removeOrphanRows(table string) error {
	ok, err := c.opener.Exists(RowStoreName(table))
	if err != nil || !ok {
		return err
	}
	c.log.Warn("catalog: removing orphan row store", zap.String("table", table))
	return c.opener.Remove(RowStoreName(table))
}

func getJSON(st kv.Store, key string, v any) error {
	b, err := st.Get([]byte(key))
	if errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("%w: missing %q", ErrCorruptSchemaData, key)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptSchemaData, key, err)
	}
	return nil
}

func putJSON(st kv.Store, key string, v any, overwrite bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return st.Put([]byte(key), b, overwrite)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilFK(s []ForeignKey) []ForeignKey {
	if s == nil {
		return []ForeignKey{}
	}
	return s
}
