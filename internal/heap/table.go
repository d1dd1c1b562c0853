package heap

import (
	"errors"
	"fmt"

	"github.com/tuannm99/mydb/internal/kv"
	"github.com/tuannm99/mydb/internal/record"
)

// RowID identifies a stored row. Rows are keyed by their own encoding, so
// two identical rows share one RowID and are stored once.
type RowID []byte

// Table represent for the row store of one table: name, schema and the kv
// store holding the encoded rows.
type Table struct {
	Name   string
	Schema record.Schema

	// nil when the store was never created; such a table is empty.
	store kv.Store
}

// Open opens the row store called name. With create=false a missing store
// yields an empty, read-only table instead of an error.
func Open(o kv.Opener, name string, schema record.Schema, create bool) (*Table, error) {
	st, err := o.Open(name, create)
	if errors.Is(err, kv.ErrStoreNotFound) && !create {
		return &Table{Name: name, Schema: schema}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("heap: open %s: %w", name, err)
	}
	return &Table{Name: name, Schema: schema, store: st}, nil
}

// Insert encodes values in schema order and stores the row.
func (t *Table) Insert(values []any) (RowID, error) {
	if t.store == nil {
		return nil, fmt.Errorf("heap: %s: %w", t.Name, kv.ErrStoreNotFound)
	}
	key, err := record.EncodeRow(t.Schema, values)
	if err != nil {
		return nil, err
	}
	if err := t.store.Put(key, nil, true); err != nil {
		return nil, err
	}
	return RowID(key), nil
}

// Scan iterates through all rows in the table, each exactly once, in no
// particular order. Returning an error from fn stops the scan.
func (t *Table) Scan(fn func(id RowID, row []any) error) (err error) {
	if t.store == nil {
		return nil
	}
	c, err := t.store.Cursor()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()

	for c.Next() {
		key := c.Key()
		row, err := record.DecodeRow(t.Schema, key)
		if err != nil {
			return fmt.Errorf("heap: %s: decode row: %w", t.Name, err)
		}
		if err := fn(RowID(key), row); err != nil {
			return err
		}
	}
	return c.Err()
}

// Delete removes all ids in one batch.
func (t *Table) Delete(ids []RowID) error {
	if t.store == nil || len(ids) == 0 {
		return nil
	}
	keys := make([][]byte, len(ids))
	for i, id := range ids {
		keys[i] = id
	}
	return t.store.DeleteBatch(keys)
}

func (t *Table) Close() error {
	if t.store == nil {
		return nil
	}
	return t.store.Close()
}
