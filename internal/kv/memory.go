package kv

import (
	"bytes"
	"sort"

	"github.com/google/btree"
)

const memDegree = 16

type memItem struct {
	key   []byte
	value []byte
}

func (a memItem) Less(than btree.Item) bool {
	return bytes.Compare(a.key, than.(memItem).key) < 0
}

// MemOpener keeps every store in memory. Data survives Close/Open of a
// store for the lifetime of the opener, which is what tests and the
// "memory" storage mode need.
type MemOpener struct {
	trees map[string]*btree.BTree
}

func NewMemOpener() *MemOpener {
	return &MemOpener{trees: make(map[string]*btree.BTree)}
}

func (o *MemOpener) Open(name string, create bool) (Store, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	t, ok := o.trees[name]
	if !ok {
		if !create {
			return nil, ErrStoreNotFound
		}
		t = btree.New(memDegree)
		o.trees[name] = t
	}
	return &memStore{tree: t}, nil
}

func (o *MemOpener) Exists(name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	_, ok := o.trees[name]
	return ok, nil
}

func (o *MemOpener) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	delete(o.trees, name)
	return nil
}

func (o *MemOpener) List() ([]string, error) {
	out := make([]string, 0, len(o.trees))
	for name := range o.trees {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

type memStore struct {
	tree *btree.BTree
}

func (s *memStore) Has(key []byte) (bool, error) {
	if s.tree == nil {
		return false, ErrStoreClosed
	}
	return s.tree.Has(memItem{key: key}), nil
}

func (s *memStore) Get(key []byte) ([]byte, error) {
	if s.tree == nil {
		return nil, ErrStoreClosed
	}
	it := s.tree.Get(memItem{key: key})
	if it == nil {
		return nil, ErrNotFound
	}
	v := it.(memItem).value
	r := make([]byte, len(v))
	copy(r, v)
	return r, nil
}

func (s *memStore) Put(key, value []byte, overwrite bool) error {
	if s.tree == nil {
		return ErrStoreClosed
	}
	if !overwrite && s.tree.Has(memItem{key: key}) {
		return ErrKeyExists
	}
	s.tree.ReplaceOrInsert(memItem{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
	return nil
}

func (s *memStore) Delete(key []byte) error {
	if s.tree == nil {
		return ErrStoreClosed
	}
	s.tree.Delete(memItem{key: key})
	return nil
}

func (s *memStore) DeleteBatch(keys [][]byte) error {
	if s.tree == nil {
		return ErrStoreClosed
	}
	for _, k := range keys {
		s.tree.Delete(memItem{key: k})
	}
	return nil
}

// Cursor snapshots the items so the store may be modified while iterating.
func (s *memStore) Cursor() (Cursor, error) {
	if s.tree == nil {
		return nil, ErrStoreClosed
	}
	items := make([]memItem, 0, s.tree.Len())
	s.tree.Ascend(func(i btree.Item) bool {
		items = append(items, i.(memItem))
		return true
	})
	return &memCursor{items: items, pos: -1}, nil
}

func (s *memStore) Close() error {
	s.tree = nil
	return nil
}

type memCursor struct {
	items []memItem
	pos   int
}

func (c *memCursor) Next() bool {
	if c.pos+1 >= len(c.items) {
		c.pos = len(c.items)
		return false
	}
	c.pos++
	return true
}

func (c *memCursor) Key() []byte {
	if c.pos < 0 || c.pos >= len(c.items) {
		return nil
	}
	return c.items[c.pos].key
}

func (c *memCursor) Value() []byte {
	if c.pos < 0 || c.pos >= len(c.items) {
		return nil
	}
	return c.items[c.pos].value
}

func (c *memCursor) Err() error   { return nil }
func (c *memCursor) Close() error { return nil }
