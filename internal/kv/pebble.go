package kv

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// PebbleOpener keeps one pebble database per store, each in its own
// directory under Dir.
type PebbleOpener struct {
	Dir  string
	FS   vfs.FS
	Sync bool
}

// NewPebbleOpener uses the OS filesystem when fs is nil.
func NewPebbleOpener(dir string, fs vfs.FS, sync bool) *PebbleOpener {
	if fs == nil {
		fs = vfs.Default
	}
	return &PebbleOpener{Dir: dir, FS: fs, Sync: sync}
}

func (o *PebbleOpener) path(name string) string {
	return o.FS.PathJoin(o.Dir, name)
}

func (o *PebbleOpener) Exists(name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	fi, err := o.FS.Stat(o.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return fi.IsDir(), nil
}

func (o *PebbleOpener) Open(name string, create bool) (Store, error) {
	ok, err := o.Exists(name)
	if err != nil {
		return nil, err
	}
	if !ok && !create {
		return nil, ErrStoreNotFound
	}
	if err := o.FS.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create data dir: %w", err)
	}

	db, err := pebble.Open(o.path(name), &pebble.Options{FS: o.FS})
	if err != nil {
		return nil, fmt.Errorf("kv: open %s: %w", name, err)
	}

	wo := pebble.NoSync
	if o.Sync {
		wo = pebble.Sync
	}
	return &pebbleStore{db: db, wo: wo}, nil
}

func (o *PebbleOpener) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return o.FS.RemoveAll(o.path(name))
}

func (o *PebbleOpener) List() ([]string, error) {
	if _, err := o.FS.Stat(o.Dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	entries, err := o.FS.List(o.Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		fi, err := o.FS.Stat(o.path(e))
		if err != nil || !fi.IsDir() {
			continue
		}
		out = append(out, e)
	}
	sort.Strings(out)
	return out, nil
}

type pebbleStore struct {
	db *pebble.DB
	wo *pebble.WriteOptions
}

func (s *pebbleStore) Has(key []byte) (bool, error) {
	_, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *pebbleStore) Get(key []byte) ([]byte, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	v, c, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r := make([]byte, len(v))
	copy(r, v)
	_ = c.Close()
	return r, nil
}

func (s *pebbleStore) Put(key, value []byte, overwrite bool) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if !overwrite {
		ok, err := s.Has(key)
		if err != nil {
			return err
		}
		if ok {
			return ErrKeyExists
		}
	}
	return s.db.Set(key, value, s.wo)
}

func (s *pebbleStore) Delete(key []byte) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	return s.db.Delete(key, s.wo)
}

func (s *pebbleStore) DeleteBatch(keys [][]byte) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if len(keys) == 0 {
		return nil
	}
	b := s.db.NewBatch()
	defer func() { _ = b.Close() }()
	for _, k := range keys {
		if err := b.Delete(k, nil); err != nil {
			return err
		}
	}
	return b.Commit(s.wo)
}

func (s *pebbleStore) Cursor() (Cursor, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	return &pebbleCursor{itr: s.db.NewIter(nil)}, nil
}

func (s *pebbleStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// pebbleCursor copies keys and values out of the iterator since pebble
// reuses its buffers on Next.
type pebbleCursor struct {
	itr     *pebble.Iterator
	started bool
	key     []byte
	value   []byte
}

func (c *pebbleCursor) Next() bool {
	var ok bool
	if !c.started {
		c.started = true
		ok = c.itr.First()
	} else {
		ok = c.itr.Next()
	}
	if !ok {
		c.key, c.value = nil, nil
		return false
	}
	c.key = append(c.key[:0:0], c.itr.Key()...)
	c.value = append(c.value[:0:0], c.itr.Value()...)
	return true
}

func (c *pebbleCursor) Key() []byte   { return c.key }
func (c *pebbleCursor) Value() []byte { return c.value }
func (c *pebbleCursor) Err() error    { return c.itr.Error() }
func (c *pebbleCursor) Close() error  { return c.itr.Close() }
