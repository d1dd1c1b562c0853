// Package kv is the durable map service the catalog and the row stores sit on.
// A Store is one named, independently opened key-value map. Callers must not
// rely on cursor ordering beyond "every entry is visited exactly once".
package kv

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("kv: key not found")
	ErrKeyExists     = errors.New("kv: key already exists")
	ErrStoreNotFound = errors.New("kv: store does not exist")
	ErrStoreClosed   = errors.New("kv: store is closed")
	ErrBadStoreName  = errors.New("kv: invalid store name")
)

type Store interface {
	Has(key []byte) (bool, error)
	// Get returns ErrNotFound when the key is absent.
	Get(key []byte) ([]byte, error)
	// Put with overwrite=false fails with ErrKeyExists on an existing key.
	Put(key, value []byte, overwrite bool) error
	Delete(key []byte) error
	// DeleteBatch removes all keys in one atomic write.
	DeleteBatch(keys [][]byte) error
	Cursor() (Cursor, error)
	Close() error
}

type Cursor interface {
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// Opener manages named stores inside one data directory.
type Opener interface {
	// Open returns ErrStoreNotFound when the store is missing and create is false.
	Open(name string, create bool) (Store, error)
	Exists(name string) (bool, error)
	// Remove deletes the store and its data; removing a missing store is a no-op.
	Remove(name string) error
	List() ([]string, error)
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return ErrBadStoreName
	}
	return nil
}
