// Package db implements key-value database functionality with prefix feature.
package db

import (
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/polywrap/near-engine/pkg/collection/bytes"
)

var (
	ErrDataNotFound = errors.New("data was not found")
)

func upperBound(b []byte) []byte {
	end := bytes.Copy(b)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // no upper-bound
}

type KeyValue interface {
	Key() []byte
	Value() []byte
}

type keyValue struct {
	key   []byte
	value []byte
}

func (k *keyValue) Key() []byte   { return k.key }
func (k *keyValue) Value() []byte { return k.value }

type DB struct {
	pebbleDB *pebble.DB
}

// NewDB opens or creates the database at path.
func NewDB(path string) (*DB, error) {
	pebbleDB, err := pebble.Open(path, &pebble.Options{
		ErrorIfExists: false,
	})
	if err != nil {
		return nil, err
	}
	return &DB{
		pebbleDB: pebbleDB,
	}, nil
}

// NewInMemoryDB returns database which keeps every file in memory.
func NewInMemoryDB() (*DB, error) {
	pebbleDB, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return &DB{
		pebbleDB: pebbleDB,
	}, nil
}

func (db *DB) Close() error {
	return db.pebbleDB.Close()
}

func (db *DB) Get(key []byte) ([]byte, error) {
	data, closer, err := db.pebbleDB.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrDataNotFound
		}
		return nil, err
	}
	copied := bytes.Copy(data)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return copied, nil
}

func (db *DB) Exist(key []byte) (bool, error) {
	_, err := db.Get(key)
	if errors.Is(err, ErrDataNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (db *DB) Set(key, value []byte) error {
	return db.pebbleDB.Set(key, value, pebble.Sync)
}

func (db *DB) Del(key []byte) error {
	return db.pebbleDB.Delete(key, pebble.Sync)
}

// Iterate returns key-values with the prefix in key order, or reverse order.
// Negative limit returns every match.
func (db *DB) Iterate(prefix []byte, limit int, reverse bool) ([]KeyValue, error) {
	iter := db.pebbleDB.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	return iteratePrefix(iter, limit, reverse)
}

// IterateKey returns keys with the prefix.
func (db *DB) IterateKey(prefix []byte, limit int, reverse bool) ([][]byte, error) {
	kvs, err := db.Iterate(prefix, limit, reverse)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(kvs))
	for i, kv := range kvs {
		keys[i] = kv.Key()
	}
	return keys, nil
}

func (db *DB) NewBatch() *Batch {
	return &Batch{
		inner: db.pebbleDB.NewBatch(),
		mutex: new(sync.Mutex),
	}
}

func (db *DB) Write(batch *Batch) error {
	return db.pebbleDB.Apply(batch.inner, pebble.Sync)
}
