// Package history keeps recently decoded transactions in a key-value store.
//
// Records are keyed by transaction hash and indexed by a ULID assigned on insert,
// so the most recent transactions can be listed in order. When the store holds more
// than its capacity the oldest records are pruned.
package history

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"

	"github.com/polywrap/near-engine/pkg/codec"
	"github.com/polywrap/near-engine/pkg/collection/bytes"
	"github.com/polywrap/near-engine/pkg/crypto"
	"github.com/polywrap/near-engine/pkg/db"
	"github.com/polywrap/near-engine/pkg/near"
)

var (
	prefixRecord = []byte{0}
	prefixIndex  = []byte{1}

	ErrNotFound = errors.New("transaction is not in history")
)

// Record is a stored transaction.
type Record struct {
	ID          string            `json:"id"`
	Hash        near.CryptoHash   `json:"hash"`
	DecodedAt   time.Time         `json:"decodedAt"`
	Transaction *near.Transaction `json:"transaction"`
}

type Store struct {
	mutex    sync.Mutex
	database *db.DB
	capacity int
	size     int
	entropy  io.Reader
	now      func() time.Time
	write    func(*db.Batch) error
}

// NewStore returns store backed by database holding at most capacity records.
func NewStore(database *db.DB, capacity int) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("history capacity must be positive but received %d", capacity)
	}
	keys, err := database.IterateKey(prefixIndex, -1, false)
	if err != nil {
		return nil, err
	}
	return &Store{
		database: database,
		capacity: capacity,
		size:     len(keys),
		entropy:  ulid.Monotonic(rand.Reader, 0),
		now:      time.Now,
		write:    database.Write,
	}, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.size
}

// Put stores the transaction. Storing a transaction with a known hash returns the existing record.
func (s *Store) Put(tx *near.Transaction) (*Record, error) {
	encoded, err := tx.Encode()
	if err != nil {
		return nil, err
	}
	var hash near.CryptoHash
	copy(hash[:], crypto.Hash(encoded))

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if existing, err := s.get(hash); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return nil, err
	}
	writer := codec.NewWriter()
	writer.WriteFixedBytes(id[:])
	writer.WriteBytes(encoded)
	if err := writer.Err(); err != nil {
		return nil, err
	}

	batch := s.database.NewBatch()
	if err := batch.Set(bytes.Join(prefixRecord, hash[:]), writer.Result()); err != nil {
		return nil, err
	}
	if err := batch.Set(bytes.Join(prefixIndex, id[:]), hash[:]); err != nil {
		return nil, err
	}
	pruned := 0
	if overflow := s.size + 1 - s.capacity; overflow > 0 {
		oldest, err := s.database.Iterate(prefixIndex, overflow, false)
		if err != nil {
			return nil, err
		}
		for _, kv := range oldest {
			if err := batch.Del(kv.Key()); err != nil {
				return nil, err
			}
			if err := batch.Del(bytes.Join(prefixRecord, kv.Value())); err != nil {
				return nil, err
			}
		}
		pruned = len(oldest)
	}
	if err := s.write(batch); err != nil {
		return nil, err
	}
	s.size += 1 - pruned
	return &Record{
		ID:          id.String(),
		Hash:        hash,
		DecodedAt:   ulid.Time(id.Time()),
		Transaction: tx,
	}, nil
}

// Get returns the record of the transaction hash.
func (s *Store) Get(hash near.CryptoHash) (*Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.get(hash)
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]*Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	kvs, err := s.database.Iterate(prefixIndex, limit, true)
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(kvs))
	for _, kv := range kvs {
		var hash near.CryptoHash
		copy(hash[:], kv.Value())
		record, err := s.get(hash)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) get(hash near.CryptoHash) (*Record, error) {
	value, err := s.database.Get(bytes.Join(prefixRecord, hash[:]))
	if err != nil {
		if errors.Is(err, db.ErrDataNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return nil, err
	}
	reader := codec.NewReader(value)
	idBytes, err := reader.ReadFixedBytes(len(ulid.ULID{}))
	if err != nil {
		return nil, fmt.Errorf("corrupted history record %s: %w", hash, err)
	}
	encoded, err := reader.ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("corrupted history record %s: %w", hash, err)
	}
	tx, err := near.DecodeTransaction(encoded)
	if err != nil {
		return nil, fmt.Errorf("corrupted history record %s: %w", hash, err)
	}
	var id ulid.ULID
	copy(id[:], idBytes)
	return &Record{
		ID:          id.String(),
		Hash:        hash,
		DecodedAt:   ulid.Time(id.Time()),
		Transaction: tx,
	}, nil
}
