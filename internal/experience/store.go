// Package experience persists search results across games: the best move,
// score and depth found for a position, keyed by its zobrist hash. Probed
// at the search root, it seeds the transposition table with knowledge from
// earlier games.
package experience

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/perch/internal/board"
)

// Entry is one remembered search result.
type Entry struct {
	Move  board.Move
	Score int16
	Depth int8
}

const entrySize = 5

// Store wraps BadgerDB for persistent experience.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the experience database at dir. With inMemory
// the data lives only for the process, useful for tests and for running
// without a writable disk.
func Open(dir string, inMemory bool) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
		opts.Logger = nil
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open experience db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Probe returns the remembered entry for hash, if any.
func (s *Store) Probe(hash uint64) (Entry, bool) {
	var entry Entry
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hashKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			e, err := decodeEntry(val)
			if err != nil {
				return err
			}
			entry = e
			found = true
			return nil
		})
	})
	if err != nil {
		return Entry{}, false
	}
	return entry, found
}

// Record stores entry for hash, keeping the incumbent when it was found
// at greater depth.
func (s *Store) Record(hash uint64, entry Entry) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := hashKey(hash)

		item, err := txn.Get(key)
		if err == nil {
			var keep bool
			verr := item.Value(func(val []byte) error {
				old, derr := decodeEntry(val)
				if derr != nil {
					return derr
				}
				keep = old.Depth > entry.Depth
				return nil
			})
			if verr != nil {
				return verr
			}
			if keep {
				return nil
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, encodeEntry(entry))
	})
}

// Len returns the number of stored positions.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func hashKey(hash uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, hash)
	return key
}

func encodeEntry(e Entry) []byte {
	buf := make([]byte, entrySize)
	binary.BigEndian.PutUint16(buf[0:2], uint16(e.Move))
	binary.BigEndian.PutUint16(buf[2:4], uint16(e.Score))
	buf[4] = uint8(e.Depth)
	return buf
}

func decodeEntry(val []byte) (Entry, error) {
	if len(val) != entrySize {
		return Entry{}, fmt.Errorf("experience entry: want %d bytes, got %d", entrySize, len(val))
	}
	return Entry{
		Move:  board.Move(binary.BigEndian.Uint16(val[0:2])),
		Score: int16(binary.BigEndian.Uint16(val[2:4])),
		Depth: int8(val[4]),
	}, nil
}
