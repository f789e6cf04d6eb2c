// Package badgerstore keeps checkpoints in an embedded BadgerDB.
package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/kafka"
)

var _ checkpoint.Store = (*Store)(nil)

type Store struct {
	db     *badger.DB
	prefix []byte
	owned  bool
}

type Option func(*Store)

// WithPrefix namespaces every key written by the store.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = []byte(prefix)
	}
}

// Open opens (or creates) a database in dir. Close closes it.
func Open(dir string, opts ...Option) (*Store, error) {
	return open(badger.DefaultOptions(dir).WithLogger(nil), opts...)
}

// OpenInMemory opens a database that lives only as long as the store.
func OpenInMemory(opts ...Option) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil), opts...)
}

func open(bo badger.Options, opts ...Option) (*Store, error) {
	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := New(db, opts...)
	s.owned = true
	return s, nil
}

// New uses an already opened database. Close leaves it open.
func New(db *badger.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(key string) []byte {
	return append(append([]byte{}, s.prefix...), key...)
}

func (s *Store) Get(_ context.Context, key string) (kafka.OffsetTable, bool, error) {
	var data []byte
	err := s.db.View(
		func(txn *badger.Txn) error {
			item, err := txn.Get(s.key(key))
			if err != nil {
				return err
			}
			data, err = item.ValueCopy(nil)
			return err
		},
	)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get checkpoint %s: %w", key, err)
	}

	table, err := checkpoint.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("get checkpoint %s: %w", key, err)
	}
	return table, true, nil
}

func (s *Store) Put(_ context.Context, key string, table kafka.OffsetTable) error {
	data, err := checkpoint.Encode(table)
	if err != nil {
		return fmt.Errorf("put checkpoint %s: %w", key, err)
	}

	err = s.db.Update(
		func(txn *badger.Txn) error {
			return txn.Set(s.key(key), data)
		},
	)
	if err != nil {
		return fmt.Errorf("put checkpoint %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying database.
func (s *Store) DB() *badger.DB {
	return s.db
}
