package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

var badgerKey = []byte("tasknotes/collection")

// OpenBadger opens an embedded database in dir. An empty dir opens an
// in-memory instance.
func OpenBadger(dir string, logger *log.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithSyncWrites(true)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(logger.WithField("component", "badger"))
	} else {
		opts = opts.WithLogger(nil)
	}
	return badger.Open(opts)
}

// Badger keeps the collection document under one key of an embedded database.
type Badger struct {
	db *badger.DB
}

func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func (b *Badger) Read(_ context.Context) ([]byte, error) {
	var doc []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey)
		if err != nil {
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return doc, err
}

func (b *Badger) Write(_ context.Context, doc []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey, doc)
	})
}
