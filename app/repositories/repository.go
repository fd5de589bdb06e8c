package repositories

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Storage drivers accepted by Open.
const (
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the store for driver. dsn is a directory for badger, a file
// name for sqlite and a connection string for postgres.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverBadger:
		return NewBadgerStore(dsn)
	case DriverSQLite:
		return NewSQLiteStore(dsn)
	case DriverPostgres:
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// BadgerStore keeps posts and users in one badger database.
type BadgerStore struct {
	db    *badger.DB
	posts *BadgerPostRepository
	users *BadgerUserRepository
}

// NewBadgerStore opens the badger database at path. An empty path opens an
// in-memory database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return NewBadgerStoreWithDB(db), nil
}

// NewBadgerStoreWithDB wraps an already opened database.
func NewBadgerStoreWithDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{
		db:    db,
		posts: NewBadgerPostRepository(db),
		users: NewBadgerUserRepository(db),
	}
}

func (s *BadgerStore) Posts() PostRepository { return s.posts }
func (s *BadgerStore) Users() UserRepository { return s.users }

// DB exposes the underlying database for session storage and backups.
func (s *BadgerStore) DB() *badger.DB { return s.db }

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Migrate stamps the schema version and rebuilds any missing unique index
// entries from the records themselves.
func (s *BadgerStore) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return update(s.db, func(txn *badger.Txn) error {
		if err := backfillIndex(txn, PostKeyPrefix, PostTitleIndexPrefix, func(val []byte) (int, string, error) {
			var p models.Post
			err := unmarshalEntity(val, &p)
			return p.ID, p.Title, err
		}); err != nil {
			return err
		}
		if err := backfillIndex(txn, UserKeyPrefix, UserEmailIndexPrefix, func(val []byte) (int, string, error) {
			var u userRecord
			err := unmarshalEntity(val, &u)
			return u.ID, models.NormalizeEmail(u.Email), err
		}); err != nil {
			return err
		}

		version := make([]byte, 8)
		binary.BigEndian.PutUint64(version, schemaVersion)
		return txn.Set([]byte(SchemaVersionKey), version)
	})
}

func backfillIndex(txn *badger.Txn, recordPrefix, idxPrefix string, decode func([]byte) (int, string, error)) error {
	type entry struct {
		id    int
		value string
	}
	var missing []entry

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	prefix := []byte(recordPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var e entry
		err := it.Item().Value(func(val []byte) error {
			var err error
			e.id, e.value, err = decode(val)
			return err
		})
		if err != nil {
			it.Close()
			return err
		}
		if _, err := lookupIndex(txn, indexKey(idxPrefix, e.value)); errors.Is(err, ErrNotFound) {
			missing = append(missing, e)
		}
	}
	it.Close()

	for _, e := range missing {
		if err := setIndex(txn, indexKey(idxPrefix, e.value), e.id); err != nil {
			return err
		}
	}
	return nil
}

// Backup writes a full backup of the database to w.
func (s *BadgerStore) Backup(w io.Writer) error {
	_, err := s.db.Backup(w, 0)
	return err
}

// Restore loads a backup produced by Backup.
func (s *BadgerStore) Restore(r io.Reader) error {
	return s.db.Load(r, 16)
}

// Empty reports whether the database holds any posts or users.
func (s *BadgerStore) Empty() (bool, error) {
	empty := true
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key, PostKeyPrefix) || strings.HasPrefix(key, UserKeyPrefix) {
				empty = false
				return nil
			}
		}
		return nil
	})
	return empty, err
}
