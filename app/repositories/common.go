package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix = "blog_posts:"
	UserKeyPrefix = "new_users:"

	// Unique secondary indexes, value is the owning record ID
	PostTitleIndexPrefix = "idx:blog_posts:title:"
	UserEmailIndexPrefix = "idx:new_users:email:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey = "seq:blog_posts"
	UserSeqKey = "seq:new_users"

	SchemaVersionKey = "meta:schema_version"
	schemaVersion    = 1

	maxTxnRetries = 5
)

// recordKey zero-pads the ID so badger's byte ordering matches ID ordering.
func recordKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefix, id))
}

func indexKey(prefix, value string) []byte {
	return []byte(prefix + value)
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %q", seqKey)
			}
			id = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	id++

	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}
	return int(id), nil
}

// lookupIndex returns the record ID stored under an index key.
func lookupIndex(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, err
}

func setIndex(txn *badger.Txn, key []byte, id int) error {
	return txn.Set(key, []byte(strconv.Itoa(id)))
}

// getEntity loads the record under key into entity.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// update runs fn in a read-write transaction, retrying when badger reports
// a conflict with a concurrent writer.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxTxnRetries; i++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
