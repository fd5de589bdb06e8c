package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// userRecord is the stored form of a user. models.User hides the password
// hash from JSON so it has its own encoding here.
type userRecord struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func toUserRecord(u *models.User) *userRecord {
	return &userRecord{ID: u.ID, Email: u.Email, Username: u.Username, Password: u.Password}
}

func (rec *userRecord) user() *models.User {
	return &models.User{ID: rec.ID, Email: rec.Email, Username: rec.Username, Password: rec.Password}
}

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
	// mu serializes writers within the process.
	mu sync.Mutex
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user. The email index is checked in the same
// transaction, so two concurrent registrations cannot both succeed.
func (r *BadgerUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user.Email = models.NormalizeEmail(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	return update(r.db, func(txn *badger.Txn) error {
		emailKey := indexKey(UserEmailIndexPrefix, user.Email)
		if _, err := lookupIndex(txn, emailKey); err == nil {
			return fmt.Errorf("user email: %w", ErrDuplicateKey)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		if err := setEntity(txn, recordKey(UserKeyPrefix, id), toUserRecord(user)); err != nil {
			return err
		}
		return setIndex(txn, emailKey, id)
	})
}

func (r *BadgerUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, recordKey(UserKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

func (r *BadgerUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, indexKey(UserEmailIndexPrefix, models.NormalizeEmail(email)))
		if err != nil {
			return err
		}
		return getEntity(txn, recordKey(UserKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

func (r *BadgerUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users := []*models.User{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(UserKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec userRecord
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &rec)
			}); err != nil {
				return err
			}
			users = append(users, rec.user())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
