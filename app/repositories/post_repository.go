package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
	// mu serializes writers within the process.
	mu sync.Mutex
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post. The title must not be taken.
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return update(r.db, func(txn *badger.Txn) error {
		titleKey := indexKey(PostTitleIndexPrefix, post.Title)
		if _, err := lookupIndex(txn, titleKey); err == nil {
			return fmt.Errorf("post title %q: %w", post.Title, ErrDuplicateKey)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := setEntity(txn, recordKey(PostKeyPrefix, id), post); err != nil {
			return err
		}
		return setIndex(txn, titleKey, id)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, recordKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByTitle retrieves a post through the title index
func (r *BadgerPostRepository) FindByTitle(ctx context.Context, title string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, indexKey(PostTitleIndexPrefix, title))
		if err != nil {
			return err
		}
		return getEntity(txn, recordKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves all posts in ascending ID order
func (r *BadgerPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update replaces an existing post, moving its title index entry when the
// title changed.
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return update(r.db, func(txn *badger.Txn) error {
		key := recordKey(PostKeyPrefix, post.ID)

		var existing models.Post
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}

		if existing.Title != post.Title {
			titleKey := indexKey(PostTitleIndexPrefix, post.Title)
			owner, err := lookupIndex(txn, titleKey)
			switch {
			case err == nil && owner != post.ID:
				return fmt.Errorf("post title %q: %w", post.Title, ErrDuplicateKey)
			case err != nil && !errors.Is(err, ErrNotFound):
				return err
			}
			if err := txn.Delete(indexKey(PostTitleIndexPrefix, existing.Title)); err != nil {
				return err
			}
			if err := setIndex(txn, titleKey, post.ID); err != nil {
				return err
			}
		}

		return setEntity(txn, key, post)
	})
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return update(r.db, func(txn *badger.Txn) error {
		key := recordKey(PostKeyPrefix, id)

		var existing models.Post
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}
		if err := txn.Delete(indexKey(PostTitleIndexPrefix, existing.Title)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// Count returns the number of stored posts
func (r *BadgerPostRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return countPrefix(r.db, PostKeyPrefix)
}

func countPrefix(db *badger.DB, prefix string) (int, error) {
	var n int
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
