package repositories

import (
	"context"

	"inkpost/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	FindByTitle(ctx context.Context, title string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Store bundles the repositories of one storage backend.
type Store interface {
	Posts() PostRepository
	Users() UserRepository
	// Migrate creates whatever the backend needs to hold posts and users.
	// It is idempotent and never drops data.
	Migrate(ctx context.Context) error
	Close() error
}
