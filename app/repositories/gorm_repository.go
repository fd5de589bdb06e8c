package repositories

import (
	"context"
	"errors"
	"fmt"

	"inkpost/app/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pgUniqueViolation is the SQLSTATE postgres reports for unique index clashes.
const pgUniqueViolation = "23505"

// GormStore keeps posts and users in the relational tables blog_posts and
// new_users.
type GormStore struct {
	db    *gorm.DB
	posts *GormPostRepository
	users *GormUserRepository
}

// NewSQLiteStore opens (creating if needed) the sqlite database file dsn.
func NewSQLiteStore(dsn string) (*GormStore, error) {
	s, err := newGormStore(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time; serialize through one connection.
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return s, nil
}

// NewPostgresStore connects to postgres through the pgx driver.
func NewPostgresStore(dsn string) (*GormStore, error) {
	return newGormStore(postgres.Open(dsn))
}

func newGormStore(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	return &GormStore{
		db:    db,
		posts: &GormPostRepository{db: db},
		users: &GormUserRepository{db: db},
	}, nil
}

func (s *GormStore) Posts() PostRepository { return s.posts }
func (s *GormStore) Users() UserRepository { return s.users }

// Migrate creates the tables and unique indexes when they do not exist yet.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.Post{}, &models.User{})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormError maps driver errors onto the repository sentinels.
func gormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.ConstraintName)
	}
	return err
}

// GormPostRepository implements PostRepository on gorm
type GormPostRepository struct {
	db *gorm.DB
}

func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	return gormError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Post{}).Where("title = ?", post.Title).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("post title %q: %w", post.Title, ErrDuplicateKey)
		}
		post.ID = 0
		return tx.Create(post).Error
	}))
}

func (r *GormPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, gormError(err)
	}
	return &post, nil
}

func (r *GormPostRepository) FindByTitle(ctx context.Context, title string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&post).Error; err != nil {
		return nil, gormError(err)
	}
	return &post, nil
}

func (r *GormPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := r.db.WithContext(ctx).Order("id asc").Find(&posts).Error; err != nil {
		return nil, gormError(err)
	}
	return posts, nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *models.Post) error {
	return gormError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		if err := tx.First(&existing, post.ID).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Post{}).
			Where("title = ? AND id <> ?", post.Title, post.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("post title %q: %w", post.Title, ErrDuplicateKey)
		}
		return tx.Save(post).Error
	}))
}

func (r *GormPostRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return gormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormPostRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, gormError(err)
	}
	return int(n), nil
}

// GormUserRepository implements UserRepository on gorm
type GormUserRepository struct {
	db *gorm.DB
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	return gormError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("user email: %w", ErrDuplicateKey)
		}
		user.ID = 0
		return tx.Create(user).Error
	}))
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, gormError(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, gormError(err)
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, gormError(err)
	}
	return users, nil
}
