package mock

import (
	"context"
	"fmt"
	"sync"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// Store is an in-memory repositories.Store for tests.
type Store struct {
	posts *PostRepository
	users *UserRepository
}

func NewStore() *Store {
	return &Store{posts: NewPostRepository(), users: NewUserRepository()}
}

func (s *Store) Posts() repositories.PostRepository { return s.posts }
func (s *Store) Users() repositories.UserRepository { return s.users }
func (s *Store) PostRepo() *PostRepository          { return s.posts }
func (s *Store) UserRepo() *UserRepository          { return s.users }

func (s *Store) Migrate(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                      { return nil }

type PostRepository struct {
	posts  map[int]models.Post
	nextID int
	mutex  sync.RWMutex
	// Err, when set, is returned by every call.
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]models.Post)
	m.nextID = 1
}

func (m *PostRepository) titleOwner(title string) (int, bool) {
	for id, p := range m.posts {
		if p.Title == title {
			return id, true
		}
	}
	return 0, false
}

func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, taken := m.titleOwner(post.Title); taken {
		return fmt.Errorf("post title %q: %w", post.Title, repositories.ErrDuplicateKey)
	}
	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = *post
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) FindByTitle(ctx context.Context, title string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	id, ok := m.titleOwner(title)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	post := m.posts[id]
	return &post, nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if owner, taken := m.titleOwner(post.Title); taken && owner != post.ID {
		return fmt.Errorf("post title %q: %w", post.Title, repositories.ErrDuplicateKey)
	}
	m.posts[post.ID] = *post
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	posts := []*models.Post{}
	for id := 1; id < m.nextID; id++ {
		if post, exists := m.posts[id]; exists {
			posts = append(posts, &post)
		}
	}
	return posts, nil
}

func (m *PostRepository) Count(ctx context.Context) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.posts), nil
}

type UserRepository struct {
	users  map[int]models.User
	nextID int
	mutex  sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]models.User),
		nextID: 1,
	}
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("user email: %w", repositories.ErrDuplicateKey)
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	email = models.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := []*models.User{}
	for id := 1; id < m.nextID; id++ {
		if user, exists := m.users[id]; exists {
			users = append(users, &user)
		}
	}
	return users, nil
}
