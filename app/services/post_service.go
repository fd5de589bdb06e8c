package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// ErrTitleTaken is returned when another post already uses the title.
var ErrTitleTaken = errors.New("a post with that title already exists")

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
	now      func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

// SetClock replaces the clock used to date new posts.
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// ListPosts returns every post in store order.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

// GetPost retrieves a post by ID. Absence is reported as
// repositories.ErrNotFound.
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CountPosts returns the number of stored posts.
func (s *PostService) CountPosts(ctx context.Context) (int, error) {
	return s.postRepo.Count(ctx)
}

// CreatePost validates the form and stores a new post dated today and
// attributed to author.
func (s *PostService) CreatePost(ctx context.Context, form *models.PostForm, author string) (*models.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	post := &models.Post{}
	post.Apply(form)
	post.Stamp(author, s.now())
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, postWriteError(err)
	}
	return post, nil
}

// UpdatePost overwrites the editable fields of post id with the form.
func (s *PostService) UpdatePost(ctx context.Context, id int, form *models.PostForm) (*models.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Apply(form)
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, postWriteError(err)
	}
	return post, nil
}

// DeletePost deletes a post by ID
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	return s.postRepo.Delete(ctx, id)
}

func postWriteError(err error) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return fmt.Errorf("%w: %w", ErrTitleTaken, err)
	}
	return err
}
