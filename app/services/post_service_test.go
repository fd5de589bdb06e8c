package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
	"inkpost/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(title string) *models.PostForm {
	return &models.PostForm{
		Title:    title,
		Subtitle: "S1",
		Body:     "B1",
		ImgURL:   "http://x/1.png",
	}
}

func TestPostService(t *testing.T) {
	ctx := context.Background()
	postRepo := mock.NewPostRepository()
	service := NewPostService(postRepo)
	service.SetClock(func() time.Time { return time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC) })

	t.Run("create post", func(t *testing.T) {
		post, err := service.CreatePost(ctx, postForm("T1"), "A")
		require.NoError(t, err)
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, "A", post.Author)
		assert.Equal(t, "March 05, 2024", post.Date)
	})

	t.Run("get post", func(t *testing.T) {
		post, err := service.GetPost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "T1", post.Title)
		assert.Equal(t, "B1", post.Body)
	})

	t.Run("duplicate title", func(t *testing.T) {
		_, err := service.CreatePost(ctx, postForm("T1"), "B")
		assert.ErrorIs(t, err, ErrTitleTaken)
		assert.ErrorIs(t, err, repositories.ErrDuplicateKey)

		n, err := service.CountPosts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("update post", func(t *testing.T) {
		other, err := service.CreatePost(ctx, postForm("T2"), "A")
		require.NoError(t, err)

		form := postForm("T1 edited")
		form.Body = "B1 edited"
		updated, err := service.UpdatePost(ctx, 1, form)
		require.NoError(t, err)
		assert.Equal(t, "March 05, 2024", updated.Date)
		assert.Equal(t, "A", updated.Author)

		got, err := service.GetPost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "T1 edited", got.Title)
		assert.Equal(t, "B1 edited", got.Body)

		untouched, err := service.GetPost(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, other, untouched)
	})

	t.Run("update to a taken title", func(t *testing.T) {
		_, err := service.UpdatePost(ctx, 1, postForm("T2"))
		assert.ErrorIs(t, err, ErrTitleTaken)

		got, err := service.GetPost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "T1 edited", got.Title)
	})

	t.Run("update missing post", func(t *testing.T) {
		_, err := service.UpdatePost(ctx, 99, postForm("Nope"))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("delete post", func(t *testing.T) {
		before, err := service.CountPosts(ctx)
		require.NoError(t, err)

		require.NoError(t, service.DeletePost(ctx, 1))

		_, err = service.GetPost(ctx, 1)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		after, err := service.CountPosts(ctx)
		require.NoError(t, err)
		assert.Equal(t, before-1, after)

		assert.ErrorIs(t, service.DeletePost(ctx, 1), repositories.ErrNotFound)
	})

	t.Run("list posts", func(t *testing.T) {
		posts, err := service.ListPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "T2", posts[0].Title)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name  string
			form  *models.PostForm
			field string
		}{
			{name: "empty title", form: &models.PostForm{Subtitle: "s", Body: "b", ImgURL: "http://x/1.png"}, field: "title"},
			{name: "empty body", form: &models.PostForm{Title: "t", Subtitle: "s", ImgURL: "http://x/1.png"}, field: "body"},
			{name: "bad url", form: &models.PostForm{Title: "t", Subtitle: "s", Body: "b", ImgURL: "nope"}, field: "img_url"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := service.CreatePost(ctx, tt.form, "A")
				var ve models.ValidationErrors
				require.True(t, errors.As(err, &ve))
				assert.Contains(t, ve, tt.field)
			})
		}
	})
}
