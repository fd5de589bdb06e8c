package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"inkpost/app/models"
	"inkpost/app/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostController(t *testing.T) {
	ctx := context.Background()

	t.Run("index lists posts", func(t *testing.T) {
		h := newHarness(t)
		h.addPost("First")
		h.addPost("Second")

		w := h.serve(http.MethodGet, "/", nil, 0)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, views.PageIndex, h.view.page)
		assert.Len(t, h.view.data.Posts, 2)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("show post", func(t *testing.T) {
		h := newHarness(t)
		p := h.addPost("Shown")

		w := h.serve(http.MethodGet, "/post/1", nil, 0)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, views.PagePost, h.view.page)
		assert.Equal(t, p.Title, h.view.data.Post.Title)
	})

	t.Run("show missing post is 404", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodGet, "/post/99", nil, 0)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, views.PageError, h.view.page)
		assert.Equal(t, http.StatusNotFound, h.view.data.Status)
	})

	t.Run("create post", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")

		w := h.serve(http.MethodPost, "/new-post", postForm("Hello"), u.ID)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		posts, err := h.store.Posts().List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "Hello", posts[0].Title)
		assert.Equal(t, "Alice", posts[0].Author)
		assert.NotEmpty(t, posts[0].Date)
	})

	t.Run("create with missing fields re-renders form", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")
		form := postForm("")
		form.Set("img_url", "not a url")

		w := h.serve(http.MethodPost, "/new-post", form, u.ID)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, views.PageMakePost, h.view.page)
		assert.Contains(t, h.view.data.Errors, "title")
		assert.Contains(t, h.view.data.Errors, "img_url")
		assert.False(t, h.view.data.Editing)
		count, err := h.store.Posts().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("create with taken title conflicts", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")
		h.addPost("Taken")

		w := h.serve(http.MethodPost, "/new-post", postForm("Taken"), u.ID)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, views.PageMakePost, h.view.page)
		assert.NotEmpty(t, h.view.data.FormError)
		count, err := h.store.Posts().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("create without a user goes to login", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodPost, "/new-post", postForm("Hello"), 0)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("edit form is pre-filled", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")
		h.addPost("Original")

		w := h.serve(http.MethodGet, "/edit-post/1", nil, u.ID)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, views.PageMakePost, h.view.page)
		assert.True(t, h.view.data.Editing)
		assert.Equal(t, "/edit-post/1", h.view.data.Action)
		form, ok := h.view.data.Form.(*models.PostForm)
		require.True(t, ok)
		assert.Equal(t, "Original", form.Title)
		assert.Equal(t, "A", form.Author)
	})

	t.Run("update post", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")
		h.addPost("Original")
		form := postForm("Renamed")
		form.Set("author", "Bob")

		w := h.serve(http.MethodPost, "/edit-post/1", form, u.ID)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/post/1", w.Header().Get("Location"))
		got, err := h.store.Posts().GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "Bob", got.Author)
		assert.Equal(t, "January 02, 2006", got.Date)
	})

	t.Run("update missing post is 404", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")

		w := h.serve(http.MethodPost, "/edit-post/7", postForm("X"), u.ID)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update to a taken title conflicts", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")
		h.addPost("One")
		h.addPost("Two")

		w := h.serve(http.MethodPost, "/edit-post/2", postForm("One"), u.ID)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "/edit-post/2", h.view.data.Action)
		got, err := h.store.Posts().GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Two", got.Title)
	})

	t.Run("delete post", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")
		h.addPost("Doomed")

		w := h.serve(http.MethodGet, "/delete/1", nil, u.ID)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		count, err := h.store.Posts().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete missing post is 404", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")

		w := h.serve(http.MethodGet, "/delete/3", nil, u.ID)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		h := newHarness(t)
		h.store.PostRepo().Err = errors.New("disk on fire")

		w := h.serve(http.MethodGet, "/", nil, 0)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, views.PageError, h.view.page)
		assert.NotContains(t, h.view.data.Message, "disk on fire")
	})

	t.Run("render failure is a plain 500", func(t *testing.T) {
		h := newHarness(t)
		h.view.err = errors.New("broken template")

		w := h.serve(http.MethodGet, "/about", nil, 0)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "broken template")
	})

	t.Run("unknown route is 404", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodGet, "/nope", nil, 0)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, views.PageError, h.view.page)
	})
}
