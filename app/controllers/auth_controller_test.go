package controllers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"inkpost/app/models"
	"inkpost/app/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerForm(email, name, password string) url.Values {
	return url.Values{"email": {email}, "name": {name}, "password": {password}}
}

func loginForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestAuthController(t *testing.T) {
	ctx := context.Background()

	t.Run("register stores the user", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodPost, "/register", registerForm("A@X.com", "Alice", "pw1"), 0)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		u, err := h.store.Users().FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice", u.Username)
		assert.NotEqual(t, "pw1", u.Password)
	})

	t.Run("register with a taken email flashes and redirects", func(t *testing.T) {
		h := newHarness(t)
		h.addUser("a@x.com", "Alice")

		w := h.serve(http.MethodPost, "/register", registerForm("a@x.com", "Other", "pw2"), 0)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/register", w.Header().Get("Location"))
		users, err := h.store.Users().List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		cookie := sessionCookie(w)
		require.NotNil(t, cookie)
		h.serve(http.MethodGet, "/register", nil, 0, cookie)
		assert.Equal(t, views.PageRegister, h.view.page)
		assert.Equal(t, flashEmailTaken, h.view.data.Flash)
	})

	t.Run("register with invalid input re-renders", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodPost, "/register", registerForm("nope", "", "pw"), 0)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, views.PageRegister, h.view.page)
		assert.Contains(t, h.view.data.Errors, "email")
		assert.Contains(t, h.view.data.Errors, "name")
		form, ok := h.view.data.Form.(*models.RegisterForm)
		require.True(t, ok)
		assert.Empty(t, form.Password)
	})

	t.Run("login with good credentials", func(t *testing.T) {
		h := newHarness(t)
		h.serve(http.MethodPost, "/register", registerForm("a@x.com", "Alice", "pw1"), 0)

		w := h.serve(http.MethodPost, "/login", loginForm("a@x.com", "pw1"), 0)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/contact", w.Header().Get("Location"))
		cookie := sessionCookie(w)
		require.NotNil(t, cookie)

		h.serve(http.MethodGet, "/about", nil, 0, cookie)
		require.NotNil(t, h.view.data.CurrentUser)
		assert.Equal(t, "Alice", h.view.data.CurrentUser.Username)
	})

	t.Run("login with a wrong password", func(t *testing.T) {
		h := newHarness(t)
		h.serve(http.MethodPost, "/register", registerForm("a@x.com", "Alice", "pw1"), 0)

		w := h.serve(http.MethodPost, "/login", loginForm("a@x.com", "wrong"), 0)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		cookie := sessionCookie(w)
		require.NotNil(t, cookie)
		h.serve(http.MethodGet, "/login", nil, 0, cookie)
		assert.Equal(t, flashBadLogin, h.view.data.Flash)
		assert.Nil(t, h.view.data.CurrentUser)
	})

	t.Run("login with an unknown email looks the same", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodPost, "/login", loginForm("ghost@x.com", "pw1"), 0)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("login with a blank form re-renders", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodPost, "/login", loginForm("", ""), 0)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, views.PageLogin, h.view.page)
	})

	t.Run("logout always redirects home", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")

		w := h.serve(http.MethodGet, "/logout", nil, u.ID)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		w = h.serve(http.MethodGet, "/logout", nil, 0)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("session of a vanished user is anonymous", func(t *testing.T) {
		h := newHarness(t)

		w := h.serve(http.MethodGet, "/about", nil, 42)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, h.view.data.CurrentUser)
		assert.Contains(t, h.logs.String(), "session user 42 no longer exists")
	})

	t.Run("signed in user is passed to pages", func(t *testing.T) {
		h := newHarness(t)
		u := h.addUser("a@x.com", "Alice")

		w := h.serve(http.MethodGet, "/contact", nil, u.ID)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, views.PageContact, h.view.page)
		require.NotNil(t, h.view.data.CurrentUser)
		assert.Equal(t, u.ID, h.view.data.CurrentUser.ID)
	})
}
