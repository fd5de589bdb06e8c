package controllers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"inkpost/app/logging"
	"inkpost/app/middleware"
	"inkpost/app/models"
	"inkpost/app/sessions"
	"inkpost/app/views"

	"github.com/gorilla/mux"
)

type contextKey string

const currentUserKey contextKey = "current_user"

// withUser stores the signed-in user on the request context.
func withUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// CurrentUser returns the user loaded by AuthController.LoadUser, or nil.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(currentUserKey).(*models.User)
	return u
}

// base holds what every controller needs to answer a request.
type base struct {
	views    views.Renderer
	sessions *sessions.Manager
	log      *logging.Logger
}

// render writes page with status. The page is rendered into a buffer first
// so a template error never leaves a half written response.
func (b *base) render(w http.ResponseWriter, r *http.Request, status int, page string, data *views.PageData) {
	if data == nil {
		data = &views.PageData{}
	}
	if data.CurrentUser == nil {
		data.CurrentUser = CurrentUser(r.Context())
	}
	if data.Flash == "" {
		data.Flash = b.sessions.PopFlash(r.Context())
	}

	var buf bytes.Buffer
	if err := b.views.Render(&buf, page, data); err != nil {
		b.log.Error.Printf("[%s] render %s: %v", middleware.RequestIDFrom(r.Context()), page, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (b *base) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	b.render(w, r, status, views.PageError, &views.PageData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}

// serverError logs err and answers with a generic 500 page.
func (b *base) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.log.Error.Printf("[%s] %s %s: %v", middleware.RequestIDFrom(r.Context()), r.Method, r.URL.Path, err)
	b.errorPage(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func (b *base) notFound(w http.ResponseWriter, r *http.Request) {
	b.errorPage(w, r, http.StatusNotFound, "The page you asked for does not exist.")
}

func (b *base) badRequest(w http.ResponseWriter, r *http.Request) {
	b.errorPage(w, r, http.StatusBadRequest, "The request could not be understood.")
}

// NotFound answers routes the router does not know.
func (b *base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.notFound(w, r)
}

func (b *base) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// idParam reads the numeric {id} route variable.
func idParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
