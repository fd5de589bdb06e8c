// Package sessions tracks who is signed in. A client holds only an opaque
// random token; the server maps it to a user ID.
package sessions

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

const (
	userIDKey = "authenticatedUserID"
	flashKey  = "flash"

	// LoginPath is where anonymous visitors of gated routes are sent.
	LoginPath = "/login"
)

// Options configure the session cookie and lifetimes.
type Options struct {
	CookieName  string
	Lifetime    time.Duration
	IdleTimeout time.Duration
	Secure      bool
	ErrorLog    *log.Logger
}

// Manager is the session state machine: Anonymous or Authenticated(userID).
type Manager struct {
	sm *scs.SessionManager
}

// New builds a Manager persisting sessions in store.
func New(store scs.Store, opts Options) *Manager {
	sm := scs.New()
	sm.Store = store
	if opts.Lifetime > 0 {
		sm.Lifetime = opts.Lifetime
	}
	sm.IdleTimeout = opts.IdleTimeout
	if opts.CookieName != "" {
		sm.Cookie.Name = opts.CookieName
	}
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = opts.Secure
	if opts.ErrorLog != nil {
		errorLog := opts.ErrorLog
		sm.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			errorLog.Printf("session: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
	return &Manager{sm: sm}
}

// LoadAndSave loads the session of each request and writes it back.
func (m *Manager) LoadAndSave(next http.Handler) http.Handler {
	return m.sm.LoadAndSave(next)
}

// Login moves the session to Authenticated(userID). The token is renewed
// so a token issued before login cannot be reused after it.
func (m *Manager) Login(ctx context.Context, userID int) error {
	if err := m.sm.RenewToken(ctx); err != nil {
		return err
	}
	m.sm.Put(ctx, userIDKey, userID)
	return nil
}

// Logout moves the session back to Anonymous. It does nothing for a
// session that is already anonymous.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.IsAuthenticated(ctx) {
		return nil
	}
	return m.sm.Destroy(ctx)
}

// Forget drops the user from the session without destroying it, used when
// the user record behind a session has gone away.
func (m *Manager) Forget(ctx context.Context) {
	m.sm.Remove(ctx, userIDKey)
}

// UserID returns the authenticated user, if any.
func (m *Manager) UserID(ctx context.Context) (int, bool) {
	id := m.sm.GetInt(ctx, userIDKey)
	return id, id > 0
}

func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.UserID(ctx)
	return ok
}

// Flash stores a one-shot message shown on the next rendered page.
func (m *Manager) Flash(ctx context.Context, msg string) {
	m.sm.Put(ctx, flashKey, msg)
}

// PopFlash returns and clears the pending flash message.
func (m *Manager) PopFlash(ctx context.Context) string {
	return m.sm.PopString(ctx, flashKey)
}

// RequireAuth redirects anonymous requests to the login page before the
// wrapped handler runs.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		if !m.IsAuthenticated(r.Context()) {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
