package controllers

import (
	"errors"
	"net/http"

	"inkpost/app/logging"
	"inkpost/app/middleware"
	"inkpost/app/models"
	"inkpost/app/repositories"
	"inkpost/app/services"
	"inkpost/app/sessions"
	"inkpost/app/views"
)

const (
	flashEmailTaken = "You have already signed up with that email. Log in instead."
	flashBadLogin   = "Your email or password is wrong. Please try again."

	// afterLoginPath is the protected page a fresh login lands on.
	afterLoginPath = "/contact"
)

// AuthController handles registration, login and logout
type AuthController struct {
	base
	authService *services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, sm *sessions.Manager, renderer views.Renderer, log *logging.Logger) *AuthController {
	return &AuthController{
		base:        base{views: renderer, sessions: sm, log: log},
		authService: authService,
	}
}

// LoadUser resolves the session's user ID into a user on the request
// context. A session pointing at a user that no longer exists is demoted
// to anonymous.
func (ac *AuthController) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := ac.sessions.UserID(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := ac.authService.User(r.Context(), id)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			ac.log.Debug.Printf("[%s] session user %d no longer exists", middleware.RequestIDFrom(r.Context()), id)
			ac.sessions.Forget(r.Context())
			next.ServeHTTP(w, r)
		case err != nil:
			ac.serverError(w, r, err)
		default:
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		}
	})
}

// RegisterForm displays the registration form
func (ac *AuthController) RegisterForm(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, views.PageRegister, &views.PageData{Title: "Register", Form: &models.RegisterForm{}})
}

// Register handles a registration submission
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ac.badRequest(w, r)
		return
	}
	form := &models.RegisterForm{
		Email:    r.PostForm.Get("email"),
		Username: r.PostForm.Get("name"),
		Password: r.PostForm.Get("password"),
	}

	user, err := ac.authService.Register(r.Context(), form)
	var ve models.ValidationErrors
	switch {
	case errors.As(err, &ve):
		form.Password = ""
		ac.render(w, r, http.StatusUnprocessableEntity, views.PageRegister, &views.PageData{Title: "Register", Form: form, Errors: ve})
		return
	case errors.Is(err, services.ErrEmailTaken):
		ac.sessions.Flash(r.Context(), flashEmailTaken)
		ac.redirect(w, r, "/register")
		return
	case err != nil:
		ac.serverError(w, r, err)
		return
	}
	ac.log.Info.Printf("user %d registered", user.ID)
	ac.redirect(w, r, "/")
}

// LoginForm displays the login form
func (ac *AuthController) LoginForm(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, views.PageLogin, &views.PageData{Title: "Log In", Form: &models.LoginForm{}})
}

// Login checks the submitted credentials and establishes a session
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ac.badRequest(w, r)
		return
	}
	form := &models.LoginForm{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	user, err := ac.authService.Authenticate(r.Context(), form)
	var ve models.ValidationErrors
	switch {
	case errors.As(err, &ve):
		form.Password = ""
		ac.render(w, r, http.StatusUnprocessableEntity, views.PageLogin, &views.PageData{Title: "Log In", Form: form, Errors: ve})
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		ac.sessions.Flash(r.Context(), flashBadLogin)
		ac.redirect(w, r, sessions.LoginPath)
		return
	case err != nil:
		ac.serverError(w, r, err)
		return
	}

	if err := ac.sessions.Login(r.Context(), user.ID); err != nil {
		ac.serverError(w, r, err)
		return
	}
	ac.log.Info.Printf("user %d logged in", user.ID)
	ac.redirect(w, r, afterLoginPath)
}

// Logout ends the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ac.sessions.Logout(r.Context()); err != nil {
		ac.serverError(w, r, err)
		return
	}
	ac.redirect(w, r, "/")
}
