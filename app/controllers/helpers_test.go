package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"inkpost/app/logging"
	"inkpost/app/models"
	"inkpost/app/repositories/mock"
	"inkpost/app/services"
	"inkpost/app/sessions"
	"inkpost/app/views"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testUserHeader makes the test router sign the request in as that user ID.
const testUserHeader = "X-Test-User"

// recordingRenderer remembers the last page it was asked to render.
type recordingRenderer struct {
	page string
	data *views.PageData
	err  error
}

func (r *recordingRenderer) Render(w io.Writer, page string, data *views.PageData) error {
	if r.err != nil {
		return r.err
	}
	r.page = page
	r.data = data
	_, err := fmt.Fprintf(w, "%s|%s|%s", page, data.Title, data.Flash)
	return err
}

type harness struct {
	t        *testing.T
	store    *mock.Store
	sessions *sessions.Manager
	view     *recordingRenderer
	auth     *services.AuthService
	postSvc  *services.PostService
	router   *mux.Router
	logs     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:        t,
		store:    mock.NewStore(),
		sessions: sessions.New(memstore.New(), sessions.Options{}),
		view:     &recordingRenderer{},
		logs:     &bytes.Buffer{},
	}
	h.auth = services.NewAuthService(h.store.Users(), services.NewBcryptHasher(bcrypt.MinCost))
	h.postSvc = services.NewPostService(h.store.Posts())

	log := logging.New(h.logs, "debug")
	pc := NewPostController(h.postSvc, h.sessions, h.view, log)
	ac := NewAuthController(h.auth, h.sessions, h.view, log)
	pages := NewPageController(h.sessions, h.view, log)

	r := mux.NewRouter()
	r.HandleFunc("/", pc.Index).Methods(http.MethodGet)
	r.HandleFunc("/post/{id:[0-9]+}", pc.Show).Methods(http.MethodGet)
	r.HandleFunc("/new-post", pc.New).Methods(http.MethodGet)
	r.HandleFunc("/new-post", pc.Create).Methods(http.MethodPost)
	r.HandleFunc("/edit-post/{id:[0-9]+}", pc.Edit).Methods(http.MethodGet)
	r.HandleFunc("/edit-post/{id:[0-9]+}", pc.Update).Methods(http.MethodPost)
	r.HandleFunc("/delete/{id:[0-9]+}", pc.Delete).Methods(http.MethodGet)
	r.HandleFunc("/register", ac.RegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", ac.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", ac.LoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", ac.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", ac.Logout).Methods(http.MethodGet)
	r.HandleFunc("/about", pages.About).Methods(http.MethodGet)
	r.HandleFunc("/contact", pages.Contact).Methods(http.MethodGet)
	r.NotFoundHandler = h.sessions.LoadAndSave(http.HandlerFunc(pc.NotFound))
	r.Use(h.sessions.LoadAndSave, h.signIn, ac.LoadUser)
	h.router = r
	return h
}

func (h *harness) signIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.Header.Get(testUserHeader); v != "" {
			id, err := strconv.Atoi(v)
			require.NoError(h.t, err)
			require.NoError(h.t, h.sessions.Login(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// addUser stores a user directly and returns it.
func (h *harness) addUser(email, name string) *models.User {
	u := &models.User{Email: email, Username: name, Password: "unused"}
	require.NoError(h.t, h.store.Users().Create(context.Background(), u))
	return u
}

// addPost stores a post directly and returns it.
func (h *harness) addPost(title string) *models.Post {
	p := &models.Post{
		Title:    title,
		Subtitle: "sub",
		Author:   "A",
		Date:     "January 02, 2006",
		Body:     "body",
		ImgURL:   "http://example.com/a.png",
	}
	require.NoError(h.t, h.store.Posts().Create(context.Background(), p))
	return p
}

// serve runs one request. user is the signed-in user ID, zero for anonymous.
func (h *harness) serve(method, path string, form url.Values, user int, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if user > 0 {
		req.Header.Set(testUserHeader, strconv.Itoa(user))
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.view.page, h.view.data = "", nil
	h.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func postForm(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"A subtitle"},
		"img_url":  {"https://example.com/img.png"},
		"body":     {"Some body text"},
	}
}
