package routes

import (
	"net/http"

	"inkpost/app/controllers"
	"inkpost/app/logging"
	"inkpost/app/middleware"
	"inkpost/app/repositories"
	"inkpost/app/services"
	"inkpost/app/sessions"
	"inkpost/app/views"

	"github.com/gorilla/mux"
)

// Dependencies are the long-lived collaborators the router is built from.
type Dependencies struct {
	Store    repositories.Store
	Sessions *sessions.Manager
	Views    views.Renderer
	Hasher   services.PasswordHasher
	Log      *logging.Logger
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	postService := services.NewPostService(deps.Store.Posts())
	authService := services.NewAuthService(deps.Store.Users(), deps.Hasher)

	postController := controllers.NewPostController(postService, deps.Sessions, deps.Views, deps.Log)
	authController := controllers.NewAuthController(authService, deps.Sessions, deps.Views, deps.Log)
	pageController := controllers.NewPageController(deps.Sessions, deps.Views, deps.Log)

	// Global middleware. The not-found handler is wrapped by hand since
	// mux only runs middleware on matched routes.
	global := func(next http.Handler) http.Handler {
		next = authController.LoadUser(next)
		next = deps.Sessions.LoadAndSave(next)
		next = middleware.Recoverer(deps.Log.Error)(next)
		next = middleware.Logger(deps.Log.Info)(next)
		return middleware.RequestID(next)
	}

	router := mux.NewRouter()
	router.Use(global)
	router.NotFoundHandler = global(http.HandlerFunc(postController.NotFound))

	// Public pages
	router.HandleFunc("/post/{id:[0-9]+}", postController.Show).Methods(http.MethodGet)
	router.HandleFunc("/about", pageController.About).Methods(http.MethodGet)
	router.HandleFunc("/register", authController.RegisterForm).Methods(http.MethodGet)
	router.HandleFunc("/register", authController.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", authController.LoginForm).Methods(http.MethodGet)
	router.HandleFunc("/login", authController.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", authController.Logout).Methods(http.MethodGet)

	// Signed-in only
	private := router.NewRoute().Subrouter()
	private.Use(deps.Sessions.RequireAuth)
	private.HandleFunc("/", postController.Index).Methods(http.MethodGet)
	private.HandleFunc("/contact", pageController.Contact).Methods(http.MethodGet)
	private.HandleFunc("/new-post", postController.New).Methods(http.MethodGet)
	private.HandleFunc("/new-post", postController.Create).Methods(http.MethodPost)
	private.HandleFunc("/edit-post/{id:[0-9]+}", postController.Edit).Methods(http.MethodGet)
	private.HandleFunc("/edit-post/{id:[0-9]+}", postController.Update).Methods(http.MethodPost)
	private.HandleFunc("/delete/{id:[0-9]+}", postController.Delete).Methods(http.MethodGet)

	return router
}
