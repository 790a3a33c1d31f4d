// Package routes maps URLs to controllers.
package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"yatube/app/auth"
	"yatube/app/controllers"
	"yatube/app/middleware"
)

// Controllers are the handlers the router dispatches to.
type Controllers struct {
	Base     *controllers.Base
	Feed     *controllers.FeedController
	Posts    *controllers.PostController
	Comments *controllers.CommentController
	Follows  *controllers.FollowController
	Auth     *controllers.AuthController
	Media    *controllers.MediaController
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(c Controllers, authenticator auth.Authenticator, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.StrictSlash(true)

	global := []mux.MiddlewareFunc{
		middleware.Logger(logger),
		middleware.Recoverer(logger),
		middleware.VaryAccept,
		middleware.Authenticate(authenticator, logger),
	}
	router.Use(global...)

	// Unmatched requests skip router middleware, so wrap the handler itself.
	var notFound http.Handler = http.HandlerFunc(c.Base.NotFound)
	for i := len(global) - 1; i >= 0; i-- {
		notFound = global[i](notFound)
	}
	router.NotFoundHandler = notFound

	// Public pages
	router.HandleFunc("/", c.Feed.Index).Methods("GET")
	router.HandleFunc("/group/{slug}/", c.Feed.GroupPosts).Methods("GET")
	router.HandleFunc("/profile/{username}/", c.Feed.Profile).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}/", c.Posts.Show).Methods("GET")
	router.HandleFunc("/auth/login/", c.Auth.Login).Methods("GET")
	router.HandleFunc("/media/{key:.+}", c.Media.Serve).Methods("GET", "HEAD")

	// Pages that need a signed-in author
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.RequireLogin)
	protected.HandleFunc("/create/", c.Posts.New).Methods("GET")
	protected.HandleFunc("/create/", c.Posts.Create).Methods("POST")
	protected.HandleFunc("/posts/{id:[0-9]+}/edit/", c.Posts.EditForm).Methods("GET")
	protected.HandleFunc("/posts/{id:[0-9]+}/edit/", c.Posts.Update).Methods("POST")
	protected.HandleFunc("/posts/{id:[0-9]+}/comment/", c.Comments.Create).Methods("POST")
	protected.HandleFunc("/follow/", c.Feed.FollowIndex).Methods("GET")
	protected.HandleFunc("/profile/{username}/follow/", c.Follows.Follow).Methods("GET")
	protected.HandleFunc("/profile/{username}/unfollow/", c.Follows.Unfollow).Methods("GET")

	return router
}

// NewServer creates the HTTP server for addr with the given router.
func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
