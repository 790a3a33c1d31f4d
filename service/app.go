// Package service wires configuration, storage and HTTP handlers into the
// yatube application and exposes it through the command line.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"

	"yatube/app/auth"
	"yatube/app/blobs"
	"yatube/app/clock"
	"yatube/app/config"
	"yatube/app/controllers"
	"yatube/app/logging"
	"yatube/app/repositories"
	"yatube/app/routes"
	"yatube/app/services"
	"yatube/app/views"
)

// shutdownTimeout bounds how long in-flight requests may run after Serve's
// context is cancelled.
const shutdownTimeout = 10 * time.Second

// App is the application layer between the CLI and the services.
// It constructs all dependencies from config and releases them on Close.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
	repos   *repositories.Repositories
	badger  *badger.DB
	images  blobs.Store
	closers []func()

	Follows  *services.FollowService
	Feed     *services.FeedService
	Posts    *services.PostService
	Comments *services.CommentService
	Admin    *services.AdminService
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	if cfg.LogDir != "" {
		logger, f, err := logging.New(cfg.LogDir, slog.LevelInfo)
		if err != nil {
			return nil, err
		}
		a.logger, a.logFile = logger, f
	} else {
		a.logger = slog.New(logging.NewHandler(os.Stderr, slog.LevelInfo))
	}

	repos, db, err := openStorage(cfg.Storage)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	a.repos, a.badger = repos, db

	images, err := blobs.NewStoreFromConfig(ctx, cfg.Images)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating image store: %w", err)
	}
	a.images = images

	clk := clock.Real{}
	pageCache, closeCache, err := newPageCache(cfg.Cache, clk)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	if closeCache != nil {
		a.closers = append(a.closers, closeCache)
	}

	a.Follows = services.NewFollowService(repos.Authors, repos.Follows, clk, a.logger)
	a.Feed = services.NewFeedService(repos, a.Follows, pageCache, services.FeedOptions{
		PerPage:  cfg.Feed.PerPage,
		CacheTTL: cfg.Cache.TTL.Duration,
	}, a.logger)
	a.Posts = services.NewPostService(repos, images, clk, a.logger)
	a.Comments = services.NewCommentService(repos, clk, a.logger)
	a.Admin = services.NewAdminService(repos, clk, a.logger)

	a.logger.DebugContext(ctx, "app ready", "storage", cfg.Storage.Type, "images", cfg.Images.Type, "cache", cfg.Cache.Type)
	return a, nil
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Router builds the HTTP handler tree.
func (a *App) Router() (*mux.Router, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	base := controllers.NewBase(renderer, a.logger)
	return routes.SetupRoutes(routes.Controllers{
		Base:     base,
		Feed:     controllers.NewFeedController(base, a.Feed),
		Posts:    controllers.NewPostController(base, a.Posts, a.Admin),
		Comments: controllers.NewCommentController(base, a.Comments),
		Follows:  controllers.NewFollowController(base, a.Follows),
		Auth:     controllers.NewAuthController(base),
		Media:    controllers.NewMediaController(base, a.images),
	}, auth.NewBasicAuthenticator(a.repos.Authors), a.logger), nil
}

// Serve listens on the configured address until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener serves HTTP on ln until ctx is cancelled, then shuts down
// gracefully.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	router, err := a.Router()
	if err != nil {
		ln.Close()
		return err
	}
	srv := routes.NewServer(ln.Addr().String(), router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.InfoContext(ctx, "listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Backup writes a full Badger backup to w.
func (a *App) Backup(w io.Writer) error {
	if a.badger == nil {
		return fmt.Errorf("backup needs badger storage, configured storage is %q", a.cfg.Storage.Type)
	}
	return repositories.Backup(a.badger, w)
}

// Restore loads a Badger backup from r.
func (a *App) Restore(r io.Reader) error {
	if a.badger == nil {
		return fmt.Errorf("restore needs badger storage, configured storage is %q", a.cfg.Storage.Type)
	}
	return repositories.Restore(a.badger, r)
}

// Close releases storage, caches and the log file.
func (a *App) Close() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	var err error
	if a.repos != nil {
		err = a.repos.Close()
		a.repos = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
	return err
}
