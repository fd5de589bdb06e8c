package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpost/app/commands"
	"inkpost/app/config"
	"inkpost/app/logging"
	"inkpost/app/repositories"
	"inkpost/app/routes"
	"inkpost/app/services"
	"inkpost/app/sessions"
	"inkpost/app/views"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
)

const sessionCookieName = "session"

// newServer opens the store and builds the HTTP server around it. The
// returned cleanup closes what was opened.
func newServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	store, err := commands.OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Debug.Printf("%s store migrated", cfg.StoreDriver)

	sessionStore, closeSessions, err := openSessionStore(ctx, cfg, store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	logger.Debug.Printf("session store %s, lifetime %s, idle timeout %s",
		cfg.ResolvedSessionStore(), cfg.SessionLifetime, cfg.SessionIdleTimeout)
	cleanup := func() {
		closeSessions()
		if err := store.Close(); err != nil {
			logger.Error.Printf("close store: %v", err)
		}
	}

	tmpl, err := views.New()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sm := sessions.New(sessions.NewHashedStore(sessionStore, []byte(cfg.SecretKey)), sessions.Options{
		CookieName:  sessionCookieName,
		Lifetime:    cfg.SessionLifetime,
		IdleTimeout: cfg.SessionIdleTimeout,
		Secure:      cfg.CookieSecure,
		ErrorLog:    logger.Error,
	})

	router := routes.SetupRoutes(routes.Dependencies{
		Store:    store,
		Sessions: sm,
		Views:    tmpl,
		Hasher:   services.NewBcryptHasher(cfg.BcryptCost),
		Log:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ErrorLog:          logger.Error,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, cleanup, nil
}

// openSessionStore picks the session backend named by the configuration.
func openSessionStore(ctx context.Context, cfg *config.Config, store repositories.Store) (scs.Store, func(), error) {
	switch cfg.ResolvedSessionStore() {
	case config.SessionStoreBadger:
		bs, ok := store.(*repositories.BadgerStore)
		if !ok {
			return nil, nil, errors.New("badger sessions need the badger store")
		}
		return sessions.NewBadgerStore(bs.DB()), func() {}, nil
	case config.SessionStoreRedis:
		cli := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := cli.Ping(ctx).Err(); err != nil {
			cli.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return sessions.NewRedisStore(cli), func() { cli.Close() }, nil
	default:
		ms := memstore.New()
		return ms, ms.StopCleanup, nil
	}
}

// serve runs the blog until SIGINT or SIGTERM, then drains in-flight
// requests for up to cfg.ShutdownTimeout.
func serve(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		logger.Info.Printf("starting %s server on %s (store %s, sessions %s)",
			cfg.Env, srv.Addr, cfg.StoreDriver, cfg.ResolvedSessionStore())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
