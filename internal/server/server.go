// Package server assembles the HTTP handler from the configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/parkhang/parkhang/internal/config"
	"github.com/parkhang/parkhang/internal/logging"
	"github.com/parkhang/parkhang/internal/metrics"
	"github.com/parkhang/parkhang/internal/problem"
	"github.com/parkhang/parkhang/internal/texts"
	"github.com/parkhang/parkhang/route"
	"github.com/parkhang/parkhang/route/chirouter"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is what the handlers and the health check need.
type Store interface {
	texts.Store
	Pinger
}

// New builds the handler serving the texts API under cfg.Server.BasePath.
func New(cfg *config.Config, log *zap.Logger, st Store) (http.Handler, *route.Tree, error) {
	var m *metrics.Metrics
	mws := []route.MiddlewareFunc{logging.Requests(log)}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		mws = append(mws, m.Middleware)
	}
	table := route.New(
		route.WithErrorHandler(problem.ErrorHandler(log)),
		route.WithMiddlewares(mws...),
	)

	switch cfg.Server.Router {
	case "chi", "":
		r := chi.NewRouter()
		r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
		tree, err := table.Mount(chirouter.New(r), cfg.Server.BasePath, &texts.Routes{}, st)
		if err != nil {
			return nil, nil, fmt.Errorf("mount routes: %w", err)
		}
		r.Get("/healthz", health(st))
		if m != nil {
			r.Handle(cfg.Metrics.Path, m.Handler())
		}
		r.NotFound(tree.NotFoundHandler(problem.NotFoundHandler()).ServeHTTP)
		r.MethodNotAllowed(problem.MethodNotAllowedHandler().ServeHTTP)
		return r, tree, nil
	case "std":
		mux := http.NewServeMux()
		tree, err := table.Mount(route.NewRouter(mux), cfg.Server.BasePath, &texts.Routes{}, st)
		if err != nil {
			return nil, nil, fmt.Errorf("mount routes: %w", err)
		}
		mux.Handle("GET /healthz", health(st))
		if m != nil {
			mux.Handle(cfg.Metrics.Path, m.Handler())
		}
		return middleware.Recoverer(mux), tree, nil
	}
	return nil, nil, fmt.Errorf("unknown router %q", cfg.Server.Router)
}

func health(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			problem.Write(w, problem.New(http.StatusServiceUnavailable, "database unavailable", r.URL.Path))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}
}

// Run serves handler on cfg.Server.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.Server.ShutdownTimeout.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          zap.NewStdLog(log),
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("router", cfg.Server.Router))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
