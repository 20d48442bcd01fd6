package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/env"
	"github.com/lidofinance/blockview/internal/http/handlers/explorer"
	"github.com/lidofinance/blockview/internal/http/handlers/health"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

type App struct {
	env      *env.AppConfig
	Logger   *slog.Logger
	Metrics  *metrics.Store
	Services *Services
}

func New(config *env.AppConfig, logger *slog.Logger, promStore *metrics.Store, services *Services) *App {
	return &App{
		env:      config,
		Logger:   logger,
		Metrics:  promStore,
		Services: services,
	}
}

func (a *App) RunHTTPServer(ctx context.Context, g *errgroup.Group, appPort uint, router http.Handler) {
	server := &http.Server{
		Addr:           fmt.Sprintf(`:%d`, appPort),
		Handler:        router,
		ReadTimeout:    defaultReadTimeout,
		WriteTimeout:   defaultWriteTimeout,
		IdleTimeout:    defaultIdleTimeout,
		MaxHeaderBytes: http.DefaultMaxHeaderBytes,
	}

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})
}

func (a *App) RegisterRoutes(r chi.Router) {
	a.RegisterMiddlewares(r)
	a.RegisterAPIRoutes(r)
	a.RegisterInfraRoutes(r)
}

func (a *App) RegisterMiddlewares(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
}

func (a *App) RegisterAPIRoutes(r chi.Router) {
	explorerH := explorer.New(a.Services.ChainSrv, a.Services.TokenSrv, a.env.BlockCacheSize, a.Metrics, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(a.countRequests)

		r.Get("/blockNumber", explorerH.BlockNumber)
		r.Get("/blocks/latest", explorerH.LatestBlocks)
		r.Get("/blocks/{number}", explorerH.Block)
		r.Get("/tx/{hash}", explorerH.Transaction)
		r.Get("/address/{address}", explorerH.Address)
		r.Get("/search", explorerH.Search)

		r.Get("/tokens", explorerH.CommonTokens)
		r.Get("/tokens/{address}", explorerH.Token)
		r.Get("/tokens/{address}/balance/{wallet}", explorerH.TokenBalance)

		r.Post("/wallet", explorerH.CreateWallet)
		r.Post("/wallet/import", explorerH.ImportWallet)
	})
}

func (a *App) RegisterInfraRoutes(r chi.Router) {
	r.Get("/health", health.New().Handler)
	r.Get("/metrics", promhttp.HandlerFor(a.Metrics.Prometheus, promhttp.HandlerOpts{}).ServeHTTP)

	r.HandleFunc("/debug/pprof/", pprof.Index)
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.HandleFunc("/debug/pprof/{action}", pprof.Index)
}

func (a *App) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		a.Metrics.HttpRequests.With(prometheus.Labels{
			metrics.Route: route,
			metrics.Code:  fmt.Sprintf("%d", ww.Status()),
		}).Inc()
	})
}
