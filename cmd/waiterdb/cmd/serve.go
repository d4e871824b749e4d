package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-waiter-catalog/internal/config"
	httpapi "github.com/tbourn/go-waiter-catalog/internal/http"
	"github.com/tbourn/go-waiter-catalog/internal/metrics"
	"github.com/tbourn/go-waiter-catalog/internal/observability"
	"github.com/tbourn/go-waiter-catalog/internal/services"
	"github.com/tbourn/go-waiter-catalog/internal/source"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog HTTP API",
	Long: "Loads the catalog from the store (falling back to the JSON file), serves the read API " +
		"and optionally reloads when the fallback file changes.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version, observability.CatalogAttributes(cfg)...)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	svc, db, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if _, err := svc.Reload(ctx); err != nil {
		// Serve anyway; /ready reports 503 until a reload succeeds.
		log.Error().Err(err).Msg("initial catalog load failed")
	}

	if cfg.Catalog.Watch {
		w, err := source.NewWatcher(cfg.Catalog.ReloadDebounce)
		if err != nil {
			return err
		}
		defer w.Stop()
		err = w.Watch(cfg.Catalog.FallbackPath,
			func() {
				if _, err := svc.Reload(context.Background()); err != nil {
					log.Error().Err(err).Str("path", cfg.Catalog.FallbackPath).Msg("catalog reload on change failed")
				}
			},
			func(err error) { log.Warn().Err(err).Msg("catalog watcher") },
		)
		if err != nil {
			return err
		}
		log.Info().Str("path", cfg.Catalog.FallbackPath).Msg("watching catalog file")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{Catalog: svc.CatalogService, Registry: svc.Registry}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// service bundles the catalog service with the registry its metrics live in.
type service struct {
	*services.CatalogService
	Registry *prometheus.Registry
}

// newService opens the store and builds the catalog service over it, with
// the JSON file as fallback. A store that cannot be opened is logged and the
// file is used alone.
func newService(cfg config.Config) (*service, *gorm.DB, error) {
	opts, err := catalogOptions(cfg)
	if err != nil {
		return nil, nil, err
	}

	var file source.Source
	if cfg.Catalog.FallbackPath != "" {
		file = &source.FileSource{Path: cfg.Catalog.FallbackPath}
	}

	var src source.Source
	db, err := openDB(cfg)
	switch {
	case err != nil && file == nil:
		return nil, nil, err
	case err != nil:
		log.Warn().Err(err).Str("driver", cfg.DB.Driver).Msg("catalog store unavailable; using fallback file only")
		db, src = nil, file
	case file == nil:
		src = &source.DBSource{DB: db}
	default:
		src = &source.Fallback{
			Primary:   &source.DBSource{DB: db},
			Secondary: file,
			OnFallback: func(err error) {
				log.Warn().Err(err).Str("fallback", file.Name()).Msg("catalog store failed; loading fallback file")
			},
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &service{
		CatalogService: services.NewCatalogService(db, src, opts, metrics.NewMetrics(reg)),
		Registry:       reg,
	}, db, nil
}
