package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/johnqtcg/spoon/internal/analyzer"
	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/logger"
	"github.com/johnqtcg/spoon/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.Init(logger.FromEnv())

	cfg, err := config.LoadEnv(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	an, err := analyzer.NewFromConfig(cfg, log, metrics.NewPrometheusRecorder(reg))
	if err != nil {
		log.Fatal().Err(err).Msg("create analyzer")
	}

	tmpl, err := loadTemplate()
	if err != nil {
		log.Fatal().Err(err).Msg("load template")
	}
	static, err := staticFS()
	if err != nil {
		log.Fatal().Err(err).Msg("load static assets")
	}

	server := &http.Server{
		Addr: cfg.WebAddr,
		Handler: newWebHandler(webDeps{
			analyzer: an,
			tmpl:     tmpl,
			static:   static,
			metrics:  metrics.HTTPHandler(reg),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, server); err != nil {
		log.Fatal().Err(err).Msg("serve http")
	}
}

// serve runs server until ctx is canceled, then drains in-flight requests.
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info().Str("addr", server.Addr).Msg("spoon web listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
