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

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/naval-battle-backend/internal/config"
	"github.com/DoyleJ11/naval-battle-backend/internal/history"
	"github.com/DoyleJ11/naval-battle-backend/internal/httpapi"
	"github.com/DoyleJ11/naval-battle-backend/internal/hub"
	"github.com/DoyleJ11/naval-battle-backend/internal/logger"
	"github.com/DoyleJ11/naval-battle-backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, err := openRecorders(cfg, log)
	if err != nil {
		return err
	}

	h := hub.NewHub(context.Background(), log,
		hub.WithCleanupDelay(cfg.CleanupDelay),
		hub.WithRecorder(recorder))

	var wsOpts ws.Options
	if cfg.Development {
		wsOpts.OriginPatterns = []string{"localhost:*", "127.0.0.1:*"}
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.SetupRoutes(h, log, wsOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		h.Close()
		return multierr.Append(err, recorder.Close())
	})
	return g.Wait()
}

// openRecorders connects the configured match history sinks. Neither is
// required; with none configured results are discarded.
func openRecorders(cfg config.Config, log *zap.Logger) (history.Recorder, error) {
	var recs history.Multi
	if cfg.DatabaseURL != "" {
		store, err := history.OpenStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("recording matches to postgres")
		recs = append(recs, store)
	}
	if cfg.NatsURL != "" {
		pub, err := history.ConnectPublisher(cfg.NatsURL, cfg.NatsSubject)
		if err != nil {
			return nil, multierr.Append(err, recs.Close())
		}
		log.Info("publishing matches to nats", zap.String("subject", cfg.NatsSubject))
		recs = append(recs, pub)
	}
	if len(recs) == 0 {
		return history.Nop{}, nil
	}
	return recs, nil
}
