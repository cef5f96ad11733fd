package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slurp-civic/slurp-api/internal/config"
	httpserver "github.com/slurp-civic/slurp-api/internal/http"
	"github.com/slurp-civic/slurp-api/internal/locations"
	"github.com/slurp-civic/slurp-api/internal/repository"
	"github.com/slurp-civic/slurp-api/internal/store"
	"github.com/slurp-civic/slurp-api/internal/taxonomy"
	"github.com/slurp-civic/slurp-api/internal/views"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[slurp-api] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnIdleTime: time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime: time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:     time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:          logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	locClient, err := locations.NewHTTPClient(cfg.LocationsURL, time.Duration(cfg.LocationsTimeoutSecs)*time.Second, logger)
	if err != nil {
		log.Fatalf("init locations client: %v", err)
	}

	tax, err := taxonomy.Load()
	if err != nil {
		log.Fatalf("load sector taxonomy: %v", err)
	}

	repo := repository.New(st)
	assembler := views.NewAssembler(repo.Ratings, repo.Profiles, tax)
	server := httpserver.New(cfg, st, repo, assembler, locClient, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
