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

	"go.uber.org/zap"

	"TierlistBackend/config"
	"TierlistBackend/internal/board"
	"TierlistBackend/internal/repository"
	"TierlistBackend/internal/repository/sqlite"
	"TierlistBackend/internal/router"
	"TierlistBackend/internal/service"
	"TierlistBackend/internal/upload"
	"TierlistBackend/scripts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tierlist:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tiers, err := config.LoadTiers(cfg.TiersFile)
	if err != nil {
		return err
	}
	resetMode, err := board.ParseResetMode(cfg.ResetMode)
	if err != nil {
		return err
	}

	var kv repository.KeyValueStore
	if cfg.DBPath == "" {
		logger.Warn("DB_PATH not set, tierlist will not survive a restart")
		kv = repository.NewMemoryStore()
	} else {
		db, err := config.NewConnection(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("error closing the database", zap.Error(err))
			}
		}()
		kv, err = sqlite.NewKVRepository(ctx, db)
		if err != nil {
			return err
		}
	}

	repo := repository.NewSnapshotRepository(kv, logger.Named("repository"))
	decoder := upload.NewDecoder(logger.Named("upload"), upload.WithMaxBytes(cfg.MaxUploadBytes))
	svc, err := service.NewTierlistService(ctx, tiers, repo, decoder, resetMode, logger.Named("service"))
	if err != nil {
		return err
	}

	if cfg.ImportDir != "" {
		if _, err := scripts.ImportImagesFromFolder(ctx, svc, cfg.ImportDir, logger.Named("import")); err != nil {
			logger.Error("folder import failed", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(svc, cfg.StaticDir, cfg.MaxRequestBytes, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
