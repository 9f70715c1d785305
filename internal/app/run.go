package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/raccog/HydroManager/internal/config"
	db "github.com/raccog/HydroManager/internal/db"
	httpapi "github.com/raccog/HydroManager/internal/httpapi"
	"github.com/raccog/HydroManager/internal/migrate"
	hydro "github.com/raccog/HydroManager/internal/modules/hydro"
	hydroviews "github.com/raccog/HydroManager/internal/modules/hydro/views"
	"github.com/raccog/HydroManager/internal/observability"
)

// Run starts the viewer: opens the store, applies migrations, and serves the
// chart pages until ctx is canceled.
func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(dbConn); err != nil {
		return err
	}

	var ok int
	err = dbConn.QueryRow(`SELECT 1`).Scan(&ok)
	if err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	slog.Info("database connection successful")

	if err := hydroviews.LoadTemplates(); err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	mux := httpapi.NewMux(dbConn, cfg.StaticDir, metrics)
	hydro.RegisterFeature(mux, dbConn, metrics)

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
