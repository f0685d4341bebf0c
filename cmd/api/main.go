package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"local-library/internal/adapter"
	"local-library/internal/core"
	"local-library/internal/db"
	"local-library/internal/logger"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	port := getenv("PORT", "8080")
	env := getenv("APP_ENV", "development")

	log, err := logger.New(env)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	gdb, err := db.Open(getenv("DATABASE_URL", ""), log)
	if err != nil {
		log.Fatal("datastore unavailable", "error", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migration failed", "error", err)
	}

	svc := core.NewService(
		adapter.NewTitleRepo(gdb, log),
		adapter.NewCreatorRepo(gdb, log),
		adapter.NewCategoryRepo(gdb, log),
		adapter.NewCopyRepo(gdb, log),
		log,
	)
	h := adapter.NewHandler(svc, log, env == "production")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Error("closing datastore", "error", err)
	}
}
