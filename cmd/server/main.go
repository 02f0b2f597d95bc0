// Command server runs the HTTP feature-extraction service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xssvec/xssvec/internal/catalog"
	"github.com/xssvec/xssvec/internal/logging"
	"github.com/xssvec/xssvec/internal/server"
	"github.com/xssvec/xssvec/internal/store"
)

func main() {
	godotenv.Load()

	var (
		addr        = flag.String("addr", envOr("XSSVEC_ADDR", ":8080"), "listen address")
		dbPath      = flag.String("db", os.Getenv("XSSVEC_DB"), "optional SQLite database backing /stats")
		catalogPath = flag.String("catalog", os.Getenv("XSSVEC_CATALOG"), "optional YAML catalog overriding the defaults")
	)
	flag.Parse()

	logger := logging.NewLogger(slog.LevelInfo)

	cats := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.Load(*catalogPath)
		if err != nil {
			logger.Error("loading catalog", "error", err)
			os.Exit(1)
		}
		cats = loaded
	}

	var st *store.Store
	if *dbPath != "" {
		var err error
		st, err = store.NewStore(*dbPath)
		if err != nil {
			logger.Error("opening store", "error", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	srv := server.NewServer(cats, st, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down gracefully", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting extraction server", "addr", *addr)
	if err := srv.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
