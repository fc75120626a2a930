package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/ceo-dashboard/internal/app"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance/source"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping mock feed startup")
		return
	}
	addr := flag.String("addr", ":8081", "listen address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := app.NewLogger(&app.Config{LogFormat: os.Getenv("LOG_FORMAT"), LogLevel: os.Getenv("LOG_LEVEL")})

	server := &http.Server{Addr: *addr, Handler: newRouter(logger), ReadTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving mock feed", slog.String("addr", *addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("mock feed server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func newRouter(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	for _, path := range []string{source.SystemsPath, source.FinancePath} {
		r.Get(path, func(w http.ResponseWriter, r *http.Request) {
			payload, err := source.Fixture(path)
			if err != nil {
				logger.Error("load fixture", slog.String("path", path), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(payload)
		})
	}
	return r
}
