package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/admin"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/handler"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/ledgercsv"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/services"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	accounts, err := ledgercsv.LoadAccounts(os.Getenv("SEED_FILE"))
	if err != nil {
		slog.Error("Failed to load accounts", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{}
	initServices(deps)
	deps.Bank = bank.New(bank.NewStore(accounts), bank.ConfigFromEnv(), handler.NewDispatcher(deps))

	// Router
	mux := http.NewServeMux()
	deps.Register(mux)

	// Catch-all handler for unmatched requests to debug what the Host is sending
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		slog.Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
			"content_length", r.ContentLength,
		)
		http.NotFound(w, r)
	})

	// Get port from environment or default to 8080
	port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT")
	if port == "" {
		port = "8080"
	}

	admin.Init()
	adminServer := admin.NewServer()
	go func() {
		slog.Info("Starting admin server", "addr", adminServer.BindAddress())
		if err := adminServer.Listen(); err != nil {
			slog.Error("Admin server failed", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           loggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting server", "port", port, "accounts", len(accounts))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	// Pending transfers and loans are cancelled with their sessions.
	deps.Bank.Shutdown()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Admin server shutdown failed", "error", err)
	}
}

// initServices wires the Azure services that are configured. A service
// that fails to start is left nil and its feature is disabled.
func initServices(deps *handler.Dependencies) {
	if dbService, err := services.NewDatabaseService(); err != nil {
		slog.Warn("Movement journal disabled", "error", err)
	} else {
		deps.Database = dbService
	}

	if blobService, err := services.NewBlobService(); err != nil {
		slog.Warn("Statement export disabled", "error", err)
	} else {
		deps.Blob = blobService
	}

	if queueService, err := services.NewQueueService(); err != nil {
		slog.Warn("Closure queue disabled, closures are handled inline", "error", err)
	} else {
		deps.Queue = queueService
	}

	if emailService, err := services.NewEmailService(nil); err != nil {
		slog.Warn("Failed to init EmailService (continuing anyway)", "error", err)
	} else {
		deps.Email = emailService
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs every request. Bodies are not logged since they
// carry PINs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Info("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", duration)
	})
}
