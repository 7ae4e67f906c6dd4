package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/config"
	"github.com/username/opentx/backend/src/handlers"
	"github.com/username/opentx/backend/src/logger"
	"github.com/username/opentx/backend/src/pagination"
	"github.com/username/opentx/backend/src/processors"
	"github.com/username/opentx/backend/src/services"
	"github.com/username/opentx/backend/src/subscan"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == config.Cfg.CORSAllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("OpenTx backend server starting...", "chains", chains.IDs())

	logger.L.Info("Initializing balance cache...", "ttl", config.Cfg.BalanceCacheTTL)
	balanceCache := cache.New(config.Cfg.BalanceCacheTTL, 2*config.Cfg.BalanceCacheTTL)

	logger.L.Info("Initializing services and handlers...")
	client := subscan.NewClient(
		subscan.WithAPIKey(config.Cfg.SubscanAPIKey),
		subscan.WithHTTPClient(&http.Client{Timeout: config.Cfg.RequestTimeout}),
		subscan.WithThrottle(config.Cfg.ThrottleEvery),
		subscan.WithMaxAttempts(config.Cfg.RetryAttempts),
	)
	engine := pagination.NewEngine(client)
	dedupProcessor := processors.NewDedupProcessor()

	txService := services.NewTransactionService(engine, config.Cfg.PageSize)
	exportService := services.NewExportService(engine, dedupProcessor, config.Cfg.ExportPageSize, config.Cfg.MaxExportPages)
	balanceService := services.NewBalanceService(client, balanceCache)

	txHandler := handlers.NewTransactionHandler(txService)
	accountHandler := handlers.NewAccountHandler(balanceService)
	exportHandler := handlers.NewExportHandler(exportService, config.Cfg.ExportFilePrefix)

	logger.L.Info("Configuring routes...")
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transactions", txHandler.HandleGetTransactions)
	mux.HandleFunc("POST /account", accountHandler.HandleGetAccount)
	mux.HandleFunc("GET /export", exportHandler.HandleExport)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			logger.L.Warn("Path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "OpenTx backend is running"})
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(mux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // export sessions block on throttled upstream pages
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
