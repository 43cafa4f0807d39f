package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/moneydash/backend/src/config"
	"github.com/username/moneydash/backend/src/database"
	"github.com/username/moneydash/backend/src/handlers"
	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/security"
	"github.com/username/moneydash/backend/src/services"
	"github.com/username/moneydash/backend/src/store"
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
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
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
	logger.L.Info("Moneydash backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	mappingStore := store.New(database.DB)
	if err := mappingStore.SeedDefaults(); err != nil {
		logger.L.Error("Failed to seed default reference lists", "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(authService)

	pipelineService := services.NewPipelineService(services.PipelineConfig{
		ImportDir:           config.Cfg.ImportDir,
		LedgerPath:          config.Cfg.LedgerPath,
		FuzzyMatchThreshold: config.Cfg.FuzzyMatchThreshold,
		LoaderWorkers:       config.Cfg.LoaderWorkers,
	}, mappingStore, resultCache)

	pipelineHandler := handlers.NewPipelineHandler(pipelineService)
	mappingHandler := handlers.NewMappingHandler(mappingStore, pipelineService)
	uploadHandler := handlers.NewUploadHandler(pipelineService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/auth/register", userHandler.RegisterUserHandler)
	apiRouter.HandleFunc("POST /api/auth/login", userHandler.LoginUserHandler)

	applyAuth := func(handler http.HandlerFunc) http.Handler {
		return userHandler.AuthMiddleware(handler)
	}

	apiRouter.Handle("POST /api/pipeline/run", applyAuth(pipelineHandler.HandleRunPipeline))
	apiRouter.Handle("GET /api/pipeline/summary", applyAuth(pipelineHandler.HandleGetSummary))
	apiRouter.Handle("GET /api/transactions", applyAuth(pipelineHandler.HandleGetTransactions))
	apiRouter.Handle("GET /api/transactions/unmapped", applyAuth(pipelineHandler.HandleGetUnmapped))

	apiRouter.Handle("POST /api/import/upload", applyAuth(uploadHandler.HandleUpload))

	apiRouter.Handle("GET /api/mappings", applyAuth(mappingHandler.HandleListRules))
	apiRouter.Handle("POST /api/mappings", applyAuth(mappingHandler.HandleUpsertRule))
	apiRouter.Handle("DELETE /api/mappings/{key}", applyAuth(mappingHandler.HandleDeleteRule))
	apiRouter.Handle("POST /api/mappings/quickmap", applyAuth(mappingHandler.HandleQuickMap))

	apiRouter.Handle("GET /api/lists", applyAuth(mappingHandler.HandleGetLists))
	apiRouter.Handle("POST /api/lists", applyAuth(mappingHandler.HandleAddListItem))
	apiRouter.Handle("DELETE /api/lists/{list}/{item}", applyAuth(mappingHandler.HandleRemoveListItem))
	apiRouter.Handle("GET /api/lists/export", applyAuth(mappingHandler.HandleExportLists))
	apiRouter.Handle("POST /api/lists/import", applyAuth(mappingHandler.HandleImportLists))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "MONEYDASH Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
