package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/config"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/database"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/handlers"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/parsers"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/processors"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
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
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Requested-With, If-None-Match")
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
	logger.L.Info("MD Dashboard backend server starting...")

	logger.L.Info("Loading classification map...", "path", config.Cfg.ClassificationMapPath)
	classificationMap := processors.LoadClassificationMap(config.Cfg.ClassificationMapPath)
	classifier := processors.NewClassifier(classificationMap)

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheExpiry, config.Cfg.ReportCacheCleanup)
	logger.L.Info("Report cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	var reportService services.ReportService
	settingsService := services.NewSettingsService(config.Cfg.SettingsWriteQuietPeriod, func() {
		if reportService != nil {
			reportService.InvalidateReportCache()
		}
	})
	reportService = services.NewReportService(classifier, settingsService, reportCache)

	statementParser := parsers.NewStatementParser(config.Cfg.OpeningBalanceRowIndex)
	pnlParser := parsers.NewPnLParser()
	importService := services.NewImportService(statementParser, pnlParser, settingsService, reportService)

	uploadHandler := handlers.NewUploadHandler(importService)
	transactionHandler := handlers.NewTransactionHandler(reportService)
	dealHandler := handlers.NewDealHandler(reportService)
	projectHandler := handlers.NewProjectHandler(reportService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	reportHandler := handlers.NewReportHandler(reportService)

	logger.L.Info("Configuring routes...")
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(enableCORS)
	router.Use(rateLimitMiddleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/import/bank", uploadHandler.HandleImportBank)
		r.Post("/import/pnl", uploadHandler.HandleImportPnL)

		r.Get("/transactions", transactionHandler.HandleList)
		r.Post("/transactions", transactionHandler.HandleCreate)
		r.Put("/transactions/{id}", transactionHandler.HandleUpdate)
		r.Delete("/transactions/{id}", transactionHandler.HandleDelete)

		r.Get("/deals", dealHandler.HandleList)
		r.Post("/deals", dealHandler.HandleCreate)
		r.Put("/deals/{id}", dealHandler.HandleUpdate)
		r.Delete("/deals/{id}", dealHandler.HandleDelete)

		r.Get("/projects", projectHandler.HandleList)
		r.Post("/projects", projectHandler.HandleCreate)
		r.Put("/projects/{id}", projectHandler.HandleUpdate)
		r.Delete("/projects/{id}", projectHandler.HandleDelete)
		r.Get("/projects/{id}/costs", projectHandler.HandleListCosts)
		r.Post("/projects/{id}/costs", projectHandler.HandleCreateCost)
		r.Delete("/costs/{id}", projectHandler.HandleDeleteCost)

		r.Get("/settings", settingsHandler.HandleGet)
		r.Put("/settings", settingsHandler.HandleUpdate)

		r.Get("/reports/pnl", reportHandler.HandleGetPnL)
		r.Get("/reports/cashflow", reportHandler.HandleGetCashflow)
		r.Get("/reports/pipeline", reportHandler.HandleGetPipeline)
		r.Get("/reports/projects", reportHandler.HandleGetProjects)
		r.Get("/reports/sankey", reportHandler.HandleGetSankey)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L.Error("Failed to start server", "error", err)
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-shutdown
	logger.L.Info("Shutdown signal received, flushing pending settings...")
	if err := settingsService.Flush(); err != nil {
		logger.L.Error("Failed to flush pending settings", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("Server shutdown error", "error", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
