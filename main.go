package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filedex/internal/dedup"
	"filedex/internal/handlers"
	"filedex/internal/index"
	"filedex/internal/indexclient"
	"filedex/internal/logging"
	"filedex/internal/metrics"
	"filedex/internal/middleware"
	"filedex/internal/session"
	"filedex/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize index store
	storeStart := time.Now()
	store, err := index.NewStore(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize index store: %v", err)
	}
	defer store.Close()
	startup.LogIndexInit(time.Since(storeStart))

	// The query service must be reachable and at a supported version
	// before anything queries it
	service := index.NewService(store)
	if err := indexclient.CheckService(service); err != nil {
		startup.LogFatal("Query service check failed: %v", err)
	}

	// Initialize walker
	startup.LogWalkerInit(config.IndexInterval)
	walker := index.NewWalker(store, config.RootDir, config.IndexInterval)
	walker.Start()
	startup.LogWalkerStarted()

	// Initialize search session
	filters := session.StaticFilters{Defaults: session.BuiltinFilters()}
	sess := session.New(service, filters, session.Options{
		HideEmpty:    config.HideEmptySearch,
		FilterMemory: config.FilterMemory,
		History:      session.NewFileHistory(config.HistoryPath),
	})

	// Each scan run gets its own client; the session keeps the shared one
	newScanner := func() *dedup.Scanner {
		return dedup.NewScanner(
			index.NewService(store),
			dedup.NewReportWriter(config.ReportDir),
			dedup.Policy{
				AutoDeleteSameName: config.AutoDeleteSameName,
				OnDelete: func(path string) {
					if err := store.RemovePath(path); err != nil {
						logging.Warn("Failed to drop deleted file %s from the index: %v", path, err)
					}
				},
			},
		)
	}

	// Initialize handlers
	h := handlers.New(sess, filters, store, walker, config, newScanner)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router)

	// Apply metrics middleware
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics get their own listener so the application port stays clean
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsPort)
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, walker, sess)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Search routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", h.Search).Methods("GET")
	api.HandleFunc("/search/more", h.LoadMore).Methods("POST")
	api.HandleFunc("/search/reset", h.ResetSearch).Methods("POST")
	api.HandleFunc("/results", h.GetResults).Methods("GET")

	// Filter routes
	api.HandleFunc("/filters", h.GetFilters).Methods("GET")
	api.HandleFunc("/filters/select", h.SelectFilter).Methods("POST")
	api.HandleFunc("/filters/cycle", h.CycleFilter).Methods("POST")

	// Duplicate scan routes
	api.HandleFunc("/scan", h.StartScan).Methods("POST")
	api.HandleFunc("/scan/status", h.ScanStatus).Methods("GET")

	// Index routes
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/reindex", h.TriggerReindex).Methods("POST")

	return r
}

func startMetricsServer(port string) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     metricsMux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, walker *index.Walker, sess *session.Session) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping index walker")
	walker.Stop()
	startup.LogShutdownStepComplete("Index walker stopped")

	startup.LogShutdownStep("Closing search session")
	sess.Close()
	startup.LogShutdownStepComplete("Search session closed")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownComplete()
}
