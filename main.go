package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"manoLogAPI/handlers"
	"manoLogAPI/internal/clock"
	"manoLogAPI/internal/config"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/metrics"
	"manoLogAPI/internal/store"
	"manoLogAPI/internal/store/memory"
	"manoLogAPI/internal/store/postgres"
	"manoLogAPI/internal/workers"
	"manoLogAPI/middleware"
	"manoLogAPI/services"

	_ "net/http/pprof"
)

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Println("Using in-memory store; data is lost on restart")
		return memory.New(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return postgres.Open(ctx, cfg.DatabaseURL)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	clerk.SetKey(cfg.ClerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}
	defer func() {
		log.Println("Closing store...")
		db.Close()
	}()

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	metrics.Register(prometheus.DefaultRegisterer)

	cal := dates.NewCalendar(cfg.DayBoundary)
	clk := clock.Real{}
	log.Printf("Day boundary: %s, default policy: %s", cal.Location(), cfg.DefaultPolicy)

	streakService := services.NewStreakService(db, db, clk, cal, services.StreakConfig{
		MaxAttempts:      cfg.AdvanceMaxAttempts,
		SweepBatchSize:   cfg.SweepBatchSize,
		SweepConcurrency: cfg.SweepConcurrency,
	})
	moodService := services.NewMoodService(db, db, streakService, clk)
	trendService := services.NewTrendService(db, clk, cal)
	statsService := services.NewStatsService(db, db, clk, cal)
	userService := services.NewUserService(db)

	moodHandler := handlers.NewMoodHandler(moodService)
	trendHandler := handlers.NewTrendHandler(moodService, trendService, statsService, streakService, cal, cfg.DefaultPolicy)
	adminHandler := handlers.NewAdminHandler(streakService)
	webhookHandler := handlers.NewWebhookHandler(userService, cfg.ClerkWebhookSecret)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.Cleanup(ctx)

	r := mux.NewRouter()
	r.Use(rateLimiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "manoLog-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/mood-types", handlers.ListMoodTypes).Methods("GET")
	api.HandleFunc("/policies", handlers.ListPolicies).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminTokenMiddleware(cfg.AdminToken))
	admin.HandleFunc("/streaks/repair-sweep", adminHandler.RunRepairSweep).Methods("POST")
	admin.HandleFunc("/streaks/{userId}/recompute", adminHandler.RecomputeStreak).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/moods", moodHandler.LogMood).Methods("POST")
	protected.HandleFunc("/moods/recent", moodHandler.ListRecent).Methods("GET")
	protected.HandleFunc("/moods/daily", trendHandler.GetDailyAggregates).Methods("GET")
	protected.HandleFunc("/moods/counts", trendHandler.GetPeriodMoodCounts).Methods("GET")
	protected.HandleFunc("/moods/trends/weekly", trendHandler.GetWeeklyRollup).Methods("GET")
	protected.HandleFunc("/moods/trends/monthly", trendHandler.GetMonthlyRollup).Methods("GET")
	protected.HandleFunc("/moods/stats", trendHandler.GetMoodStatistics).Methods("GET")
	protected.HandleFunc("/moods/{id}", moodHandler.DeleteMood).Methods("DELETE")
	protected.HandleFunc("/streak", trendHandler.GetStreak).Methods("GET")

	var workerDone <-chan struct{}
	if cfg.SweepInterval > 0 {
		workerDone = workers.StartStreakRepairWorker(ctx, workers.SweepFunc(func(ctx context.Context) error {
			_, err := streakService.RunStreakRepairSweep(ctx)
			return err
		}), cfg.SweepInterval)
	}

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret", "X-Admin-Token"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := ":" + cfg.Port
	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if workerDone != nil {
		<-workerDone
	}

	log.Println("Server shutdown complete")
}
