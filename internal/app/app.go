package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"habitflow/internal/config"
	cronpkg "habitflow/internal/infrastructure/cron"
	infradb "habitflow/internal/infrastructure/db"
	"habitflow/internal/infrastructure/kafka"
	"habitflow/internal/infrastructure/postgres"
	infraredis "habitflow/internal/infrastructure/redis"
	"habitflow/internal/service"
	transporthttp "habitflow/internal/transport/http"
	"habitflow/pkg/calendar"
	"habitflow/pkg/jwt"
)

// App represents the application
type App struct {
	config      *config.Config
	httpServer  *http.Server
	rollover    *cronpkg.DayRolloverChecker
	corrections *service.CorrectionWorker
	producer    *kafka.Producer
	dbPool      *pgxpool.Pool
}

// New creates a new application
func New() (*App, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("Configuration loaded successfully")

	cal, err := calendar.New(cfg.Engine.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine timezone: %w", err)
	}

	// Initialize PostgreSQL connection pool
	ctx := context.Background()
	dbPool, err := infradb.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	fmt.Println("Connected to PostgreSQL")

	// Initialize Redis
	redisClient, err := infraredis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	fmt.Println("Connected to Redis")

	// Initialize Kafka producer
	producer := kafka.NewProducer(&cfg.Kafka)
	fmt.Println("Kafka producer initialized")

	// Initialize repositories
	habitRepo := postgres.NewHabitRepository(dbPool)
	logRepo := postgres.NewHabitLogRepository(dbPool)
	experienceRepo := postgres.NewExperienceRepository(dbPool)
	markerStorage := infraredis.NewMarkerStorage(redisClient)

	// Initialize services
	evaluator := service.NewRecurrenceEvaluator(logRepo, cal)
	experienceService := service.NewExperienceService(experienceRepo, habitRepo, logRepo, evaluator, markerStorage, producer, cal)
	habitService := service.NewHabitService(habitRepo, logRepo, experienceService, cal)
	corrections := service.NewCorrectionWorker(habitRepo, cfg.Engine.CorrectionQueueSize)
	engine := service.NewStreakEngine(habitRepo, logRepo, evaluator, experienceService, corrections, cal)
	engine.SetConcurrency(cfg.Engine.TickConcurrency)
	gate := service.NewSyncGate(markerStorage, engine, cal)
	fmt.Println("Services initialized")

	// Initialize day rollover checker (if enabled)
	var rollover *cronpkg.DayRolloverChecker
	if cfg.Scheduler.Enabled {
		rollover = cronpkg.NewDayRolloverChecker(habitRepo, gate, cfg.Scheduler.CheckInterval)
		fmt.Println("Day rollover checker initialized")
	} else {
		fmt.Println("Day rollover checker is disabled in configuration")
	}

	// Initialize HTTP transport
	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, cfg.JWT.Issuer)
	sessions := transporthttp.NewContextSessionResolver()
	authMiddleware := transporthttp.NewAuthMiddleware(tokenManager)
	habitHandler := transporthttp.NewHabitHandler(habitService, experienceService, sessions, gate)
	experienceHandler := transporthttp.NewExperienceHandler(experienceService, sessions)
	router := transporthttp.NewRouter(habitHandler, experienceHandler, authMiddleware)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		config:      cfg,
		httpServer:  httpServer,
		rollover:    rollover,
		corrections: corrections,
		producer:    producer,
		dbPool:      dbPool,
	}, nil
}

// Run starts the application
func (a *App) Run() error {
	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start the background correction worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go a.corrections.Run(workerCtx)

	// Start day rollover checker if enabled
	if a.rollover != nil {
		if err := a.rollover.Start(); err != nil {
			return fmt.Errorf("failed to start day rollover checker: %w", err)
		}
	}

	transporthttp.CleanupVisitors()

	// Start HTTP server in a goroutine
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
			quit <- syscall.SIGTERM
		}
	}()

	fmt.Printf("%s service started on port %d\n", a.config.Service.Name, a.config.HTTP.Port)
	fmt.Println("Press Ctrl+C to shutdown...")

	// Wait for interrupt signal
	<-quit
	fmt.Println("\nShutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("HTTP shutdown error: %v\n", err)
	}

	// Stop day rollover checker
	if a.rollover != nil {
		a.rollover.Stop()
	}

	// Stop the correction worker
	stopWorker()

	// Close Kafka producer
	if err := a.producer.Close(); err != nil {
		fmt.Printf("Kafka producer close error: %v\n", err)
	}

	// Close database pool
	a.dbPool.Close()

	fmt.Println("Server shutdown complete")
	return nil
}
