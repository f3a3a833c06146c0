package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/blob"
	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/cache"
	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/generator"
	adapterHTTP "github.com/goalchallenge/weekly-goals-engine/internal/adapters/handler/http"
	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/repository"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on the environment")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	serverPort := getEnv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	// Redis is optional: without it the engine loses the local mirror, the
	// week cache and rate limiting, but keeps serving from Postgres.
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisClient, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost")+":"+getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		redisDB,
	)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache: %v", err)
		redisClient = nil
	}

	var weekRepo domain.WeekRepository = repository.NewPostgresWeekRepository(db)
	if redisClient != nil {
		weekRepo = repository.NewCachedWeekRepository(weekRepo, redisClient)
	}
	templateRepo := repository.NewPostgresTemplateRepository(db)
	reportRepo := repository.NewPostgresReportRepository(db)
	profileRepo := repository.NewPostgresProfileRepository(db)
	eventRepo := repository.NewPostgresEventRepository(db)
	userRepo := repository.NewPostgresUserRepository(db.DB)

	var local domain.LocalStore
	if redisClient != nil {
		local = cache.NewRedisLocalStore(redisClient)
	} else {
		local = cache.NewMemoryLocalStore()
	}

	var photos domain.PhotoStore
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		photos, err = blob.NewMinioPhotoStore(
			endpoint,
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			getEnv("MINIO_BUCKET", "goal-photos"),
			getEnv("MINIO_USE_SSL", "false") == "true",
		)
		if err != nil {
			log.Fatalf("Critical: Failed to set up photo storage: %v", err)
		}
	} else {
		log.Println("MINIO_ENDPOINT not set, photo uploads disabled")
	}

	reportGen := generator.NewHTTPGenerator(getEnv("REPORT_GENERATOR_URL", "http://localhost:8090"))

	weekService := services.NewWeekService(weekRepo, templateRepo, local)
	reportService := services.NewReportService(reportRepo, eventRepo, reportGen)
	profileService := services.NewProfileService(profileRepo, photos)
	eventService := services.NewEventService(eventRepo)
	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, "weekly-goals-engine", 24*time.Hour, userRepo)

	saveWorker := workers.NewSaveWorker(weekService, workers.DefaultSaveDelay)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(authService, tokenService, profileService, local),
		WeekHandler:    adapterHTTP.NewWeekHandler(weekService, eventService, saveWorker),
		ReportHandler:  adapterHTTP.NewReportHandler(reportService, weekService, profileService),
		ProfileHandler: adapterHTTP.NewProfileHandler(profileService),
		TokenService:   tokenService,
		DB:             db,
		Redis:          redisClient,
		StartTime:      startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Weekly Goals Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	// Flush pending debounced saves before exit.
	saveWorker.Close()

	log.Println("Server stopped gracefully.")
}
