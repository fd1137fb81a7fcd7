package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Oniqq60/performance_assessment/internal/auth"
	"github.com/Oniqq60/performance_assessment/internal/cfg"
	"github.com/Oniqq60/performance_assessment/internal/project"
	"github.com/Oniqq60/performance_assessment/internal/task"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	conf := cfg.LoadConfig()
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	jwtSecret := []byte(conf.JWTSecret)
	if len(jwtSecret) == 0 {
		logger.Fatal("JWT_SECRET must be set")
	}
	jwtTTL := parseSeconds(conf.JWTTTL, 900)
	refreshWindow := time.Duration(parseSeconds(conf.RefreshWindow, 7*24*3600)) * time.Second

	db := mustConnectDB(conf)
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("failed to access sql DB: %v", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&auth.Users{}, &project.Project{}, &project.ProjectEmployee{}, &task.Task{}); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
	})
	defer rdb.Close()

	brokers := splitCSV(conf.KafkaBrokers)
	if len(brokers) == 0 {
		logger.Fatal("KAFKA_BROKERS must be set")
	}
	if conf.KafkaTopic == "" {
		logger.Fatal("KAFKA_TOPIC must be set")
	}
	producer := task.NewKafkaProducer(brokers, conf.KafkaTopic)
	defer producer.Close()

	userRepo := auth.NewRepository(db)
	userService := auth.NewUserService(userRepo, jwtSecret, jwtTTL)
	authHandler := auth.NewUserHandler(userService, jwtSecret, refreshWindow, rdb)
	authn := auth.NewAuthenticator(jwtSecret, rdb)

	projectRepo := project.NewRepository(db)
	projectService := project.NewProjectService(projectRepo, userRepo)
	projectHandler := project.NewHandler(projectService, authn)

	taskRepo := task.NewRepository(db)
	taskService := task.NewTaskService(taskRepo, projectRepo, producer)
	taskHandler := task.NewHandler(taskService, authn)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", authHandler.Register)
	mux.HandleFunc("/auth/admin/login", authHandler.AdminLogin)
	mux.HandleFunc("/auth/employee/login", authHandler.EmployeeLogin)
	mux.HandleFunc("/auth/me", authHandler.Me)
	mux.HandleFunc("/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("/auth/logout", authHandler.Logout)
	mux.HandleFunc("/projects", projectHandler.Projects)
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(strings.TrimRight(r.URL.Path, "/"), "/tasks") {
			taskHandler.ProjectTasks(w, r)
			return
		}
		projectHandler.ProjectByID(w, r)
	})
	mux.HandleFunc("/tasks", taskHandler.Tasks)
	mux.HandleFunc("/tasks/", taskHandler.TaskByID)

	server := &http.Server{
		Addr:    ":" + pickPort(conf.HTTPPort, "8080"),
		Handler: applyHTTPMiddleware(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Println("shutdown signal received")
	case err := <-errCh:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown error: %v", err)
	}
	logger.Println("server stopped")
}

func mustConnectDB(conf cfg.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		conf.DBHost,
		conf.DBPort,
		conf.DBUser,
		conf.DBPassword,
		conf.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to init sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func applyHTTPMiddleware(mux *http.ServeMux) http.Handler {
	handler := http.Handler(mux)
	handler = auth.RequestSizeLimitMiddleware(5 << 20)(handler)
	handler = auth.CORSMiddleware(handler)
	handler = auth.SecurityHeadersMiddleware(handler)
	return handler
}

func pickPort(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func parseSeconds(value string, fallback int64) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return seconds
}
