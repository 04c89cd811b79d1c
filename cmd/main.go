package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/handlers"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/repositories"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/services"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/session"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.User{}, &models.Equipment{}, &models.BorrowRequest{}, &models.BorrowItem{}); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	sessionTTL := 24 * time.Hour
	if v := os.Getenv("SESSION_TTL_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			sessionTTL = d
		}
	}

	userRepo := repositories.NewUserRepository(db)
	equipmentRepo := repositories.NewEquipmentRepository(db)
	requestRepo := repositories.NewBorrowRequestRepository(db)
	itemRepo := repositories.NewBorrowItemRepository(db)

	sessions := session.NewStore(rdb, sessionTTL)
	authService := services.NewAuthService(userRepo, sessions, []byte(jwtSecret), sessionTTL)
	equipmentService := services.NewEquipmentService(equipmentRepo)
	borrowService := services.NewBorrowService(db, userRepo, equipmentRepo, requestRepo, itemRepo)

	router := gin.Default()
	if origin := os.Getenv("WEB_ORIGIN"); origin != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{origin},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	handlers.RegisterRoutes(router, authService, equipmentService, borrowService, sessions, []byte(jwtSecret))

	serverAddr := getenv("SERVER_ADDR", ":8080")

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
