package main

import (
	"context"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/router"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/config"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/firebase"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/logger"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/redis"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Env)
	log := logger.Get()

	// Initialize Firebase (auth + Firestore)
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Firebase")
	}
	log.Info().Msg("Firebase app, auth and Firestore clients initialized")

	// Redis is optional; without it realtime fan-out stays in-process.
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redis.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			firebaseApp.Close()
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Redis connected")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	hub, manager := router.SetupRoutes(e, cfg, firebaseApp.Firestore, firebaseApp.AuthClient, redisClient)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	serveErr := e.Start(":" + cfg.Port)

	// Fatal skips deferred calls, so tear down explicitly before exiting.
	manager.Shutdown()
	hub.Shutdown()
	if redisClient != nil {
		redisClient.Close()
	}
	firebaseApp.Close()

	log.Fatal().Err(serveErr).Msg("server stopped")
}
