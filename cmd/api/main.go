package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recipepal/server/config"
	"github.com/recipepal/server/internal/api"
	"github.com/recipepal/server/internal/database"
	"github.com/recipepal/server/internal/middleware"
	"github.com/recipepal/server/internal/router"
	"github.com/recipepal/server/internal/server"
	"github.com/recipepal/server/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Rate limiting is optional; it needs Redis so limits hold across
	// processes.
	var rateLimiter *middleware.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient, err := database.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		rateLimiter = middleware.NewRecipeMutationRateLimiter(redisClient)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)

	authHandler := api.NewAuthHandler(authService)
	recipeHandler := api.NewRecipeHandler(recipeService)

	r := router.Setup(db, authHandler, recipeHandler, authService, cfg.AllowedOrigins, rateLimiter)
	srv := server.New(cfg.Addr(), r)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Addr())
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
