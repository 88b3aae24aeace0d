package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/itgelzam/portal/internal/auth"
	"github.com/itgelzam/portal/internal/config"
	"github.com/itgelzam/portal/internal/db"
	routes "github.com/itgelzam/portal/internal/http"
	"github.com/itgelzam/portal/internal/models"
	"github.com/itgelzam/portal/internal/storage"
	"github.com/itgelzam/portal/internal/ws"
)

func main() {
	// Running in production without a .env file is fine, env vars apply.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	log.Println("Running database migrations...")
	if err := database.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations complete.")

	store, err := storage.NewStore(cfg.MediaDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	env := &routes.Env{
		DB:            database,
		Hub:           hub,
		Tokens:        auth.NewTokenIssuer(cfg.SecretKey, time.Duration(cfg.TokenExpiry)*time.Minute),
		Store:         store,
		AdminPassword: cfg.AdminPassword,
	}

	router := gin.Default()
	routes.SetupRoutes(router, env, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
