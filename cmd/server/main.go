package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homehelper-backend/internal/config"
	"homehelper-backend/internal/database"
	"homehelper-backend/internal/handlers"
	"homehelper-backend/internal/repository"
	"homehelper-backend/internal/router"
	"homehelper-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Home Helper...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Wiring ────
	chatRepo := repository.NewChatRepo(pool)
	sessionStore := services.NewSessionStore(redisClient, cfg.DefaultModel)
	ollamaService := services.NewOllamaService(cfg.OllamaBaseURL, cfg.Temperature, cfg.TopP, cfg.MaxTokens)
	chatService := services.NewChatService(chatRepo, ollamaService, config.DefaultSystemPrompt, cfg.ChatHistoryLimit)

	chatHandler := handlers.NewChatHandler(chatService, sessionStore)
	indexHandler := handlers.NewIndexHandler(chatService, sessionStore)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(indexHandler, chatHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		// Completion calls can block for up to two minutes.
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Home Helper ready on http://localhost:%s", cfg.Port)
	log.Printf("  Default model: %s", cfg.DefaultModel)
	log.Printf("  Ollama URL:    %s", cfg.OllamaBaseURL)
	log.Println("  Make sure Ollama is running with: ollama serve")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
