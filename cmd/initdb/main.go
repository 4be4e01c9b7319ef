// Command initdb applies the schema and runs a quick round-trip through the
// chat store: create a chat, append two messages, list, delete.
package main

import (
	"context"
	"log"
	"os"

	"homehelper-backend/internal/config"
	"homehelper-backend/internal/database"
	"homehelper-backend/internal/models"
	"homehelper-backend/internal/repository"
)

func main() {
	log.Println("Initializing Home Helper database...")

	cfg := config.Load()

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database initialized")

	ctx := context.Background()
	repo := repository.NewChatRepo(pool)

	chat := &models.Chat{Title: "Test Chat", Model: cfg.DefaultModel}
	if err := repo.Create(ctx, chat); err != nil {
		log.Fatalf("✗ Failed to create test chat: %v", err)
	}
	log.Printf("✓ Created test chat %s", chat.ID)

	userMsg := &models.Message{ChatID: chat.ID, Role: "user", Content: "Hello, this is a test message!"}
	if err := repo.AppendMessage(ctx, userMsg); err != nil {
		log.Fatalf("✗ Failed to append user message: %v", err)
	}
	assistantMsg := &models.Message{ChatID: chat.ID, Role: "assistant", Content: "Hi! I'm your AI assistant. This is a test response."}
	if err := repo.AppendMessage(ctx, assistantMsg); err != nil {
		log.Fatalf("✗ Failed to append assistant message: %v", err)
	}
	log.Println("✓ Added test messages")

	chats, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("✗ Failed to list chats: %v", err)
	}
	log.Printf("✓ Retrieved %d chats", len(chats))

	if err := repo.Delete(ctx, chat.ID); err != nil {
		log.Fatalf("✗ Failed to clean up test chat: %v", err)
	}
	log.Println("✓ Cleaned up test data")

	log.Println("Database is ready to use. Start the server with: go run ./cmd/server")
	os.Exit(0)
}
