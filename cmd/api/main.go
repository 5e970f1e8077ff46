package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/protomedic/emstags/internal/ai"
	"github.com/protomedic/emstags/internal/cache"
	"github.com/protomedic/emstags/internal/config"
	"github.com/protomedic/emstags/internal/database"
	"github.com/protomedic/emstags/internal/handlers"
	"github.com/protomedic/emstags/internal/models"
	"github.com/protomedic/emstags/internal/promptrule"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.Protocol{},
		&models.Tag{},
		&models.PromptRule{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire the tag generation engine
	rules := promptrule.NewStore(db.DB, cache.NewMemory())

	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	registry := ai.NewRegistry()
	if err := registry.Register(ai.NewOpenAIClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, timeout)); err != nil {
		log.Fatalf("Failed to register OpenAI provider: %v", err)
	}
	if err := registry.Register(ai.NewGroqClient(cfg.AI.GroqAPIKey, cfg.AI.GroqModel, cfg.AI.GroqBaseURL, timeout)); err != nil {
		log.Fatalf("Failed to register Groq provider: %v", err)
	}
	generator := ai.NewGenerator(registry, rules, cfg.AI.DefaultProvider)
	log.Printf("✅ Tag generation providers registered (default: %s)", cfg.AI.DefaultProvider)

	// 5. Set up HTTP router
	router := handlers.NewRouter(db, rules, generator)

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
