package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tellnoone/backend/internal/alert"
	"tellnoone/backend/internal/api/handler"
	"tellnoone/backend/internal/config"
	"tellnoone/backend/internal/llm"
	"tellnoone/backend/internal/match"
	"tellnoone/backend/internal/models"
	"tellnoone/backend/internal/moderation"
	"tellnoone/backend/internal/notify"
	"tellnoone/backend/internal/safety"
	"tellnoone/backend/internal/storage"
	"tellnoone/backend/internal/support"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.AnonymousMatch{},
		&models.SafetyLog{},
		&models.Profile{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting TellNoOne Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb)

	gateway := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	var alerter alert.Alerter = alert.Nop{}
	if cfg.TelegramBotToken != "" {
		tg, err := alert.NewTelegram(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.Printf("WARNING: Operator alerts disabled, Telegram init failed: %v", err)
		} else {
			alerter = tg
		}
	}

	classifier := safety.NewLLMClassifier(gateway)
	safetySvc := safety.NewService(store, classifier, alerter)
	matchSvc := match.NewService(store)
	moderationSvc := moderation.NewService(gateway)
	companion := support.NewCompanion(gateway, safetySvc)

	hub := notify.NewHub(store)
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(safetySvc, matchSvc, moderationSvc, companion, hub, store, cfg.JWTSecret)

	r.GET("/anonid", h.GetAnonID)
	r.POST("/safety/check", h.CheckSafety)
	r.POST("/match", h.RequestMatch)
	r.GET("/match/:id", h.MatchStatus)
	r.POST("/match/:id/end", h.EndMatch)
	r.POST("/feed/moderate", h.ModeratePost)
	r.POST("/support/chat", h.CompanionChat)
	r.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
