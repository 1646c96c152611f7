package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leaderboard-service/config"
	"leaderboard-service/handlers"
	"leaderboard-service/services"
	"leaderboard-service/utils"
	"leaderboard-service/workers"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := services.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	store := services.NewGormScoreStore(db)
	verifier := services.NewTurnstileClient(cfg.TurnstileVerifyURL, cfg.TurnstileSecret, utils.NewHTTPClient(cfg.HTTPClientTimeout))
	sessions := services.NewSessionSigner(cfg.SessionSecret, cfg.SessionWindow)
	leaderboardService := services.NewLeaderboardService(store, verifier, sessions, cfg.LeaderboardLimit)

	app := handlers.NewApp(handlers.AppConfig{
		AllowedOrigin: cfg.AllowedOrigin,
		BodyLimit:     cfg.BodyLimit,
	}, leaderboardService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var snapshotWorker *workers.SnapshotWorker
	if cfg.SnapshotEnabled() {
		r2Client, err := utils.NewR2Client(ctx, cfg.CloudflareAccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret)
		if err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		uploader := utils.NewR2Uploader(r2Client, cfg.R2Bucket)
		snapshotWorker = workers.NewSnapshotWorker(store, uploader, cfg.SnapshotPrefix, cfg.LeaderboardLimit, cfg.SnapshotInterval)
		if err := snapshotWorker.Start(ctx); err != nil {
			log.Fatal("failed to start snapshot worker: ", err)
		}
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set, leaderboard snapshot export disabled")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origin: %s", cfg.AllowedOrigin)
	log.Printf("✅ Session window: %s", cfg.SessionWindow)

	<-ctx.Done()
	log.Println("Shutting down server...")

	if snapshotWorker != nil {
		if err := snapshotWorker.Stop(); err != nil {
			log.Printf("snapshot worker shutdown: %v", err)
		}
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
