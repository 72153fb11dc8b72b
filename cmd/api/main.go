// cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"greencycle-api-server/config"
	"greencycle-api-server/internal/api/routes"
	"greencycle-api-server/internal/auth"
	"greencycle-api-server/internal/database"
	"greencycle-api-server/internal/lifecycle"
	"greencycle-api-server/internal/notify"
	"greencycle-api-server/internal/s3"
	"greencycle-api-server/internal/socket"
	"greencycle-api-server/internal/stats"
	"greencycle-api-server/internal/store"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// .env is optional; real deployments use environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	ttl, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil && cfg.JWT.Expiration != "" {
		log.Fatalf("Invalid jwt.expiration %q: %v", cfg.JWT.Expiration, err)
	}
	auth.Configure(cfg.JWT.Secret, ttl)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	st := store.NewMongo(client, cfg.Mongo.DBName)

	if err := database.SeedAdmin(ctx, st, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		log.Println("S3 bucket not configured; image uploads disabled.")
	}

	wsHub := socket.NewHub()
	dispatcher := notify.NewDispatcher(st, wsHub)
	engine := lifecycle.NewEngine(st, dispatcher)
	aggregator := stats.NewAggregator(st)

	router := routes.SetupRouter(st, engine, aggregator, s3Uploader, wsHub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
