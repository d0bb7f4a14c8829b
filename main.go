package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"example.com/fieldset/api"
	"example.com/fieldset/kvstore"
	"example.com/fieldset/registry"
)

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real environment variables win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	dbPath := getEnv("FIELDSET_DB", "fieldset.db")
	kv, err := kvstore.OpenSQLite(dbPath)
	if err != nil {
		logger.Fatal("Failed to open slot store", zap.String("path", dbPath), zap.Error(err))
	}

	store := registry.NewStore(kv, logger)
	fieldsetAPI := api.NewAPI(store, logger)

	router := gin.Default()
	fieldsetAPI.RegisterRoutes(router)

	addr := ":" + getEnv("PORT", "8080")
	logger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
