package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"discord-role-scheduler/model"

	"github.com/joho/godotenv"
)

// Load loads the configuration from environment variables and JSON files.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	cfg := &model.Config{
		BotToken:        token,
		AppID:           appID,
		DBPath:          envOrDefault("DB_PATH", "data/scheduler.db"),
		TickSpec:        envOrDefault("TICK_SPEC", "@every 1m"),
		ExecutorWorkers: envInt("EXECUTOR_WORKERS", 3),
		BaseTargetCap:   envInt("BASE_TARGET_CAP", 500),
		SnapshotTimeout: time.Duration(envInt("SNAPSHOT_TIMEOUT_SECONDS", 30)) * time.Second,
		TierCaps:        make(map[string]int),
	}

	// Raised target caps per actor, keyed by user ID.
	if err := loadJSON("data/tier_caps.json", &cfg.TierCaps); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: Invalid %s value, using default of %d. Error: %v", key, fallback, err)
		return fallback
	}
	return parsed
}

func loadJSON(path string, v interface{}) error {
	configFile, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: Config file not found at %s, skipping.", path)
			return nil
		}
		return err
	}
	return json.Unmarshal(configFile, v)
}
