package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort          string
	AppMode          string
	LogMode          string
	CORSOrigins      []string
	RedisEnabled     bool
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	RedisChannel     string
	SeedDemoData     bool
	EnableTestEvents bool
	SimulatorEvery   time.Duration
	ClientSendBuffer int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:          getEnv("APP_PORT", "3002"),
		AppMode:          getEnv("APP_MODE", "debug"),
		LogMode:          getEnv("LOG_MODE", "development"),
		CORSOrigins:      getEnvAsList("CORS_ORIGINS", []string{"*"}),
		RedisEnabled:     getEnvAsBool("REDIS_ENABLED", false),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		RedisChannel:     getEnv("REDIS_CHANNEL", "channel:atendimentos"),
		SeedDemoData:     getEnvAsBool("SEED_DEMO_DATA", false),
		EnableTestEvents: getEnvAsBool("ENABLE_TEST_EVENTS", false),
		SimulatorEvery:   time.Duration(getEnvAsInt("SIMULATOR_INTERVAL_SEC", 0)) * time.Second,
		ClientSendBuffer: getEnvAsInt("CLIENT_SEND_BUFFER", 256),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
