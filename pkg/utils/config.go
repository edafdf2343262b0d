package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files if present. Real environment variables win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("[config] load %s: %v", f, err)
		}
	}
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	return AuthConfig{
		// dev default, override in any shared deployment
		JWTSecret:   getEnv("EVENTHUB_JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:   getEnv("EVENTHUB_JWT_ISSUER", "eventhub"),
		JWTDuration: time.Duration(getEnvInt("EVENTHUB_JWT_TTL_HOURS", 24)) * time.Hour,
	}
}

type ServerConfig struct {
	HTTPAddr string
	GrpcAddr string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr: getEnv("EVENTHUB_HTTP_ADDR", ":8080"),
		GrpcAddr: getEnv("EVENTHUB_GRPC_ADDR", ":9090"),
	}
}

// LoadGrpcConfig is kept for the standalone grpc binary.
func LoadGrpcConfig() ServerConfig { return LoadServerConfig() }

// RefreshConfig drives the live-data refresh: where the backend
// functions live, what to scrape, and which AI gateway to ask.
type RefreshConfig struct {
	FunctionsURL string
	ScrapeURL    string
	Platform     string
	FeedURL      string
	AIURL        string
	AIKey        string
	AIModel      string
}

const (
	defaultScrapeURL = "https://dice.fm/browse/new_york"
	defaultAIURL     = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultAIModel   = "google/gemini-3-flash-preview"
)

func LoadRefreshConfig() RefreshConfig {
	return RefreshConfig{
		FunctionsURL: strings.TrimRight(getEnv("EVENTHUB_FUNCTIONS_URL", "http://localhost:8080/functions"), "/"),
		ScrapeURL:    getEnv("EVENTHUB_SCRAPE_URL", defaultScrapeURL),
		Platform:     getEnv("EVENTHUB_SCRAPE_PLATFORM", "dice"),
		FeedURL:      getEnv("EVENTHUB_FEED_URL", "http://localhost:9000"),
		AIURL:        getEnv("EVENTHUB_AI_URL", defaultAIURL),
		AIKey:        os.Getenv("EVENTHUB_AI_KEY"),
		AIModel:      getEnv("EVENTHUB_AI_MODEL", defaultAIModel),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvInt falls back to def when the value is missing or not a positive int.
func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
