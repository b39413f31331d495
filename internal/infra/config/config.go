package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env              string
	Port             string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	LLMAPIURL        string
	LLMAPIKey        string
	LLMModel         string
	LLMTimeout       int
	LLMRequestsPS    float64
	EmbedderURL      string
	EmbedderTimeout  int
	EmbeddingModel   string
	EmbeddingDim     int
	EmbedCacheSize   int
	DefaultK         int
	DefaultMaxTokens int
	ChunkMaxWords    int
	AutoIngestDir    string
	UploadDir        string
	EnableOTelLogs   bool
}

func Load() *Config {
	// A missing .env is the normal case in container deployments.
	_ = godotenv.Load()

	return &Config{
		Env:              getEnv("ENV", "development"),
		Port:             getEnv("PORT", "8000"),
		DBHost:           getEnv("DB_HOST", "notice-db"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "notice_user"),
		DBPassword:       getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "notice_password"),
		DBName:           getEnv("DB_NAME", "notice_db"),
		LLMAPIURL:        getEnvWithAlt("LLM_API_URL", "OPENAI_BASE_URL", "http://llm-gateway:8080/v1"),
		LLMAPIKey:        getSecret("LLM_API_KEY", "LLM_API_KEY_FILE", ""),
		LLMModel:         getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeout:       getEnvInt("LLM_TIMEOUT", 120),
		LLMRequestsPS:    getEnvFloat("LLM_REQUESTS_PER_SECOND", 0),
		EmbedderURL:      getEnvWithAlt("EMBEDDER_URL", "OLLAMA_URL", "http://embedder:11434"),
		EmbedderTimeout:  getEnvInt("EMBEDDER_TIMEOUT", 30),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "embeddinggemma"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIM", 768),
		EmbedCacheSize:   getEnvInt("EMBED_CACHE_SIZE", 512),
		DefaultK:         getEnvInt("NOTICE_DEFAULT_K", 6),
		DefaultMaxTokens: getEnvInt("NOTICE_DEFAULT_MAX_TOKENS", 4096),
		ChunkMaxWords:    getEnvInt("NOTICE_CHUNK_MAX_WORDS", 250),
		AutoIngestDir:    getEnv("AUTO_INGEST_DIR", "./corpus"),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		EnableOTelLogs:   getEnvBool("ENABLE_OTEL_LOGS", false),
	}
}

// DSN renders the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	// Docker/Kubernetes secrets mount the value as a file.
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
