package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	LLMProviderBedrock = "bedrock"
	LLMProviderGemini  = "gemini"
)

type Config struct {
	Port            string
	AwsAccessKey    string
	AwsSecretKey    string
	AwsRegion       string
	BucketName      string
	LLMProvider     string
	BedrockModelID  string
	BedrockMaxTok   int
	AIAPIKey        string
	GenModel        string
	DatabaseURL     string
	PresignExpiry   time.Duration
	CorsOrigins     []string
	ShutdownTimeout time.Duration
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		AwsAccessKey:    getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:    getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:       getEnv("AWS_REGION", "us-east-1"),
		BucketName:      getEnv("BUCKET_NAME", ""),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", LLMProviderBedrock)),
		BedrockModelID:  getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-sonnet-20240229-v1:0"),
		BedrockMaxTok:   getEnvInt("BEDROCK_MAX_TOKENS", 1024),
		AIAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GenModel:        getEnv("GEN_MODEL", "gemini-1.5-flash"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		PresignExpiry:   getEnvDuration("PRESIGN_EXPIRY", 15*time.Minute),
		CorsOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.AwsRegion == "" {
		return fmt.Errorf("AWS_REGION not set")
	}
	if (c.AwsAccessKey == "") != (c.AwsSecretKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY and AWS_SECRET_KEY must be set together")
	}
	switch c.LLMProvider {
	case LLMProviderBedrock:
		if c.BedrockModelID == "" {
			return fmt.Errorf("BEDROCK_MODEL_ID not set")
		}
	case LLMProviderGemini:
		if c.AIAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.PresignExpiry <= 0 {
		return fmt.Errorf("PRESIGN_EXPIRY must be positive")
	}
	return nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("env value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("env value is not a duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
