package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "AWS_REGION", "LLM_PROVIDER", "PRESIGN_EXPIRY", "CORS_ORIGINS", "BEDROCK_MAX_TOKENS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.AwsRegion != "us-east-1" {
		t.Errorf("AwsRegion = %q", cfg.AwsRegion)
	}
	if cfg.LLMProvider != LLMProviderBedrock {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
	if cfg.PresignExpiry != 15*time.Minute {
		t.Errorf("PresignExpiry = %v", cfg.PresignExpiry)
	}
	if diff := cmp.Diff([]string{"http://localhost:5173"}, cfg.CorsOrigins); diff != "" {
		t.Errorf("CorsOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.BedrockMaxTok != 1024 {
		t.Errorf("BedrockMaxTok = %d", cfg.BedrockMaxTok)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("PRESIGN_EXPIRY", "5m")
	t.Setenv("BEDROCK_MAX_TOKENS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LLMProvider != LLMProviderGemini {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
	if cfg.PresignExpiry != 5*time.Minute {
		t.Errorf("PresignExpiry = %v", cfg.PresignExpiry)
	}
	if cfg.BedrockMaxTok != 1024 {
		t.Errorf("BedrockMaxTok = %d, want default on bad input", cfg.BedrockMaxTok)
	}
	if diff := cmp.Diff([]string{"http://a.test", "http://b.test"}, cfg.CorsOrigins); diff != "" {
		t.Errorf("CorsOrigins mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		AwsRegion:      "us-east-1",
		LLMProvider:    LLMProviderBedrock,
		BedrockModelID: "model",
		PresignExpiry:  time.Minute,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"no region", func(c *Config) { c.AwsRegion = "" }, true},
		{"half credentials", func(c *Config) { c.AwsAccessKey = "id" }, true},
		{"full credentials", func(c *Config) { c.AwsAccessKey, c.AwsSecretKey = "id", "secret" }, false},
		{"gemini without key", func(c *Config) { c.LLMProvider = LLMProviderGemini }, true},
		{"unknown provider", func(c *Config) { c.LLMProvider = "other" }, true},
		{"zero expiry", func(c *Config) { c.PresignExpiry = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
