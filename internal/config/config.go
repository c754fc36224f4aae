package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Gemini generation
	GeminiAPIKey string

	// Model roster, priority order. The first entry serves requests until
	// it hits quota; later entries are substitutes.
	Models []string

	// Error-message substrings classified as quota/availability failures.
	// Backend-specific and observed, not a stable protocol, hence config.
	QuotaSignals []string

	// Optional yaml file overriding Models/QuotaSignals.
	ModelsFile string

	// Chunking
	MaxChunkSize int
	ChunkOverlap int

	// HTTP
	RequestTimeout time.Duration

	// Stats
	StatsWindow time.Duration
}

var defaultModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
}

func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Models:       envList("GEMINI_MODELS", defaultModels),
		ModelsFile:   os.Getenv("MODELS_FILE"),

		MaxChunkSize: envInt("MAX_CHUNK_SIZE", 20000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 500),

		RequestTimeout: envDuration("REQUEST_TIMEOUT", 5*time.Minute),
		StatsWindow:    envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.ModelsFile != "" {
		if err := cfg.applyModelsFile(); err != nil {
			return cfg, err
		}
	}

	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 20000
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 500
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg, nil
}

// modelsFile is the yaml shape of MODELS_FILE.
type modelsFile struct {
	Models       []string `yaml:"models"`
	QuotaSignals []string `yaml:"quota_signals"`
}

func (c *Config) applyModelsFile() error {
	data, err := os.ReadFile(c.ModelsFile)
	if err != nil {
		return fmt.Errorf("read models file: %w", err)
	}
	var mf modelsFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("parse models file: %w", err)
	}
	if len(mf.Models) > 0 {
		c.Models = mf.Models
	}
	if len(mf.QuotaSignals) > 0 {
		c.QuotaSignals = mf.QuotaSignals
	}
	return nil
}

func (c Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
