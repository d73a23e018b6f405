package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration.
type Config struct {
	Port             string        `env:"PORT" envDefault:"3000"`
	Env              string        `env:"ENV" envDefault:"dev"`
	TailorAPIURL     string        `env:"TAILOR_API_URL" envDefault:"http://localhost:8000"`
	LoginDelay       time.Duration `env:"LOGIN_DELAY" envDefault:"1s"`
	CORSAllowOrigin  []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ObjectStoreType  string        `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir    string        `env:"LOCAL_STORE_DIR" envDefault:"./data"`
	AWSRegion        string        `env:"AWS_REGION"`
	S3Bucket         string        `env:"S3_BUCKET"`
	S3Prefix         string        `env:"S3_PREFIX" envDefault:"profiles/"`
	SSEKMSKeyID      string        `env:"SSE_KMS_KEY_ID"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	MaxUploadBytes   int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	CookieSecure     bool          `env:"COOKIE_SECURE" envDefault:"false"`
	TailorRatePerMin float64       `env:"TAILOR_RATE_PER_MIN" envDefault:"6"`
	TailorBurst      int           `env:"TAILOR_BURST" envDefault:"3"`
}

// Load reads configuration from environment variables with sensible defaults.
// A variable that is set but cannot be parsed is an error, never a silent zero.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg = Normalize(cfg)

	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is recommended in production; sessions will not survive restarts")
	}
	return cfg, nil
}

// Normalize fills empty fields with defaults and canonicalizes enumerations.
// Tests build Config literals directly and rely on this for the zero values.
func Normalize(cfg Config) Config {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)
	cfg.TailorAPIURL = strings.TrimRight(strings.TrimSpace(cfg.TailorAPIURL), "/")
	if cfg.TailorAPIURL == "" {
		cfg.TailorAPIURL = "http://localhost:8000"
	}
	if cfg.LocalStoreDir == "" {
		cfg.LocalStoreDir = "./data"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.LoginDelay < 0 {
		cfg.LoginDelay = 0
	}
	cfg.CORSAllowOrigin = splitAndTrim(cfg.CORSAllowOrigin)
	return cfg
}

func splitAndTrim(raw []string) []string {
	var out []string
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
