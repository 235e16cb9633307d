package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv     string
	Port        string
	JWTSecret   string
	FrontendDir string
	Database    DatabaseConfig
	Canvas      CanvasConfig
	Log         LogConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// CanvasConfig holds the floor plan geometry shared by clamping and clients
type CanvasConfig struct {
	Width         float64
	Height        float64
	BaseSize      float64
	DragThreshold float64
	LeavePolicy   string // "commit" or "cancel"
	CommitTimeout time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig holds the optional event bus connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig limits REST requests per client
type RateLimitConfig struct {
	RPS   int
	Burst int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	p := &parser{}
	cfg := &Config{
		NodeEnv:     getEnv("NODE_ENV", "development"),
		Port:        getEnv("PORT", "3210"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendDir: os.Getenv("FRONTEND_DIR"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "ecktables"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Canvas: CanvasConfig{
			Width:         p.float("FLOORPLAN_CANVAS_WIDTH", 800),
			Height:        p.float("FLOORPLAN_CANVAS_HEIGHT", 800),
			BaseSize:      p.float("FLOORPLAN_BASE_SIZE", 80),
			DragThreshold: p.float("FLOORPLAN_DRAG_THRESHOLD", 4),
			LeavePolicy:   getEnv("FLOORPLAN_LEAVE_POLICY", "commit"),
			CommitTimeout: p.duration("FLOORPLAN_COMMIT_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.int("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			RPS:   p.int("RATE_LIMIT_RPS", 20),
			Burst: p.int("RATE_LIMIT_BURST", 40),
		},
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 || cfg.Canvas.BaseSize <= 0 {
		return nil, fmt.Errorf("floor plan canvas and base size must be positive")
	}
	if cfg.Canvas.LeavePolicy != "commit" && cfg.Canvas.LeavePolicy != "cancel" {
		return nil, fmt.Errorf("FLOORPLAN_LEAVE_POLICY must be commit or cancel, got %q", cfg.Canvas.LeavePolicy)
	}
	return cfg, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser keeps the first conversion error
type parser struct {
	err error
}

func (p *parser) float(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}
