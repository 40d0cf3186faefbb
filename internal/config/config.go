package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Word sources
const (
	WordSourceMemory   = "memory"
	WordSourceRedis    = "redis"
	WordSourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Words   WordsConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds room registry and connection limits
type GameConfig struct {
	RoomCodeLength    int
	StaleRoomTimeout  time.Duration
	MessagesPerSecond float64
	MessageBurst      int
}

// WordsConfig selects and locates the word source
type WordsConfig struct {
	Source      string // "memory", "redis" or "postgres"
	CatalogFile string // optional YAML overriding the built-in catalog
	RedisURL    string
	DatabaseURL string
	Seed        bool // load the catalog into redis/postgres at start
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load reads an optional .env file, then configuration from environment
// variables with defaults. Variables already set win over the file.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			RoomCodeLength:    getEnvInt("ROOM_CODE_LENGTH", 6),
			StaleRoomTimeout:  time.Duration(getEnvInt("STALE_ROOM_TIMEOUT_MINUTES", 120)) * time.Minute,
			MessagesPerSecond: getEnvFloat("MESSAGES_PER_SECOND", 10),
			MessageBurst:      getEnvInt("MESSAGE_BURST", 20),
		},
		Words: WordsConfig{
			Source:      strings.ToLower(getEnv("WORD_SOURCE", WordSourceMemory)),
			CatalogFile: getEnv("WORD_CATALOG_FILE", ""),
			RedisURL:    getEnv("REDIS_URL", ""),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			Seed:        getEnvBool("WORD_SEED", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime
func (c *Config) Validate() error {
	switch c.Words.Source {
	case WordSourceMemory:
	case WordSourceRedis:
		if c.Words.RedisURL == "" {
			return errors.New("REDIS_URL is required when WORD_SOURCE=redis")
		}
	case WordSourcePostgres:
		if c.Words.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when WORD_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown WORD_SOURCE %q", c.Words.Source)
	}

	if c.Game.RoomCodeLength < 4 {
		return fmt.Errorf("ROOM_CODE_LENGTH must be at least 4, got %d", c.Game.RoomCodeLength)
	}
	if c.Game.MessagesPerSecond <= 0 || c.Game.MessageBurst <= 0 {
		return errors.New("MESSAGES_PER_SECOND and MESSAGE_BURST must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
