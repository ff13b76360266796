package types

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverMariaDB  = "mariadb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	StoreDriver string `validate:"oneof=mariadb postgres memory"`
	DBHost      string `validate:"required"`
	DBPort      int    `validate:"gt=0"`
	DBName      string `validate:"required"`
	DBUser      string `validate:"required"`
	DBPass      string

	OllamaAPI       string        `validate:"required,url"`
	EmbeddingModel  string        `validate:"required"`
	ChatModel       string        `validate:"required"`
	VectorDim       int           `validate:"gt=0"`
	EmbedTimeout    time.Duration `validate:"gt=0"`
	GenerateTimeout time.Duration `validate:"gt=0"`

	RedisURL   string
	ServerAddr string
	SeedFile   string
}

func DefaultConfig() Config {
	return Config{
		StoreDriver:     DriverMariaDB,
		DBHost:          "localhost",
		DBPort:          3306,
		DBName:          "demo_db",
		DBUser:          "root",
		DBPass:          "root",
		OllamaAPI:       "http://localhost:11434/api",
		EmbeddingModel:  "nomic-embed-text",
		ChatModel:       "tinyllama",
		VectorDim:       768,
		EmbedTimeout:    30 * time.Second,
		GenerateTimeout: 60 * time.Second,
		ServerAddr:      ":3000",
	}
}

// LoadConfig reads the environment on top of DefaultConfig. godotenv.Load
// is expected to have been called by main.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	cfg.StoreDriver = getEnv("STORE_DRIVER", cfg.StoreDriver)
	if cfg.StoreDriver == DriverPostgres {
		cfg.DBPort = 5432
	}
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPass = getEnv("DB_PASS", cfg.DBPass)
	cfg.OllamaAPI = getEnv("OLLAMA_API", cfg.OllamaAPI)
	cfg.EmbeddingModel = getEnv("EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.ChatModel = getEnv("CHAT_MODEL", cfg.ChatModel)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.ServerAddr = getEnv("SERVER_ADDR", cfg.ServerAddr)
	cfg.SeedFile = getEnv("SEED_FILE", cfg.SeedFile)

	var err error
	if cfg.DBPort, err = getEnvInt("DB_PORT", cfg.DBPort); err != nil {
		return cfg, err
	}
	if cfg.VectorDim, err = getEnvInt("VECTOR_DIM", cfg.VectorDim); err != nil {
		return cfg, err
	}
	if cfg.EmbedTimeout, err = getEnvDuration("EMBED_TIMEOUT", cfg.EmbedTimeout); err != nil {
		return cfg, err
	}
	if cfg.GenerateTimeout, err = getEnvDuration("GENERATE_TIMEOUT", cfg.GenerateTimeout); err != nil {
		return cfg, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %v", errs)
	}
	return cfg, nil
}

func (cfg *Config) Validate() map[string]string {
	return validateStruct(cfg)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}
