package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/anonto42/community/backend/pkg/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	Env         string `yaml:"env"`
	CORSOrigin  string `yaml:"cors_origin"`
	LogLevel    string `yaml:"log_level"`
	LogPretty   bool   `yaml:"log_pretty"`
	MongoURI    string `yaml:"mongo_uri"`
	MongoDB     string `yaml:"mongo_database"`
	PostgresURL string `yaml:"postgres_url"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
	RelationsMode string        `yaml:"relations_mode"`

	StreamAppID     string `yaml:"stream_app_id"`
	StreamAPIKey    string `yaml:"stream_api_key"`
	StreamAPISecret string `yaml:"stream_api_secret"`

	FirebaseCredentialsPath string `yaml:"firebase_credentials_path"`
	FirebaseStorageBucket   string `yaml:"firebase_storage_bucket"`
}

// Load reads .env, then the optional YAML file named by CONFIG_FILE, then environment overrides
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("No .env file found, assuming environment variables are set.")
	}

	cfg := defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:          "8000",
		Env:           "development",
		CORSOrigin:    "http://localhost:3000",
		LogLevel:      "info",
		LogPretty:     true,
		MongoURI:      "mongodb://127.0.0.1:27017",
		MongoDB:       "CommUnityDB",
		SessionTTL:    time.Hour,
		BcryptCost:    10,
		RelationsMode: "set",
	}
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDB = getEnv("MONGO_DATABASE", c.MongoDB)
	c.PostgresURL = getEnv("POSTGRES_URL", c.PostgresURL)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.RelationsMode = getEnv("RELATIONS_MODE", c.RelationsMode)
	c.StreamAppID = getEnv("STREAM_APP_ID", c.StreamAppID)
	c.StreamAPIKey = getEnv("STREAM_API_KEY", c.StreamAPIKey)
	c.StreamAPISecret = getEnv("STREAM_API_SECRET", c.StreamAPISecret)
	c.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", c.FirebaseCredentialsPath)
	c.FirebaseStorageBucket = getEnv("FIREBASE_STORAGE_BUCKET", c.FirebaseStorageBucket)

	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.LogPretty = b
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		c.BcryptCost = n
	}
	return nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.PostgresURL == "" {
		return fmt.Errorf("POSTGRES_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	switch c.RelationsMode {
	case "set", "append":
	default:
		return fmt.Errorf("RELATIONS_MODE must be \"set\" or \"append\", got %q", c.RelationsMode)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
