package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session store kinds
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	AI      AIConfig      `yaml:"ai"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	BasePath        string        `yaml:"base_path"`
	Mode            string        `yaml:"mode"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type AIConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	TipsEnabled bool          `yaml:"tips_enabled"`
}

// Enabled reports whether enough is configured to call the AI service
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

type SessionConfig struct {
	Store           string        `yaml:"store"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupSchedule string        `yaml:"cleanup_schedule"`
}

type RedisConfig struct {
	URL       string `yaml:"url"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Default returns the configuration used when no file or environment is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			BasePath:        "/api/agileflow",
			Mode:            "debug",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:9002"},
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		AI: AIConfig{
			Provider:    "gemini",
			BaseURL:     "https://generativelanguage.googleapis.com",
			Model:       "gemini-2.0-flash",
			Timeout:     60 * time.Second,
			TipsEnabled: true,
		},
		Session: SessionConfig{
			Store:           SessionStoreMemory,
			TTL:             24 * time.Hour,
			CleanupSchedule: "@every 10m",
		},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      6379,
			DB:        0,
			KeyPrefix: "agileflow:session:",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if apiKey := os.Getenv("AI_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if baseURL := os.Getenv("AI_BASE_URL"); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if timeout := os.Getenv("AI_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.AI.Timeout = d
		}
	}
	if tips := os.Getenv("AI_TIPS_ENABLED"); tips != "" {
		if b, err := strconv.ParseBool(tips); err == nil {
			cfg.AI.TipsEnabled = b
		}
	}
	if store := os.Getenv("SESSION_STORE"); store != "" {
		cfg.Session.Store = store
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.Session.TTL = d
		}
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if p, err := strconv.Atoi(redisPort); err == nil {
			cfg.Redis.Port = p
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unknown session store %q (want %s or %s)", c.Session.Store, SessionStoreMemory, SessionStoreRedis)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai timeout must be positive, got %s", c.AI.Timeout)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
