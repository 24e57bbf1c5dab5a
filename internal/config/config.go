package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
		RateLimit   struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // badger | mysql | postgres
		Badger struct {
			Path     string `yaml:"path"`
			InMemory bool   `yaml:"inMemory"`
		} `yaml:"badger"`
	} `yaml:"storage"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Narrative struct {
		Provider    string        `yaml:"provider"` // proxy | anthropic | openai | none
		ProxyURL    string        `yaml:"proxyURL"`
		Model       string        `yaml:"model"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxTokens   int           `yaml:"maxTokens"`
		Temperature *float64      `yaml:"temperature"`
		// secrets, from the environment only
		AnthropicKey string `yaml:"-"`
		OpenAIKey    string `yaml:"-"`
	} `yaml:"narrative"`

	Autosave struct {
		Debounce time.Duration `yaml:"debounce"` // 0 keeps the per-variant default
	} `yaml:"autosave"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | text
	} `yaml:"log"`
}

// Load baca file config.yaml, lalu isi default dan secret dari env
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.Narrative.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.Narrative.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit.RPS == 0 {
		c.Server.RateLimit.RPS = 5
	}
	if c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = 20
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "badger"
	}
	if c.Storage.Badger.Path == "" && !c.Storage.Badger.InMemory {
		c.Storage.Badger.Path = "data/badger"
	}
	if c.Narrative.Provider == "" {
		c.Narrative.Provider = "proxy"
	}
	if c.Narrative.ProxyURL == "" {
		c.Narrative.ProxyURL = "http://localhost:8080/api/analyze"
	}
	if c.Narrative.Timeout == 0 {
		c.Narrative.Timeout = 30 * time.Second
	}
	if c.Narrative.MaxTokens == 0 {
		c.Narrative.MaxTokens = 4000
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "badger", "mysql", "postgres":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Narrative.Provider {
	case "proxy", "anthropic", "openai", "none":
	default:
		return fmt.Errorf("config: unknown narrative provider %q", c.Narrative.Provider)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// NewLogger builds the process logger from the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
