package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "CONFIG_FILE"

	// DefaultUserAgent mimics a desktop browser; several hosts refuse bare HTTP clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"
)

type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"requestTimeout"`
	MaxRequestBodySize int64         `yaml:"maxRequestBodySize"`
	MaxUploadSize      int64         `yaml:"maxUploadSize"`

	Fetch         FetchConfig         `yaml:"fetch"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Summarization SummarizationConfig `yaml:"summarization"`
	Storage       StorageConfig       `yaml:"storage"`
	Database      DatabaseConfig      `yaml:"database"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// FetchConfig controls outbound requests to analyzed resources.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"maxBytes"`
	UserAgent string        `yaml:"userAgent"`
}

// OpenAIConfig describes the chat completion backend.
type OpenAIConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	VisionModel string  `yaml:"visionModel"`
	Temperature float32 `yaml:"temperature"`
}

// SummarizationConfig tunes text budgets and the chunk-and-reduce step.
type SummarizationConfig struct {
	ChunkSize       int  `yaml:"chunkSize"`
	ReduceThreshold int  `yaml:"reduceThreshold"`
	TextByteBudget  int  `yaml:"textByteBudget"`
	MapWorkers      int  `yaml:"mapWorkers"`
	ReduceText      bool `yaml:"reduceText"`
}

// StorageConfig holds Azure Blob credentials. An empty account disables uploads.
type StorageConfig struct {
	AccountName string        `yaml:"accountName"`
	AccountKey  string        `yaml:"accountKey"`
	ServiceURL  string        `yaml:"serviceUrl"`
	Container   string        `yaml:"container"`
	PresignTTL  time.Duration `yaml:"presignTtl"`
}

// Enabled reports whether object storage credentials were supplied.
func (s StorageConfig) Enabled() bool {
	return s.AccountName != "" && s.AccountKey != ""
}

// DatabaseConfig points at the SQLite file used for history.
type DatabaseConfig struct {
	Path         string        `yaml:"path"`
	ProbeTimeout time.Duration `yaml:"probeTimeout"`
}

// KafkaConfig enables analysis event publishing when brokers are set.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func Default() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     2 * time.Minute,
		MaxRequestBodySize: 1 << 20,  // 1MB
		MaxUploadSize:      50 << 20, // 50MB
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			MaxBytes:  25 << 20,
			UserAgent: DefaultUserAgent,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			VisionModel: "gpt-4o",
			Temperature: 0.2,
		},
		Summarization: SummarizationConfig{
			ChunkSize:       4000,
			ReduceThreshold: 12000,
			TextByteBudget:  1000,
			MapWorkers:      1,
		},
		Storage: StorageConfig{
			Container:  "uploads",
			PresignTTL: 60 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:         "content-inspector.db",
			ProbeTimeout: 2 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: "content-analysis",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE and environment overrides, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", c.MaxRequestBodySize)
	c.MaxUploadSize = parseIntOrDefault("MAX_UPLOAD_SIZE", c.MaxUploadSize)

	c.Fetch.Timeout = parseDurationOrDefault("FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.MaxBytes = parseIntOrDefault("MAX_FETCH_BYTES", c.Fetch.MaxBytes)
	c.Fetch.UserAgent = getEnvOrDefault("FETCH_USER_AGENT", c.Fetch.UserAgent)

	c.OpenAI.APIKey = getEnvOrDefault("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.OpenAI.Model = getEnvOrDefault("OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.VisionModel = getEnvOrDefault("OPENAI_VISION_MODEL", c.OpenAI.VisionModel)

	c.Summarization.ChunkSize = int(parseIntOrDefault("SUMMARIZE_CHUNK_SIZE", int64(c.Summarization.ChunkSize)))
	c.Summarization.ReduceThreshold = int(parseIntOrDefault("SUMMARIZE_REDUCE_THRESHOLD", int64(c.Summarization.ReduceThreshold)))
	c.Summarization.TextByteBudget = int(parseIntOrDefault("SUMMARIZE_TEXT_BUDGET", int64(c.Summarization.TextByteBudget)))
	c.Summarization.MapWorkers = int(parseIntOrDefault("SUMMARIZE_MAP_WORKERS", int64(c.Summarization.MapWorkers)))
	c.Summarization.ReduceText = parseBoolOrDefault("SUMMARIZE_REDUCE_TEXT", c.Summarization.ReduceText)

	c.Storage.AccountName = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", c.Storage.AccountName)
	c.Storage.AccountKey = getEnvOrDefault("AZURE_STORAGE_KEY", c.Storage.AccountKey)
	c.Storage.ServiceURL = getEnvOrDefault("AZURE_STORAGE_URL", c.Storage.ServiceURL)
	c.Storage.Container = getEnvOrDefault("AZURE_STORAGE_CONTAINER", c.Storage.Container)
	c.Storage.PresignTTL = parseDurationOrDefault("PRESIGN_TTL", c.Storage.PresignTTL)

	c.Database.Path = getEnvOrDefault("DB_PATH", c.Database.Path)
	c.Database.ProbeTimeout = parseDurationOrDefault("DB_PROBE_TIMEOUT", c.Database.ProbeTimeout)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	c.Kafka.Topic = getEnvOrDefault("KAFKA_TOPIC", c.Kafka.Topic)

	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", c.Logging.Format)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 || c.MaxUploadSize <= 0 || c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("size limits must be > 0 (got body=%d, upload=%d, fetch=%d)",
			c.MaxRequestBodySize, c.MaxUploadSize, c.Fetch.MaxBytes)
	}
	if c.RequestTimeout <= 0 || c.Fetch.Timeout <= 0 || c.Database.ProbeTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, probe=%s)",
			c.RequestTimeout, c.Fetch.Timeout, c.Database.ProbeTimeout)
	}
	s := c.Summarization
	if s.ChunkSize <= 0 || s.ReduceThreshold <= 0 || s.TextByteBudget <= 0 {
		return fmt.Errorf("summarization sizes must be > 0 (got chunk=%d, threshold=%d, budget=%d)",
			s.ChunkSize, s.ReduceThreshold, s.TextByteBudget)
	}
	if s.MapWorkers < 1 {
		return fmt.Errorf("SUMMARIZE_MAP_WORKERS must be >= 1 (got %d)", s.MapWorkers)
	}
	if c.Storage.PresignTTL <= 0 {
		return fmt.Errorf("PRESIGN_TTL must be > 0 (got %s)", c.Storage.PresignTTL)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when brokers are set")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
