package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prismfin/prism/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig                 `mapstructure:"server"`
	Benchmark BenchmarkConfig              `mapstructure:"benchmark"`
	Quotes    map[string]QuoteSourceConfig `mapstructure:"quotes"`
	LLM       LLMConfig                    `mapstructure:"llm"`
	Upload    UploadConfig                 `mapstructure:"upload"`
	Archive   ArchiveConfig                `mapstructure:"archive"`
	Metrics   MetricsConfig                `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// BenchmarkConfig names the market comparator used for beta/covariance.
type BenchmarkConfig struct {
	Symbol string `mapstructure:"symbol"`
}

type QuoteSourceConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Markets  []string `mapstructure:"markets"`
	Interval string   `mapstructure:"interval"`
	APIKey   string   `mapstructure:"api_key"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// UploadConfig bounds the in-memory dataset store for uploaded spreadsheets.
type UploadConfig struct {
	MaxDatasets  int           `mapstructure:"max_datasets"`
	TTL          time.Duration `mapstructure:"ttl"`
	MaxSizeBytes int64         `mapstructure:"max_size_bytes"`
}

// ArchiveConfig selects the backend for archiving raw uploads.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Benchmark: BenchmarkConfig{
			Symbol: "SPY",
		},
		Upload: UploadConfig{
			MaxDatasets:  100,
			TTL:          1 * time.Hour,
			MaxSizeBytes: 5 << 20,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "data/uploads",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Benchmark validation
	if c.Benchmark.Symbol == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("benchmark symbol required"))
	}

	// Upload validation
	if c.Upload.MaxDatasets < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upload max_datasets must be positive, got %d", c.Upload.MaxDatasets))
	}
	if c.Upload.MaxSizeBytes < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upload max_size_bytes must be positive, got %d", c.Upload.MaxSizeBytes))
	}

	// Archive validation
	switch c.Archive.Type {
	case "localfs", "s3", "":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %s", c.Archive.Type))
	}

	// LLM validation - if provider set, check config exists
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		case "ollama":
			if c.LLM.Ollama.Endpoint == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("ollama endpoint required when provider is ollama"))
			}
		}
	}

	return nil
}
