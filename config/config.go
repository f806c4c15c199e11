package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	OCR       OCRConfig
	Catalog   CatalogConfig
	Matching  MatchingConfig
	Cache     CacheConfig
	Model     ModelConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

// OCRConfig holds OCR provider configuration
type OCRConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CatalogConfig holds catalog data service configuration
type CatalogConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	AssetBaseURL string        `mapstructure:"asset_base_url"`
}

// MatchingConfig holds fuzzy matching configuration
type MatchingConfig struct {
	ConfidenceThreshold int  `mapstructure:"confidence_threshold"`
	MaxRankedLines      int  `mapstructure:"max_ranked_lines"`
	EnableDebugLogging  bool `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds OCR result cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ModelConfig holds the local classification model configuration (mobile path)
type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	OCRPerMinute int `mapstructure:"ocr_per_minute"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pharmalens/")

	// Environment variable settings
	v.SetEnvPrefix("PHARMALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 10)

	// OCR provider defaults. The API key has no usable default; registering
	// it here makes the env var visible to Unmarshal.
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.base_url", "https://api.ocr.space")
	v.SetDefault("ocr.timeout", "30s")

	// Catalog defaults
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.asset_base_url", "")
	v.SetDefault("catalog.timeout", "10s")

	// Matching defaults
	v.SetDefault("matching.confidence_threshold", 70)
	v.SetDefault("matching.max_ranked_lines", 5)
	v.SetDefault("matching.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Model defaults
	v.SetDefault("model.path", "recognition_model/package_model.onnx")

	// Rate limit defaults (ocr.space free tier)
	v.SetDefault("ratelimit.ocr_per_minute", 30)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OCR.APIKey == "" {
		return fmt.Errorf("OCR API key is required (set PHARMALENS_OCR_API_KEY)")
	}

	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required (set PHARMALENS_CATALOG_BASE_URL)")
	}

	if config.Matching.ConfidenceThreshold < 0 || config.Matching.ConfidenceThreshold > 100 {
		return fmt.Errorf("confidence threshold must be within 0..100, got: %d", config.Matching.ConfidenceThreshold)
	}

	if config.Matching.MaxRankedLines <= 0 {
		return fmt.Errorf("max ranked lines must be positive, got: %d", config.Matching.MaxRankedLines)
	}

	return nil
}
