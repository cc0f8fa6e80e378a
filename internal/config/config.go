package config

import (
	"fmt"
	"strings"
	"time"

	"eshop/mapper/internal/domain"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Sources  SourcesConfig  `mapstructure:"sources"`
	Cache    CacheConfig    `mapstructure:"cache"`
	AI       AIConfig       `mapstructure:"ai"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SourcesConfig holds the taxonomy feed endpoints and fetch behavior
type SourcesConfig struct {
	HeurekaURL string `mapstructure:"heureka_url"`
	ZboziURL   string `mapstructure:"zbozi_url"`
	GoogleURL  string `mapstructure:"google_url"`
	GlamiURL   string `mapstructure:"glami_url"`

	Timeout              int `mapstructure:"timeout"`
	MaxRetries           int `mapstructure:"max_retries"`
	MaxRequestsPerSecond int `mapstructure:"max_requests_per_second"`
}

// FeedURL returns the configured taxonomy endpoint for a platform
func (s SourcesConfig) FeedURL(platform domain.Platform) (string, error) {
	switch platform {
	case domain.PlatformHeureka:
		return s.HeurekaURL, nil
	case domain.PlatformZbozi:
		return s.ZboziURL, nil
	case domain.PlatformGoogle:
		return s.GoogleURL, nil
	case domain.PlatformGlami:
		return s.GlamiURL, nil
	default:
		return "", fmt.Errorf("no feed URL for platform %q", platform)
	}
}

// CacheConfig holds taxonomy cache settings
type CacheConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// TTL returns the snapshot time-to-live as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// AIConfig holds the category verification model settings
type AIConfig struct {
	APIKey               string `mapstructure:"api_key"`
	Model                string `mapstructure:"model"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	MaxCandidates        int    `mapstructure:"max_candidates"`
}

// BatchConfig holds batch run settings
type BatchConfig struct {
	Platforms          []string `mapstructure:"platforms"`
	UseAI              bool     `mapstructure:"use_ai"`
	OverwriteExisting  bool     `mapstructure:"overwrite_existing"`
	CheckpointInterval int      `mapstructure:"checkpoint_interval"`
	InputFile          string   `mapstructure:"input_file"`
	OutputFile         string   `mapstructure:"output_file"`
}

// RequestedPlatforms converts the configured platform names. An empty
// list means all supported platforms.
func (b BatchConfig) RequestedPlatforms() ([]domain.Platform, error) {
	if len(b.Platforms) == 0 {
		return domain.Platforms, nil
	}
	out := make([]domain.Platform, 0, len(b.Platforms))
	for _, name := range b.Platforms {
		p := domain.Platform(strings.ToLower(strings.TrimSpace(name)))
		if !p.Valid() {
			return nil, fmt.Errorf("unknown platform %q in batch.platforms", name)
		}
		out = append(out, p)
	}
	return out, nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("sources.heureka_url", "https://www.heureka.cz/direct/xml-export/shops/heureka-sekce.xml")
	viper.SetDefault("sources.zbozi_url", "https://api.zbozi.cz/v1/categories")
	viper.SetDefault("sources.google_url", "https://www.google.com/basepages/producttype/taxonomy-with-ids.en-US.txt")
	viper.SetDefault("sources.glami_url", "https://www.glami.cz/category-feed.xml")
	viper.SetDefault("sources.timeout", 60)
	viper.SetDefault("sources.max_retries", 3)
	viper.SetDefault("sources.max_requests_per_second", 2)

	viper.SetDefault("cache.ttl_hours", 24)

	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.timeout", 20)
	viper.SetDefault("ai.max_requests_per_second", 2)
	viper.SetDefault("ai.max_candidates", 5)

	viper.SetDefault("batch.platforms", []string{})
	viper.SetDefault("batch.use_ai", false)
	viper.SetDefault("batch.overwrite_existing", false)
	viper.SetDefault("batch.checkpoint_interval", 25)
	viper.SetDefault("batch.input_file", "./products.json")
	viper.SetDefault("batch.output_file", "./mapped_products.json")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "mapper")
	viper.SetDefault("database.user", "mapper_user")
	viper.SetDefault("database.password", "mapper_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
}
