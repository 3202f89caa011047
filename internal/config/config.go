package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all dashboard settings, populated from environment variables.
type Config struct {
	DataPath        string
	DataDelimiter   rune
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DatasetCacheTTL bounds how long a loaded dataset is served before the
	// file is read again. Zero keeps it until the file changes.
	DatasetCacheTTL time.Duration

	MapZoom      int
	TopParishes  int
	ExportPrefix string

	// Mapbox tiles are offered only when enabled with a token.
	MapboxToken   string
	MapboxEnabled bool

	KafkaBrokers     []string
	KafkaExportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	delimiter, err := parseDelimiter(sharedcfg.EnvOrDefault("DATA_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("DATASET_CACHE_TTL", "0s"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid DATASET_CACHE_TTL")
	}

	mapZoom, err := parseInt("MAP_ZOOM", 12)
	if err != nil {
		return nil, err
	}
	if mapZoom < 1 || mapZoom > 20 {
		return nil, fmt.Errorf("MAP_ZOOM must be between 1 and 20, got %d", mapZoom)
	}

	topParishes, err := parseInt("TOP_PARISHES", 10)
	if err != nil {
		return nil, err
	}
	if topParishes <= 0 {
		return nil, fmt.Errorf("TOP_PARISHES must be positive, got %d", topParishes)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DataPath:         sharedcfg.EnvOrDefault("DATA_PATH", "data/Road_Accidents_Lisbon.csv"),
		DataDelimiter:    delimiter,
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		DatasetCacheTTL:  cacheTTL,
		MapZoom:          mapZoom,
		TopParishes:      topParishes,
		ExportPrefix:     sharedcfg.EnvOrDefault("EXPORT_PREFIX", "lisbon_accidents"),
		MapboxToken:      mapboxToken,
		MapboxEnabled:    mapboxEnabled,
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaExportTopic: os.Getenv("KAFKA_EXPORT_TOPIC"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaExportTopic != "" && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_EXPORT_TOPIC is set")
	}

	return cfg, nil
}

// TileToken returns the Mapbox token when Mapbox tiles are enabled.
func (c *Config) TileToken() string {
	if !c.MapboxEnabled {
		return ""
	}
	return c.MapboxToken
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("DATA_DELIMITER must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid DATA_DELIMITER %q", s)
	}
	return r, nil
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}
