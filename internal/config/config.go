// internal/config/config.go
package config

import (
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"twitter-clone/internal/utils"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds the reference store's backend settings
type DatabaseConfig struct {
	Type string // "memory", "mongo" or "postgres"
	URI  string
	Name string
}

// StoreConfig locates the remote content store.
type StoreConfig struct {
	URL     string
	Dataset string
	Token   string

	// Zero means no timeout; a hung request parks the view in Loading.
	RequestTimeout time.Duration
}

// FeedConfig tunes the view-model layer.
type FeedConfig struct {
	// Upper bound on concurrent comment-thread loads, 0 for unbounded.
	ThreadLoadLimit int
	ActorTimeout    time.Duration
}

// ClientConfig is everything the feed client needs at start-up.
type ClientConfig struct {
	Store    *StoreConfig
	Feed     *FeedConfig
	LogLevel log.Level
}

// ServerSideConfig is everything the reference content store needs.
type ServerSideConfig struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Dataset        string
	Token          string
	AllowedOrigins []string
	LogLevel       log.Level
}

var datasetPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: "memory",
		Name: "twitter_clone",
	}
}

// DefaultFeedConfig provides default view-model settings
func DefaultFeedConfig() *FeedConfig {
	return &FeedConfig{
		ThreadLoadLimit: 8,
		ActorTimeout:    5 * time.Second,
	}
}

// loadEnvFile tries the usual .env locations; a missing file is fine.
func loadEnvFile() {
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/*
	}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			return
		}
	}
}

// LoadClientConfig resolves the store endpoint and dataset once at start-up.
// Missing or malformed values are an error rather than an empty feed.
func LoadClientConfig() (*ClientConfig, error) {
	loadEnvFile()

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	feedConfig := DefaultFeedConfig()
	if limit := os.Getenv("THREAD_LOAD_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return nil, utils.NewConfigError("THREAD_LOAD_LIMIT", "must be a non-negative integer")
		}
		feedConfig.ThreadLoadLimit = n
	}
	if timeout := os.Getenv("ACTOR_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return nil, utils.NewConfigError("ACTOR_TIMEOUT", "must be a positive duration")
		}
		feedConfig.ActorTimeout = d
	}

	level, err := logLevel()
	if err != nil {
		return nil, err
	}

	return &ClientConfig{
		Store:    store,
		Feed:     feedConfig,
		LogLevel: level,
	}, nil
}

func loadStoreConfig() (*StoreConfig, error) {
	rawURL := strings.TrimSpace(os.Getenv("STORE_URL"))
	if rawURL == "" {
		return nil, utils.NewConfigError("STORE_URL", "environment variable is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, utils.NewConfigError("STORE_URL", "must be an absolute http(s) URL")
	}

	dataset, err := loadDataset()
	if err != nil {
		return nil, err
	}

	store := &StoreConfig{
		URL:     strings.TrimRight(rawURL, "/"),
		Dataset: dataset,
		Token:   os.Getenv("STORE_TOKEN"),
	}

	if timeout := os.Getenv("STORE_REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d < 0 {
			return nil, utils.NewConfigError("STORE_REQUEST_TIMEOUT", "must be a duration")
		}
		store.RequestTimeout = d
	}

	return store, nil
}

func loadDataset() (string, error) {
	dataset := strings.TrimSpace(os.Getenv("STORE_DATASET"))
	if dataset == "" {
		return "", utils.NewConfigError("STORE_DATASET", "environment variable is required")
	}
	if !datasetPattern.MatchString(dataset) {
		return "", utils.NewConfigError("STORE_DATASET", "must match "+datasetPattern.String())
	}
	return dataset, nil
}

// LoadServerConfig loads the reference store's configuration from
// environment variables and applies defaults.
func LoadServerConfig() (*ServerSideConfig, error) {
	loadEnvFile()

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, utils.NewConfigError("PORT", "must be an integer")
		}
		serverConfig.Port = port
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dataset, err := loadDataset()
	if err != nil {
		return nil, err
	}

	dbConfig := DefaultDatabaseConfig()
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		dbConfig.Type = dbType
	}
	dbConfig.Name = getEnvOrDefault("DB_NAME", dbConfig.Name)

	switch dbConfig.Type {
	case "memory":
	case "mongo", "postgres":
		dbConfig.URI = os.Getenv("DATABASE_URL")
		if dbConfig.URI == "" {
			return nil, utils.NewConfigError("DATABASE_URL", "required when DB_TYPE is "+dbConfig.Type)
		}
	default:
		return nil, utils.NewConfigError("DB_TYPE", "unsupported database type '"+dbConfig.Type+"'")
	}

	level, err := logLevel()
	if err != nil {
		return nil, err
	}

	config := &ServerSideConfig{
		Server:         serverConfig,
		Database:       dbConfig,
		Dataset:        dataset,
		Token:          os.Getenv("STORE_TOKEN"),
		AllowedOrigins: []string{"*"},
		LogLevel:       level,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	return config, nil
}

func logLevel() (log.Level, error) {
	if os.Getenv("DEBUG") == "true" {
		return log.DebugLevel, nil
	}
	raw := getEnvOrDefault("LOG_LEVEL", "info")
	level, err := log.ParseLevel(raw)
	if err != nil {
		return log.InfoLevel, utils.NewConfigError("LOG_LEVEL", err.Error())
	}
	return level, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
