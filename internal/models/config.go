package models

import "time"

// Config represents the application configuration
type Config struct {
	Backend BackendConfig
	Cache   CacheConfig
	Server  ServerConfig
	Views   ViewConfig
	Log     LogConfig
}

// BackendConfig holds settings for the remote REST backend
type BackendConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	RateLimit      float64
	RateBurst      int
	MaxIdleConns   int
	EnableHTTP2    bool
	UserAgent      string
	DefaultPageLen int
}

// CacheConfig holds query cache settings
type CacheConfig struct {
	KeepUnusedFor   time.Duration
	CleanupInterval time.Duration
	RefetchTimeout  time.Duration
	PolicyFile      string
	// EndpointRetention overrides KeepUnusedFor per endpoint name.
	EndpointRetention map[string]time.Duration
}

// ServerConfig holds backend-for-frontend HTTP settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// ViewConfig holds aggregation settings
type ViewConfig struct {
	MergePolicy string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}
