// Package config provides configuration management for the signal mesh.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for the signal mesh process.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the admin/ingest HTTP server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Router is the default routing configuration.
	Router RouterConfig `mapstructure:"router"`

	// Dispatch holds connection settings for built-in delivery adapters.
	Dispatch DispatchConfig `mapstructure:"dispatch"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`

	// DefaultSource is the value used to populate Signal.Source when a
	// caller does not supply one explicitly. The spec deliberately avoids
	// stack introspection; this is the language-neutral equivalent.
	DefaultSource string `mapstructure:"default_source" validate:"required"`
}

// ServerConfig holds the admin/ingest HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`

	// RateLimit is the per-client request rate limiting configuration.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds per-client HTTP rate limiting settings.
type RateLimitConfig struct {
	// Enabled turns on per-client rate limiting for the signal ingest API.
	Enabled bool `mapstructure:"enabled"`

	// RequestsPerSecond is the sustained rate allowed per client.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required_if=Enabled true,gt=0"`

	// Burst is the number of requests a client may send instantaneously.
	Burst int `mapstructure:"burst" validate:"required_if=Enabled true,gt=0"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to the client.
	ExposedHeaders []string `mapstructure:"exposed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// RouterConfig holds defaults applied when compiling routes.
type RouterConfig struct {
	// DefaultPriority is used for routes registered without an explicit priority.
	DefaultPriority int `mapstructure:"default_priority" validate:"min=-100,max=100"`
}

// DispatchConfig holds connection settings for the built-in delivery adapters.
type DispatchConfig struct {
	// Bus is the message-bus adapter configuration.
	Bus BusConfig `mapstructure:"bus"`

	// PubSub is the publish/subscribe adapter configuration.
	PubSub PubSubConfig `mapstructure:"pubsub"`
}

// BusConfig holds settings for the "bus" adapter's backing transport.
type BusConfig struct {
	// Type selects the bus backend (memory, redis).
	Type string `mapstructure:"type" validate:"oneof=memory redis"`

	// Redis holds connection settings when Type is "redis".
	Redis RedisConfig `mapstructure:"redis"`

	// DefaultStream is the bus name the configured transport is registered
	// under at startup. It does not change the bus adapter's own default
	// for a dispatch target that omits "stream", which is always "default".
	DefaultStream string `mapstructure:"default_stream"`
}

// PubSubConfig holds settings for the "pubsub" adapter's backing broker.
type PubSubConfig struct {
	// Type selects the broker backend (memory, redis).
	Type string `mapstructure:"type" validate:"oneof=memory redis"`

	// Redis holds connection settings when Type is "redis".
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the tracing backend (otlp).
	Exporter string `mapstructure:"exporter"`

	// Endpoint is the collector endpoint.
	Endpoint string `mapstructure:"endpoint"`

	// Headers are extra headers sent to the collector (e.g. auth tokens).
	Headers map[string]string `mapstructure:"headers"`

	// Timeout bounds each export attempt.
	Timeout time.Duration `mapstructure:"timeout"`

	// Sampler selects the sampling strategy (always_on, always_off, ratio).
	Sampler string `mapstructure:"sampler"`

	// SampleRate is the fraction of traces to sample (0.0-1.0) when Sampler is "ratio".
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: :%d, Env: %s}",
		c.App.Name, c.Server.Port, c.App.Environment)
}
