package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:          "signalmesh",
			Version:       "dev",
			Environment:   "development",
			Debug:         false,
			DefaultSource: "signalmesh",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 10 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
			},
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 50,
				Burst:             100,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Router: RouterConfig{
			DefaultPriority: 0,
		},
		Dispatch: DispatchConfig{
			Bus: BusConfig{
				Type:          "memory",
				DefaultStream: "default",
				Redis: RedisConfig{
					Address:  "localhost:6379",
					Password: "",
					DB:       0,
				},
			},
			PubSub: PubSubConfig{
				Type: "memory",
				Redis: RedisConfig{
					Address:  "localhost:6379",
					Password: "",
					DB:       0,
				},
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlp",
			Endpoint:   "localhost:4317",
			Timeout:    5 * time.Second,
			Sampler:    "ratio",
			SampleRate: 0.1,
		},
	}
}
