package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		BaseURL         string        `yaml:"base_url"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Wall struct {
		GridCount int `yaml:"grid_count"`
		Width     int `yaml:"width"`
		Height    int `yaml:"height"`
	} `yaml:"wall"`

	Control struct {
		PingInterval time.Duration `yaml:"ping_interval"`
		PongTimeout  time.Duration `yaml:"pong_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"control"`

	Auth struct {
		// Role attached to connections presenting no session cookie. Empty
		// disables open access entirely; credential-less clients then get no
		// capabilities at all.
		OpenAccessRole string        `yaml:"open_access_role"`
		SessionMaxAge  time.Duration `yaml:"session_max_age"`
	} `yaml:"auth"`

	Data struct {
		URLs         []string      `yaml:"urls"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"data"`

	Streamdelay struct {
		Enabled      bool          `yaml:"enabled"`
		Endpoint     string        `yaml:"endpoint"`
		Key          string        `yaml:"key"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"streamdelay"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
		} `yaml:"http"`

		WebSocket struct {
			MessagesPerSecond   float64 `yaml:"messages_per_second"`
			Burst               int     `yaml:"burst"`
			MaxMessageSizeBytes int64   `yaml:"max_message_size_bytes"`
		} `yaml:"websocket"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url must not be empty")
	}
	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url must be an absolute URL")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if c.Wall.GridCount < 1 || c.Wall.GridCount > 16 {
		return fmt.Errorf("wall.grid_count must be between 1 and 16")
	}
	if c.Wall.Width <= 0 || c.Wall.Height <= 0 {
		return fmt.Errorf("wall.width and wall.height must be > 0")
	}

	if c.Control.PingInterval <= 0 {
		return fmt.Errorf("control.ping_interval must be > 0")
	}
	if c.Control.PongTimeout <= c.Control.PingInterval {
		return fmt.Errorf("control.pong_timeout must be > control.ping_interval")
	}
	if c.Control.WriteTimeout <= 0 {
		return fmt.Errorf("control.write_timeout must be > 0")
	}

	if c.Auth.OpenAccessRole != "" {
		switch c.Auth.OpenAccessRole {
		case "admin", "operator", "monitor":
		default:
			return fmt.Errorf("auth.open_access_role must be one of admin, operator, monitor or empty")
		}
	}
	if c.Auth.SessionMaxAge <= 0 {
		return fmt.Errorf("auth.session_max_age must be > 0")
	}

	if c.Data.PollInterval <= 0 {
		return fmt.Errorf("data.poll_interval must be > 0")
	}

	if c.Streamdelay.Enabled {
		if c.Streamdelay.Endpoint == "" {
			return fmt.Errorf("streamdelay.endpoint must not be empty when streamdelay.enabled=true")
		}
		if c.Streamdelay.PollInterval <= 0 {
			return fmt.Errorf("streamdelay.poll_interval must be > 0 when streamdelay.enabled=true")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort <= 0 {
		return fmt.Errorf("monitoring.prometheus_port must be > 0 when prometheus_enabled=true")
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.WebSocket.MessagesPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.websocket.messages_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.WebSocket.Burst <= 0 {
			return fmt.Errorf("rate_limiting.websocket.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.WebSocket.MaxMessageSizeBytes < 0 {
			return fmt.Errorf("rate_limiting.websocket.max_message_size_bytes must be >= 0")
		}
	}

	return nil
}

// Load reads configuration from a YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Wall.GridCount = 3
	cfg.Wall.Width = 1920
	cfg.Wall.Height = 1080

	cfg.Control.PingInterval = 20 * time.Second
	cfg.Control.PongTimeout = 60 * time.Second
	cfg.Control.WriteTimeout = 10 * time.Second

	cfg.Auth.OpenAccessRole = "admin"
	cfg.Auth.SessionMaxAge = 365 * 24 * time.Hour

	cfg.Data.PollInterval = 30 * time.Second

	cfg.Streamdelay.Enabled = false
	cfg.Streamdelay.PollInterval = 2 * time.Second

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.PrometheusPort = 9090

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.WebSocket.MessagesPerSecond = 100
	cfg.RateLimiting.WebSocket.Burst = 200
	cfg.RateLimiting.WebSocket.MaxMessageSizeBytes = 256 * 1024

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("STREAMWALL_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if base := os.Getenv("STREAMWALL_BASE_URL"); base != "" {
		c.Server.BaseURL = base
	}
	if level := os.Getenv("STREAMWALL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if addr := os.Getenv("STREAMWALL_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
}
