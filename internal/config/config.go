// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Bitstamp  BitstampConfig  `mapstructure:"bitstamp"`
	Summary   SummaryConfig   `mapstructure:"summary"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds the gRPC/h2c listen configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// BinanceConfig holds Adapter A (URL-per-pair depth stream) configuration.
type BinanceConfig struct {
	WebSocketURL   string        `mapstructure:"websocket_url"`
	Depth          int           `mapstructure:"depth"`
	BaseCurrency   string        `mapstructure:"base_currency"`
	QuoteCurrency  string        `mapstructure:"quote_currency"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// BitstampConfig holds Adapter B (subscribe-then-ack stream) configuration.
type BitstampConfig struct {
	WebSocketURL   string        `mapstructure:"websocket_url"`
	BaseCurrency   string        `mapstructure:"base_currency"`
	QuoteCurrency  string        `mapstructure:"quote_currency"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// SummaryConfig holds merge-engine and fan-out bus tuning.
type SummaryConfig struct {
	Size        int `mapstructure:"size"`
	BusCapacity int `mapstructure:"bus_capacity"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("OBS")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "OBS_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "OBS_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "OBS_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("server.addr", "OBS_ADDR", "ORDERBOOK_ADDR")

	v.BindEnv("binance.websocket_url", "OBS_BINANCE_WS_URL", "BINANCE_WEBSOCKET_ADDR")
	v.BindEnv("binance.depth", "OBS_BINANCE_DEPTH")
	v.BindEnv("binance.base_currency", "OBS_BASE_CURRENCY", "BASE_CURRENCY")
	v.BindEnv("binance.quote_currency", "OBS_QUOTE_CURRENCY", "QUOTE_CURRENCY")

	v.BindEnv("bitstamp.websocket_url", "OBS_BITSTAMP_WS_URL", "BITSTAMP_WEBSOCKET_ADDR")
	v.BindEnv("bitstamp.base_currency", "OBS_BASE_CURRENCY", "BASE_CURRENCY")
	v.BindEnv("bitstamp.quote_currency", "OBS_QUOTE_CURRENCY", "QUOTE_CURRENCY")

	v.BindEnv("summary.size", "OBS_SUMMARY_SIZE")
	v.BindEnv("summary.bus_capacity", "OBS_BUS_CAPACITY")

	v.BindEnv("telemetry.enabled", "OBS_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "OBS_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "OBS_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "orderbook-aggregator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.addr", "127.0.0.1:8080")

	v.SetDefault("binance.websocket_url", "wss://stream.binance.com:443/ws/")
	v.SetDefault("binance.depth", 20)
	v.SetDefault("binance.base_currency", "BTC")
	v.SetDefault("binance.quote_currency", "ETH")
	v.SetDefault("binance.max_reconnects", 0) // infinite
	v.SetDefault("binance.initial_backoff", "1s")
	v.SetDefault("binance.max_backoff", "30s")

	v.SetDefault("bitstamp.websocket_url", "wss://ws.bitstamp.net/")
	v.SetDefault("bitstamp.base_currency", "BTC")
	v.SetDefault("bitstamp.quote_currency", "ETH")
	v.SetDefault("bitstamp.max_reconnects", 0)
	v.SetDefault("bitstamp.initial_backoff", "1s")
	v.SetDefault("bitstamp.max_backoff", "30s")

	v.SetDefault("summary.size", 10)
	v.SetDefault("summary.bus_capacity", 10)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "orderbook-aggregator")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Binance.WebSocketURL == "" {
		return fmt.Errorf("binance.websocket_url is required")
	}
	if c.Bitstamp.WebSocketURL == "" {
		return fmt.Errorf("bitstamp.websocket_url is required")
	}
	if c.Binance.Depth != 5 && c.Binance.Depth != 10 && c.Binance.Depth != 20 {
		return fmt.Errorf("binance.depth must be one of 5, 10, 20")
	}
	if c.Summary.Size <= 0 {
		return fmt.Errorf("summary.size must be positive")
	}
	return nil
}
