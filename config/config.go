package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Charts  ChartsConfig  `mapstructure:"charts"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// EngineConfig holds script engine configuration. The forbidden pattern
// list is read once at startup; an empty list selects the built-in
// defaults.
type EngineConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	MaxScriptChars    int      `mapstructure:"max_script_chars"`
	MaxResultBytes    int64    `mapstructure:"max_result_bytes"`
	ChunkRows         int      `mapstructure:"chunk_rows"`
	ForbiddenPatterns []string `mapstructure:"forbidden_patterns"`
}

// LoaderConfig holds dataset loading configuration
type LoaderConfig struct {
	MaxFileSizeMB int `mapstructure:"max_file_size_mb"`
	SampleRows    int `mapstructure:"sample_rows"`
	DetectBytes   int `mapstructure:"detect_bytes"`
}

// ChartsConfig holds chart rendering configuration
type ChartsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("engine.enabled", true)
	viper.SetDefault("engine.max_script_chars", 100000)
	viper.SetDefault("engine.max_result_bytes", 100*1024*1024)
	viper.SetDefault("engine.chunk_rows", 10000)
	viper.SetDefault("engine.forbidden_patterns", []string{})
	viper.SetDefault("loader.max_file_size_mb", 100)
	viper.SetDefault("loader.sample_rows", 100)
	viper.SetDefault("loader.detect_bytes", 50000)
	viper.SetDefault("charts.enabled", true)
	viper.SetDefault("charts.dir", "charts")
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Server.Transport == "http" && (c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535) {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}

	if c.Engine.MaxScriptChars <= 0 {
		return fmt.Errorf("engine.max_script_chars must be positive, got: %d", c.Engine.MaxScriptChars)
	}

	if c.Engine.MaxResultBytes <= 0 {
		return fmt.Errorf("engine.max_result_bytes must be positive, got: %d", c.Engine.MaxResultBytes)
	}

	if c.Engine.ChunkRows <= 0 {
		return fmt.Errorf("engine.chunk_rows must be positive, got: %d", c.Engine.ChunkRows)
	}

	if c.Loader.MaxFileSizeMB <= 0 {
		return fmt.Errorf("loader.max_file_size_mb must be positive, got: %d", c.Loader.MaxFileSizeMB)
	}

	if c.Loader.SampleRows <= 0 {
		return fmt.Errorf("loader.sample_rows must be positive, got: %d", c.Loader.SampleRows)
	}

	if c.Charts.Enabled && c.Charts.Dir == "" {
		return fmt.Errorf("charts.dir must be set when charts are enabled")
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	return nil
}
