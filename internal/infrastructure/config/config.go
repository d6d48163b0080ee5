package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Detector DetectorConfig `mapstructure:"detector"`
	Labels   LabelsConfig   `mapstructure:"labels"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Detector backends
const (
	BackendHTTP = "http"
	BackendONNX = "onnx"
)

// DetectorConfig holds object detector configuration
type DetectorConfig struct {
	Backend    string        `mapstructure:"backend"`
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ModelPath  string        `mapstructure:"model_path"`
	Confidence float64       `mapstructure:"confidence"`
	IoU        float64       `mapstructure:"iou"`
	InputSize  int           `mapstructure:"input_size"`
}

// LabelsConfig points to an optional label table file.
// An empty path selects the embedded table.
type LabelsConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds Redis configuration for the prediction cache
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Addr returns the host:port address of the Redis server
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Output  string `mapstructure:"output"`
	Service string `mapstructure:"service"`
}

// Load reads configuration from config.yaml (optional) and RECOBJ_* environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("RECOBJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Detector.Backend {
	case BackendHTTP:
		if c.Detector.URL == "" {
			return errors.New("detector url is required for the http backend")
		}
	case BackendONNX:
		if c.Detector.ModelPath == "" {
			return errors.New("detector model_path is required for the onnx backend")
		}
	default:
		return fmt.Errorf("unknown detector backend: %q", c.Detector.Backend)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8720)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Detector
	v.SetDefault("detector.backend", BackendHTTP)
	v.SetDefault("detector.url", "http://localhost:5000")
	v.SetDefault("detector.timeout", 30*time.Second)
	v.SetDefault("detector.model_path", "best.onnx")
	v.SetDefault("detector.confidence", 0.25)
	v.SetDefault("detector.iou", 0.45)
	v.SetDefault("detector.input_size", 640)

	// Labels
	v.SetDefault("labels.path", "")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.service", "reconocimiento-obj")
}
