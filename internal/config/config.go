package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Server  ServerConfig  `mapstructure:"server"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type IngestConfig struct {
	UpstreamURL  string        `mapstructure:"upstream_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type ViewerConfig struct {
	URL           string        `mapstructure:"url"`
	WindowSize    int           `mapstructure:"window_size"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given YAML file (optional) and the
// environment (ISSFEED_ prefix, e.g. ISSFEED_KAFKA_TOPIC), falling back to
// defaults for anything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ingest.upstream_url", "http://api.open-notify.org/iss-now.json")
	v.SetDefault("ingest.poll_interval", 5*time.Second)
	v.SetDefault("ingest.fetch_timeout", 10*time.Second)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "iss-position")
	v.SetDefault("kafka.group_id", "issfeed-relay")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("viewer.url", "ws://localhost:8080/ws")
	v.SetDefault("viewer.window_size", 10)
	v.SetDefault("viewer.reconnect_wait", 2*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ISSFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Ingest.UpstreamURL == "" {
		return fmt.Errorf("ingest.upstream_url must not be empty")
	}
	if c.Ingest.PollInterval <= 0 {
		return fmt.Errorf("ingest.poll_interval must be positive, got %s", c.Ingest.PollInterval)
	}
	if c.Ingest.FetchTimeout <= 0 {
		return fmt.Errorf("ingest.fetch_timeout must be positive, got %s", c.Ingest.FetchTimeout)
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must not be empty")
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic must not be empty")
	}
	if c.Viewer.WindowSize < 1 {
		return fmt.Errorf("viewer.window_size must be at least 1, got %d", c.Viewer.WindowSize)
	}
	return nil
}

// Path returns the config file path from the environment, or the conventional
// configs/config.yaml if it exists, or empty (defaults only).
func Path() string {
	if path := os.Getenv("ISSFEED_CONFIG_PATH"); path != "" {
		return path
	}
	configPath := filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}
	return ""
}
