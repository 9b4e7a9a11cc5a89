package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	mu sync.RWMutex `yaml:"-" toml:"-"`

	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Redis     RedisConfig     `yaml:"redis" toml:"redis"`
	Messaging MessagingConfig `yaml:"messaging" toml:"messaging"`
	Web       WebConfig       `yaml:"web" toml:"web"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver" toml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite" toml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres" toml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Database string `yaml:"database" toml:"database"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	SSLMode  string `yaml:"sslmode" toml:"sslmode"`
}

// RedisConfig configures the value-object read cache.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Address  string        `yaml:"address" toml:"address"`
	Password string        `yaml:"password" toml:"password"`
	DB       int           `yaml:"db" toml:"db"`
	TTL      time.Duration `yaml:"ttl" toml:"ttl"`
}

// MessagingConfig defines where action events are published.
type MessagingConfig struct {
	Backend             string        `yaml:"backend" toml:"backend"` // "mqtt", "kafka" or "none"
	MQTT                MQTTConfig    `yaml:"mqtt" toml:"mqtt"`
	Kafka               KafkaConfig   `yaml:"kafka" toml:"kafka"`
	EventsTopic         string        `yaml:"events_topic" toml:"events_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval" toml:"outbox_drain_interval"`
	Source              string        `yaml:"source" toml:"source"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker" toml:"broker"`
	Port     int    `yaml:"port" toml:"port"`
	ClientID string `yaml:"client_id" toml:"client_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" toml:"brokers"`
}

type WebConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "text" or "json"
}

func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "pycramdb.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "pycram",
				User:     "pycram",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Enabled: false,
			Address: "localhost:6379",
			DB:      0,
			TTL:     10 * time.Minute,
		},
		Messaging: MessagingConfig{
			Backend: "none",
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "pycramdb",
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
			},
			EventsTopic:         "pycram.actions",
			OutboxDrainInterval: 5 * time.Second,
			Source:              "pycramdb",
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML (by extension) config file over the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
