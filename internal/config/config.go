// Package config loads the skilltree CLI configuration from an optional YAML
// file overlaid with SKILLTREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/skilltree/pkg/persistence"
	"github.com/aretw0/skilltree/pkg/session"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKILLTREE_"

// Supported store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Supported id schemes.
const (
	IDsSequential = "sequential"
	IDsUUID       = "uuid"
)

// Config is the resolved CLI configuration.
type Config struct {
	Store         string        `mapstructure:"store" yaml:"store"`
	Dir           string        `mapstructure:"dir" yaml:"dir"`
	Tree          string        `mapstructure:"tree" yaml:"tree"`
	Seed          string        `mapstructure:"seed" yaml:"seed"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	Debounce      time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Budget        int           `mapstructure:"budget" yaml:"budget"`
	IDs           string        `mapstructure:"ids" yaml:"ids"`
	EncryptionKey string        `mapstructure:"encryption_key" yaml:"encryption_key"`
	Redis         RedisConfig   `mapstructure:"redis" yaml:"redis"`
	SQLite        SQLiteConfig  `mapstructure:"sqlite" yaml:"sqlite"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
}

// RedisConfig configures the redis store.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// SQLiteConfig configures the sqlite store.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store:    StoreFile,
		Dir:      ".skilltree",
		Tree:     session.DefaultTreeID,
		LogLevel: "info",
		Debounce: persistence.DefaultDelay,
		IDs:      IDsSequential,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "skilltree:",
		},
		SQLite: SQLiteConfig{Path: ".skilltree/skilltree.db"},
		HTTP:   HTTPConfig{Port: 8080},
	}
}

// envKeys maps environment variables (without prefix) to config paths.
var envKeys = map[string][]string{
	"STORE":          {"store"},
	"DIR":            {"dir"},
	"TREE":           {"tree"},
	"SEED":           {"seed"},
	"LOG_LEVEL":      {"log_level"},
	"DEBOUNCE":       {"debounce"},
	"BUDGET":         {"budget"},
	"IDS":            {"ids"},
	"ENCRYPTION_KEY": {"encryption_key"},
	"REDIS_ADDR":     {"redis", "addr"},
	"REDIS_PASSWORD": {"redis", "password"},
	"REDIS_DB":       {"redis", "db"},
	"REDIS_PREFIX":   {"redis", "prefix"},
	"REDIS_TTL":      {"redis", "ttl"},
	"SQLITE_PATH":    {"sqlite", "path"},
	"HTTP_PORT":      {"http", "port"},
}

// Load resolves the configuration: defaults, then the YAML file at path (if
// path is non-empty), then SKILLTREE_* variables from the environment.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		raw := map[string]any{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if env := fromEnv(lookup); len(env) > 0 {
		if err := decode(env, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid environment: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

func fromEnv(lookup func(string) (string, bool)) map[string]any {
	out := map[string]any{}
	for name, path := range envKeys {
		val, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		m := out
		for _, p := range path[:len(path)-1] {
			sub, ok := m[p].(map[string]any)
			if !ok {
				sub = map[string]any{}
				m[p] = sub
			}
			m = sub
		}
		m[path[len(path)-1]] = val
	}
	return out
}

func decode(input map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// Validate reports unknown enum values and out of range numbers.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	switch c.IDs {
	case IDsSequential, IDsUUID:
	default:
		errs = append(errs, fmt.Errorf("unknown id scheme %q", c.IDs))
	}
	if c.Budget < 0 {
		errs = append(errs, fmt.Errorf("budget must not be negative"))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative"))
	}
	if strings.TrimSpace(c.Tree) == "" {
		errs = append(errs, fmt.Errorf("tree must not be empty"))
	}
	return errors.Join(errs...)
}
