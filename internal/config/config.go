// Package config loads runtime settings from an optional TOML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Events EventsConfig `toml:"events"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// StoreConfig locates the festival database. URL and Key are both required
// for the live store; Key is used as the connection password.
type StoreConfig struct {
	URL            string   `toml:"url"`
	Key            string   `toml:"key"`
	ConnectTimeout duration `toml:"connect_timeout"`
}

// Enabled reports whether enough is configured to try the live store.
func (s StoreConfig) Enabled() bool {
	return s.URL != "" && s.Key != ""
}

// CacheConfig configures the optional Redis read cache.
type CacheConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TLS      bool     `toml:"tls"`
	TTL      duration `toml:"ttl"`
	Prefix   string   `toml:"prefix"`
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool { return c.Addr != "" }

// EventsConfig configures the optional RabbitMQ publisher.
type EventsConfig struct {
	URL   string `toml:"url"`
	Queue string `toml:"queue"`
}

// Enabled reports whether a broker URL is configured.
func (e EventsConfig) Enabled() bool { return e.URL != "" }

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// duration lets TOML files use strings such as "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080", AllowedOrigins: []string{"*"}},
		Store:  StoreConfig{ConnectTimeout: duration{5 * time.Second}},
		Cache:  CacheConfig{TTL: duration{30 * time.Second}, Prefix: "festifind"},
		Events: EventsConfig{Queue: "festival.preferences"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration. A missing file at path is not an error; a
// malformed one is. Variables from ./.env are loaded into the environment
// without overriding variables that are already set.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	c.Server.Port = getEnv(c.Server.Port, "PORT")
	if v := getEnv("", "CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	c.Store.URL = getEnv(c.Store.URL, "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	c.Store.Key = getEnv(c.Store.Key, "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	if d, err := getDuration(c.Store.ConnectTimeout.Duration, "STORE_CONNECT_TIMEOUT"); err != nil {
		errs = append(errs, err)
	} else {
		c.Store.ConnectTimeout.Duration = d
	}

	c.Cache.Addr = getEnv(c.Cache.Addr, "REDIS_ADDR")
	c.Cache.Password = getEnv(c.Cache.Password, "REDIS_PASSWORD")
	if v := getEnv("", "REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("REDIS_DB %q: must be a non-negative integer", v))
		} else {
			c.Cache.DB = n
		}
	}
	if v := getEnv("", "REDIS_TLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDIS_TLS %q: must be true or false", v))
		} else {
			c.Cache.TLS = b
		}
	}
	if d, err := getDuration(c.Cache.TTL.Duration, "CACHE_TTL"); err != nil {
		errs = append(errs, err)
	} else {
		c.Cache.TTL.Duration = d
	}

	c.Events.URL = getEnv(c.Events.URL, "AMQP_URL", "RABBITMQ_URL")

	c.Log.Level = getEnv(c.Log.Level, "LOG_LEVEL")
	c.Log.Format = getEnv(c.Log.Format, "LOG_FORMAT")
	return errors.Join(errs...)
}

// getEnv returns the first non-empty variable among keys, or fallback.
func getEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return fallback
}

func getDuration(fallback time.Duration, key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("%s %q: must be a positive duration such as 5s", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
