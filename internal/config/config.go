package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`

	// file | memory | postgres | sqlite | redis | badger
	StoreDriver string `yaml:"store_driver"`
	StorePath   string `yaml:"store_path"`

	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	SQLitePath string `yaml:"sqlite_path"`
	RedisURL   string `yaml:"redis_url"`
	RedisKey   string `yaml:"redis_key"`
	BadgerDir  string `yaml:"badger_dir"`

	CacheRedisURL string        `yaml:"cache_redis_url"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	AuthSecret      string   `yaml:"auth_secret"`
	SerializeWrites bool     `yaml:"serialize_writes"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

func defaults() *Config {
	return &Config{
		Addr:            ":5000",
		StoreDriver:     "file",
		StorePath:       "DB/Tasks.json",
		DBPort:          5432,
		SQLitePath:      "tasks.sqlite3",
		BadgerDir:       "DB/badger",
		CacheTTL:        30 * time.Second,
		SerializeWrites: true,
		CORSOrigins:     []string{"*"},
	}
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	setString(&cfg.Addr, "HTTP_ADDR")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.StorePath, "STORE_PATH")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisKey, "REDIS_KEY")
	setString(&cfg.BadgerDir, "BADGER_DIR")
	setString(&cfg.CacheRedisURL, "CACHE_REDIS_URL")
	setString(&cfg.AuthSecret, "AUTH_SECRET")

	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.DBPort = port
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid CACHE_TTL %q", v)
		}
		cfg.CacheTTL = d
	}
	if err := setBool(&cfg.Debug, "DEBUG"); err != nil {
		return nil, err
	}
	if err := setBool(&cfg.SerializeWrites, "SERIALIZE_WRITES"); err != nil {
		return nil, err
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case "file", "memory", "postgres", "sqlite", "redis", "badger":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("STORE_DRIVER=redis requires REDIS_URL")
	}

	return cfg, nil
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
