// Package config loads runtime settings from defaults, an optional
// shoplist.yaml, an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// Backend names accepted by the store factory.
const (
	BackendFile   = "file"
	BackendJSON   = "json"
	BackendSqlite = "sqlite"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// SQLite drivers registered with database/sql.
const (
	DriverSqlite3 = "sqlite3" // github.com/mattn/go-sqlite3, needs cgo
	DriverSqlite  = "sqlite"  // modernc.org/sqlite, pure Go
)

type Config struct {
	Backend         string        `mapstructure:"backend" env:"SHOPLIST_BACKEND"`
	File            string        `mapstructure:"file" env:"SHOPLIST_FILE"`
	SqlitePath      string        `mapstructure:"sqlite_path" env:"SHOPLIST_SQLITE_PATH"`
	SqliteDriver    string        `mapstructure:"sqlite_driver" env:"SHOPLIST_SQLITE_DRIVER"`
	MongoURI        string        `mapstructure:"db_uri" env:"DB_URI"`
	MongoDatabase   string        `mapstructure:"mongo_database" env:"SHOPLIST_MONGO_DATABASE"`
	MongoCollection string        `mapstructure:"mongo_collection" env:"SHOPLIST_MONGO_COLLECTION"`
	Timeout         time.Duration `mapstructure:"timeout" env:"SHOPLIST_TIMEOUT"`
}

// Sources says where Load looks for settings.
type Sources struct {
	ConfigPaths []string // directories searched for shoplist.yaml
	DotEnv      string   // dotenv file, ignored when missing
	Environ     []string // KEY=VALUE pairs, normally os.Environ()
}

func Default() *Config {
	return &Config{
		Backend:         BackendFile,
		File:            "shopping_list.txt",
		SqlitePath:      "shopping_list.db",
		SqliteDriver:    DriverSqlite3,
		MongoDatabase:   "shopping_list_db",
		MongoCollection: "shopping_list_collection",
		Timeout:         10 * time.Second,
	}
}

func DefaultSources() Sources {
	paths := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "shoplist"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "shoplist"))
	}
	return Sources{
		ConfigPaths: paths,
		DotEnv:      ".env",
		Environ:     os.Environ(),
	}
}

// Load reads configuration from the default sources.
func Load() (*Config, error) {
	return LoadFrom(DefaultSources())
}

// LoadFrom layers the config file, the dotenv file and the environment over
// Default, later layers winning, then validates the result.
func LoadFrom(src Sources) (*Config, error) {
	cfg := Default()

	if err := readConfigFile(cfg, src.ConfigPaths); err != nil {
		return nil, err
	}

	environ, err := mergeDotEnv(src.DotEnv, toMap(src.Environ))
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(cfg *Config, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	v := viper.New()
	v.SetConfigName("shoplist")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}

func toMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}

// mergeDotEnv returns environ with the dotenv entries added underneath it.
// Variables already present in environ are never overridden.
func mergeDotEnv(path string, environ map[string]string) (map[string]string, error) {
	if path == "" {
		return environ, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return environ, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	merged := make(map[string]string, len(environ))
	for _, key := range v.AllKeys() {
		merged[strings.ToUpper(key)] = v.GetString(key)
	}
	for k, val := range environ {
		merged[k] = val
	}
	return merged, nil
}

// Validate normalizes names and checks the configuration for errors.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.SqliteDriver = strings.ToLower(strings.TrimSpace(c.SqliteDriver))

	switch c.Backend {
	case "":
		c.Backend = BackendFile
	case BackendFile, BackendJSON, BackendSqlite, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("config: unknown backend %q (supported: file, json, sqlite, mongo, memory)", c.Backend)
	}

	switch c.Backend {
	case BackendFile, BackendJSON:
		if strings.TrimSpace(c.File) == "" {
			return fmt.Errorf("config: file path is required for the %s backend", c.Backend)
		}
	case BackendSqlite:
		if strings.TrimSpace(c.SqlitePath) == "" {
			return fmt.Errorf("config: sqlite_path is required for the sqlite backend")
		}
		if c.SqliteDriver == "" {
			c.SqliteDriver = DriverSqlite3
		}
		if c.SqliteDriver != DriverSqlite3 && c.SqliteDriver != DriverSqlite {
			return fmt.Errorf("config: unknown sqlite driver %q (supported: sqlite3, sqlite)", c.SqliteDriver)
		}
	case BackendMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("config: DB_URI is required for the mongo backend")
		}
		if c.MongoDatabase == "" || c.MongoCollection == "" {
			return fmt.Errorf("config: mongo database and collection names are required")
		}
	}

	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
