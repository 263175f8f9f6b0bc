// Package config loads server settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/castlemilk/cardkeeper/internal/auth"
	"github.com/castlemilk/cardkeeper/internal/extraction"
	"github.com/castlemilk/cardkeeper/internal/ingest"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/retry"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSQLite    = "sqlite"
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
)

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	// APITokens are raw tokens or "sha256:<hex>" digests. Empty disables
	// authentication.
	APITokens []string `mapstructure:"api_tokens"`
}

// TokenSet parses APITokens.
func (c ServerConfig) TokenSet() (*auth.TokenSet, error) {
	set, err := auth.NewTokenSet(c.APITokens)
	if err != nil {
		return nil, fmt.Errorf("server.api_tokens: %w", err)
	}
	return set, nil
}

type StoreConfig struct {
	Driver               string `mapstructure:"driver"`
	DataDir              string `mapstructure:"data_dir"`
	FirestoreProject     string `mapstructure:"firestore_project"`
	FirestoreCredentials string `mapstructure:"firestore_credentials"`
}

type MailConfig struct {
	DefaultHost string        `mapstructure:"default_host"`
	FetchLimit  int           `mapstructure:"fetch_limit"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Retry       retry.Config  `mapstructure:"retry"`
}

type IngestConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	AmbiguousPolicy string        `mapstructure:"ambiguous_policy"`
}

// BanksConfig adds entries ahead of the built-in bank table.
type BanksConfig struct {
	Domains  []extraction.BankEntry `mapstructure:"domains"`
	Keywords []extraction.BankEntry `mapstructure:"keywords"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Mail   MailConfig   `mapstructure:"mail"`
	Ingest IngestConfig `mapstructure:"ingest"`
	Banks  BanksConfig  `mapstructure:"banks"`
	Log    LogConfig    `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", int64(32<<20))
	v.SetDefault("server.api_tokens", []string{})

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.data_dir", "./data")
	v.SetDefault("store.firestore_project", "")
	v.SetDefault("store.firestore_credentials", "")

	v.SetDefault("mail.default_host", model.DefaultIMAPHost)
	v.SetDefault("mail.fetch_limit", 100)
	v.SetDefault("mail.dial_timeout", 15*time.Second)
	v.SetDefault("mail.retry.max_retries", retry.DefaultMailConfig.MaxRetries)
	v.SetDefault("mail.retry.initial_delay", retry.DefaultMailConfig.InitialDelay)
	v.SetDefault("mail.retry.max_delay", retry.DefaultMailConfig.MaxDelay)
	v.SetDefault("mail.retry.backoff_factor", retry.DefaultMailConfig.BackoffFactor)
	v.SetDefault("mail.retry.jitter_fraction", retry.DefaultMailConfig.JitterFraction)

	v.SetDefault("ingest.timeout", 2*time.Minute)
	v.SetDefault("ingest.ambiguous_policy", string(ingest.PolicyAttach))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. path selects a config file explicitly; when
// empty, CARDKEEPER_CONFIG is consulted and then ./config.yaml, and a missing
// file is not an error. Env var overrides use prefix CARDKEEPER_ (so
// store.data_dir is CARDKEEPER_STORE_DATA_DIR); the bare PORT and DATA_DIR
// variables are honoured too.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CARDKEEPER_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CARDKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "CARDKEEPER_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("store.data_dir", "CARDKEEPER_STORE_DATA_DIR", "DATA_DIR"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := c.Server.TokenSet(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.DataDir == "" {
			return errors.New("store.data_dir is required for the sqlite driver")
		}
	case DriverMemory:
	case DriverFirestore:
		if c.Store.FirestoreProject == "" {
			return errors.New("store.firestore_project is required for the firestore driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Mail.FetchLimit <= 0 {
		return fmt.Errorf("mail.fetch_limit must be positive, got %d", c.Mail.FetchLimit)
	}
	if _, err := ingest.ParsePolicy(c.Ingest.AmbiguousPolicy); err != nil {
		return fmt.Errorf("ingest.ambiguous_policy: %w", err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

// BankTable is the built-in table extended with the configured entries.
func (c Config) BankTable() extraction.BankTable {
	return extraction.DefaultBankTable().Extend(c.Banks.Domains, c.Banks.Keywords)
}

// Logger builds the process logger described by c.Log.
func (c LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log.level %q", s)
	}
	return level, nil
}
