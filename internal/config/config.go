// Package config loads the engine configuration: defaults, then an optional
// YAML file, then environment overrides. Environment wins so deployments can
// tweak a setting without editing the file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/turmeiro/boxtally/internal/errors"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "boxtally.yaml"

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel maps a raw string onto a supported level, defaulting to
// info for anything unrecognized.
func NormalizeLogLevel(raw string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn:
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Config is the full engine configuration.
type Config struct {
	// DBPath is the sqlite database file; ":memory:" keeps everything
	// in-process for tests and dry runs.
	DBPath string `yaml:"db_path"`
	// Locale drives name collation in reports (BCP 47 tag).
	Locale string `yaml:"locale"`
	// EasyMode relaxes marking to single-tap increments in clients; the
	// engine only stores and reports the preference.
	EasyMode  bool     `yaml:"easy_mode"`
	LogLevel  LogLevel `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"` // text or json
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		DBPath:    "boxtally.db",
		Locale:    "pt-BR",
		LogLevel:  LogLevelInfo,
		LogFormat: "text",
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// DefaultFile when path is empty; a missing default file is fine) and
// BOXTALLY_* environment variables, in that order.
func Load(path string) (Config, error) {
	// .env is a convenience for development; existing process env wins.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.ConfigError("invalid config file "+path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults only.
	default:
		return Config{}, errors.ConfigError("cannot read config file "+path, err)
	}

	applyEnv(&cfg)

	if _, err := cfg.LanguageTag(); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		return Config{}, errors.ConfigError("db_path must not be empty", nil)
	}
	cfg.LogLevel = NormalizeLogLevel(string(cfg.LogLevel))
	if cfg.LogFormat != "json" {
		cfg.LogFormat = "text"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOXTALLY_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BOXTALLY_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("BOXTALLY_EASY_MODE"); v != "" {
		cfg.EasyMode = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("BOXTALLY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = LogLevel(v)
	}
	if v := os.Getenv("BOXTALLY_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// LanguageTag parses the configured locale.
func (c Config) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, errors.ConfigError("invalid locale "+c.Locale, err)
	}
	return tag, nil
}
