// Package config manages application configuration from environment
// variables, config files, and default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var ErrConfiguration = errors.New("configuration error")

const (
	defaultAPIBaseURL = "https://mia.mobil.knute.edu.ua"
	defaultAPITimeout = 10 * time.Second
	defaultCacheTTL   = time.Hour
	defaultDataDir    = "data"
	defaultCachePath  = "data/cache.db"
	defaultLang       = "uk"
	// Discipline names carrying this substring are hidden from pages.
	defaultHiddenMarker = "приховано"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with BOT_ (e.g. BOT_TELEGRAM_TOKEN) or
// through config.yaml.
type Config struct {
	// Telegram settings
	TelegramToken   string `mapstructure:"telegram.token" validate:"required"`
	TelegramAdminID int64  `mapstructure:"telegram.admin_id"`

	// Remote timetable API
	APIBaseURL string        `mapstructure:"api.base_url" validate:"required,url"`
	APITimeout time.Duration `mapstructure:"api.timeout"  validate:"required,min=1s,max=5m"`

	// Storage locations
	DataDir   string `mapstructure:"data.dir"        validate:"required"`
	CachePath string `mapstructure:"data.cache_path" validate:"required"`

	// Page composition
	DefaultLang      string        `mapstructure:"bot.default_lang"  validate:"required"`
	HiddenMarker     string        `mapstructure:"bot.hidden_marker"`
	SupportURL       string        `mapstructure:"bot.support_url"   validate:"omitempty,url"`
	ScheduleCacheTTL time.Duration `mapstructure:"bot.schedule_cache_ttl" validate:"required,min=1m"`

	// Logging settings
	LogLevel  string `mapstructure:"log.level"  validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log.format" validate:"required,oneof=json text"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. the config file at path (or ./config.yaml when path is empty)
// 3. BOT_* environment variables
func Load(path string) (*Config, error) {
	setDefaults()

	if err := readConfig(path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// readConfig initializes viper and reads the optional config file.
func readConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Missing config file is fine, defaults plus env cover it.
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %v", err)
	}

	return nil
}

// unmarshal fills cfg field by field. Keys are resolved through viper so
// environment overrides apply even without a config file.
func unmarshal(cfg *Config) error {
	cfg.TelegramToken = viper.GetString("telegram.token")
	cfg.TelegramAdminID = viper.GetInt64("telegram.admin_id")
	cfg.APIBaseURL = viper.GetString("api.base_url")
	cfg.APITimeout = viper.GetDuration("api.timeout")
	cfg.DataDir = viper.GetString("data.dir")
	cfg.CachePath = viper.GetString("data.cache_path")
	cfg.DefaultLang = viper.GetString("bot.default_lang")
	cfg.HiddenMarker = viper.GetString("bot.hidden_marker")
	cfg.SupportURL = viper.GetString("bot.support_url")
	cfg.ScheduleCacheTTL = viper.GetDuration("bot.schedule_cache_ttl")
	cfg.LogLevel = viper.GetString("log.level")
	cfg.LogFormat = viper.GetString("log.format")
	return nil
}

// setDefaults sets default values for optional configuration parameters.
func setDefaults() {
	viper.SetDefault("api.base_url", defaultAPIBaseURL)
	viper.SetDefault("api.timeout", defaultAPITimeout)

	viper.SetDefault("data.dir", defaultDataDir)
	viper.SetDefault("data.cache_path", defaultCachePath)

	viper.SetDefault("bot.default_lang", defaultLang)
	viper.SetDefault("bot.hidden_marker", defaultHiddenMarker)
	viper.SetDefault("bot.schedule_cache_ttl", defaultCacheTTL)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}
