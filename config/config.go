// Package config loads catalog client settings from flags, environment and
// an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. CATALOG_URL.
const EnvPrefix = "CATALOG"

// Gateway kinds.
const (
	GatewayHTTP = "http"
	GatewayFile = "file"
)

// DefaultURL is the public catalog the client talks to when none is configured.
const DefaultURL = "https://fakestoreapi.com/products"

// Keys shared by flags, env and config file.
const (
	KeyConfig      = "config"
	KeyGateway     = "gateway"
	KeyURL         = "url"
	KeyCreateURL   = "create-url"
	KeyFile        = "file"
	KeyTimeout     = "timeout"
	KeyBreaker     = "breaker"
	KeyPerPage     = "per-page"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeyMetricsAddr = "metrics-addr"
)

// Config is the resolved client configuration.
type Config struct {
	Gateway     string        `mapstructure:"gateway" validate:"oneof=http file"`
	URL         string        `mapstructure:"url" validate:"required_if=Gateway http,omitempty,url"`
	CreateURL   string        `mapstructure:"create-url" validate:"omitempty,url"`
	File        string        `mapstructure:"file" validate:"required_if=Gateway file"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Breaker     bool          `mapstructure:"breaker"`
	PerPage     int           `mapstructure:"per-page" validate:"gte=1"`
	LogLevel    string        `mapstructure:"log-level" validate:"oneof=debug info warn warning error"`
	LogFormat   string        `mapstructure:"log-format" validate:"oneof=text json"`
	MetricsAddr string        `mapstructure:"metrics-addr"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyGateway, GatewayHTTP)
	v.SetDefault(KeyURL, DefaultURL)
	v.SetDefault(KeyCreateURL, "")
	v.SetDefault(KeyFile, "data/products.json")
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyBreaker, false)
	v.SetDefault(KeyPerPage, 15)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyMetricsAddr, "")
}

// BindEnv makes every key readable from CATALOG_<KEY> with dashes as underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads the config file named by the "config" key, if any, and returns
// the validated configuration.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	key := keyFor(fe.StructField())
	switch fe.Tag() {
	case "required_if":
		return fmt.Sprintf("%s is required when gateway is %s", key, strings.Fields(fe.Param())[1])
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be an absolute URL, got %q", key, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed on '%s'", key, fe.Tag())
	}
}

func keyFor(field string) string {
	switch field {
	case "Gateway":
		return KeyGateway
	case "URL":
		return KeyURL
	case "CreateURL":
		return KeyCreateURL
	case "File":
		return KeyFile
	case "Timeout":
		return KeyTimeout
	case "PerPage":
		return KeyPerPage
	case "LogLevel":
		return KeyLogLevel
	case "LogFormat":
		return KeyLogFormat
	default:
		return strings.ToLower(field)
	}
}
