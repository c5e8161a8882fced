package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/maverickins/claims-intake/internal/bootstrap/logging"
	"github.com/maverickins/claims-intake/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Assessor AssessorConfig `mapstructure:"assessor"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Server   ServerConfig   `mapstructure:"server"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HolderConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
	IBAN  string `mapstructure:"iban"`
}

// PolicyConfig consolidates the policy-number rules that used to drift across
// entry points: the known-number set plus optional format requirements,
// applied consistently by the registry adapter.
type PolicyConfig struct {
	ValidNumbers   []string                `mapstructure:"valid_numbers"`
	RequiredPrefix string                  `mapstructure:"required_prefix"`
	MinLength      int                     `mapstructure:"min_length"`
	Timeout        time.Duration           `mapstructure:"timeout"`
	Holders        map[string]HolderConfig `mapstructure:"holders"`
}

type AssessorConfig struct {
	MinEstimate string `mapstructure:"min_estimate"`
	MaxEstimate string `mapstructure:"max_estimate"`
}

type RulesConfig struct {
	ApprovalThreshold string `mapstructure:"approval_threshold"`
}

type WeatherConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	GeocodeURL string        `mapstructure:"geocode_url"`
	HistoryURL string        `mapstructure:"history_url"`
	Country    string        `mapstructure:"country"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type PaymentsConfig struct {
	Mode     string        `mapstructure:"mode"`
	APIKey   string        `mapstructure:"api_key"`
	Currency string        `mapstructure:"currency"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type NotifyConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, errs.Wrap(err, "validate config")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("valid_policies", len(cfg.Policy.ValidNumbers)),
		slog.String("payments_mode", cfg.Payments.Mode),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	for key, raw := range map[string]string{
		"assessor.min_estimate":    cfg.Assessor.MinEstimate,
		"assessor.max_estimate":    cfg.Assessor.MaxEstimate,
		"rules.approval_threshold": cfg.Rules.ApprovalThreshold,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return errs.Wrapf(err, "%s: invalid decimal %q", key, raw)
		}
	}

	min, _ := decimal.NewFromString(cfg.Assessor.MinEstimate)
	max, _ := decimal.NewFromString(cfg.Assessor.MaxEstimate)
	if min.GreaterThan(max) {
		return errors.New("assessor.min_estimate exceeds assessor.max_estimate")
	}

	switch strings.ToLower(cfg.Payments.Mode) {
	case "sandbox":
	case "stripe":
		if cfg.Payments.APIKey == "" {
			return errors.New("payments.api_key is required in stripe mode")
		}
	default:
		return errors.New("payments.mode must be sandbox or stripe")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "claims-intake")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/claims.sqlite")
	v.SetDefault("policy.valid_numbers", []string{"DEMO-12345", "DEMO-678910", "DEMO-11111", "99999"})
	v.SetDefault("policy.required_prefix", "")
	v.SetDefault("policy.min_length", 5)
	v.SetDefault("policy.timeout", "5s")
	v.SetDefault("assessor.min_estimate", "500")
	v.SetDefault("assessor.max_estimate", "5000")
	v.SetDefault("rules.approval_threshold", "5000")
	v.SetDefault("weather.geocode_url", "http://api.openweathermap.org/geo/1.0/direct")
	v.SetDefault("weather.history_url", "https://api.openweathermap.org/data/2.5/onecall/timemachine")
	v.SetDefault("weather.country", "CH")
	v.SetDefault("weather.timeout", "10s")
	v.SetDefault("payments.mode", "sandbox")
	v.SetDefault("payments.currency", "eur")
	v.SetDefault("payments.timeout", "15s")
	v.SetDefault("notify.subject", "claims.outcome")
	v.SetDefault("server.addr", ":8080")
}
