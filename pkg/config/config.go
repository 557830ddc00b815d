package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // display_timezone must resolve on hosts without zoneinfo

	"TrafficLight/pkg/cache"
	"TrafficLight/pkg/clickhouse"
	"TrafficLight/pkg/kafka"
	"TrafficLight/pkg/logger"
	"TrafficLight/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string            `yaml:"environment" default:"production"`
	Log         logger.Config     `yaml:"log"`
	ErrorLog    ErrorLogConfig    `yaml:"error_log"`
	Identity    IdentityConfig    `yaml:"identity"`
	Feed        FeedConfig        `yaml:"feed"`
	Loop        LoopConfig        `yaml:"loop"`
	Indicator   IndicatorConfig   `yaml:"indicator"`
	Server      ServerConfig      `yaml:"server"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Cache       cache.Config      `yaml:"cache"`
	Kafka       kafka.Config      `yaml:"kafka"`
	ClickHouse  clickhouse.Config `yaml:"clickhouse"`
}

// IdentityConfig describes the client-credentials exchange.
// Missing credentials are not a load error; the first token request fails instead.
type IdentityConfig struct {
	TokenURL     string        `yaml:"token_url" default:"https://identity.netztransparenz.de/users/connect/token" validate:"required,url"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Scopes       []string      `yaml:"scopes"`
	Timeout      time.Duration `yaml:"timeout" default:"5s" validate:"gt=0"`
}

type FeedConfig struct {
	BaseURL   string        `yaml:"base_url" default:"https://ds.netztransparenz.de/api/v1/data" validate:"required,url"`
	Window    time.Duration `yaml:"window" default:"10m" validate:"gt=0"`
	Timeout   time.Duration `yaml:"timeout" default:"5s" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent" default:"trafficlight/1.0"`
}

type LoopConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval" default:"1100ms" validate:"gt=0"`
	SettleHold      time.Duration `yaml:"settle_hold" default:"55s" validate:"gte=0"`
	StaleAfter      time.Duration `yaml:"stale_after" default:"2m" validate:"gt=0"`
	DisplayTimezone string        `yaml:"display_timezone" default:"Europe/Berlin" validate:"timezone"`
	Countdown       bool          `yaml:"countdown" default:"true"`
}

type IndicatorConfig struct {
	Driver        string        `yaml:"driver" default:"console" validate:"oneof=console gpio"`
	BlinkInterval time.Duration `yaml:"blink_interval" default:"500ms"`
	ToneDuration  time.Duration `yaml:"tone_duration" default:"150ms"`
	Pins          PinsConfig    `yaml:"pins"`
}

// PinsConfig names GPIO lines as registered by periph (e.g. "GPIO17").
type PinsConfig struct {
	Blue   string `yaml:"blue" default:"GPIO17"`
	Green  string `yaml:"green" default:"GPIO27"`
	Yellow string `yaml:"yellow" default:"GPIO22"`
	Red    string `yaml:"red" default:"GPIO23"`
	Buzzer string `yaml:"buzzer" default:"GPIO24"`
}

type ServerConfig struct {
	Enabled         bool          `yaml:"enabled" default:"true"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"5s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// ErrorLogConfig enables aggregation of error lines into the Kafka log topic.
type ErrorLogConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval" default:"1m"`
	Threshold int           `yaml:"threshold" default:"100"`
}

var validate = validator.New()

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML, applies environment overrides and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("IPNT_CLIENT_ID"); v != "" {
		c.Identity.ClientID = v
	}
	if v := os.Getenv("IPNT_CLIENT_SECRET"); v != "" {
		c.Identity.ClientSecret = v
	}
	if v := os.Getenv("TOKEN_URL"); v != "" {
		c.Identity.TokenURL = v
	}
	if v := os.Getenv("TRAFFICLIGHT_BASE_URL"); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("STATUS_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("INDICATOR_DRIVER"); v != "" {
		c.Indicator.Driver = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Location resolves the display timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Loop.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
