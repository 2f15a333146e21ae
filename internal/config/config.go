package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

type Config struct {
	Addr            string        `mapstructure:"api_addr"`         // API bind address, e.g. "127.0.0.1:8080" or ":8080" (Docker)
	LogDir          string        `mapstructure:"log_dir"`          // logs directory
	LogLevel        string        `mapstructure:"log_level"`        // debug | info | warn | error
	LogStdout       bool          `mapstructure:"log_stdout"`       // tee logs to stderr
	TargetsFile     string        `mapstructure:"targets_file"`     // JSON target catalog
	Workers         int           `mapstructure:"workers"`          // probe worker goroutines
	QueueSize       int           `mapstructure:"queue_size"`       // probe jobs waiting for a worker
	RecheckInterval time.Duration `mapstructure:"recheck_interval"` // background CheckAll period, 0 disables
	PublicRPM       int           `mapstructure:"public_rpm"`       // per-IP requests/minute, 0 disables
	PublicBurst     int           `mapstructure:"public_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_addr", "127.0.0.1:8080")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_stdout", false)
	v.SetDefault("targets_file", "config.json")
	v.SetDefault("workers", 5)
	v.SetDefault("queue_size", 1024)
	v.SetDefault("recheck_interval", time.Duration(0))
	v.SetDefault("public_rpm", 0)
	v.SetDefault("public_burst", 60)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// FromEnv reads settings from the environment (API_ADDR, WORKERS, ...). If
// CONFIG_FILE is set, that file (yaml, json or toml) supplies values the
// environment does not override.
func FromEnv() (Config, error) {
	v := viper.New()
	setDefaults(v)
	// every key has a default, so AutomaticEnv also applies during Unmarshal
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required, validation.By(validateHostPort)),
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.TargetsFile, validation.Required),
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
		validation.Field(&c.QueueSize, validation.Min(0)),
		validation.Field(&c.RecheckInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.PublicRPM, validation.Min(0)),
		validation.Field(&c.PublicBurst, validation.Min(1)),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("must be in host:port format")
	}
	if port == "" {
		return errors.New("port cannot be empty")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return errors.New("invalid host")
		}
	}
	return nil
}
