package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "PROBEDEMO"

// config is the merged view of flags, PROBEDEMO_* variables and the config file,
// in that order of precedence.
type config struct {
	Count      int           `mapstructure:"count"`
	Interval   time.Duration `mapstructure:"interval"`
	Init       bool          `mapstructure:"init"`
	OTel       bool          `mapstructure:"otel"`
	HealthAddr string        `mapstructure:"health-addr"`
	LogLevel   string        `mapstructure:"log-level"`
}

func loadConfig(cmd *cobra.Command) (config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config{}, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Count < 0 {
		return config{}, fmt.Errorf("count must not be negative, got %d", cfg.Count)
	}
	return cfg, nil
}
