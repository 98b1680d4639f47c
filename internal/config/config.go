package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Development DevelopmentConfig `mapstructure:"development"`
	Game        GameConfig        `mapstructure:"game"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

type GameConfig struct {
	// TokenSecret signs seat tokens. Empty means a random secret is
	// generated at startup.
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	// DaysPerMove is the default correspondence allowance; 0 disables it.
	DaysPerMove int `mapstructure:"days_per_move"`
}

// Load reads config.yaml from the working directory or ./config, with
// DUCKCHESS_* environment variables taking precedence.
func Load() (*Config, error) {
	return load(viper.New(), "config", ".", "./config")
}

// LoadFile reads the given file instead of searching for config.yaml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, "", "")
}

func load(v *viper.Viper, name string, paths ...string) (*Config, error) {
	if name != "" {
		v.SetConfigName(name)
		v.SetConfigType("yaml")
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	// Enable environment variables
	v.SetEnvPrefix("DUCKCHESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No file: defaults and environment only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
	v.SetDefault("game.token_secret", "")
	v.SetDefault("game.token_ttl", "720h")
	v.SetDefault("game.days_per_move", 0)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Game.TokenTTL < 0 {
		return fmt.Errorf("invalid game.token_ttl %s", c.Game.TokenTTL)
	}
	if c.Game.DaysPerMove < 0 {
		return fmt.Errorf("invalid game.days_per_move %d", c.Game.DaysPerMove)
	}
	return nil
}
