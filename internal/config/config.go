package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds everything the server reads from the environment or a .env
// file. Every key gets a default so AutomaticEnv picks up overrides.
type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	SecretKey     string `mapstructure:"SECRET_KEY"`
	TokenExpiry   int    `mapstructure:"TOKEN_EXPIRY_MINUTES"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	MediaDir      string `mapstructure:"MEDIA_DIR"`
	BaseURL       string `mapstructure:"BASE_URL"`
	CORSOrigin    string `mapstructure:"CORS_ORIGIN"`
}

func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_URL", "sqlite://portal.db")
	viper.SetDefault("SECRET_KEY", "")
	viper.SetDefault("TOKEN_EXPIRY_MINUTES", 1440)
	// The admin password is a UX gate for the news console, not a security
	// boundary. Ownership checks and JWTs are the real access control.
	viper.SetDefault("ADMIN_PASSWORD", "itgel2026")
	viper.SetDefault("MEDIA_DIR", "media")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("CORS_ORIGIN", "*")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No .env file is fine, env vars still apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY must be set")
	}
	return &cfg, nil
}
