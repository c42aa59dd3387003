package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AccountsFile string `env:"ACCOUNTS_FILE" envDefault:"accounts.json"`

	Gateway    Gateway
	Postgres   Postgres
	Redis      Redis
	Notifier   Notifier
	Reputation Reputation
	Trading    Trading
	HTTP       HTTP
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
