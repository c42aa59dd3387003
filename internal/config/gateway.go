package config

import "time"

// Gateway: сервис-прослойка, который держит сессии ботов на площадке.
type Gateway struct {
	BaseURL            string        `env:"GATEWAY_URL,required"`
	Token              string        `env:"GATEWAY_TOKEN" json:"-"`
	Timeout            time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"30s"`
	StatusPollInterval time.Duration `env:"GATEWAY_STATUS_POLL_INTERVAL" envDefault:"10s"`
}
