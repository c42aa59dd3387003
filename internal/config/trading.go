package config

import "time"

type Trading struct {
	MaxTradeHoldDays uint8         `env:"MAX_TRADE_HOLD_DURATION" envDefault:"15"`
	PollInterval     time.Duration `env:"TRADE_POLL_INTERVAL" envDefault:"60s"`
	VolatileAppIDs   []uint32      `env:"VOLATILE_APP_IDS" envSeparator:","`
	LockTTL          time.Duration `env:"TRADING_LOCK_TTL" envDefault:"2m"`
	// LockBackend: redis или local.
	LockBackend string `env:"TRADING_LOCK_BACKEND" envDefault:"redis"`
}

func (t Trading) VolatileApps() map[uint32]struct{} {
	apps := make(map[uint32]struct{}, len(t.VolatileAppIDs))
	for _, id := range t.VolatileAppIDs {
		apps[id] = struct{}{}
	}

	return apps
}

type Reputation struct {
	BaseURL  string        `env:"REPUTATION_URL"`
	Timeout  time.Duration `env:"REPUTATION_TIMEOUT" envDefault:"5s"`
	CacheTTL time.Duration `env:"REPUTATION_CACHE_TTL" envDefault:"1h"`
}
