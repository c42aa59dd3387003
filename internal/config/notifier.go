package config

type Notifier struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID"`
	// AdminIDs: кому разрешены операторские команды.
	AdminIDs []int64 `env:"BOT_ADMIN_IDS" envSeparator:","`
}

func (n Notifier) Enabled() bool {
	return n.Token != ""
}
