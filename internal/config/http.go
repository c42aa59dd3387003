package config

type HTTP struct {
	ListenAddress  string `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	MetricsAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
	ProbeAddress   string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
	APIToken       string `env:"HTTP_API_TOKEN" json:"-"`
}
