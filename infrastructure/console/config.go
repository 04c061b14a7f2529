package console

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CONSOLE_COLOURS enables colorized replies for readability
	Colours bool `envconfig:"CONSOLE_COLOURS" default:"true"`
	// CONSOLE_GROUP is the group id every stdin line is scoped to
	Group string `envconfig:"CONSOLE_GROUP" default:"demo"`
	// CONSOLE_ADMIN grants the console sender the admin tier
	Admin bool `envconfig:"CONSOLE_ADMIN" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
