package internal

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// Defaults applied when the optional variables are unset.
const (
	defaultCommandPrefix = "/"
	defaultHistoryBuffer = 64
)

var defaultTriggers = []string{"都来康", "都来看"}

type Config struct {
	DataDir           string `env:"DATA_DIR,required=true" validate:"required"`
	BadgerFilepath    string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	BlugeFilepath     string `env:"BLUGE_FILEPATH,required=true" validate:"required"`
	LogLevel          string `env:"LOG_LEVEL,required=true" validate:"required"`
	CommandPrefix     string `env:"COMMAND_PREFIX" validate:"max=4"`
	BroadcastTriggers string `env:"BROADCAST_TRIGGERS"`
	HistoryBuffer     int    `env:"HISTORY_BUFFER" validate:"gte=0"`
	LimitHistory      *int   `env:"LIMIT_HISTORY"`
	DebugPort         int    `env:"DEBUG_PORT"`
}

func (c Config) Validate() error {
	return validate.Struct(c)
}

// Prefix returns the command marker, "/" when unset. Messages starting with
// it are never fed to the lookup engine.
func (c Config) Prefix() string {
	if c.CommandPrefix == "" {
		return defaultCommandPrefix
	}
	return c.CommandPrefix
}

// Triggers returns the broadcast trigger phrases, parsed from the
// comma-separated BROADCAST_TRIGGERS variable.
func (c Config) Triggers() []string {
	if strings.TrimSpace(c.BroadcastTriggers) == "" {
		return defaultTriggers
	}
	parts := strings.Split(c.BroadcastTriggers, ",")
	trimmed := lo.Map(parts, func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Filter(trimmed, func(s string, _ int) bool { return s != "" })
}

// Buffer returns the mention-history channel capacity.
func (c Config) Buffer() int {
	if c.HistoryBuffer <= 0 {
		return defaultHistoryBuffer
	}
	return c.HistoryBuffer
}
