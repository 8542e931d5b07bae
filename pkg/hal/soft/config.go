package soft

import (
	"flag"
	"os"
	"time"

	"github.com/golang/glog"
)

// DefaultTickInterval is the default period of a Clock. It gives
// 1250 baud at 8 ticks per bit.
const DefaultTickInterval = 100 * time.Microsecond

// Config defines the configuration of soft boards.
type Config struct {
	TickInterval time.Duration
}

var defaultConfig = Config{
	TickInterval: DefaultTickInterval,
}

func init() {
	if val := os.Getenv("SOFTUART_TICK"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			glog.Warningf("ignore SOFTUART_TICK=%q: %v", val, err)
		} else {
			defaultConfig.TickInterval = d
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.TickInterval, "tick", defaultConfig.TickInterval, "Timer tick interval, a bit lasts 8 ticks.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewClock creates a Clock using the config.
func (c *Config) NewClock(boards ...*Board) *Clock {
	return NewClock(c.TickInterval).Add(boards...)
}
