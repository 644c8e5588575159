// Package ssosync pushes changed customer profiles to the identity provider.
//
// A scheduler ticks once per second. Every tick advances an iteration
// counter; ticks where the counter is a multiple of the configured timespan
// fetch one page of customers changed since the stored watermark. When a
// pass has covered every counted row the watermark moves to now. Only the
// watermark is durable: the cursor lives in process memory.
package ssosync

import (
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
)

// Config is the typed form of the sso_* settings.
type Config struct {
	Enabled       bool
	Timespan      int
	DataLimit     int
	RefreshConfig int
	LastUpdate    time.Time
}

// DefaultConfig mirrors the seeded settings.
func DefaultConfig() Config {
	cfg := ParseConfig(constants.DefaultSettings, Config{
		Timespan:      60,
		DataLimit:     100,
		RefreshConfig: 300,
		LastUpdate:    time.Unix(0, 0).In(clock.WIB),
	})
	return cfg
}

// SettingNames lists the settings ParseConfig reads.
var SettingNames = []string{
	constants.SettingSSOProcess,
	constants.SettingSSOTimespan,
	constants.SettingSSODataLimit,
	constants.SettingSSORefreshConfig,
	constants.SettingSSOLastUpdate,
}

// ParseConfig reads values over prev. Missing or unparsable values, and
// integers below 1, keep the previous value.
func ParseConfig(values map[string]string, prev Config) Config {
	cfg := prev

	if v, ok := values[constants.SettingSSOProcess]; ok {
		if enabled, ok := parseFlag(v); ok {
			cfg.Enabled = enabled
		}
	}
	cfg.Timespan = positiveInt(values, constants.SettingSSOTimespan, prev.Timespan)
	cfg.DataLimit = positiveInt(values, constants.SettingSSODataLimit, prev.DataLimit)
	cfg.RefreshConfig = positiveInt(values, constants.SettingSSORefreshConfig, prev.RefreshConfig)

	if v, ok := values[constants.SettingSSOLastUpdate]; ok {
		if t, err := clock.ParseWatermark(strings.TrimSpace(v)); err == nil {
			cfg.LastUpdate = t
		}
	}
	return cfg
}

// Values renders cfg back into setting rows; the watermark is not included.
func (c Config) Values() map[string]string {
	process := "0"
	if c.Enabled {
		process = "1"
	}
	return map[string]string{
		constants.SettingSSOProcess:       process,
		constants.SettingSSOTimespan:      strconv.Itoa(c.Timespan),
		constants.SettingSSODataLimit:     strconv.Itoa(c.DataLimit),
		constants.SettingSSORefreshConfig: strconv.Itoa(c.RefreshConfig),
	}
}

// WrapAt is the iteration after which the counter restarts.
func (c Config) WrapAt() int {
	if c.RefreshConfig > c.Timespan {
		return c.RefreshConfig
	}
	return c.Timespan
}

func positiveInt(values map[string]string, name string, prev int) int {
	v, ok := values[name]
	if !ok {
		return prev
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return prev
	}
	return n
}

func parseFlag(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off", "":
		return false, true
	default:
		return false, false
	}
}
