package ssosync

import (
	"testing"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Timespan)
	assert.Equal(t, 100, cfg.DataLimit)
	assert.Equal(t, 300, cfg.RefreshConfig)
	assert.True(t, cfg.LastUpdate.Equal(time.Unix(0, 0)))
	assert.Equal(t, 300, cfg.WrapAt())
}

func TestParseConfig_InvalidValuesKeepPrevious(t *testing.T) {
	prev := Config{Enabled: true, Timespan: 5, DataLimit: 2, RefreshConfig: 10}
	cfg := ParseConfig(map[string]string{
		constants.SettingSSOProcess:       "maybe",
		constants.SettingSSOTimespan:      "0",
		constants.SettingSSODataLimit:     "abc",
		constants.SettingSSORefreshConfig: "-3",
		constants.SettingSSOLastUpdate:    "yesterday",
	}, prev)
	assert.Equal(t, prev, cfg)
}

func TestParseConfig_ReadsValues(t *testing.T) {
	cfg := ParseConfig(map[string]string{
		constants.SettingSSOProcess:       " on ",
		constants.SettingSSOTimespan:      "7",
		constants.SettingSSODataLimit:     "50",
		constants.SettingSSORefreshConfig: "21",
		constants.SettingSSOLastUpdate:    "2024-03-01 10:00:00.250",
	}, Config{})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 7, cfg.Timespan)
	assert.Equal(t, 50, cfg.DataLimit)
	assert.Equal(t, 21, cfg.RefreshConfig)
	assert.Equal(t, "2024-03-01 10:00:00.250", clock.FormatWatermark(cfg.LastUpdate))
	assert.Equal(t, "1", cfg.Values()[constants.SettingSSOProcess])
	assert.NotContains(t, cfg.Values(), constants.SettingSSOLastUpdate)
}
