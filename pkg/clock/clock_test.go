package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermarkRoundTripInWIB(t *testing.T) {
	utc := time.Date(2024, 3, 1, 17, 30, 15, 123_000_000, time.UTC)

	s := FormatWatermark(utc)
	assert.Equal(t, "2024-03-02 00:30:15.123", s)

	parsed, err := ParseWatermark(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(utc))
}

func TestParseWatermark_RejectsGarbage(t *testing.T) {
	_, err := ParseWatermark("yesterday")
	assert.Error(t, err)
}
