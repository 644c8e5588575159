package clock

import "time"

// WIB is the fixed UTC+7 zone used for watermarks and report file names.
var WIB = time.FixedZone("WIB", 7*60*60)

// WatermarkLayout is the fixed-precision layout of the sso_lastupdate setting.
const WatermarkLayout = "2006-01-02 15:04:05.000"

// Clock lets tests pin the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the wall clock.
var System Clock = systemClock{}

// Fixed always returns T.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }

// FormatWatermark renders t in WIB with millisecond precision.
func FormatWatermark(t time.Time) string {
	return t.In(WIB).Format(WatermarkLayout)
}

// ParseWatermark parses a value written by FormatWatermark.
func ParseWatermark(s string) (time.Time, error) {
	return time.ParseInLocation(WatermarkLayout, s, WIB)
}
