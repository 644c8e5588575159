package ssosync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_TriggersOnlyOnTimespanMultiples(t *testing.T) {
	for _, tc := range []struct{ timespan, refresh int }{{1, 1}, {5, 10}, {3, 7}, {10, 4}, {60, 300}} {
		cfg := Config{Timespan: tc.timespan, RefreshConfig: tc.refresh, DataLimit: 10}
		for it := 1; it <= cfg.WrapAt(); it++ {
			d := Decide(it, cfg)
			assert.Equal(t, it%tc.timespan == 0, d.Trigger, "T=%d R=%d it=%d", tc.timespan, tc.refresh, it)
			if d.Reload {
				assert.True(t, d.Trigger)
				assert.Zero(t, it%tc.refresh)
			}
			if d.Trigger && it%tc.refresh == 0 {
				assert.True(t, d.Reload)
			}
		}
	}
}

func TestDecide_InvalidTimespanNeverTriggers(t *testing.T) {
	assert.Equal(t, Decision{}, Decide(10, Config{Timespan: 0, RefreshConfig: 5}))
}

func TestCursor_NextWrapsAfterMax(t *testing.T) {
	var c Cursor
	seen := make([]int, 0, 8)
	for i := 0; i < 8; i++ {
		seen = append(seen, c.next(3))
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3, 1, 2}, seen)
}

func TestCursor_PaginationCoversAllRows(t *testing.T) {
	for _, tc := range []struct {
		total int64
		limit int
	}{{1, 1}, {3, 2}, {10, 5}, {11, 5}, {7, 100}} {
		c := Cursor{TotalData: tc.total}
		pages := 0
		for {
			pages++
			if c.Advance(tc.limit) {
				break
			}
			require.Less(t, pages, 1000)
		}
		wantPages := int((tc.total + int64(tc.limit) - 1) / int64(tc.limit))
		assert.Equal(t, wantPages, pages, "N=%d L=%d", tc.total, tc.limit)
		assert.Equal(t, wantPages*tc.limit, c.Offset)
		assert.GreaterOrEqual(t, int64(c.Offset), tc.total)
		assert.Less(t, int64(c.Offset-tc.limit), tc.total)
	}
}

func TestCursor_EmptyResultStaysAtZero(t *testing.T) {
	c := Cursor{}
	assert.False(t, c.Advance(10))
	assert.Zero(t, c.Offset)
}
