package ssosync

// Cursor is the volatile pagination state.
type Cursor struct {
	Iteration int
	Offset    int
	TotalData int64
}

// Decision says what a tick at a given iteration must do.
type Decision struct {
	Trigger bool // fetch a page when enabled
	Reload  bool // reload settings before fetching
}

// Decide is evaluated after the iteration counter has been incremented.
func Decide(iteration int, cfg Config) Decision {
	if cfg.Timespan < 1 || iteration%cfg.Timespan != 0 {
		return Decision{}
	}
	return Decision{
		Trigger: true,
		Reload:  cfg.RefreshConfig >= 1 && iteration%cfg.RefreshConfig == 0,
	}
}

// Advance moves the cursor past a successfully fetched page and reports
// whether the pass is complete. A completed pass resets the offset.
func (c *Cursor) Advance(limit int) (passComplete bool) {
	if c.TotalData == 0 {
		// Nothing matched; stay at offset 0 so the next trigger recounts.
		c.Offset = 0
		return false
	}
	c.Offset += limit
	if int64(c.Offset) >= c.TotalData {
		return true
	}
	return false
}

// Reset starts a new pass.
func (c *Cursor) Reset() {
	c.Offset = 0
	c.TotalData = 0
}

// next increments the iteration counter, wrapping to 1 after wrapAt.
func (c *Cursor) next(wrapAt int) int {
	if wrapAt > 0 && c.Iteration >= wrapAt {
		c.Iteration = 0
	}
	c.Iteration++
	return c.Iteration
}
