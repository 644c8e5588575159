package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is a breaker position. Its int value is exported as a gauge.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "CLOSED",
	StateOpen:     "OPEN",
	StateHalfOpen: "HALF_OPEN",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config is shared by every breaker in a registry.
type Config struct {
	Threshold        int           // consecutive failures that open the circuit
	Timeout          time.Duration // how long to stay open before probing
	SuccessThreshold int           // probe successes that close it again
	MaxHalfOpen      int           // probes allowed in flight

	// IsFailure decides whether an error counts against the breaker.
	// Nil counts every non-nil error.
	IsFailure func(error) bool

	// OnStateChange runs with the lock held and must not call back into
	// the breaker.
	OnStateChange func(name string, from, to State)
}

func (c Config) withDefaults() Config {
	if c.MaxHalfOpen <= 0 {
		c.MaxHalfOpen = 1
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 1
	}
	if c.IsFailure == nil {
		c.IsFailure = func(err error) bool { return err != nil }
	}
	return c
}

// Breaker guards calls to one upstream service.
type Breaker struct {
	name   string
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	probes   int // successful probes while half-open
	inFlight int // probes admitted while half-open
	openedAt time.Time
}

func NewBreaker(name string, cfg Config, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{
		name:   name,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// Execute runs fn unless the circuit is open. A call that ends because ctx
// was cancelled frees its probe slot without being recorded.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		b.mu.Lock()
		if b.state == StateHalfOpen && b.inFlight > 0 {
			b.inFlight--
		}
		b.mu.Unlock()
		return err
	}
	b.Record(err)
	return err
}

// Allow admits a call or reports why the circuit rejects it.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Timeout {
			return ErrCircuitOpen
		}
		b.setState(StateHalfOpen)
	}
	if b.state == StateHalfOpen {
		if b.inFlight >= b.cfg.MaxHalfOpen {
			return ErrTooManyRequests
		}
		b.inFlight++
	}
	return nil
}

// Record feeds the outcome of an admitted call back into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.cfg.IsFailure(err) {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.probes++
			if b.probes >= b.cfg.SuccessThreshold {
				b.setState(StateClosed)
			}
		}
		return
	}

	b.failures++
	switch {
	case b.state == StateHalfOpen:
		b.setState(StateOpen)
	case b.state == StateClosed && b.failures >= b.cfg.Threshold:
		b.setState(StateOpen)
	}
}

// setState must be called with mu held.
func (b *Breaker) setState(to State) {
	from := b.state
	b.state = to
	b.inFlight = 0
	b.probes = 0
	switch to {
	case StateOpen:
		b.openedAt = b.now()
	case StateClosed:
		b.failures = 0
	}

	b.logger.Info("Circuit breaker state changed",
		zap.String("upstream", b.name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int("failures", b.failures),
	)
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats is the breaker's entry in the health report.
func (b *Breaker) Stats() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]any{
		"state":     b.state.String(),
		"failures":  b.failures,
		"threshold": b.cfg.Threshold,
		"timeout":   b.cfg.Timeout.String(),
	}
	if !b.openedAt.IsZero() {
		stats["last_opened"] = b.openedAt
	}
	return stats
}

// BreakerRegistry holds one breaker per upstream service.
type BreakerRegistry struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewBreakerRegistry(cfg Config, logger *zap.Logger) *BreakerRegistry {
	return &BreakerRegistry{
		cfg:      cfg,
		logger:   logger,
		breakers: make(map[string]*Breaker),
	}
}

// GetOrCreate returns the breaker for name, creating it on first use.
func (r *BreakerRegistry) GetOrCreate(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(name, r.cfg, r.logger)
	r.breakers[name] = b
	return b
}

// Stats returns every breaker's Stats keyed by upstream name.
func (r *BreakerRegistry) Stats() map[string]any {
	r.mu.Lock()
	names := make(map[string]*Breaker, len(r.breakers))
	for name, b := range r.breakers {
		names[name] = b
	}
	r.mu.Unlock()

	stats := make(map[string]any, len(names))
	for name, b := range names {
		stats[name] = b.Stats()
	}
	return stats
}
