package ssosync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SettingStore reads and writes the sso_* settings.
type SettingStore interface {
	GetValues(ctx context.Context, names []string) (map[string]string, error)
	SetValue(ctx context.Context, name, value string) error
}

// CustomerSource is the paginated customer query surface.
type CustomerSource interface {
	CountForSync(ctx context.Context, watermark time.Time) (int64, error)
	FindForSync(ctx context.Context, watermark time.Time, offset, limit int) ([]model.CustomerProfile, error)
	SetSSOID(ctx context.Context, id uint, ssoID string) error
}

// Pusher sends one customer to the identity provider and returns its id there.
type Pusher interface {
	Push(ctx context.Context, customer *model.CustomerProfile) (string, error)
}

// Status is a point-in-time copy of the runner state.
type Status struct {
	Config     Config
	Cursor     Cursor
	Running    bool
	LastTickAt time.Time
	LastPassAt time.Time
	LastError  string
	PassesDone int64
	RowsPushed int64
	RowsFailed int64
}

type Runner struct {
	settings  SettingStore
	customers CustomerSource
	pusher    Pusher
	clock     clock.Clock
	metrics   *metrics.SyncMetrics
	tickSpec  string

	mu     sync.Mutex
	status Status

	// pendingLinks holds ids returned by the provider for unlinked rows.
	// Writing them mid-pass would drop those rows out of the sync scope
	// and shift later rows below the offset, so they land in completePass.
	pendingLinks map[uint]string

	cron *cron.Cron
}

type Option func(*Runner)

func WithClock(c clock.Clock) Option { return func(r *Runner) { r.clock = c } }

func WithMetrics(m *metrics.SyncMetrics) Option { return func(r *Runner) { r.metrics = m } }

// WithTickSpec overrides the cron spec, "@every 1s" by default.
func WithTickSpec(spec string) Option { return func(r *Runner) { r.tickSpec = spec } }

func NewRunner(settings SettingStore, customers CustomerSource, pusher Pusher, opts ...Option) *Runner {
	r := &Runner{
		settings:  settings,
		customers: customers,
		pusher:    pusher,
		clock:     clock.System,
		tickSpec:  "@every 1s",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.status.Config = DefaultConfig()
	return r
}

// LoadConfig reads the settings into the runner. Failures keep the current config.
func (r *Runner) LoadConfig(ctx context.Context) error {
	ctx = ctxutil.WithFunction(ctx, "ssosync", "LoadConfig")

	values, err := r.settings.GetValues(ctx, SettingNames)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to load sync settings").Err(err).Log()
		r.setError(err)
		return err
	}

	r.mu.Lock()
	r.status.Config = ParseConfig(values, r.status.Config)
	cfg := r.status.Config
	r.mu.Unlock()

	logger.InfoWithContext(ctx, "Sync settings loaded").
		Bool("enabled", cfg.Enabled).
		Int("timespan", cfg.Timespan).
		Int("data_limit", cfg.DataLimit).
		Int("refresh_config", cfg.RefreshConfig).
		String("last_update", clock.FormatWatermark(cfg.LastUpdate)).
		Log()
	return nil
}

// Tick runs one scheduler tick. Ticks must not overlap; the cron chain
// guarantees that in production and tests call Tick sequentially.
func (r *Runner) Tick(ctx context.Context) {
	r.mu.Lock()
	cfg := r.status.Config
	iteration := r.status.Cursor.next(cfg.WrapAt())
	r.status.LastTickAt = r.clock.Now()
	r.mu.Unlock()

	r.metrics.Tick()

	decision := Decide(iteration, cfg)
	if !decision.Trigger {
		return
	}

	ctx = ctxutil.WithFunction(ctx, "ssosync", "Tick")
	ctx = context.WithValue(ctx, ctxutil.IterationKey, iteration)

	if decision.Reload {
		_ = r.LoadConfig(ctx)
		r.mu.Lock()
		cfg = r.status.Config
		r.mu.Unlock()
	}

	if !cfg.Enabled {
		logger.DebugWithContext(ctx, "Sync disabled, skipping trigger tick").Log()
		return
	}

	r.runPage(ctx, cfg)
}

func (r *Runner) runPage(ctx context.Context, cfg Config) {
	r.mu.Lock()
	r.status.Running = true
	cursor := r.status.Cursor
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.status.Running = false
		r.mu.Unlock()
	}()

	start := time.Now()
	watermark := cfg.LastUpdate

	if cursor.Offset == 0 {
		total, err := r.customers.CountForSync(ctx, watermark)
		if err != nil {
			logger.ErrorWithContext(ctx, "Failed to count customers for sync").Err(err).Log()
			r.metrics.Page(err)
			r.setError(err)
			return
		}
		cursor.TotalData = total
	}

	rows, err := r.customers.FindForSync(ctx, watermark, cursor.Offset, cfg.DataLimit)
	r.metrics.Page(err)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch sync page").
			Int("offset", cursor.Offset).
			Int("limit", cfg.DataLimit).
			Err(err).
			Log()
		r.mu.Lock()
		r.status.Cursor.TotalData = cursor.TotalData
		r.mu.Unlock()
		r.setError(err)
		return
	}

	pushed, failed := r.pushRows(ctx, rows)
	r.metrics.Rows(pushed, failed)

	fetchedAt := cursor.Offset
	complete := cursor.Advance(cfg.DataLimit)

	logger.InfoWithContext(ctx, "Sync page processed").
		Int("offset", fetchedAt).
		Int("rows", len(rows)).
		Int("pushed", pushed).
		Int("failed", failed).
		Int64("total_data", cursor.TotalData).
		Duration(time.Since(start)).
		Log()

	r.mu.Lock()
	r.status.Cursor.Offset = cursor.Offset
	r.status.Cursor.TotalData = cursor.TotalData
	r.status.RowsPushed += int64(pushed)
	r.status.RowsFailed += int64(failed)
	r.mu.Unlock()
	r.metrics.Cursor(cursor.Offset, cursor.TotalData)

	if complete {
		r.completePass(ctx, cursor)
	}
}

func (r *Runner) pushRows(ctx context.Context, rows []model.CustomerProfile) (pushed, failed int) {
	for i := range rows {
		if ctx.Err() != nil {
			failed += len(rows) - i
			return pushed, failed
		}
		row := &rows[i]
		ssoID, err := r.pusher.Push(ctx, row)
		if err != nil {
			failed++
			logger.WarnWithContext(ctx, "Failed to push customer").Uint("customer_id", row.ID).Err(err).Log()
			continue
		}
		pushed++

		if row.SSOID == nil && ssoID != "" {
			if r.pendingLinks == nil {
				r.pendingLinks = make(map[uint]string)
			}
			r.pendingLinks[row.ID] = ssoID
		}
	}
	return pushed, failed
}

// flushLinks stores the sso ids collected during the pass.
func (r *Runner) flushLinks(ctx context.Context) {
	links := r.pendingLinks
	r.pendingLinks = nil
	for id, ssoID := range links {
		if err := r.customers.SetSSOID(ctx, id, ssoID); err != nil {
			logger.WarnWithContext(ctx, "Failed to store sso id").Uint("customer_id", id).String("sso_id", ssoID).Err(err).Log()
		}
	}
	if len(links) > 0 {
		logger.InfoWithContext(ctx, "Stored sso ids from sync pass").Int("count", len(links)).Log()
	}
}

// completePass writes the watermark and starts a new pass. A failed write
// still resets the cursor, so the next pass re-sends rows instead of
// skipping them.
func (r *Runner) completePass(ctx context.Context, cursor Cursor) {
	r.flushLinks(ctx)

	now := r.clock.Now()
	value := clock.FormatWatermark(now)

	err := r.settings.SetValue(ctx, constants.SettingSSOLastUpdate, value)

	r.mu.Lock()
	r.status.Cursor.Reset()
	if err == nil {
		// Re-parse so the in-memory watermark has the stored precision.
		if t, perr := clock.ParseWatermark(value); perr == nil {
			r.status.Config.LastUpdate = t
		}
		r.status.LastPassAt = now
		r.status.PassesDone++
	}
	r.mu.Unlock()
	r.metrics.Cursor(0, 0)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to store sync watermark").String("watermark", value).Err(err).Log()
		r.setError(err)
		return
	}

	r.metrics.PassCompleted()
	logger.InfoWithContext(ctx, "Sync pass completed").
		String("watermark", value).
		Int("final_offset", cursor.Offset).
		Int64("total_data", cursor.TotalData).
		Log()
}

func (r *Runner) setError(err error) {
	r.mu.Lock()
	r.status.LastError = err.Error()
	r.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (r *Runner) Snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Start loads the settings and schedules Tick until Stop or ctx ends.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.LoadConfig(ctx); err != nil {
		logger.WarnWithContext(ctx, "Starting sync with default settings").Err(err).Log()
	}

	cronLogger := cronLog{l: logger.GetLogger().Named("sso-cron")}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(r.tickSpec, func() { r.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule sso sync: %w", err)
	}

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	c.Start()
	logger.InfoWithContext(ctx, "SSO sync scheduled").String("spec", r.tickSpec).Log()

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// Stop waits for a running tick to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// cronLog adapts zap to cron.Logger.
type cronLog struct {
	l *zap.Logger
}

func (c cronLog) Info(msg string, keysAndValues ...any) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLog) Error(err error, msg string, keysAndValues ...any) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
