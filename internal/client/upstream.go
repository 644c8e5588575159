// Package client holds the HTTP clients for the auth, admin and notification
// services. Every call goes through a per-upstream circuit breaker and is
// never retried.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/pkg/circuit"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/metrics"
	"github.com/Payphone-Digital/customer-service/pkg/pool"
	"github.com/go-resty/resty/v2"
)

const (
	ServiceAuth         = "auth"
	ServiceAdmin        = "admin"
	ServiceNotification = "notification"
)

// UpstreamError is a non-2xx answer from a sibling service.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service responded %d: %s", e.Service, e.Status, e.Message)
}

// IsBreakerFailure reports whether err should count against a breaker.
// Client errors (4xx) mean the upstream is alive.
func IsBreakerFailure(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status >= http.StatusInternalServerError
	}
	return err != nil
}

// ToDomain maps upstream failures onto domain errors: an upstream rejection
// keeps its message as a 400, transport failures become 502.
func ToDomain(err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		msg := ue.Message
		if msg == "" {
			msg = apperrors.KindUpstream.Message()
		}
		return &apperrors.DomainError{Kind: apperrors.KindUpstream, Message: msg, Err: err}
	}
	return apperrors.Wrap(apperrors.KindUpstreamUnavailable, err)
}

// envelope is the response shape shared by the sibling services.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

// Options configure one upstream.
type Options struct {
	Service string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Upstream is the shared plumbing behind each service client.
type Upstream struct {
	service string
	baseURL string
	http    *resty.Client
	breaker *circuit.Breaker
	pool    *pool.ConnectionPool
	metrics *metrics.Metrics
}

func NewUpstream(opts Options, connPool *pool.ConnectionPool, breakers *circuit.BreakerRegistry, m *metrics.Metrics) *Upstream {
	rc := resty.NewWithClient(connPool.GetHTTPClient(opts.BaseURL)).
		SetBaseURL(opts.BaseURL).
		SetHeader(constants.HeaderContentType, constants.ContentTypeJSON).
		SetHeader("Accept", constants.ContentTypeJSON).
		SetRetryCount(0)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.APIKey != "" {
		rc.SetHeader(constants.HeaderXAPIKey, opts.APIKey)
	}

	return &Upstream{
		service: opts.Service,
		baseURL: opts.BaseURL,
		http:    rc,
		breaker: breakers.GetOrCreate(opts.Service),
		pool:    connPool,
		metrics: m,
	}
}

func (u *Upstream) Service() string { return u.service }
func (u *Upstream) BaseURL() string { return u.baseURL }

// Do sends one request and decodes the envelope's data into result.
// result may be nil.
func (u *Upstream) Do(ctx context.Context, method, path string, body, result any, headers map[string]string) error {
	start := time.Now()

	err := u.breaker.Execute(ctx, func(ctx context.Context) error {
		req := u.http.R().SetContext(ctx)
		if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
			req.SetHeader(constants.HeaderXRequestID, requestID)
		}
		for k, v := range headers {
			req.SetHeader(k, v)
		}
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return decode(u.service, resp, result)
	})

	u.record(err)
	u.metrics.UpstreamCall(u.service, err)

	if err != nil {
		logger.WarnWithContext(ctx, "Upstream call failed").
			String("upstream", u.service).
			String("method", method).
			String("path", path).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Upstream call succeeded").
		String("upstream", u.service).
		String("method", method).
		String("path", path).
		Duration(time.Since(start)).
		Log()
	return nil
}

func (u *Upstream) record(err error) {
	if IsBreakerFailure(err) && !errors.Is(err, circuit.ErrCircuitOpen) {
		u.pool.RecordFailure(u.baseURL, err)
		return
	}
	if err == nil {
		u.pool.RecordSuccess(u.baseURL)
	}
}

func decode(service string, resp *resty.Response, result any) error {
	raw := resp.Body()
	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.IsError() {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return &UpstreamError{Service: service, Status: resp.StatusCode(), Message: msg}
	}

	if result == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s response: %w", service, decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("decode %s data: %w", service, err)
	}
	return nil
}

// Health calls GET /health and reports transport or status failures.
func (u *Upstream) Health(ctx context.Context) error {
	return u.Do(ctx, http.MethodGet, "/health", nil, nil, nil)
}
