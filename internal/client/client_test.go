package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/pkg/cache"
	"github.com/Payphone-Digital/customer-service/pkg/circuit"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUpstream(t *testing.T, service string, handler http.HandlerFunc, threshold int) *Upstream {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	breakers := circuit.NewBreakerRegistry(circuit.Config{
		Threshold:        threshold,
		Timeout:          time.Hour,
		SuccessThreshold: 1,
		MaxHalfOpen:      1,
		IsFailure:        IsBreakerFailure,
	}, nil)

	return NewUpstream(Options{
		Service: service,
		BaseURL: srv.URL,
		APIKey:  "secret",
		Timeout: time.Second,
	}, pool.NewConnectionPool(pool.DefaultPoolConfig(), nil), breakers, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    status < 300,
		"statusCode": status,
		"message":    message,
		"data":       data,
	})
}

func TestAuthClient_LoginSendsHeadersAndDecodesData(t *testing.T) {
	up := newTestUpstream(t, ServiceAuth, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "req-7", r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "budi", body["username"])

		writeEnvelope(w, http.StatusOK, "ok", map[string]any{
			"access_token":  "sso-access",
			"refresh_token": "sso-refresh",
			"user":          map[string]any{"id": "sso-1", "phone": "081234567890"},
		})
	}, 5)

	ctx := ctxutil.WithRequestID(context.Background(), "req-7")
	tokens, err := NewAuthClient(up).Login(ctx, "budi", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "sso-access", tokens.AccessToken)
	require.NotNil(t, tokens.User)
	assert.Equal(t, "sso-1", tokens.User.ID)
}

func TestUpstream_ClientErrorDoesNotTripBreaker(t *testing.T) {
	up := newTestUpstream(t, ServiceAuth, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, "OTP code is wrong", nil)
	}, 1)

	auth := NewAuthClient(up)
	for i := 0; i < 3; i++ {
		err := auth.ValidateEmailOTP(context.Background(), 1, "a@b.co", "0000")
		var ue *UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, http.StatusBadRequest, ue.Status)
		assert.Equal(t, "OTP code is wrong", ue.Message)
	}
	assert.Equal(t, circuit.StateClosed, up.breaker.State())

	derr := apperrors.GetDomainError(ToDomain(auth.ValidateEmailOTP(context.Background(), 1, "a@b.co", "0000")))
	require.NotNil(t, derr)
	assert.Equal(t, apperrors.KindUpstream, derr.Kind)
	assert.Equal(t, "OTP code is wrong", derr.Message)
}

func TestUpstream_ServerErrorsOpenBreaker(t *testing.T) {
	var calls int32
	up := newTestUpstream(t, ServiceNotification, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusBadGateway, "down", nil)
	}, 2)

	n := NewNotificationClient(up)
	ctx := context.Background()
	require.Error(t, n.SendSMS(ctx, SMS{Phone: "0812", Message: "hi"}))
	require.Error(t, n.SendSMS(ctx, SMS{Phone: "0812", Message: "hi"}))

	err := n.SendSMS(ctx, SMS{Phone: "0812", Message: "hi"})
	assert.ErrorIs(t, err, circuit.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must not reach the upstream")
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.GetDomainError(ToDomain(err)).Kind)
}

func TestAdminClient_GetCityIsCached(t *testing.T) {
	var calls int32
	up := newTestUpstream(t, ServiceAdmin, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/cities/12", r.URL.Path)
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{"id": 12, "name": "Bandung", "province": "Jawa Barat"})
	}, 5)

	store := cache.NewMemory()
	t.Cleanup(store.Close)
	admin := NewAdminClient(up, store, time.Minute)

	for i := 0; i < 3; i++ {
		city, err := admin.GetCity(context.Background(), 12)
		require.NoError(t, err)
		assert.Equal(t, "Bandung", city.Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAdminClient_SearchCitiesEscapesQuery(t *testing.T) {
	up := newTestUpstream(t, ServiceAdmin, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kota bandung", r.URL.Query().Get("search"))
		writeEnvelope(w, http.StatusOK, "ok", []map[string]any{{"id": 1, "name": "Kota Bandung"}})
	}, 5)

	cities, err := NewAdminClient(up, nil, time.Minute).SearchCities(context.Background(), " kota bandung ")
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, uint(1), cities[0].ID)
}

func TestAuthClient_SyncUser(t *testing.T) {
	up := newTestUpstream(t, ServiceAuth, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/sync", r.URL.Path)
		var req SyncUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, uint(9), req.CustomerID)
		assert.True(t, req.Deleted)
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{"sso_id": "sso-9"})
	}, 5)

	out, err := NewAuthClient(up).SyncUser(context.Background(), SyncUserRequest{CustomerID: 9, Deleted: true})
	require.NoError(t, err)
	assert.Equal(t, "sso-9", out.SSOID)
}
