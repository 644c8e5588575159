package pool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnectionPool_GetHTTPClientIsCached(t *testing.T) {
	p := NewConnectionPool(DefaultPoolConfig(), zap.NewNop())

	c1 := p.GetHTTPClient("http://auth.local")
	require.NotNil(t, c1)
	assert.Same(t, c1, p.GetHTTPClient("http://auth.local"))
	assert.NotSame(t, c1, p.GetHTTPClient("https://admin.local"))

	assert.Equal(t, 2, p.Stats()["http_clients"])
}

func TestConnectionPool_HealthTracking(t *testing.T) {
	cfg := DefaultPoolConfig()
	cfg.UnhealthyAfter = 2
	p := NewConnectionPool(cfg, nil)

	addr := "http://notification.local"
	assert.True(t, p.IsHealthy(addr), "untracked upstream counts as healthy")

	p.GetHTTPClient(addr)
	p.RecordFailure(addr, errors.New("dial tcp: refused"))
	assert.True(t, p.IsHealthy(addr))

	p.RecordFailure(addr, errors.New("dial tcp: refused"))
	assert.False(t, p.IsHealthy(addr))

	stats := p.GetHealthStats()[addr]
	assert.Equal(t, 2, stats.FailureCount)
	assert.Equal(t, "dial tcp: refused", stats.LastError)

	p.RecordSuccess(addr)
	assert.True(t, p.IsHealthy(addr))
	assert.Equal(t, 0, p.GetHealthStats()[addr].ConsecutiveFailures)
}

func TestConnectionPool_CloseAll(t *testing.T) {
	p := NewConnectionPool(DefaultPoolConfig(), nil)
	p.GetHTTPClient("http://auth.local")
	p.CloseAllConnections()
	assert.Equal(t, 0, p.Stats()["http_clients"])
}
