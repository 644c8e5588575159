package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingChecker(t *testing.T) {
	ok := &PingChecker{Kind: "redis", Ping: func(context.Context) error { return nil }}
	res := ok.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "redis", res.Kind)

	down := &PingChecker{Kind: "redis", Ping: func(context.Context) error { return errors.New("dial tcp") }}
	res = down.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "dial tcp", res.LastError)
}

func TestMonitor_Overall(t *testing.T) {
	m := NewMonitor(time.Hour, nil)
	dbErr := errors.New("connection refused")
	var dbDown bool

	m.Register("database", &PingChecker{Kind: "database", Ping: func(context.Context) error {
		if dbDown {
			return dbErr
		}
		return nil
	}}, true)
	m.Register("auth", &PingChecker{Kind: "http", Ping: func(context.Context) error { return errors.New("timeout") }}, false)

	m.CheckAll(context.Background())
	assert.Equal(t, StatusDegraded, m.Overall())

	dbDown = true
	m.CheckAll(context.Background())
	assert.Equal(t, StatusUnhealthy, m.Overall())

	results := m.GetAllResults()
	require.Contains(t, results, "database")
	assert.Equal(t, 2, results["database"].CheckCount)
	assert.Equal(t, 1, results["database"].FailureCount)
	assert.Equal(t, "connection refused", results["database"].LastError)
	assert.True(t, results["database"].Critical)
}

func TestMonitor_StartStop(t *testing.T) {
	m := NewMonitor(10*time.Millisecond, nil)
	m.Register("noop", &PingChecker{Kind: "noop", Ping: func(context.Context) error { return nil }}, true)

	m.Start(context.Background())
	assert.Eventually(t, func() bool {
		return m.GetAllResults()["noop"].CheckCount >= 2
	}, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}
