package pool

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PoolConfig defines connection pool configuration
type PoolConfig struct {
	ConnectionTimeout   time.Duration `json:"connection_timeout"`
	RequestTimeout      time.Duration `json:"request_timeout"`
	IdleTimeout         time.Duration `json:"idle_timeout"`
	MaxIdleConns        int           `json:"max_idle_conns"`
	MaxIdleConnsPerHost int           `json:"max_idle_conns_per_host"`
	// UnhealthyAfter consecutive failures marks an upstream unhealthy.
	UnhealthyAfter int `json:"unhealthy_after"`
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		ConnectionTimeout:   5 * time.Second,
		RequestTimeout:      10 * time.Second,
		IdleTimeout:         90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		UnhealthyAfter:      3,
	}
}

// UpstreamHealth tracks the outcome of calls to one upstream base URL.
type UpstreamHealth struct {
	Address             string    `json:"address"`
	IsHealthy           bool      `json:"is_healthy"`
	LastCheck           time.Time `json:"last_check"`
	LastError           string    `json:"last_error,omitempty"`
	FailureCount        int       `json:"failure_count"`
	SuccessCount        int       `json:"success_count"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// ConnectionPool hands out one keep-alive http.Client per upstream base URL.
type ConnectionPool struct {
	mu          sync.RWMutex
	httpClients map[string]*http.Client
	healthStats map[string]*UpstreamHealth
	config      PoolConfig
	logger      *zap.Logger
}

func NewConnectionPool(config PoolConfig, logger *zap.Logger) *ConnectionPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.UnhealthyAfter <= 0 {
		config.UnhealthyAfter = 3
	}

	return &ConnectionPool{
		httpClients: make(map[string]*http.Client),
		healthStats: make(map[string]*UpstreamHealth),
		config:      config,
		logger:      logger,
	}
}

// GetHTTPClient returns an HTTP client for the given address
func (p *ConnectionPool) GetHTTPClient(address string) *http.Client {
	p.mu.RLock()
	client, exists := p.httpClients[address]
	p.mu.RUnlock()

	if exists {
		return client
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists = p.httpClients[address]; exists {
		return client
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   p.config.ConnectionTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          p.config.MaxIdleConns,
		MaxIdleConnsPerHost:   p.config.MaxIdleConnsPerHost,
		IdleConnTimeout:       p.config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	if strings.HasPrefix(address, "https://") {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client = &http.Client{
		Transport: transport,
		Timeout:   p.config.RequestTimeout,
	}

	p.httpClients[address] = client
	p.healthStats[address] = &UpstreamHealth{
		Address:   address,
		IsHealthy: true,
		LastCheck: time.Now(),
	}

	p.logger.Info("Created new HTTP client", zap.String("address", address))

	return client
}

func (p *ConnectionPool) RecordSuccess(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if health, exists := p.healthStats[address]; exists {
		health.IsHealthy = true
		health.SuccessCount++
		health.ConsecutiveFailures = 0
		health.LastCheck = time.Now()
		health.LastError = ""
	}
}

func (p *ConnectionPool) RecordFailure(address string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if health, exists := p.healthStats[address]; exists {
		health.FailureCount++
		health.ConsecutiveFailures++
		health.LastCheck = time.Now()
		if err != nil {
			health.LastError = err.Error()
		}
		if health.ConsecutiveFailures >= p.config.UnhealthyAfter {
			health.IsHealthy = false
		}
	}
}

// IsHealthy reports the tracked health; untracked addresses count as healthy.
func (p *ConnectionPool) IsHealthy(address string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if health, exists := p.healthStats[address]; exists {
		return health.IsHealthy
	}
	return true
}

// GetHealthStats returns copies of the health stats for all upstreams.
func (p *ConnectionPool) GetHealthStats() map[string]UpstreamHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := make(map[string]UpstreamHealth, len(p.healthStats))
	for addr, health := range p.healthStats {
		stats[addr] = *health
	}
	return stats
}

// CloseAllConnections drops idle keep-alive connections.
func (p *ConnectionPool) CloseAllConnections() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for addr, client := range p.httpClients {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
		delete(p.httpClients, addr)
	}

	p.logger.Info("Closed all connections")
}

func (p *ConnectionPool) Stats() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]any{
		"http_clients": len(p.httpClients),
		"health_stats": len(p.healthStats),
	}
}
