package services

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/splitsync/splitsync/internal/config"
)

// Metrics is the set of live counters for the sync server. All fields are
// lock-free; writers are the hub, the client pumps and the handlers.
type Metrics struct {
	activeConnections atomic.Int64
	totalConnections  atomic.Int64
	activeSessions    atomic.Int64

	messagesReceived atomic.Int64
	messagesSent     atomic.Int64
	lastMessageUnix  atomic.Int64

	connectionErrors    atomic.Int64
	broadcastErrors     atomic.Int64
	rateLimitViolations atomic.Int64

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
	m.totalConnections.Add(1)
}

func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

func (m *Metrics) IncrementSessions() {
	m.activeSessions.Add(1)
}

func (m *Metrics) DecrementSessions() {
	m.activeSessions.Add(-1)
}

func (m *Metrics) IncrementMessagesReceived() {
	m.messagesReceived.Add(1)
	m.lastMessageUnix.Store(time.Now().Unix())
}

func (m *Metrics) IncrementMessagesSent() {
	m.messagesSent.Add(1)
}

func (m *Metrics) IncrementConnectionErrors() {
	m.connectionErrors.Add(1)
}

func (m *Metrics) IncrementBroadcastErrors() {
	m.broadcastErrors.Add(1)
}

func (m *Metrics) IncrementRateLimitViolations() {
	m.rateLimitViolations.Add(1)
}

// MetricsSnapshot is a point-in-time view, serialized by the metrics and
// health endpoints.
type MetricsSnapshot struct {
	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	ActiveSessions    int64 `json:"active_sessions"`

	MessagesReceived  int64   `json:"messages_received"`
	MessagesSent      int64   `json:"messages_sent"`
	MessagesPerSecond float64 `json:"messages_per_second"`
	LastMessageTime   string  `json:"last_message_time"`

	ConnectionErrors    int64 `json:"connection_errors"`
	BroadcastErrors     int64 `json:"broadcast_errors"`
	RateLimitViolations int64 `json:"rate_limit_violations"`

	UptimeSeconds int64  `json:"uptime_seconds"`
	MemoryUsageMB uint64 `json:"memory_usage_mb"`
	NumGoroutines int    `json:"num_goroutines"`

	HealthStatus string `json:"health_status"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(m.startTime)

	lastMessage := "never"
	if unix := m.lastMessageUnix.Load(); unix > 0 {
		lastMessage = time.Unix(unix, 0).Format(time.RFC3339)
	}

	return MetricsSnapshot{
		ActiveConnections:   m.activeConnections.Load(),
		TotalConnections:    m.totalConnections.Load(),
		ActiveSessions:      m.activeSessions.Load(),
		MessagesReceived:    m.messagesReceived.Load(),
		MessagesSent:        m.messagesSent.Load(),
		MessagesPerSecond:   float64(m.messagesReceived.Load()) / uptime.Seconds(),
		LastMessageTime:     lastMessage,
		ConnectionErrors:    m.connectionErrors.Load(),
		BroadcastErrors:     m.broadcastErrors.Load(),
		RateLimitViolations: m.rateLimitViolations.Load(),
		UptimeSeconds:       int64(uptime.Seconds()),
		MemoryUsageMB:       mem.Alloc / 1024 / 1024,
		NumGoroutines:       runtime.NumGoroutine(),
		HealthStatus:        m.healthStatus(),
	}
}

// healthStatus grades the instance against its capacity limits: critical
// above 90%, warning above 80% or with accumulated errors.
func (m *Metrics) healthStatus() string {
	conns := m.activeConnections.Load()
	sessions := m.activeSessions.Load()
	errs := m.connectionErrors.Load() + m.broadcastErrors.Load()

	switch {
	case conns > config.MaxTotalConnections*9/10 || sessions > config.MaxSessionsPerInstance*9/10:
		return "critical"
	case conns > config.MaxTotalConnections*8/10 || sessions > config.MaxSessionsPerInstance*8/10 || errs > 100:
		return "warning"
	default:
		return "healthy"
	}
}
