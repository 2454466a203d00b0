// Package db manages the MongoDB connection lifecycle: bounded
// retry on startup, connection-state tracking for health checks and
// idempotent shutdown.
package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// State mirrors the driver connection lifecycle for health endpoints.
type State int

const (
	Disconnected State = iota
	Connected
	Connecting
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Connecting:
		return "connecting"
	case Disconnecting:
		return "disconnecting"
	default:
		return "disconnected"
	}
}

// Config holds connection parameters. Zero values fall back to the
// defaults below.
type Config struct {
	URI        string
	Database   string
	MaxRetries int           // connect attempts before giving up
	RetryDelay time.Duration // base delay, doubled per attempt
}

const (
	defaultMaxRetries = 5
	defaultRetryDelay = 5 * time.Second
	maxPoolSize       = 10
)

// Manager owns a single pooled client. Construct with NewManager and
// inject it where needed; lifecycle is driven by the process entry point.
type Manager struct {
	cfg Config
	log zerolog.Logger

	mu     sync.Mutex
	client *mongo.Client
	state  State
}

func NewManager(cfg Config, log zerolog.Logger) *Manager {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Manager{cfg: cfg, log: log}
}

// Connect opens the pooled connection, retrying with exponential
// backoff up to MaxRetries before failing permanently.
func (m *Manager) Connect(ctx context.Context) error {
	if m.cfg.URI == "" {
		return fmt.Errorf("db: connection URI is not configured")
	}

	var lastErr error
	for attempt := 1; attempt <= m.cfg.MaxRetries; attempt++ {
		m.setState(Connecting)

		client, err := m.dial(ctx)
		if err == nil {
			m.mu.Lock()
			m.client = client
			m.state = Connected
			m.mu.Unlock()

			host, port := m.hostPort()
			m.log.Info().
				Str("host", host).
				Str("port", port).
				Str("database", m.cfg.Database).
				Msg("mongodb connected")
			return nil
		}

		lastErr = err
		m.setState(Disconnected)

		if attempt == m.cfg.MaxRetries {
			break
		}
		delay := m.cfg.RetryDelay << (attempt - 1)
		m.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("maxRetries", m.cfg.MaxRetries).
			Dur("retryIn", delay).
			Msg("mongodb connection failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("db: connection failed after %d attempts: %w", m.cfg.MaxRetries, lastErr)
}

func (m *Manager) dial(ctx context.Context) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(m.cfg.URI).
		SetMaxPoolSize(maxPoolSize).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second).
		SetServerMonitor(m.serverMonitor())

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// serverMonitor flips the state word on heartbeat results so a later
// disruption degrades health checks instead of crashing the process.
func (m *Manager) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(*event.ServerHeartbeatSucceededEvent) {
			m.mu.Lock()
			if m.client != nil && m.state != Disconnecting {
				m.state = Connected
			}
			m.mu.Unlock()
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			m.mu.Lock()
			wasConnected := m.state == Connected
			if m.state != Disconnecting {
				m.state = Disconnected
			}
			m.mu.Unlock()
			if wasConnected {
				m.log.Warn().Err(e.Failure).Msg("mongodb heartbeat failed")
			}
		},
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// IsReady reports whether the connection is established and healthy.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil && m.state == Connected
}

// Ping verifies the connection end to end.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return fmt.Errorf("db: not connected")
	}
	return client.Ping(ctx, readpref.Primary())
}

// ConnectionInfo describes the connection for /health/detailed.
type ConnectionInfo struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Database string `json:"database"`
	State    string `json:"state"`
}

func (m *Manager) ConnectionInfo() ConnectionInfo {
	host, port := m.hostPort()
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	return ConnectionInfo{
		Host:     host,
		Port:     port,
		Database: m.cfg.Database,
		State:    state.String(),
	}
}

func (m *Manager) hostPort() (string, string) {
	u, err := url.Parse(m.cfg.URI)
	if err != nil || u.Host == "" {
		return "", ""
	}
	// mongodb://h1:p1,h2:p2/... lists hosts comma-separated; the first
	// one is enough for diagnostics.
	first := strings.Split(u.Host, ",")[0]
	if i := strings.LastIndex(first, ":"); i >= 0 {
		return first[:i], first[i+1:]
	}
	return first, "27017"
}

// Database returns a handle on the configured database.
func (m *Manager) Database() *mongo.Database {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	return m.client.Database(m.cfg.Database)
}

// Collection is a shorthand for Database().Collection(name).
func (m *Manager) Collection(name string) *mongo.Collection {
	db := m.Database()
	if db == nil {
		return nil
	}
	return db.Collection(name)
}

// Disconnect closes the connection. Safe to call more than once.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	if client != nil {
		m.state = Disconnecting
	}
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	m.setState(Disconnected)
	if err != nil {
		return err
	}
	m.log.Info().Msg("mongodb disconnected")
	return nil
}
