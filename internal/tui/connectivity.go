package tui

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ajramos/evtui/internal/services"
	"github.com/go-co-op/gocron/v2"
)

const pingTimeout = 5 * time.Second

// connectivityMonitor pings the backend health endpoint on a schedule and
// reports every result to onResult.
type connectivityMonitor struct {
	health   services.HealthService
	interval time.Duration
	onResult func(online bool)
	logger   *log.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
}

func newConnectivityMonitor(health services.HealthService, interval time.Duration, onResult func(bool), logger *log.Logger) *connectivityMonitor {
	return &connectivityMonitor{health: health, interval: interval, onResult: onResult, logger: logger}
}

// Start pings at once and then every interval. Without a health service it
// does nothing.
func (m *connectivityMonitor) Start(ctx context.Context) error {
	if m.health == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scheduler != nil {
		return nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(func() { m.Check(ctx) }),
		gocron.WithName("connectivity"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create connectivity job: %w", err)
	}
	s.Start()
	m.scheduler = s
	return nil
}

// Check pings the backend once. A ping cut short by ctx reports nothing.
func (m *connectivityMonitor) Check(ctx context.Context) {
	if m.health == nil || ctx.Err() != nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := m.health.Ping(pctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil && m.logger != nil {
		m.logger.Printf("connectivity: ping failed: %v", err)
	}
	if m.onResult != nil {
		m.onResult(err == nil)
	}
}

// Stop shuts the schedule down.
func (m *connectivityMonitor) Stop() {
	m.mu.Lock()
	s := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()
	if s != nil {
		_ = s.Shutdown()
	}
}
