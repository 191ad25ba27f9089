package revocation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type manager struct {
	store  Store
	config Config
	logger *slog.Logger
	mu     sync.RWMutex

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	cleanupWg     sync.WaitGroup

	closed bool
}

// NewManager wraps store and, when enabled, starts a cleanup ticker.
// A nil logger discards cleanup failures.
func NewManager(store Store, config Config, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &manager{
		store:       store,
		config:      config,
		logger:      logger,
		stopCleanup: make(chan struct{}),
	}

	if config.EnableAutoCleanup && config.CleanupInterval > 0 {
		m.startAutoCleanup()
	}
	return m
}

func (m *manager) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrManagerClosed
	}
	if id == "" {
		return ErrEmptyID
	}
	return m.store.Add(ctx, id, expiresAt)
}

func (m *manager) IsRevoked(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrManagerClosed
	}
	if id == "" {
		return false, nil
	}
	return m.store.Contains(ctx, id)
}

func (m *manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
		close(m.stopCleanup)
		m.cleanupWg.Wait()
	}
	return m.store.Close()
}

func (m *manager) startAutoCleanup() {
	m.cleanupTicker = time.NewTicker(m.config.CleanupInterval)
	m.cleanupWg.Add(1)

	go func() {
		defer m.cleanupWg.Done()

		for {
			select {
			case <-m.cleanupTicker.C:
				m.performCleanup()
			case <-m.stopCleanup:
				return
			}
		}
	}()
}

func (m *manager) performCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.CleanupInterval)
	defer cancel()

	n, err := m.store.Cleanup(ctx)
	if err != nil {
		m.logger.Warn("revocation cleanup failed", "error", err)
		return
	}
	if n > 0 {
		m.logger.Debug("revocation cleanup", "removed", n)
	}
}
