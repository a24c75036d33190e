// Package lock provides cross-process mutual exclusion for article
// generation, backed by PostgreSQL session-scoped advisory locks. The lock
// key is hashtext(topic + ":" + locale); at most one session holds a key at a
// time, and a holder crashing releases the lock with its connection.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/models"
)

// CompletionChecker reports whether a completed article exists for a key.
// Satisfied by repositories.ArticleRepository.
type CompletionChecker interface {
	FindCompleted(ctx context.Context, topic, locale string) (*models.Article, error)
}

// Manager acquires and releases per-(topic, locale) advisory locks.
//
// Advisory locks are session-scoped, so each acquired lock pins one pooled
// connection until release. That is deliberate: binding the lock lifetime to
// the connection means a crashed holder frees the lock automatically instead
// of leaking it.
type Manager struct {
	pool         *pgxpool.Pool
	pollInterval time.Duration
	logger       *zap.Logger

	mu   sync.Mutex
	held map[string]*pgxpool.Conn
}

// NewManager creates a lock manager on the given pool.
func NewManager(pool *pgxpool.Pool, pollInterval time.Duration, logger *zap.Logger) *Manager {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Manager{
		pool:         pool,
		pollInterval: pollInterval,
		logger:       logger.Named("generation-lock"),
		held:         make(map[string]*pgxpool.Conn),
	}
}

func lockKey(topic, locale string) string {
	return topic + ":" + locale
}

// TryAcquire attempts a non-blocking advisory lock for (topic, locale).
// Returns true iff this process now holds exclusive generation rights for the
// key. The backing connection stays checked out until Release.
func (m *Manager) TryAcquire(ctx context.Context, topic, locale string) (bool, error) {
	key := lockKey(topic, locale)

	m.mu.Lock()
	if _, exists := m.held[key]; exists {
		// Already held by this process; a second acquire on the same session
		// would stack and break release semantics.
		m.mu.Unlock()
		return false, nil
	}
	m.mu.Unlock()

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection for lock: %w", err)
	}

	var acquired bool
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&acquired)
	if err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return false, nil
	}

	m.mu.Lock()
	m.held[key] = conn
	m.mu.Unlock()

	m.logger.Debug("Acquired generation lock",
		zap.String("topic", topic),
		zap.String("locale", locale))
	return true, nil
}

// Release unlocks (topic, locale) and returns its connection to the pool.
// Idempotent: releasing a key this process does not hold is a no-op.
func (m *Manager) Release(ctx context.Context, topic, locale string) {
	key := lockKey(topic, locale)

	m.mu.Lock()
	conn, exists := m.held[key]
	if exists {
		delete(m.held, key)
	}
	m.mu.Unlock()

	if !exists {
		return
	}

	var released bool
	if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, key).Scan(&released); err != nil {
		// Releasing the connection still frees the session lock server-side.
		m.logger.Warn("Failed to unlock advisory lock, relying on session release",
			zap.String("topic", topic),
			zap.String("locale", locale),
			zap.Error(err))
	} else if !released {
		m.logger.Warn("Advisory lock was not held by this session",
			zap.String("topic", topic),
			zap.String("locale", locale))
	}

	conn.Release()

	m.logger.Debug("Released generation lock",
		zap.String("topic", topic),
		zap.String("locale", locale))
}

// WaitForResult polls for a completed article while another process holds the
// generation lock. Returns true as soon as an article appears, false if the
// timeout elapses first. Never touches the advisory lock itself.
func (m *Manager) WaitForResult(ctx context.Context, checker CompletionChecker, topic, locale string, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		article, err := checker.FindCompleted(ctx, topic, locale)
		if err != nil {
			return false, fmt.Errorf("poll for peer result: %w", err)
		}
		if article != nil {
			return true, nil
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
