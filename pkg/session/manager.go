package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dialoguetree/internal/logging"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed slot lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates save slot access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
// Manager itself implements ports.HistoryStore.
type Manager struct {
	store ports.HistoryStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.HistoryStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(slotID) after unlocking.
func (m *Manager) acquire(slotID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slotID]
	if !exists {
		entry = &lockEntry{}
		m.locks[slotID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(slotID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slotID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, slotID)
	}
}

// Load retrieves a slot.
func (m *Manager) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	var h domain.Histories
	err := m.WithLock(ctx, slotID, func(ctx context.Context) error {
		var err error
		h, err = m.store.Load(ctx, slotID)
		return err
	})
	return h, err
}

// LoadOrEmpty loads a slot, or creates and persists an empty one.
func (m *Manager) LoadOrEmpty(ctx context.Context, slotID string) (domain.Histories, error) {
	var h domain.Histories
	err := m.WithLock(ctx, slotID, func(ctx context.Context) error {
		var err error
		h, err = m.loadOrEmpty(ctx, slotID)
		if err != nil || len(h) > 0 {
			return err
		}
		if err := m.store.Save(ctx, slotID, h); err != nil {
			return fmt.Errorf("failed to initialize slot: %w", err)
		}
		return nil
	})
	return h, err
}

func (m *Manager) loadOrEmpty(ctx context.Context, slotID string) (domain.Histories, error) {
	h, err := m.store.Load(ctx, slotID)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, domain.ErrHistoryNotFound) {
		return nil, fmt.Errorf("failed to check slot existence: %w", err)
	}
	return domain.Histories{}, nil
}

// Update loads a slot (empty if missing), lets fn modify it and saves the result,
// all under the slot lock. Nothing is saved when fn fails.
func (m *Manager) Update(ctx context.Context, slotID string, fn func(domain.Histories) error) error {
	return m.WithLock(ctx, slotID, func(ctx context.Context) error {
		h, err := m.loadOrEmpty(ctx, slotID)
		if err != nil {
			return err
		}
		if err := fn(h); err != nil {
			return err
		}
		return m.store.Save(ctx, slotID, h)
	})
}

// Merge overlays the dialogues in h onto the slot, replacing the records of every
// dialogue h contains and keeping the others.
func (m *Manager) Merge(ctx context.Context, slotID string, h domain.Histories) error {
	incoming := h.Clone()
	return m.Update(ctx, slotID, func(saved domain.Histories) error {
		for dialogueID, dh := range incoming {
			saved[dialogueID] = dh
		}
		return nil
	})
}

// Save persists a slot.
func (m *Manager) Save(ctx context.Context, slotID string, h domain.Histories) error {
	return m.WithLock(ctx, slotID, func(ctx context.Context) error {
		return m.store.Save(ctx, slotID, h)
	})
}

// Delete removes a slot from the store.
func (m *Manager) Delete(ctx context.Context, slotID string) error {
	return m.WithLock(ctx, slotID, func(ctx context.Context) error {
		return m.store.Delete(ctx, slotID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying store.
func (m *Manager) Store() ports.HistoryStore {
	return m.store
}

// WithLock executes fn while holding the lock for the slot.
func (m *Manager) WithLock(ctx context.Context, slotID string, fn func(context.Context) error) error {
	entry := m.acquire(slotID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(slotID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, slotID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"slot_id", slotID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
