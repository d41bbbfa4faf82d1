package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ent0n29/talentscout/internal/generation"
	"github.com/ent0n29/talentscout/internal/intake"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	mu    sync.Mutex
	s     *intake.Session
	ended atomic.Bool
	// last is a copy published after every operation for the expiry hook,
	// which cannot take mu.
	last atomic.Pointer[intake.Session]
}

func (e *entry) publish() {
	e.last.Store(e.s.Clone())
}

// Manager keeps session records in memory and evicts them after a period
// of inactivity. Operations on one record are serialized.
type Manager struct {
	items             *cache.Cache
	inactivityTimeout time.Duration

	hookMu   sync.RWMutex
	onExpire func(*intake.Session)
}

func NewManager(inactivityTimeout, janitorInterval time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	if janitorInterval <= 0 {
		janitorInterval = time.Minute
	}
	m := &Manager{
		items:             cache.New(inactivityTimeout, janitorInterval),
		inactivityTimeout: inactivityTimeout,
	}
	m.items.OnEvicted(m.evicted)
	return m
}

func (m *Manager) InactivityTimeout() time.Duration { return m.inactivityTimeout }

// SetExpireHook registers a callback for records dropped by inactivity.
// Explicitly ended sessions do not trigger it.
func (m *Manager) SetExpireHook(hook func(*intake.Session)) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.onExpire = hook
}

func (m *Manager) Create(settings generation.Settings) *intake.Session {
	e := &entry{s: intake.NewSession(settings)}
	e.publish()
	m.items.Set(e.s.ID, e, cache.DefaultExpiration)
	return e.s.Clone()
}

func (m *Manager) Get(sessionID string) (*intake.Session, error) {
	e, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ended.Load() {
		return nil, ErrNotFound
	}
	return e.s.Clone(), nil
}

// Do runs fn with exclusive access to the record and refreshes its
// expiry before and after fn. The error returned by fn is passed through.
// If the record expires while fn runs, Do reports ErrNotFound and the
// record is not brought back.
func (m *Manager) Do(sessionID string, fn func(*intake.Session) error) error {
	e, err := m.lookup(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ended.Load() {
		return ErrNotFound
	}
	m.items.Set(sessionID, e, cache.DefaultExpiration)

	fnErr := fn(e.s)
	if e.ended.Load() {
		return ErrNotFound
	}
	e.publish()
	m.items.Set(sessionID, e, cache.DefaultExpiration)
	return fnErr
}

// End drops the record immediately and returns its final state.
func (m *Manager) End(sessionID string) (*intake.Session, error) {
	e, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ended.Swap(true) {
		return nil, ErrNotFound
	}
	m.items.Delete(sessionID)
	return e.s.Clone(), nil
}

func (m *Manager) ActiveCount() int {
	return m.items.ItemCount()
}

func (m *Manager) lookup(sessionID string) (*entry, error) {
	v, ok := m.items.Get(sessionID)
	if !ok {
		return nil, ErrNotFound
	}
	e, ok := v.(*entry)
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *Manager) evicted(_ string, v any) {
	e, ok := v.(*entry)
	if !ok || e.ended.Load() {
		return
	}
	e.ended.Store(true)

	m.hookMu.RLock()
	hook := m.onExpire
	m.hookMu.RUnlock()
	if hook != nil {
		hook(e.last.Load())
	}
}
