package store

import (
	"context"
	models "storefront/model"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryCatalog is an in-process Catalog, used when no database is configured.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products []models.Product
	nextID   int64
}

func NewMemoryCatalog(seed []models.Product) *MemoryCatalog {
	c := &MemoryCatalog{}
	for _, p := range seed {
		if n, err := strconv.ParseInt(p.ID, 10, 64); err == nil && n > c.nextID {
			c.nextID = n
		}
		c.products = append(c.products, p)
	}
	return c
}

func (c *MemoryCatalog) Find(_ context.Context, id string) (models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (c *MemoryCatalog) List(_ context.Context) ([]models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func (c *MemoryCatalog) Create(_ context.Context, p models.Product) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	p.ID = strconv.FormatInt(c.nextID, 10)
	c.products = append(c.products, p)
	return p.ID, nil
}

// sessionSweepInterval bounds how often Save scans for expired sessions.
const sessionSweepInterval = time.Minute

// MemorySessionStore keeps sessions in a map. Load and Save both push the
// expiry out by ttl; expired entries are dropped on Load and by a periodic
// sweep during Save.
type MemorySessionStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	sessions  map[string]memorySession
}

type memorySession struct {
	s         models.Session
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, now: time.Now, sessions: map[string]memorySession{}}
}

func (m *MemorySessionStore) Load(_ context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return models.NewSession(id), nil
	}
	now := m.now()
	if !now.Before(ms.expiresAt) {
		delete(m.sessions, id)
		return models.NewSession(id), nil
	}
	ms.expiresAt = now.Add(m.ttl)
	m.sessions[id] = ms
	return cloneSession(ms.s), nil
}

func (m *MemorySessionStore) Save(_ context.Context, s models.Session) error {
	if s.ID == "" {
		return errors.New("session id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastSweep) >= sessionSweepInterval {
		m.sweep(now)
	}
	s.UpdatedAt = now
	m.sessions[s.ID] = memorySession{s: cloneSession(s), expiresAt: now.Add(m.ttl)}
	return nil
}

// sweep drops every expired session. Callers hold m.mu.
func (m *MemorySessionStore) sweep(now time.Time) {
	for id, ms := range m.sessions {
		if !now.Before(ms.expiresAt) {
			delete(m.sessions, id)
		}
	}
	m.lastSweep = now
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// cloneSession copies the item slice so callers never share backing arrays
// with the stored value.
func cloneSession(s models.Session) models.Session {
	items := make([]models.CartItem, len(s.Cart.Items))
	copy(items, s.Cart.Items)
	s.Cart.Items = items
	return s
}

// MemoryUserStore is an in-process UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[string]models.User{}}
}

func (m *MemoryUserStore) Create(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrConflict
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *MemoryUserStore) FindByLogin(_ context.Context, login string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *MemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryUserStore) Exists(_ context.Context, username, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}
