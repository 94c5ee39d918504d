package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Factory constructs the session for a new id.
type Factory func(id string) (*Session, error)

// RegistryConfig represents the configuration required to construct a
// registry. A zero IdleTimeout or MaxSessions disables that limit and a
// zero SweepInterval leaves sweeping to the caller.
type RegistryConfig struct {
	Factory       Factory
	IdleTimeout   time.Duration
	MaxSessions   int
	SweepInterval time.Duration
	EvHandler     EventHandler
	Now           func() time.Time
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry maintains the set of live sessions by id. Sessions that are not
// used for the idle timeout are evicted, and once the registry is full the
// least recently used session makes room for a new one. An evicted id that
// comes back is resumed with its saved state.
type Registry struct {
	factory     Factory
	idleTimeout time.Duration
	maxSessions int
	evHandler   EventHandler
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	wg   sync.WaitGroup
	shut chan struct{}
	once sync.Once
}

// NewRegistry constructs a registry that builds sessions with the factory.
func NewRegistry(cfg RegistryConfig) *Registry {
	ev := func(v string, args ...any) {}
	if cfg.EvHandler != nil {
		ev = cfg.EvHandler
	}

	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	r := Registry{
		factory:     cfg.Factory,
		idleTimeout: cfg.IdleTimeout,
		maxSessions: cfg.MaxSessions,
		evHandler:   ev,
		now:         now,
		sessions:    make(map[string]*entry),
		shut:        make(chan struct{}),
	}

	if cfg.SweepInterval > 0 && cfg.IdleTimeout > 0 {
		r.wg.Add(1)
		go r.sweepOperations(cfg.SweepInterval)
	}

	return &r
}

// Create constructs and starts a new session.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	return r.start(ctx, uuid.NewString())
}

// Resume returns the session for the id. A well formed id that is not live,
// such as one issued before a restart or evicted while idle, gets a new
// session under the same id so its saved state is found again. Any other id
// gets a new session.
func (r *Registry) Resume(ctx context.Context, id string) (*Session, error) {
	if s, exists := r.Get(id); exists {
		return s, nil
	}

	if _, err := uuid.Parse(id); err != nil {
		return r.Create(ctx)
	}

	return r.start(ctx, id)
}

func (r *Registry) start(ctx context.Context, id string) (*Session, error) {
	s, err := r.factory(id)
	if err != nil {
		return nil, fmt.Errorf("constructing session: %w", err)
	}

	r.mu.Lock()
	if live, exists := r.sessions[id]; exists {
		live.lastUsed = r.now()
		r.mu.Unlock()
		s.Shutdown()
		return live.session, nil
	}

	var evicted *Session
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		evicted = r.evictOldest()
	}
	r.sessions[id] = &entry{session: s, lastUsed: r.now()}
	r.mu.Unlock()

	if evicted != nil {
		r.evHandler("registry: start: evicted: session[%s]: registry full", evicted.ID)
		evicted.Shutdown()
	}

	s.Start(ctx)

	return s, nil
}

// evictOldest removes the least recently used session. The caller must
// hold r.mu.
func (r *Registry) evictOldest() *Session {
	var oldest string
	var at time.Time
	for id, e := range r.sessions {
		if oldest == "" || e.lastUsed.Before(at) {
			oldest = id
			at = e.lastUsed
		}
	}

	e, exists := r.sessions[oldest]
	if !exists {
		return nil
	}
	delete(r.sessions, oldest)

	return e.session
}

// Get returns the session for the id and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.sessions[id]
	if !exists {
		return nil, false
	}
	e.lastUsed = r.now()

	return e.session, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Sweep evicts every session that has not been used for the idle timeout
// and returns how many were evicted.
func (r *Registry) Sweep() int {
	if r.idleTimeout <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.idleTimeout)

	var idle []*Session
	r.mu.Lock()
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		r.evHandler("registry: sweep: evicted: session[%s]: idle", s.ID)
		s.Shutdown()
	}

	return len(idle)
}

// sweepOperations evicts idle sessions on every interval until shutdown.
func (r *Registry) sweepOperations(interval time.Duration) {
	defer r.wg.Done()

	r.evHandler("registry: sweepOperations: G started")
	defer r.evHandler("registry: sweepOperations: G completed")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.shut:
			r.evHandler("registry: sweepOperations: received shut signal")
			return
		}
	}
}

// Shutdown stops the sweeper and every session.
func (r *Registry) Shutdown() {
	r.once.Do(func() {
		close(r.shut)
		r.wg.Wait()
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.sessions {
		e.session.Shutdown()
		delete(r.sessions, id)
	}
}
