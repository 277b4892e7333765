package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

// Session bundles the state of one open wizard with the components bound
// to it.
type Session struct {
	ID           string
	Flow         Flow
	CreatedAt    time.Time
	State        *State
	Navigator    *Navigator
	Orchestrator *Orchestrator
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	TTL       time.Duration
	Generator Generator
	Recorder  Recorder
	Logger    *infra.Logger
}

// Registry keeps the open sessions. A session expires after TTL without
// access; expired and deleted sessions are disposed so late results are
// dropped.
type Registry struct {
	items  *cache.Cache
	ttl    time.Duration
	gen    Generator
	rec    Recorder
	logger *infra.Logger
	once   sync.Once
}

const defaultSessionTTL = 30 * time.Minute

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	r := &Registry{
		items:  cache.New(ttl, ttl/2),
		ttl:    ttl,
		gen:    cfg.Generator,
		rec:    cfg.Recorder,
		logger: cfg.Logger,
	}
	r.items.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*Session); ok {
			sess.State.Dispose()
			if r.logger != nil {
				r.logger.Debug().Str("session_id", id).Msg("wizard: session disposed")
			}
		}
	})
	return r
}

// Create opens a new session of flow with defaults as its initial inputs.
func (r *Registry) Create(flow Flow, defaults Inputs) (*Session, error) {
	if _, ok := ParseFlow(string(flow)); !ok {
		return nil, fmt.Errorf("%w: unknown wizard %q", domain.ErrInvalidInput, flow)
	}
	id := uuid.NewString()
	state := NewState(flow, defaults)
	sess := &Session{
		ID:        id,
		Flow:      flow,
		CreatedAt: time.Now().UTC(),
		State:     state,
		Navigator: NewNavigator(state),
		Orchestrator: NewOrchestrator(state, Options{
			SessionID: id,
			Generator: r.gen,
			Recorder:  r.rec,
			Logger:    r.logger,
		}),
	}
	r.items.Set(id, sess, r.ttl)
	return sess, nil
}

// Get returns the session and extends its lifetime.
func (r *Registry) Get(id string) (*Session, error) {
	v, ok := r.items.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	sess := v.(*Session)
	// Replace only extends an entry that is still present, so a session
	// disposed or expired since the lookup stays gone.
	if sess.State.Closed() || r.items.Replace(id, sess, r.ttl) != nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return sess, nil
}

// Dispose removes the session; results still in flight are dropped.
func (r *Registry) Dispose(id string) error {
	if _, ok := r.items.Get(id); !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	r.items.Delete(id)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	return r.items.ItemCount()
}

// Close disposes every open session.
func (r *Registry) Close() {
	r.once.Do(func() {
		for id := range r.items.Items() {
			r.items.Delete(id)
		}
	})
}
