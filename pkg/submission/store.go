package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coneno/logger"
	"github.com/cybershield-id/registration-relay/pkg/dispatch"
	"github.com/cybershield-id/registration-relay/pkg/types"
	"github.com/cybershield-id/registration-relay/pkg/validation"
	"github.com/google/uuid"
)

var ErrUnknownVariant = errors.New("unknown registration variant")

const defaultSessionTTL = 30 * time.Minute

// Store keeps open form instances in memory. Nothing survives a restart.
type Store struct {
	validator  *validation.Validator
	dispatcher dispatch.Dispatcher
	ttl        time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(conf types.SessionConfig, v *validation.Validator, d dispatch.Dispatcher) *Store {
	ttl := time.Duration(conf.TTL) * time.Minute
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{
		validator:  v,
		dispatcher: d,
		ttl:        ttl,
		sessions:   map[string]*Session{},
	}
}

// Transient returns a session that is not registered in the store, used for
// one-shot submissions.
func (st *Store) Transient(variant types.Variant) (*Session, error) {
	profile, ok := types.ProfileFor(variant)
	if !ok {
		return nil, ErrUnknownVariant
	}
	return NewSession(uuid.NewString(), profile, st.validator, st.dispatcher), nil
}

// Create opens and registers a new form instance.
func (st *Store) Create(variant types.Variant) (*Session, error) {
	s, err := st.Transient(variant)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, nil
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict drops sessions idle for longer than the TTL and sessions that
// already succeeded. Sessions with a submit in progress are kept whatever
// their age. It returns the number of sessions removed.
func (st *Store) Evict(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		state := s.State()
		if state.InProgress() {
			continue
		}
		if state.IsTerminal() || now.Sub(s.idleSince()) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run evicts expired sessions every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := st.Evict(now); n > 0 {
				logger.Debug.Printf("evicted %d form sessions", n)
			}
		}
	}
}
