package customers

import (
	"errors"
	"sync"
	"time"

	"github.com/medicart/medicart-backend/pkg/config"
	"github.com/medicart/medicart-backend/pkg/logger"
	"go.uber.org/multierr"
)

// Registry hands out one Session per operator email and sweeps sessions that
// have been idle past the configured TTL.
type Registry struct {
	directory Directory
	cache     DetailsCache
	cfg       config.SearchConfig
	cacheTTL  time.Duration
	logger    *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// RegistryOptions wires the registry's collaborators.
type RegistryOptions struct {
	Directory Directory
	Cache     DetailsCache
	CacheTTL  time.Duration
	Search    config.SearchConfig
	Logger    *logger.Logger
}

// NewRegistry builds the session registry and starts the idle sweeper.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	if opts.Directory == nil {
		return nil, errors.New("patient directory required")
	}
	r := &Registry{
		directory: opts.Directory,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		cfg:       opts.Search,
		logger:    opts.Logger,
		sessions:  map[string]*Session{},
		sweepStop: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	go r.runSweeper()
	return r, nil
}

// ForOperator returns the operator's session, creating it on first use.
func (r *Registry) ForOperator(email string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.New("customer directory registry closed")
	}
	if session, ok := r.sessions[email]; ok {
		return session, nil
	}

	session, err := NewSession(SessionOptions{
		Directory: r.directory,
		Cache:     r.cache,
		CacheTTL:  r.cacheTTL,
		Debounce:  r.cfg.DebounceInterval,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.sessions[email] = session
	return session, nil
}

// Close stops the sweeper and closes every session.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	close(r.sweepStop)
	<-r.sweepDone

	var err error
	for _, session := range sessions {
		err = multierr.Append(err, session.Close())
	}
	return err
}

func (r *Registry) runSweeper() {
	defer close(r.sweepDone)

	interval := r.cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.sweepStop:
			return
		case <-ticker.C:
			r.sweepIdle()
		}
	}
}

func (r *Registry) sweepIdle() {
	ttl := r.cfg.SessionIdleTTL
	if ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	var expired []*Session
	for email, session := range r.sessions {
		if session.LastActive().Before(cutoff) {
			expired = append(expired, session)
			delete(r.sessions, email)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
}
