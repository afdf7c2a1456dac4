package cart

import (
	"errors"
	"sync"

	"github.com/medicart/medicart-backend/pkg/logger"
	"go.uber.org/multierr"
)

var errSyncerRequired = errors.New("record syncer required")

// Registry hands out one Store per operator email. Stores are constructed
// lazily and live until the registry is closed.
type Registry struct {
	syncer RecordSyncer
	logger *logger.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry builds the per-operator store registry.
func NewRegistry(syncer RecordSyncer, logg *logger.Logger) (*Registry, error) {
	if syncer == nil {
		return nil, errSyncerRequired
	}
	return &Registry{
		syncer: syncer,
		logger: logg,
		stores: map[string]*Store{},
	}, nil
}

// ForOperator returns the operator's store, creating it on first use.
func (r *Registry) ForOperator(email string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[email]; ok {
		return store, nil
	}

	store, err := NewStore(email, r.syncer, r.logger)
	if err != nil {
		return nil, err
	}
	r.stores[email] = store
	return store, nil
}

// Close shuts down every store, draining their persistence queues.
func (r *Registry) Close() error {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, store := range r.stores {
		stores = append(stores, store)
	}
	r.stores = map[string]*Store{}
	r.mu.Unlock()

	var err error
	for _, store := range stores {
		err = multierr.Append(err, store.Close())
	}
	return err
}
