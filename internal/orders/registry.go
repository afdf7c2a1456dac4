package orders

import (
	"errors"
	"sync"

	"github.com/medicart/medicart-backend/internal/cart"
	"github.com/medicart/medicart-backend/internal/customers"
	"github.com/medicart/medicart-backend/pkg/logger"
)

// Registry hands out one Workflow per operator email, wiring it to that
// operator's cart store and customer session.
type Registry struct {
	carts          *cart.Registry
	sessions       *customers.Registry
	submitter      Submitter
	defaultZipcode string
	logger         *logger.Logger

	mu        sync.Mutex
	workflows map[string]*Workflow
}

// RegistryOptions wires the workflow registry's collaborators.
type RegistryOptions struct {
	Carts          *cart.Registry
	Sessions       *customers.Registry
	Submitter      Submitter
	DefaultZipcode string
	Logger         *logger.Logger
}

// NewRegistry builds the per-operator workflow registry.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	if opts.Carts == nil {
		return nil, errors.New("cart registry required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("customer session registry required")
	}
	if opts.Submitter == nil {
		return nil, errors.New("order submitter required")
	}
	return &Registry{
		carts:          opts.Carts,
		sessions:       opts.Sessions,
		submitter:      opts.Submitter,
		defaultZipcode: opts.DefaultZipcode,
		logger:         opts.Logger,
		workflows:      map[string]*Workflow{},
	}, nil
}

// ForOperator returns the operator's workflow, creating it on first use.
func (r *Registry) ForOperator(email string) (*Workflow, error) {
	r.mu.Lock()
	if workflow, ok := r.workflows[email]; ok {
		r.mu.Unlock()
		return workflow, nil
	}
	r.mu.Unlock()

	store, err := r.carts.ForOperator(email)
	if err != nil {
		return nil, err
	}
	session, err := r.sessions.ForOperator(email)
	if err != nil {
		return nil, err
	}

	workflow, err := NewWorkflow(WorkflowOptions{
		Cart:           store,
		Customer:       session,
		Submitter:      r.submitter,
		DefaultZipcode: r.defaultZipcode,
		Logger:         r.logger,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.workflows[email]; ok {
		return existing, nil
	}
	r.workflows[email] = workflow
	return workflow, nil
}
