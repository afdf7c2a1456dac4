package customers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/patients"
	"github.com/medicart/medicart-backend/pkg/redis"
)

const lookupTimeout = 10 * time.Second

// Directory is the remote patient directory. Satisfied by *patients.Client.
type Directory interface {
	Search(ctx context.Context, query string) ([]patients.Suggestion, error)
	Details(ctx context.Context, id string) (*patients.Details, error)
}

// DetailsCache is an optional lookaside cache for resolved patient records.
// Satisfied by *redis.Client.
type DetailsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	PatientDetailsKey(id string) string
}

// State is the observable snapshot of one operator's customer lookup.
type State struct {
	Query            string               `json:"query"`
	Suggestions      []patients.Suggestion `json:"suggestions"`
	HighlightedIndex int                  `json:"highlighted_index"`
	CustomerName     string               `json:"customer_name"`
	Customer         *patients.Details    `json:"customer,omitempty"`
}

// Session owns the debounced suggestion pipeline and keyboard-navigation
// state for one operator. A new keystroke resets the single pending timer;
// only the timer that survives uncancelled queries the directory, and a
// response belonging to a superseded query is dropped.
type Session struct {
	directory Directory
	cache     DetailsCache
	cacheTTL  time.Duration
	debounce  time.Duration
	logger    *logger.Logger

	mu            sync.Mutex
	timer         *time.Timer
	lastQuery     string
	queryAccepted bool
	searchSeq     uint64
	suggestions   []patients.Suggestion
	highlighted   int
	customer      *patients.Details
	customerName  string
	lastActive    time.Time
	closed        bool
}

// SessionOptions configures a directory session.
type SessionOptions struct {
	Directory Directory
	Cache     DetailsCache
	CacheTTL  time.Duration
	Debounce  time.Duration
	Logger    *logger.Logger
}

// NewSession builds a session; the cache is optional.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Directory == nil {
		return nil, errors.New("patient directory required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	return &Session{
		directory:   opts.Directory,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		debounce:    opts.Debounce,
		logger:      opts.Logger,
		suggestions: []patients.Suggestion{},
		highlighted: -1,
		lastActive:  time.Now(),
	}, nil
}

// OnQueryChange feeds one keystroke's worth of input. Identical consecutive
// values are suppressed; otherwise the debounce timer restarts.
func (s *Session) OnQueryChange(text string) {
	query := strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.queryAccepted && query == s.lastQuery {
		return
	}
	s.lastQuery = query
	s.queryAccepted = true

	s.searchSeq++
	seq := s.searchSeq

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.closed {
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.runSearch(seq, query)
	})
}

func (s *Session) runSearch(seq uint64, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	results, err := s.directory.Search(ctx, query)
	if err != nil {
		// Lookup failures degrade to an empty suggestion list.
		if s.logger != nil {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "customer search failed")
		}
		results = []patients.Suggestion{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.searchSeq {
		// A newer query superseded this one while it was in flight.
		return
	}
	s.suggestions = results
}

// Select resolves a suggestion id into the active customer, reflects the
// display name into the name field, and clears the suggestion list.
func (s *Session) Select(ctx context.Context, id string) (*patients.Details, error) {
	details, err := s.resolveDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info(s.logger.WithCustomerID(ctx, details.ID), "customer selected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.customer = details
	s.customerName = details.DisplayName()
	s.suggestions = []patients.Suggestion{}
	s.highlighted = -1
	return details, nil
}

func (s *Session) resolveDetails(ctx context.Context, id string) (*patients.Details, error) {
	if s.cache != nil {
		key := s.cache.PatientDetailsKey(id)
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached patients.Details
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.ErrCacheMiss) && s.logger != nil {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "patient details cache read failed")
		}
	}

	details, err := s.directory.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(details); err == nil {
			key := s.cache.PatientDetailsKey(id)
			if err := s.cache.Set(ctx, key, string(encoded), s.cacheTTL); err != nil && s.logger != nil {
				s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "patient details cache write failed")
			}
		}
	}
	return details, nil
}

// SetName records a name typed directly into the input field, outside the
// suggestion flow.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.customerName = name
	if strings.TrimSpace(name) == "" {
		s.customer = nil
	}
}

// CustomerName returns the current name-field value.
func (s *Session) CustomerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customerName
}

// Customer returns the resolved customer, if one was selected.
func (s *Session) Customer() *patients.Details {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// Reset clears the active customer and name field, as after order submission.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.customer = nil
	s.customerName = ""
	s.suggestions = []patients.Suggestion{}
	s.highlighted = -1
}

// Snapshot returns the observable session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	suggestions := make([]patients.Suggestion, len(s.suggestions))
	copy(suggestions, s.suggestions)
	return State{
		Query:            s.lastQuery,
		Suggestions:      suggestions,
		HighlightedIndex: s.highlighted,
		CustomerName:     s.customerName,
		Customer:         s.customer,
	}
}

// LastActive reports the session's most recent use.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops the pending debounce timer.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return nil
}

func (s *Session) touchLocked() {
	s.lastActive = time.Now()
}
