package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/medicart/medicart-backend/pkg/errors"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/types"
)

const (
	syncQueueDepth = 128
	syncTimeout    = 15 * time.Second
)

type syncJob struct {
	seq   uint64
	lines []types.CartLine
}

// Store owns the authoritative in-memory cart for one operator. Mutations
// notify subscribers synchronously with optimistic local state; the remote
// user record is overwritten afterwards through a single serialized write
// queue, so a superseded write never lands after a newer one.
type Store struct {
	email  string
	syncer RecordSyncer
	logger *logger.Logger

	mu          sync.Mutex
	lines       []types.CartLine
	subscribers map[int]Subscriber
	nextSubID   int
	seq         uint64
	loaded      bool
	closed      bool

	jobs chan syncJob
	done chan struct{}
}

// NewStore builds a store for the given operator email.
func NewStore(email string, syncer RecordSyncer, logg *logger.Logger) (*Store, error) {
	if email == "" {
		return nil, fmt.Errorf("operator email required")
	}
	if syncer == nil {
		return nil, fmt.Errorf("record syncer required")
	}
	s := &Store{
		email:       email,
		syncer:      syncer,
		logger:      logg,
		lines:       []types.CartLine{},
		subscribers: map[int]Subscriber{},
		jobs:        make(chan syncJob, syncQueueDepth),
		done:        make(chan struct{}),
	}
	go s.runSyncLoop()
	return s, nil
}

// Email returns the owning operator's email.
func (s *Store) Email() string {
	return s.email
}

// Load seeds the cart from the remote user record. A missing record or a
// lookup failure degrades to an empty cart; the failure is not retried.
func (s *Store) Load(ctx context.Context) {
	lines := []types.CartLine{}
	record, err := s.syncer.GetByEmail(ctx, s.email)
	switch {
	case err != nil:
		s.warn(ctx, "cart load failed, starting empty", err)
	case record == nil:
		s.debug(ctx, "no user record, starting empty")
	case record.Cart != nil:
		lines = append(lines, record.Cart...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	s.loaded = true
	s.notifyLocked()
}

// EnsureLoaded loads the cart once per store lifetime.
func (s *Store) EnsureLoaded(ctx context.Context) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		s.Load(ctx)
	}
}

// Add appends a new line with quantity forced to 1. A line with the same
// medicine id already in the cart is rejected and the cart is untouched.
func (s *Store) Add(ctx context.Context, line types.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.lines {
		if existing.MedicineID == line.MedicineID {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "ERROR! %s is already in the cart!", line.Name)
		}
	}

	line.Quantity = 1
	s.lines = append(s.lines, line)
	s.notifyLocked()
	s.enqueueSyncLocked()
	return nil
}

// Remove filters out the line with the given medicine id.
func (s *Store) Remove(ctx context.Context, medicineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.lines[:0]
	for _, line := range s.lines {
		if line.MedicineID != medicineID {
			filtered = append(filtered, line)
		}
	}
	s.lines = filtered
	s.notifyLocked()
	s.enqueueSyncLocked()
}

// UpdateLines replaces the cart wholesale after in-place edits.
func (s *Store) UpdateLines(ctx context.Context, lines []types.CartLine) {
	if lines == nil {
		lines = []types.CartLine{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	s.notifyLocked()
	s.enqueueSyncLocked()
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = []types.CartLine{}
	s.notifyLocked()
	s.enqueueSyncLocked()
}

// Snapshot returns a copy of the current lines.
func (s *Store) Snapshot() []types.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a handler, delivers the current snapshot immediately,
// and returns a cancel func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	fn(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Close stops the persistence queue. Pending writes for stale sequences are
// dropped; the newest pending write still runs.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.jobs)
	<-s.done
	return nil
}

func (s *Store) snapshotLocked() []types.CartLine {
	out := make([]types.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) notifyLocked() {
	snapshot := s.snapshotLocked()
	for _, fn := range s.subscribers {
		fn(snapshot)
	}
}

func (s *Store) enqueueSyncLocked() {
	if s.closed {
		return
	}
	s.seq++
	job := syncJob{seq: s.seq, lines: s.snapshotLocked()}
	select {
	case s.jobs <- job:
	default:
		// Queue full; a newer write is coming anyway.
		s.warn(context.Background(), "cart sync queue full, dropping write", nil)
	}
}

func (s *Store) runSyncLoop() {
	defer close(s.done)
	for job := range s.jobs {
		s.mu.Lock()
		latest := s.seq
		s.mu.Unlock()
		if job.seq < latest {
			continue
		}
		s.persist(job)
	}
}

func (s *Store) persist(job syncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	record, err := s.syncer.GetByEmail(ctx, s.email)
	if err != nil {
		s.warn(ctx, "cart sync lookup failed, keeping local state", err)
		return
	}
	if record == nil {
		s.warn(ctx, "cart sync skipped, user record missing", nil)
		return
	}

	if err := s.syncer.UpdateCart(ctx, record.ID, job.lines); err != nil {
		s.warn(ctx, "cart sync write failed, keeping local state", err)
	}
}

func (s *Store) debug(ctx context.Context, msg string) {
	if s.logger == nil {
		return
	}
	ctx = s.logger.WithOperatorEmail(ctx, s.email)
	s.logger.Debug(ctx, msg)
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	ctx = s.logger.WithOperatorEmail(ctx, s.email)
	if err != nil {
		ctx = s.logger.WithField(ctx, "error", err.Error())
	}
	s.logger.Warn(ctx, msg)
}
