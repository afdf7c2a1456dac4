package customers

import (
	"context"

	"github.com/medicart/medicart-backend/pkg/patients"
)

// Key names the keyboard events the suggestion list reacts to.
type Key string

const (
	KeyUp     Key = "up"
	KeyDown   Key = "down"
	KeyEnter  Key = "enter"
	KeyEscape Key = "escape"
)

// HandleKey applies one keyboard event to the suggestion list and returns the
// selected customer when enter commits a highlight.
//
// The up key advances the highlight and the down key moves it back. That
// mapping is inverted relative to conventional list navigation but matches
// the shipped product behavior, which operators rely on.
func (s *Session) HandleKey(ctx context.Context, key Key) (*patients.Details, error) {
	switch key {
	case KeyUp:
		s.moveHighlight(1)
	case KeyDown:
		s.moveHighlight(-1)
	case KeyEnter:
		return s.commitHighlight(ctx)
	case KeyEscape:
		s.clearSuggestions(true)
	}
	return nil, nil
}

// ClickOutside clears the suggestion list, mirroring a click outside the
// suggestion region. The highlight index is left as-is.
func (s *Session) ClickOutside() {
	s.clearSuggestions(false)
}

func (s *Session) moveHighlight(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	count := len(s.suggestions)
	if count == 0 {
		return
	}
	s.highlighted = ((s.highlighted+delta)%count + count) % count
}

func (s *Session) commitHighlight(ctx context.Context) (*patients.Details, error) {
	s.mu.Lock()
	if s.highlighted < 0 || s.highlighted >= len(s.suggestions) {
		s.mu.Unlock()
		return nil, nil
	}
	id := s.suggestions[s.highlighted].ID
	s.mu.Unlock()

	return s.Select(ctx, id)
}

func (s *Session) clearSuggestions(resetHighlight bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if len(s.suggestions) == 0 {
		return
	}
	s.suggestions = []patients.Suggestion{}
	if resetHighlight {
		s.highlighted = -1
	}
}
