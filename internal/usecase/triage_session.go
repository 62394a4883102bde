package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tastelens/backend/internal/domain"
)

// SessionState is the phase of a triage session
type SessionState string

const (
	StateLoading    SessionState = "loading"
	StatePresenting SessionState = "presenting"
	StateDone       SessionState = "done"
)

// triageStep records one decision so it can be undone
type triageStep struct {
	index   int
	applied []domain.ChannelRef
}

// Session walks a user through a queue of blocks one at a time.
//
// States: loading -> presenting(index) -> done. Advance and Skip move to the next
// block, Undo steps back to the previous one, Reset returns to loading.
// Callers hold Lock across a whole triage step, including its remote calls.
type Session struct {
	mu sync.Mutex

	ID        string
	Channel   string
	CreatedAt time.Time

	state    SessionState
	queue    []domain.Block
	index    int
	history  []triageStep
	lastUsed time.Time
}

// SessionSnapshot is a read-only view of a session
type SessionSnapshot struct {
	ID      string        `json:"session"`
	Channel string        `json:"channel"`
	State   SessionState  `json:"state"`
	Index   int           `json:"index"`
	Total   int           `json:"total"`
	Current *domain.Block `json:"current,omitempty"`
	CanUndo bool          `json:"canUndo"`
}

func newSession(id, channel string, now time.Time) *Session {
	return &Session{ID: id, Channel: channel, CreatedAt: now, state: StateLoading, lastUsed: now}
}

// Lock serialises triage steps on the session
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session
func (s *Session) Unlock() { s.mu.Unlock() }

// State returns the current state
func (s *Session) State() SessionState {
	return s.state
}

// Load fills the queue and starts presenting. An empty queue goes straight to done.
func (s *Session) Load(blocks []domain.Block) error {
	if s.state != StateLoading {
		return fmt.Errorf("%w: session is %s", domain.ErrInvalidRequest, s.state)
	}
	s.queue = blocks
	s.index = 0
	s.history = nil
	s.settle()
	return nil
}

// Current returns the block being presented
func (s *Session) Current() (domain.Block, error) {
	switch s.state {
	case StatePresenting:
		return s.queue[s.index], nil
	case StateDone:
		return domain.Block{}, domain.ErrQueueExhausted
	default:
		return domain.Block{}, fmt.Errorf("%w: session is still loading", domain.ErrInvalidRequest)
	}
}

// Advance records the channels the current block was connected to and moves on
func (s *Session) Advance(applied []domain.ChannelRef) error {
	if s.state != StatePresenting {
		if s.state == StateDone {
			return domain.ErrQueueExhausted
		}
		return fmt.Errorf("%w: session is still loading", domain.ErrInvalidRequest)
	}
	s.history = append(s.history, triageStep{index: s.index, applied: applied})
	s.index++
	s.settle()
	return nil
}

// Skip moves on without connecting the current block
func (s *Session) Skip() error {
	return s.Advance(nil)
}

// LastApplied returns the block and connections the next Undo would revert
func (s *Session) LastApplied() (domain.Block, []domain.ChannelRef, error) {
	if len(s.history) == 0 {
		return domain.Block{}, nil, domain.ErrNothingToUndo
	}
	step := s.history[len(s.history)-1]
	return s.queue[step.index], step.applied, nil
}

// Undo steps back to the previously presented block
func (s *Session) Undo() error {
	if len(s.history) == 0 {
		return domain.ErrNothingToUndo
	}
	step := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.index = step.index
	s.state = StatePresenting
	return nil
}

// Reset discards the queue and history and returns to loading
func (s *Session) Reset() {
	s.state = StateLoading
	s.queue = nil
	s.index = 0
	s.history = nil
}

// Snapshot captures the session for display
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		ID:      s.ID,
		Channel: s.Channel,
		State:   s.state,
		Index:   s.index,
		Total:   len(s.queue),
		CanUndo: len(s.history) > 0,
	}
	if s.state == StatePresenting {
		current := s.queue[s.index]
		snap.Current = &current
	}
	return snap
}

func (s *Session) settle() {
	if s.index >= len(s.queue) {
		s.index = len(s.queue)
		s.state = StateDone
		return
	}
	s.state = StatePresenting
}

// SessionStore keeps live triage sessions by id
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session), now: time.Now}
}

// Create registers a new loading session for a channel
func (st *SessionStore) Create(channel string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := newSession(uuid.NewString(), channel, st.now())
	st.sessions[s.ID] = s
	return s
}

// Get returns a session by id
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.lastUsed = st.now()
	return s, nil
}

// Delete forgets a session
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Prune drops sessions idle for longer than maxIdle and returns how many were dropped
func (st *SessionStore) Prune(maxIdle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := st.now().Add(-maxIdle)
	var dropped int
	for id, s := range st.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(st.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
