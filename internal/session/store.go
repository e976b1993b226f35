package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrSessionExists     = errors.New("conversation session already exists")
	ErrSessionNotFound   = errors.New("conversation session not found")
	ErrInvalidTransition = errors.New("invalid stage transition")
)

type Stage int

const (
	StageIdle Stage = iota
	StageAwaitingVideo
	StageAwaitingUsername
	StageAwaitingTitle
	StageAwaitingSchedule
	StageTerminated
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAwaitingVideo:
		return "awaiting_video"
	case StageAwaitingUsername:
		return "awaiting_username"
	case StageAwaitingTitle:
		return "awaiting_title"
	case StageAwaitingSchedule:
		return "awaiting_schedule"
	case StageTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// canAdvanceTo allows staying put, moving one step forward, or terminating.
// Terminated is absorbing.
func (s Stage) canAdvanceTo(next Stage) bool {
	if s == StageTerminated {
		return false
	}
	return next == s || next == s+1 || next == StageTerminated
}

type Conversation struct {
	ID             string
	ChannelID      string
	UserID         string
	Stage          Stage
	StagedFilePath string
	Username       string
	Title          string
	FileReleased   bool
	StartedAt      time.Time
}

// Store keeps one Conversation per conversation id. Callers get copies;
// all writes go through Update.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Conversation
	locks    map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Conversation),
		locks:    make(map[string]*keyLock),
	}
}

// Lock serializes work on one conversation id. The returned func releases it
// and is safe to call more than once.
func (s *Store) Lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &keyLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, id)
			}
			s.mu.Unlock()
		})
	}
}

func (s *Store) Get(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return Conversation{}, false
	}
	return *c, true
}

func (s *Store) Create(id string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; exists {
		return Conversation{}, ErrSessionExists
	}
	c := &Conversation{ID: id, Stage: StageIdle}
	s.sessions[id] = c
	return *c, nil
}

// Update applies mutate to a copy and stores it only if the resulting stage
// change is allowed.
func (s *Store) Update(id string, mutate func(*Conversation)) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[id]
	if !ok {
		return Conversation{}, ErrSessionNotFound
	}
	next := *current
	mutate(&next)
	next.ID = id
	if !current.Stage.canAdvanceTo(next.Stage) {
		return *current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Stage, next.Stage)
	}
	*current = next
	return next, nil
}

// Remove is a no-op for unknown ids.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
