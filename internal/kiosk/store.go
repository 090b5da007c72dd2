package kiosk

import (
	"sync"

	"github.com/muurk/kioskcfg/internal/logging"
	"go.uber.org/zap"
)

// Command is one edit of a Configuration.
type Command interface {
	Apply(cfg *Configuration) error
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc func(cfg *Configuration) error

// Apply calls f(cfg).
func (f CommandFunc) Apply(cfg *Configuration) error {
	return f(cfg)
}

// Listener is called with a snapshot of the configuration after every
// successful dispatch.
type Listener func(cfg Configuration)

// Store owns the configuration being edited. Dispatch is the only way to
// change it; every dispatch runs to completion before the next one starts.
type Store struct {
	mu        sync.Mutex
	cfg       *Configuration
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store holding cfg. A nil cfg starts from NewConfiguration.
func NewStore(cfg *Configuration) *Store {
	if cfg == nil {
		cfg = NewConfiguration()
	}
	work := cfg.Clone()
	work.normalize()
	return &Store{cfg: work, listeners: make(map[int]Listener)}
}

// Dispatch applies cmd to a copy of the current configuration and, if it
// succeeds, makes the copy current and notifies listeners. On error the
// current configuration is unchanged.
func (s *Store) Dispatch(cmd Command) error {
	s.mu.Lock()
	work := s.cfg.Clone()
	if err := cmd.Apply(work); err != nil {
		s.mu.Unlock()
		logging.Debug("Command rejected",
			zap.String("command", CommandName(cmd)),
			zap.Error(err))
		return err
	}
	work.normalize()
	s.cfg = work
	snapshot := *work.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	logging.LogCommand(CommandName(cmd))

	for _, l := range listeners {
		l(snapshot)
	}
	return nil
}

// Snapshot returns a deep copy of the current configuration.
func (s *Store) Snapshot() *Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Subscribe registers l to be called after every successful dispatch.
// The returned function removes the listener.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
