package registry

import "sync"

// Shared is the one guarded handle to an EntitySystem. A panic inside With
// poisons it: the panic propagates and every later With fails with
// ErrLockPoisoned.
type Shared struct {
	mu       sync.Mutex
	sys      *EntitySystem
	poisoned bool
}

func NewShared(sys *EntitySystem) *Shared {
	return &Shared{sys: sys}
}

// With runs fn while holding the lock.
func (s *Shared) With(fn func(sys *EntitySystem) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned {
		return ErrLockPoisoned
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.poisoned = true
			panic(rec)
		}
	}()
	return fn(s.sys)
}

// Poisoned reports whether a panic escaped a With call.
func (s *Shared) Poisoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poisoned
}

// Close tears the system down at process exit.
func (s *Shared) Close() error {
	return s.With(func(sys *EntitySystem) error {
		sys.Close()
		return nil
	})
}
