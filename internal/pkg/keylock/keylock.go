// Package keylock provides a non-blocking, non-reentrant lock keyed by string.
//
// A key is either free or held. TryAcquire on a held key fails immediately
// instead of waiting, so callers drop the duplicate work rather than queue it.
package keylock

import "sync"

// KeyedLock tracks which keys are currently held.
type KeyedLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// New creates an empty KeyedLock.
func New() *KeyedLock {
	return &KeyedLock{held: make(map[string]struct{})}
}

// TryAcquire marks key as held. It returns a release function and true on
// success, or nil and false when key is already held. The release function
// is safe to call more than once.
func (l *KeyedLock) TryAcquire(key string) (release func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}

// Held reports whether key is currently held.
func (l *KeyedLock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[key]
	return busy
}

// Len returns the number of held keys.
func (l *KeyedLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
