package controller

import "sync"

// Location is the externally visible routing input, the analogue of a
// browser address-bar fragment.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
}

// MemoryLocation is an in-process Location. Listeners registered with
// OnChange run synchronously whenever the fragment actually changes.
type MemoryLocation struct {
	mu        sync.Mutex
	fragment  string
	listeners []func(string)
	writes    int
}

// NewMemoryLocation returns a location starting at fragment.
func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: fragment}
}

// Fragment returns the current fragment.
func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// SetFragment replaces the fragment and fires listeners if it changed.
func (l *MemoryLocation) SetFragment(fragment string) {
	l.mu.Lock()
	if l.fragment == fragment {
		l.mu.Unlock()
		return
	}
	l.fragment = fragment
	l.writes++
	listeners := append([]func(string){}, l.listeners...)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(fragment)
	}
}

// OnChange registers fn to run after each fragment change.
func (l *MemoryLocation) OnChange(fn func(string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Writes counts the changes made so far.
func (l *MemoryLocation) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}
