package clipboard

import "sync"

// Marker is the shared "last self-written" slot. The app sets it immediately
// before a programmatic clipboard write; the monitor consults it on the next
// tick and skips re-recording the app's own write. Observing the marker one
// tick late is tolerated — the fingerprint update self-corrects it.
type Marker struct {
	mu      sync.Mutex
	content string
	set     bool
}

func (m *Marker) Set(content string) {
	m.mu.Lock()
	m.content = content
	m.set = true
	m.mu.Unlock()
}

// Matches reports whether observed is the last self-written content and
// clears the slot on a match.
func (m *Marker) Matches(observed string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set || m.content != observed {
		return false
	}
	m.set = false
	m.content = ""
	return true
}
