package hub

import "sync"

// Registry holds the live viewers in the order they connected.
// Add and Remove are its only mutators.
type Registry struct {
	mu      sync.RWMutex
	viewers []*Viewer
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(v *Viewer) {
	r.mu.Lock()
	r.viewers = append(r.viewers, v)
	r.mu.Unlock()
}

// Remove reports whether v was a member.
func (r *Registry) Remove(v *Viewer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.viewers {
		if cur == v {
			r.viewers = append(r.viewers[:i:i], r.viewers[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns the members in connection order.
func (r *Registry) Snapshot() []*Viewer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Viewer, len(r.viewers))
	copy(out, r.viewers)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.viewers)
}
