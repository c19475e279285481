package display

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var ErrSurfaceNotFound = errors.New("surface not found")

// Entry is a registered surface and the label of the clock it shows.
type Entry struct {
	Label   string
	Surface *Surface
}

// Registry indexes surfaces by ID.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]Entry)}
}

func (r *Registry) Register(label string, s *Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID] = Entry{Label: label, Surface: s}
}

func (r *Registry) Lookup(id uuid.UUID) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, ErrSurfaceNotFound
	}
	return e, nil
}

// List returns all entries ordered by label, then name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Surface.Name < out[j].Surface.Name
	})
	return out
}
