package display

import "sync"

// Group is the set of surfaces that show one clock. Every surface in a group
// receives the same clear, the same frame and a refresh on each tick.
type Group struct {
	mu       sync.RWMutex
	surfaces []*Surface
}

// Add registers surfaces with the group.
func (g *Group) Add(surfaces ...*Surface) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range surfaces {
		if s != nil {
			g.surfaces = append(g.surfaces, s)
		}
	}
}

// Surfaces returns a copy of the registered surfaces.
func (g *Group) Surfaces() []*Surface {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Surface, len(g.surfaces))
	copy(out, g.surfaces)
	return out
}

// Len is the number of registered surfaces.
func (g *Group) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.surfaces)
}

func (g *Group) Clear() {
	for _, s := range g.Surfaces() {
		s.Clear()
	}
}

func (g *Group) Draw(f Frame) {
	for _, s := range g.Surfaces() {
		s.Draw(f)
	}
}

// Refresh produces one texture per surface, in registration order.
func (g *Group) Refresh() []Texture {
	surfaces := g.Surfaces()
	out := make([]Texture, 0, len(surfaces))
	for _, s := range surfaces {
		out = append(out, s.Refresh())
	}
	return out
}
