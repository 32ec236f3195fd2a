package ecs

// Registry tracks all component tables and supports bulk cleanup on entity destroy.
type Registry struct {
	stores []Removable
	names  []string
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 16),
	}
}

// Register adds a component table to the registry.
func (r *Registry) Register(name string, store Removable) {
	r.stores = append(r.stores, store)
	r.names = append(r.names, name)
}

// Names lists registered tables in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// RemoveAll clears the given entity from every registered component table.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}
