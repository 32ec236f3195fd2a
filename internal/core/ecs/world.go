package ecs

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed by CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
	version      uint64
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// Version changes whenever an entity is created, queued for destruction or
// destroyed, so liveness can be an input of Derived queries.
func (w *World) Version() uint64 { return w.version }

func (w *World) CreateEntity() EntityID {
	w.version++
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Live reports alive and not queued for destruction.
func (w *World) Live(id EntityID) bool {
	return w.pool.Alive(id) && !w.Pending(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Queuing the
// same entity twice, or a stale one, is a no-op.
func (w *World) MarkForDestruction(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	if _, dup := w.queued[id]; dup {
		return false
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
	w.version++
	return true
}

// Pending reports whether id is queued for destruction this tick.
func (w *World) Pending(id EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

// FlushDestroyQueue destroys all queued entities, clears their components and
// returns the IDs that were actually destroyed.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	destroyed := make([]EntityID, 0, len(w.destroyQueue))
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		if w.pool.Destroy(id) {
			destroyed = append(destroyed, id)
		}
		delete(w.queued, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	w.version++
	return destroyed
}
