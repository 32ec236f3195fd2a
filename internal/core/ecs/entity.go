package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Index 0 / generation 0 is never handed out, so the zero value means "none".
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d#%d", id.Index(), id.Generation())
}

// EntityPool manages entity allocation with generational indices and a free list.
// It is the authoritative liveness set: every component table only holds IDs
// for which Alive reports true.
type EntityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	nextIndex   uint32
	count       int
}

func NewEntityPool() *EntityPool {
	p := &EntityPool{
		generations: make([]uint32, 1, 1024),
		alive:       make([]bool, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1, // slot 0 reserved for the zero EntityID
	}
	return p
}

func (p *EntityPool) Create() EntityID {
	var idx uint32
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
	} else {
		idx = p.nextIndex
		p.nextIndex++
		p.generations = append(p.generations, 0)
		p.alive = append(p.alive, false)
	}
	p.alive[idx] = true
	p.count++
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.alive[idx] && p.generations[idx] == id.Generation()
}

// Destroy reports whether the id was live before the call.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false // already destroyed (stale reference)
	}
	idx := id.Index()
	p.generations[idx]++
	p.alive[idx] = false
	p.freeList = append(p.freeList, idx)
	p.count--
	return true
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return p.count }

// Each visits live entities in index order.
func (p *EntityPool) Each(fn func(EntityID)) {
	for idx := uint32(1); idx < p.nextIndex; idx++ {
		if p.alive[idx] {
			fn(NewEntityID(idx, p.generations[idx]))
		}
	}
}
