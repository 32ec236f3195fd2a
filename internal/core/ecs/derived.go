package ecs

// Derived is a cached value computed from one or more Versioned inputs.
//
// The value is recomputed only when an input stamp differs from the stamps
// recorded at the last computation. Once a Frame has forced the value, later
// reads through the same Frame return it unchanged even if inputs were
// written in between; the next Frame re-validates.
type Derived[T any] struct {
	name    string
	inputs  []Versioned
	compute func(*Frame) T

	value   T
	stamps  []uint64
	valid   bool
	pinned  uint64 // frame number that last forced the value
	version uint64

	recomputes int
}

func NewDerived[T any](name string, compute func(*Frame) T, inputs ...Versioned) *Derived[T] {
	return &Derived[T]{
		name:    name,
		inputs:  inputs,
		compute: compute,
		stamps:  make([]uint64, len(inputs)),
	}
}

func (d *Derived[T]) Name() string { return d.name }

// Get forces the query within frame f. A nil frame bypasses the memo scope.
func (d *Derived[T]) Get(f *Frame) T {
	if f != nil && d.valid && d.pinned == f.Number {
		return d.value
	}
	d.refresh(f)
	if f != nil {
		d.pinned = f.Number
	}
	return d.value
}

// Version changes each time the cached value is recomputed, which lets one
// Derived be an input of another.
func (d *Derived[T]) Version() uint64 {
	d.refresh(nil)
	return d.version
}

// Recomputes returns how many times compute has run.
func (d *Derived[T]) Recomputes() int { return d.recomputes }

// Invalidate drops the cached value; the next read recomputes.
func (d *Derived[T]) Invalidate() {
	d.valid = false
	d.pinned = 0
}

func (d *Derived[T]) refresh(f *Frame) {
	if d.valid && !d.stale() {
		return
	}
	d.value = d.compute(f)
	for i, in := range d.inputs {
		d.stamps[i] = in.Version()
	}
	d.valid = true
	d.version++
	d.recomputes++
}

func (d *Derived[T]) stale() bool {
	for i, in := range d.inputs {
		if in.Version() != d.stamps[i] {
			return true
		}
	}
	return false
}

// Family lazily creates one Derived per key, e.g. one movement snapshot per
// scenario.
type Family[K comparable, T any] struct {
	build   func(K) *Derived[T]
	members map[K]*Derived[T]
}

func NewFamily[K comparable, T any](build func(K) *Derived[T]) *Family[K, T] {
	return &Family[K, T]{build: build, members: make(map[K]*Derived[T])}
}

func (fam *Family[K, T]) Get(f *Frame, key K) T {
	return fam.Member(key).Get(f)
}

// Member returns the Derived for key, creating it on first use.
func (fam *Family[K, T]) Member(key K) *Derived[T] {
	d, ok := fam.members[key]
	if !ok {
		d = fam.build(key)
		fam.members[key] = d
	}
	return d
}
