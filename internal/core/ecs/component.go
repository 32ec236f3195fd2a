package ecs

import "sort"

// Removable is implemented by all component tables so the Registry can
// bulk-remove an entity's data from every table on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Versioned is anything a Derived query can depend on. The stamp must change
// whenever the observable contents change.
type Versioned interface {
	Version() uint64
}

// Change describes one mutation of a Table. Old is the zero value when the
// entry was created; New is the zero value when Removed is set.
type Change[T any] struct {
	ID      EntityID
	Old     T
	New     T
	Created bool
	Removed bool
}

// Table is a keyed, versioned component container. Values are stored by
// value: a mutation is only visible through Set/Update/Remove, which is what
// lets the version stamp track every write.
// Single-writer per frame; not safe for concurrent use.
type Table[T any] struct {
	name    string
	data    map[EntityID]T
	equal   func(a, b T) bool
	version uint64

	keys      []EntityID
	keysDirty bool

	watchers []*watcher[T]
}

type watcher[T any] struct {
	fn     func(Change[T])
	active bool
}

func NewTable[T any](name string) *Table[T] {
	return &Table[T]{
		name: name,
		data: make(map[EntityID]T, 256),
	}
}

// NewComparableTable returns a table whose Set skips writes of an equal value,
// so repeated identical writes neither bump the version nor notify watchers.
func NewComparableTable[T comparable](name string) *Table[T] {
	t := NewTable[T](name)
	t.equal = func(a, b T) bool { return a == b }
	return t
}

// WithEqual installs an equality used to suppress no-op writes.
func (t *Table[T]) WithEqual(eq func(a, b T) bool) *Table[T] {
	t.equal = eq
	return t
}

func (t *Table[T]) Name() string    { return t.name }
func (t *Table[T]) Version() uint64 { return t.version }
func (t *Table[T]) Len() int        { return len(t.data) }

func (t *Table[T]) Get(id EntityID) (T, bool) {
	c, ok := t.data[id]
	return c, ok
}

func (t *Table[T]) Has(id EntityID) bool {
	_, ok := t.data[id]
	return ok
}

// Set writes the value and reports whether anything changed.
func (t *Table[T]) Set(id EntityID, c T) bool {
	old, existed := t.data[id]
	if existed && t.equal != nil && t.equal(old, c) {
		return false
	}
	t.data[id] = c
	t.version++
	if !existed {
		t.keysDirty = true
	}
	t.notify(Change[T]{ID: id, Old: old, New: c, Created: !existed})
	return true
}

// Update applies fn to an existing entry. Missing entries are left alone.
func (t *Table[T]) Update(id EntityID, fn func(T) T) bool {
	old, ok := t.data[id]
	if !ok {
		return false
	}
	return t.Set(id, fn(old))
}

func (t *Table[T]) Remove(id EntityID) {
	old, ok := t.data[id]
	if !ok {
		return
	}
	delete(t.data, id)
	t.version++
	t.keysDirty = true
	var zero T
	t.notify(Change[T]{ID: id, Old: old, New: zero, Removed: true})
}

// Each visits entries in ascending EntityID order so that iteration, and
// anything seeded from it, is reproducible frame to frame.
func (t *Table[T]) Each(fn func(EntityID, T)) {
	for _, id := range t.sortedKeys() {
		if c, ok := t.data[id]; ok {
			fn(id, c)
		}
	}
}

// Snapshot copies the current contents.
func (t *Table[T]) Snapshot() map[EntityID]T {
	out := make(map[EntityID]T, len(t.data))
	for id, c := range t.data {
		out[id] = c
	}
	return out
}

// OnChange registers fn to be called after every effective mutation.
// The returned func removes the watcher.
func (t *Table[T]) OnChange(fn func(Change[T])) func() {
	w := &watcher[T]{fn: fn, active: true}
	t.watchers = append(t.watchers, w)
	return func() {
		w.active = false
		for i, cur := range t.watchers {
			if cur == w {
				t.watchers = append(t.watchers[:i:i], t.watchers[i+1:]...)
				return
			}
		}
	}
}

func (t *Table[T]) notify(ch Change[T]) {
	if len(t.watchers) == 0 {
		return
	}
	ws := t.watchers
	for _, w := range ws {
		if w.active {
			w.fn(ch)
		}
	}
}

func (t *Table[T]) sortedKeys() []EntityID {
	if !t.keysDirty && len(t.keys) == len(t.data) {
		return t.keys
	}
	keys := make([]EntityID, 0, len(t.data))
	for id := range t.data {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	t.keys = keys
	t.keysDirty = false
	return keys
}
