package event

import "sync"

// Subscription is returned by Subscribe; Unsubscribe detaches the handler.
// Unsubscribing during a dispatch takes effect from the next Publish.
type Subscription interface {
	Unsubscribe()
}

// Topic is one synchronous event stream. Publish calls every handler that was
// subscribed at the time of the call, in subscription order, before it
// returns. Any goroutine may publish or subscribe.
type Topic[T any] struct {
	kind     Kind
	mu       sync.Mutex // only protects the handler list
	handlers []*slot[T]
	observe  func(Kind)
}

type slot[T any] struct {
	fn func(T)
}

type topicSub[T any] struct {
	t    *Topic[T]
	s    *slot[T]
	once sync.Once
}

func (ts *topicSub[T]) Unsubscribe() {
	ts.once.Do(func() { ts.t.remove(ts.s) })
}

func newTopic[T any](kind Kind) *Topic[T] {
	return &Topic[T]{kind: kind}
}

func (t *Topic[T]) Kind() Kind { return t.kind }

// Subscribe registers fn for every future Publish on this topic.
func (t *Topic[T]) Subscribe(fn func(T)) Subscription {
	s := &slot[T]{fn: fn}
	t.mu.Lock()
	// copy-on-write so an in-flight Publish keeps iterating its own slice
	next := make([]*slot[T], len(t.handlers), len(t.handlers)+1)
	copy(next, t.handlers)
	t.handlers = append(next, s)
	t.mu.Unlock()
	return &topicSub[T]{t: t, s: s}
}

// Publish delivers ev to all current handlers synchronously.
func (t *Topic[T]) Publish(ev T) {
	t.mu.Lock()
	hs := t.handlers
	obs := t.observe
	t.mu.Unlock()
	if obs != nil {
		obs(t.kind)
	}
	for _, h := range hs {
		h.fn(ev)
	}
}

// Len returns the number of subscribed handlers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

func (t *Topic[T]) remove(s *slot[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, h := range t.handlers {
		if h == s {
			next := make([]*slot[T], 0, len(t.handlers)-1)
			next = append(next, t.handlers[:i]...)
			t.handlers = append(next, t.handlers[i+1:]...)
			return
		}
	}
}

func (t *Topic[T]) setObserver(fn func(Kind)) {
	t.mu.Lock()
	t.observe = fn
	t.mu.Unlock()
}

// Bus groups one Topic per event domain. It is shared process-wide and
// handed to systems at construction time.
type Bus struct {
	StateChange *Topic[StateChange]
	Lifecycle   *Topic[Lifecycle]
	Collision   *Topic[Collision]
	Input       *Topic[Input]
	Comms       *Topic[Comms]
}

func NewBus() *Bus {
	return &Bus{
		StateChange: newTopic[StateChange](KindStateChange),
		Lifecycle:   newTopic[Lifecycle](KindLifecycle),
		Collision:   newTopic[Collision](KindCollision),
		Input:       newTopic[Input](KindInput),
		Comms:       newTopic[Comms](KindComms),
	}
}

// Observe installs fn to be called once per Publish on any topic, before the
// handlers run. Used for metrics; pass nil to remove.
func (b *Bus) Observe(fn func(Kind)) {
	b.StateChange.setObserver(fn)
	b.Lifecycle.setObserver(fn)
	b.Collision.setObserver(fn)
	b.Input.setObserver(fn)
	b.Comms.setObserver(fn)
}
