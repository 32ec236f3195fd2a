package ecs

// Each2 iterates over entities that have both component A and B, in the
// iteration order of the smaller table.
func Each2[A, B any](ta *Table[A], tb *Table[B], fn func(EntityID, A, B)) {
	if ta.Len() <= tb.Len() {
		ta.Each(func(id EntityID, a A) {
			if b, ok := tb.data[id]; ok {
				fn(id, a, b)
			}
		})
		return
	}
	tb.Each(func(id EntityID, b B) {
		if a, ok := ta.data[id]; ok {
			fn(id, a, b)
		}
	})
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](ta *Table[A], tb *Table[B], tc *Table[C], fn func(EntityID, A, B, C)) {
	Each2(ta, tb, func(id EntityID, a A, b B) {
		if c, ok := tc.data[id]; ok {
			fn(id, a, b, c)
		}
	})
}
