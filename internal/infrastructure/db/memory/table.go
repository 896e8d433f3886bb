package memory

import (
	"maps"
	"slices"
)

// table keeps rows by ID in insertion order. Stored rows are never mutated in
// place: put stores a copy and get returns one, so a snapshot only needs to
// copy the index, not the rows.
type table[T any] struct {
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) get(id string) (*T, bool) {
	r, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	c := *r
	return &c, true
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) put(id string, v *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	c := *v
	t.rows[id] = &c
}

func (t *table[T]) delete(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
}

// all returns copies of every row in insertion order.
func (t *table[T]) all() []*T {
	out := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		c := *t.rows[id]
		out = append(out, &c)
	}
	return out
}

func (t *table[T]) snapshot() *table[T] {
	return &table[T]{rows: maps.Clone(t.rows), order: slices.Clone(t.order)}
}
