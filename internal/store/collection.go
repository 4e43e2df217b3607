package store

import (
	"fmt"
	"strings"
	"sync"
)

type Record interface {
	GetID() string
}

// Collection is an ordered, id-indexed list of records. Reads hand out
// copies, so callers never share memory with the stored state.
type Collection[T Record] struct {
	mu    sync.RWMutex
	items []T
	index map[string]int
	clone func(T) T
}

// NewCollection builds an empty collection. clone deep-copies records
// that carry maps or slices; nil means plain value copy is enough.
func NewCollection[T Record](clone func(T) T) *Collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Collection[T]{
		index: make(map[string]int),
		clone: clone,
	}
}

func (c *Collection[T]) Insert(item T) error {
	op := "Collection.Insert"
	id := item.GetID()
	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[id]; ok {
		return fmt.Errorf("%s: id %q: %w", op, id, ErrDuplicateID)
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, c.clone(item))
	return nil
}

// InsertUnless inserts item unless a stored record matches clash, in
// which case it returns conflict. Both happen under one write lock.
func (c *Collection[T]) InsertUnless(item T, clash func(T) bool, conflict error) error {
	op := "Collection.InsertUnless"
	id := item.GetID()
	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[id]; ok {
		return fmt.Errorf("%s: id %q: %w", op, id, ErrDuplicateID)
	}
	for _, existing := range c.items {
		if clash(existing) {
			return fmt.Errorf("%s: %w", op, conflict)
		}
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, c.clone(item))
	return nil
}

func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return c.clone(c.items[i]), nil
}

func (c *Collection[T]) List() []T {
	return c.Filter(nil)
}

// Filter returns the records matching pred in source order. A nil pred
// matches everything.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if pred == nil || pred(item) {
			out = append(out, c.clone(item))
		}
	}
	return out
}

// Update applies fn to the stored record under the write lock. If fn
// returns an error the record is left untouched. The id cannot change.
func (c *Collection[T]) Update(id string, fn func(*T) error) (T, error) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return zero, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}

	draft := c.clone(c.items[i])
	if err := fn(&draft); err != nil {
		return zero, err
	}
	if draft.GetID() != id {
		return zero, fmt.Errorf("id %q: id is immutable", id)
	}
	c.items[i] = draft
	return c.clone(draft), nil
}

// UpdateWhere applies fn to every record matching pred and returns how
// many were changed.
func (c *Collection[T]) UpdateWhere(pred func(T) bool, fn func(*T)) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for i := range c.items {
		if pred(c.items[i]) {
			fn(&c.items[i])
			n++
		}
	}
	return n
}

func (c *Collection[T]) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].GetID()] = j
	}
	return nil
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Equals matches records whose field equals want exactly. An empty want
// matches everything.
func Equals[T any](want string, field func(T) string) func(T) bool {
	return func(v T) bool {
		return want == "" || field(v) == want
	}
}

// Search is a case-insensitive substring match over the given fields.
// An empty query matches everything.
func Search[T any](q string, fields ...func(T) string) func(T) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	return func(v T) bool {
		if q == "" {
			return true
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(v)), q) {
				return true
			}
		}
		return false
	}
}

// All combines predicates with logical AND; nil entries are skipped.
func All[T any](preds ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range preds {
			if p != nil && !p(v) {
				return false
			}
		}
		return true
	}
}
