package memory

import (
	"iter"
	"sync"

	"github.com/juju/errors"

	"recordhub/pkg/domain"
)

// Collection is an ordered, concurrency-safe map of records keyed by id.
// Values are cloned on the way in and out, so callers never share memory with
// the stored copy. A write holds the collection lock for its whole duration;
// readers never observe a partially applied update.
type Collection[T domain.Cloneable[T]] struct {
	entity domain.EntityType

	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewCollection constructs an empty collection for entity.
func NewCollection[T domain.Cloneable[T]](entity domain.EntityType) *Collection[T] {
	return &Collection[T]{
		entity: entity,
		items:  make(map[string]T),
	}
}

// Entity returns the entity type held by the collection.
func (c *Collection[T]) Entity() domain.EntityType {
	return c.entity
}

// Get returns the record with id or a NotFound error.
func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, domain.NotFoundError(c.entity, id)
	}
	return item.Clone(), nil
}

// List returns a snapshot of every record in insertion order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// All iterates a snapshot taken when iteration starts. Each call to the
// returned sequence takes a fresh snapshot.
func (c *Collection[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range c.List() {
			if !yield(item) {
				return
			}
		}
	}
}

// Len returns the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Insert stores a new record. The id must be set and unused.
func (c *Collection[T]) Insert(record T) (T, error) {
	return c.InsertCommit(record, nil)
}

// InsertCommit is Insert with a hook that runs before the write lock is
// released. Hooks therefore observe commits in the order they happened. A
// hook must not call back into the collection.
func (c *Collection[T]) InsertCommit(record T, commit func(T)) (T, error) {
	id := record.RecordID()
	if id == "" {
		var zero T
		return zero, domain.InvalidArgumentf("empty %s id", c.entity)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[id]; exists {
		var zero T
		return zero, domain.DuplicateIDError(c.entity, id)
	}
	c.items[id] = record.Clone()
	c.order = append(c.order, id)
	if commit != nil {
		commit(record.Clone())
	}
	return record.Clone(), nil
}

// Update applies mutator to a copy of the record with id and stores the
// result. The mutator runs under the collection write lock; if it fails the
// stored record is left untouched. The id cannot be changed by the mutator.
func (c *Collection[T]) Update(id string, mutator func(*T) error) (T, error) {
	return c.UpdateCommit(id, mutator, nil)
}

// UpdateCommit is Update with a hook run under the write lock after the
// new value is stored.
func (c *Collection[T]) UpdateCommit(id string, mutator func(*T) error, commit func(T)) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.items[id]
	if !ok {
		return zero, domain.NotFoundError(c.entity, id)
	}
	next := current.Clone()
	if err := mutator(&next); err != nil {
		return zero, errors.Trace(err)
	}
	if next.RecordID() != id {
		return zero, domain.InvalidArgumentf("%s id change from %q to %q", c.entity, id, next.RecordID())
	}
	c.items[id] = next.Clone()
	if commit != nil {
		commit(next.Clone())
	}
	return next, nil
}

// Delete removes the record with id when present and returns the remaining
// records. Deleting an absent id is a no-op.
func (c *Collection[T]) Delete(id string) []T {
	return c.DeleteCommit(id, nil)
}

// DeleteCommit is Delete with a hook that receives the remaining records
// before the write lock is released.
func (c *Collection[T]) DeleteCommit(id string, commit func([]T)) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; ok {
		delete(c.items, id)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i:i], c.order[i+1:]...)
				break
			}
		}
	}
	if commit != nil {
		commit(c.snapshotLocked())
	}
	return c.snapshotLocked()
}

// Clear removes every record and returns how many were removed.
func (c *Collection[T]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = make(map[string]T)
	c.order = nil
	return n
}

// Find implements domain.Table.
func (c *Collection[T]) Find(id string) (domain.Record, bool) {
	item, err := c.Get(id)
	if err != nil {
		return nil, false
	}
	return item, true
}

// Records implements domain.Table.
func (c *Collection[T]) Records() []domain.Record {
	items := c.List()
	out := make([]domain.Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func (c *Collection[T]) snapshotLocked() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].Clone())
	}
	return out
}
