// Package tree implements a two-level tree (roots and their direct children)
// projected onto a flat, linearly indexed row sequence for list displays.
//
// The container is not safe for concurrent mutation. Callers that share a
// Tree across goroutines must serialize access themselves.
package tree

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
)

// ID identifies an item. Roots and children share one id space.
type ID int

// Item is an entry in the tree. Two items are the same entry iff their IDs
// match; the payload plays no part in identity.
type Item[T any] struct {
	ID   ID
	Data T

	hasData bool
}

// NewItem returns an item with an explicit id and a payload.
func NewItem[T any](id ID, data T) Item[T] {
	return Item[T]{ID: id, Data: data, hasData: true}
}

// NewEmptyItem returns an item with an explicit id and no payload.
func NewEmptyItem[T any](id ID) Item[T] {
	return Item[T]{ID: id}
}

// Generate returns an item whose id is drawn from gen.
func Generate[T any](gen IDGenerator, data T) Item[T] {
	return NewItem(gen.NextID(), data)
}

// Payload returns the item's data and whether it was set.
func (i Item[T]) Payload() (T, bool) {
	return i.Data, i.hasData
}

// Equal reports whether both items carry the same id.
func (i Item[T]) Equal(other Item[T]) bool {
	return i.ID == other.ID
}

// IDGenerator hands out ids for items created without an explicit one.
// Uniqueness within a tree is the generator's (or caller's) responsibility;
// the tree never checks for collisions.
type IDGenerator interface {
	NextID() ID
}

// Counter is a monotonic IDGenerator. Useful wherever ids must be
// deterministic, tests in particular.
type Counter struct {
	next atomic.Int64
}

// NewCounter returns a Counter whose first id is start.
func NewCounter(start ID) *Counter {
	c := &Counter{}
	c.next.Store(int64(start))
	return c
}

// NextID returns the next id in sequence.
func (c *Counter) NextID() ID {
	return ID(c.next.Add(1) - 1)
}

// Default bounds for RandomIDs.
const (
	DefaultMinID ID = 1
	DefaultMaxID ID = 100000
)

// RandomIDs draws ids uniformly from [min, max]. Collisions are possible and
// not detected; pick a range wide enough for the expected item count.
type RandomIDs struct {
	min, max ID
	rng      *rand.Rand
}

// NewRandomIDs returns a seeded random generator over [min, max].
// Bounds are swapped if given in reverse order.
func NewRandomIDs(min, max ID, seed uint64) *RandomIDs {
	if max < min {
		min, max = max, min
	}
	return &RandomIDs{
		min: min,
		max: max,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NextID returns a random id in the configured range.
func (r *RandomIDs) NextID() ID {
	// The span is computed unsigned so the full int range does not overflow.
	span := uint64(r.max) - uint64(r.min)
	if span == math.MaxUint64 {
		return ID(r.rng.Uint64())
	}
	return r.min + ID(r.rng.Uint64N(span+1))
}
