package keyedstore

import (
	"fmt"
	"iter"
	"math"
	"reflect"
	"strings"

	storeerrors "github.com/tamirms/keyedstore/errors"
)

// MaxCapacity is the largest bucket count New accepts.
const MaxCapacity = math.MaxInt32

// ReleaseFunc reclaims a value the store no longer owns. It is called exactly
// once per value: when the value is overwritten, removed, rejected by Put, or
// still stored at Destroy. It must not panic.
type ReleaseFunc[V any] func(value V)

// entry is one key/value association and the link to the next entry in the
// same bucket.
type entry[V any] struct {
	key   string
	value V
	next  *entry[V]
}

// Store is a fixed-capacity hash table with separate chaining.
//
// Capacity bounds both the bucket count and the number of distinct keys: once
// Len() == Cap(), Put refuses new keys but still overwrites existing ones. The
// store never resizes.
//
// Thread Safety:
//   - Store has no internal locking; callers sharing one across goroutines
//     must serialize every call themselves
//   - Iterate and All visitors must not call Put or Remove on the same store
//   - After Destroy, reads report absent and Put rejects
type Store[V any] struct {
	buckets   []*entry[V]
	count     int
	capacity  int
	release   ReleaseFunc[V]
	hash      HashFunc
	nillable  bool // V's kind admits nil; checked once in New
	destroyed bool
}

// Stats holds chain-shape statistics for a store.
type Stats struct {
	Len          int
	Capacity     int
	UsedBuckets  int
	LongestChain int
	LoadFactor   float64
}

// New creates an empty store with capacity buckets that holds at most
// capacity distinct keys. release is invoked on every value the store gives
// up ownership of.
//
// Returns storeerrors.ErrInvalidCapacity if capacity < 1,
// storeerrors.ErrAllocationFailure if capacity exceeds MaxCapacity, and
// storeerrors.ErrNilRelease if release is nil.
func New[V any](capacity int, release ReleaseFunc[V], opts ...Option) (*Store[V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", storeerrors.ErrInvalidCapacity, capacity)
	}
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d buckets exceeds maximum %d", storeerrors.ErrAllocationFailure, capacity, MaxCapacity)
	}
	if release == nil {
		return nil, storeerrors.ErrNilRelease
	}

	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Store[V]{
		buckets:  make([]*entry[V], capacity),
		capacity: capacity,
		release:  release,
		hash:     cfg.hash,
		nillable: canBeNil[V](),
	}, nil
}

// bucketIndex selects the bucket for key.
func (s *Store[V]) bucketIndex(key string) int {
	return int(s.hash(key) % uint64(s.capacity))
}

// Put stores value under key and returns it with true. It returns the zero
// value and false when the value is rejected; see TryPut for the reasons.
func (s *Store[V]) Put(key string, value V) (V, bool) {
	stored, err := s.TryPut(key, value)
	return stored, err == nil
}

// TryPut stores value under key, transferring ownership of value to the store.
//
// If key is already present its previous value is released and replaced in
// place; this succeeds even when the store is full. A new key is appended to
// the tail of its bucket's chain.
//
// Rejections, all wrapping storeerrors.ErrRejected:
//   - storeerrors.ErrNilValue: value is nil; nothing is released
//   - storeerrors.ErrStoreFull: key is new and Len() == Cap(); value is released
//   - storeerrors.ErrStoreDestroyed: Destroy was called; value is released
func (s *Store[V]) TryPut(key string, value V) (V, error) {
	var zero V
	if s.nillable && isNil(value) {
		return zero, storeerrors.ErrNilValue
	}
	if s.destroyed {
		s.release(value)
		return zero, storeerrors.ErrStoreDestroyed
	}

	idx := s.bucketIndex(key)
	var tail *entry[V]
	for e := s.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			s.release(e.value)
			e.value = value
			return value, nil
		}
		tail = e
	}

	// New key: full is checked only after the scan so overwrites always pass.
	if s.count == s.capacity {
		s.release(value)
		return zero, storeerrors.ErrStoreFull
	}

	e := &entry[V]{key: strings.Clone(key), value: value}
	if tail == nil {
		s.buckets[idx] = e
	} else {
		tail.next = e
	}
	s.count++
	return value, nil
}

// lookup returns the entry for key and its predecessor in the chain (nil when
// the entry is the bucket head), or a nil entry when key is absent.
func (s *Store[V]) lookup(key string) (idx int, prev, e *entry[V]) {
	idx = s.bucketIndex(key)
	for e = s.buckets[idx]; e != nil; prev, e = e, e.next {
		if e.key == key {
			return idx, prev, e
		}
	}
	return idx, nil, nil
}

// Get returns the value stored under key. The store keeps ownership; the
// caller must not release it. Absent keys return the zero value and false.
func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	if s.destroyed {
		return zero, false
	}
	_, _, e := s.lookup(key)
	if e == nil {
		return zero, false
	}
	return e.value, true
}

// Contains reports whether key is present.
func (s *Store[V]) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Remove deletes key and releases its value. It returns false, with no side
// effects, when key is absent.
func (s *Store[V]) Remove(key string) bool {
	if s.destroyed {
		return false
	}
	idx, prev, e := s.lookup(key)
	if e == nil {
		return false
	}

	if prev == nil {
		s.buckets[idx] = e.next
	} else {
		prev.next = e.next
	}
	e.next = nil
	s.count--
	s.release(e.value)
	return true
}

// Iterate calls visit for every stored pair, walking buckets in index order
// and each chain in insertion order. Order across buckets is unrelated to
// insertion time.
func (s *Store[V]) Iterate(visit func(key string, value V)) {
	for key, value := range s.All() {
		visit(key, value)
	}
}

// All returns an iterator over the stored pairs in the same order as Iterate.
func (s *Store[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if s.destroyed {
			return
		}
		for _, head := range s.buckets {
			for e := head; e != nil; e = e.next {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// Keys returns the stored keys in iteration order.
func (s *Store[V]) Keys() []string {
	keys := make([]string, 0, s.Len())
	for key := range s.All() {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of distinct keys stored.
func (s *Store[V]) Len() int {
	return s.count
}

// Cap returns the fixed capacity the store was created with.
func (s *Store[V]) Cap() int {
	return s.capacity
}

// Stats walks every chain and reports its shape.
func (s *Store[V]) Stats() Stats {
	st := Stats{
		Len:        s.count,
		Capacity:   s.capacity,
		LoadFactor: float64(s.count) / float64(s.capacity),
	}
	for _, head := range s.buckets {
		if head == nil {
			continue
		}
		st.UsedBuckets++
		n := 0
		for e := head; e != nil; e = e.next {
			n++
		}
		st.LongestChain = max(st.LongestChain, n)
	}
	return st
}

// Destroy releases every stored value and drops the bucket array. Calling
// Destroy on a nil or already destroyed store is a no-op.
func (s *Store[V]) Destroy() {
	if s == nil || s.destroyed {
		return
	}
	s.destroyed = true

	for i, head := range s.buckets {
		// Chains are walked iteratively so long chains cannot grow the stack.
		for e := head; e != nil; {
			next := e.next
			e.next = nil
			s.release(e.value)
			e = next
		}
		s.buckets[i] = nil
	}
	s.buckets = nil
	s.count = 0
}

// canBeNil reports whether values of type V can be nil. Stores of value types
// such as int or string skip isNil on every put.
func canBeNil[V any]() bool {
	return nillableKind(reflect.TypeFor[V]().Kind())
}

func nillableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}

// isNil reports whether v holds a nil reference. Values of non-nillable kinds
// are never nil.
func isNil[V any](v V) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	return nillableKind(rv.Kind()) && rv.IsNil()
}
