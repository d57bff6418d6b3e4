package keyedstore

import (
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"slices"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a generator seeded from the test name, so every test gets
// its own reproducible stream.
func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateKeys creates n distinct pseudo-random keys of length keyLen.
func generateKeys(rng *randv2.Rand, n, keyLen int) []string {
	seen := make(map[string]struct{}, n)
	keys := make([]string, 0, n)
	buf := make([]byte, keyLen)
	for len(keys) < n {
		for i := range buf {
			buf[i] = keyAlphabet[rng.IntN(len(keyAlphabet))]
		}
		k := string(buf)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// handle is the owned value type used by tests. Releasing it twice is a bug the
// recorder catches.
type handle struct {
	name string
}

func newHandle(name string) *handle {
	return &handle{name: name}
}

// releaseRecorder counts release calls per value pointer.
type releaseRecorder struct {
	calls map[*handle]int
	order []string
}

func newReleaseRecorder() *releaseRecorder {
	return &releaseRecorder{calls: make(map[*handle]int)}
}

func (r *releaseRecorder) release(v *handle) {
	r.calls[v]++
	r.order = append(r.order, v.name)
}

// total returns the number of release calls so far.
func (r *releaseRecorder) total() int {
	return len(r.order)
}

// requireReleasedOnce fails the test unless v was released exactly once.
func (r *releaseRecorder) requireReleasedOnce(t *testing.T, v *handle) {
	t.Helper()
	if got := r.calls[v]; got != 1 {
		t.Fatalf("value %q released %d times, want 1", v.name, got)
	}
}

// requireNotReleased fails the test if v was released.
func (r *releaseRecorder) requireNotReleased(t *testing.T, v *handle) {
	t.Helper()
	if got := r.calls[v]; got != 0 {
		t.Fatalf("value %q released %d times, want 0", v.name, got)
	}
}

// newTestStore creates a store backed by a fresh recorder.
func newTestStore(t *testing.T, capacity int, opts ...Option) (*Store[*handle], *releaseRecorder) {
	t.Helper()
	rec := newReleaseRecorder()
	s, err := New(capacity, rec.release, opts...)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", capacity, err)
	}
	return s, rec
}

// mustPut fails the test if Put rejects.
func mustPut(t *testing.T, s *Store[*handle], key string, v *handle) {
	t.Helper()
	if _, err := s.TryPut(key, v); err != nil {
		t.Fatalf("Put(%q) failed: %v", key, err)
	}
}

// requireLen fails the test unless s holds n keys.
func requireLen(t *testing.T, s *Store[*handle], n int) {
	t.Helper()
	if got := s.Len(); got != n {
		t.Fatalf("Len() = %d, want %d", got, n)
	}
}

// requireGet fails the test unless key maps to want.
func requireGet(t *testing.T, s *Store[*handle], key string, want *handle) {
	t.Helper()
	got, ok := s.Get(key)
	if !ok {
		t.Fatalf("Get(%q) not found, want %q", key, want.name)
	}
	if got != want {
		t.Fatalf("Get(%q) = %q, want %q", key, got.name, want.name)
	}
}

// requireAbsent fails the test if key is present.
func requireAbsent(t *testing.T, s *Store[*handle], key string) {
	t.Helper()
	if got, ok := s.Get(key); ok {
		t.Fatalf("Get(%q) = %q, want absent", key, got.name)
	}
}

// collidingKeys returns n distinct keys that DJB2 maps to the same bucket
// for the given capacity.
func collidingKeys(t *testing.T, capacity, n int) []string {
	t.Helper()
	rng := newTestRNG(t)
	target := -1
	var keys []string
	for attempts := 0; len(keys) < n; attempts++ {
		if attempts > 1_000_000 {
			t.Fatalf("could not find %d colliding keys for capacity %d", n, capacity)
		}
		k := generateKeys(rng, 1, 6)[0]
		idx := int(DJB2(k) % uint64(capacity))
		if target == -1 {
			target = idx
		}
		if idx != target || slices.Contains(keys, k) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
