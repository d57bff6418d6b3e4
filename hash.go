package keyedstore

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	storeerrors "github.com/tamirms/keyedstore/errors"
)

// HashFunc maps a key to a 64-bit hash. The store reduces it modulo its
// capacity to pick a bucket, so only the distribution of the result matters.
type HashFunc func(key string) uint64

// djb2Seed is the initial value of the DJB2 accumulator.
const djb2Seed = 5381

// DJB2 is the default bucket hash: h = h*33 + b over the key bytes, starting
// at 5381 and wrapping at 32 bits. Key bytes are added as unsigned values.
//
// DJB2 is fast and deterministic across processes, which keeps bucket layout
// reproducible for collision debugging. It offers no resistance to crafted
// collisions; use SeededXXH3 or SeededMurmur3 when keys come from untrusted
// input.
func DJB2(key string) uint64 {
	h := uint32(djb2Seed)
	for i := 0; i < len(key); i++ {
		h = (h << 5) + h + uint32(key[i])
	}
	return uint64(h)
}

// XXHash hashes the key with 64-bit xxHash.
func XXHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

// XXH3 hashes the key with 64-bit xxHash3.
func XXH3(key string) uint64 {
	return xxh3.HashString(key)
}

// Murmur3 hashes the key with the 64-bit half of MurmurHash3 x64_128.
func Murmur3(key string) uint64 {
	return murmur3.Sum64([]byte(key))
}

// SeededXXH3 returns an xxHash3 HashFunc keyed by seed. Picking the seed at
// random per process makes bucket placement unpredictable to callers who
// control the keys.
func SeededXXH3(seed uint64) HashFunc {
	return func(key string) uint64 {
		return xxh3.HashStringSeed(key, seed)
	}
}

// SeededMurmur3 returns a MurmurHash3 HashFunc keyed by seed.
func SeededMurmur3(seed uint32) HashFunc {
	return func(key string) uint64 {
		return murmur3.Sum64WithSeed([]byte(key), seed)
	}
}

// hashFuncsByName lists the unseeded built-ins under the names accepted by
// HashFuncByName.
var hashFuncsByName = map[string]HashFunc{
	"djb2":    DJB2,
	"xxhash":  XXHash,
	"xxh3":    XXH3,
	"murmur3": Murmur3,
}

// HashFuncNames lists the names accepted by HashFuncByName, default first.
var HashFuncNames = []string{"djb2", "xxhash", "xxh3", "murmur3"}

// HashFuncByName resolves a built-in HashFunc by its case-insensitive name.
// Returns storeerrors.ErrUnknownHashFunc for anything else.
func HashFuncByName(name string) (HashFunc, error) {
	h, ok := hashFuncsByName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", storeerrors.ErrUnknownHashFunc, name)
	}
	return h, nil
}
