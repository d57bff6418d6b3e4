// Package keyedstore implements a fixed-capacity hash table from string keys
// to owned values, with separate chaining and a caller-supplied release
// function that reclaims each value when the store lets go of it.
//
// # Basic Usage
//
//	store, err := keyedstore.New(100, func(f *os.File) { f.Close() })
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Destroy()
//
//	store.Put("log", logFile)      // store now owns logFile
//	store.Put("log", rotatedFile)  // logFile is released, rotatedFile stored
//
//	if f, ok := store.Get("log"); ok {
//	    fmt.Fprintln(f, "hello")   // borrowed; do not close
//	}
//
//	store.Remove("log")            // rotatedFile is released
//
// # Ownership
//
// Put always consumes its value. A value that is stored is released later by
// an overwrite, Remove, or Destroy; a value that is rejected (store full or
// destroyed) is released before Put returns. Nil values are rejected without
// a release call because there is nothing to reclaim. Keys are copied.
//
// # Capacity
//
// The capacity passed to New is both the number of buckets and the maximum
// number of distinct keys. The table never grows: when it is full, Put of a
// new key is rejected with ErrStoreFull even if its bucket is empty, while
// overwrites of existing keys still succeed.
//
// # Hashing
//
// Buckets are chosen by DJB2(key) % capacity unless WithHashFunc supplies
// another HashFunc. DJB2 is deterministic and unseeded; stores fed keys by an
// untrusted party should use SeededXXH3 or SeededMurmur3 with a random seed.
//
// # Package Structure
//
//   - Store and its operations: store.go (New, Put, TryPut, Get, Remove, Iterate, All, Destroy, Stats)
//   - Configuration: options.go (Option, With* functions)
//   - Bucket hashing: hash.go (DJB2, XXHash, XXH3, Murmur3, seeded variants)
//   - Error sentinels: errors/ (shared with the commands)
//   - Tools: cmd/bench (throughput per hash function), cmd/chainstat (chain shape for a key file)
package keyedstore
