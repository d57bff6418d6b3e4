// Bench is a benchmarking tool for measuring keyedstore put/get/remove
// throughput, chain shape, and memory usage per bucket hash function.
//
// Usage:
//
//	go run ./cmd/bench -keys 1000000 -hash all -workers 4
//
// Flags:
//
//	-keys      Number of keys to insert (default: 1,000,000)
//	-capacity  Store capacity, 0 for -keys (default: 0)
//	-keylen    Key length in bytes (default: 16)
//	-hash      Hash function: djb2, xxhash, xxh3, murmur3, or all (default: all)
//	-workers   Hash functions benchmarked concurrently (default: 1)
//
// Each hash function gets its own store, touched by a single goroutine, so
// running several at once never shares a store across goroutines.
package main

import (
	"context"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"runtime/metrics"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/keyedstore"
)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// result is the outcome of one hash function's run.
type result struct {
	name     string
	put      time.Duration
	get      time.Duration
	remove   time.Duration
	accepted int
	rejected int
	released int
	stats    keyedstore.Stats
}

func main() {
	keysFlag := flag.Int("keys", 1_000_000, "number of keys")
	capacityFlag := flag.Int("capacity", 0, "store capacity (0 = number of keys)")
	keyLenFlag := flag.Int("keylen", 16, "key length in bytes")
	hashFlag := flag.String("hash", "all", "hash function: djb2, xxhash, xxh3, murmur3, or all")
	workersFlag := flag.Int("workers", 1, "hash functions benchmarked concurrently")
	flag.Parse()

	numKeys := *keysFlag
	capacity := *capacityFlag
	if capacity == 0 {
		capacity = numKeys
	}

	names := keyedstore.HashFuncNames
	if *hashFlag != "all" {
		names = []string{*hashFlag}
	}
	hashes := make([]keyedstore.HashFunc, len(names))
	for i, name := range names {
		h, err := keyedstore.HashFuncByName(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v (use one of %v or all)\n", err, keyedstore.HashFuncNames)
			os.Exit(2)
		}
		hashes[i] = h
	}

	fmt.Println("Generating keys...")
	keys := generateKeys(numKeys, *keyLenFlag)

	runtime.GC()
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()

	// 10ms sampling for peak heap and RSS. runtime/metrics avoids the
	// stop-the-world pause of ReadMemStats.
	var peakAlloc atomic.Uint64
	var peakRSS atomic.Uint64
	peakAlloc.Store(baseline.Alloc)
	peakRSS.Store(baselineRSS)
	done := make(chan struct{})
	var samplerWG sync.WaitGroup
	samplerWG.Add(1)
	go func() {
		defer samplerWG.Done()
		samples := []metrics.Sample{
			{Name: "/memory/classes/heap/objects:bytes"},
		}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				storeMax(&peakAlloc, samples[0].Value.Uint64())
				storeMax(&peakRSS, getMaxRSS())
			}
		}
	}()

	fmt.Printf("Benchmarking %d keys into capacity %d (%d workers)...\n", numKeys, capacity, *workersFlag)

	results := make([]result, len(names))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(1, *workersFlag))
	for i := range names {
		g.Go(func() error {
			r, err := run(ctx, names[i], hashes[i], capacity, keys)
			if err != nil {
				return fmt.Errorf("%s: %w", names[i], err)
			}
			results[i] = r
			return nil
		})
	}
	err := g.Wait()

	close(done)
	samplerWG.Wait()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	peakHeapMem := peakAlloc.Load() - min(peakAlloc.Load(), baseline.Alloc)
	peakRSSMem := peakRSS.Load() - min(peakRSS.Load(), baselineRSS)

	fmt.Printf("\n")
	fmt.Printf("%-8s %10s %10s %10s %10s %10s %8s %8s %9s\n",
		"hash", "put M/s", "get M/s", "rm M/s", "accepted", "rejected", "used%", "longest", "released")
	for _, r := range results {
		fmt.Printf("%-8s %10.2f %10.2f %10.2f %10d %10d %7.1f%% %8d %9d\n",
			r.name,
			rate(len(keys), r.put),
			rate(len(keys), r.get),
			rate(len(keys)/2, r.remove),
			r.accepted,
			r.rejected,
			100*float64(r.stats.UsedBuckets)/float64(r.stats.Capacity),
			r.stats.LongestChain,
			r.released,
		)
	}
	fmt.Printf("\nPeak heap memory: %.1f MB\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("Peak RSS memory:  %.1f MB\n", float64(peakRSSMem)/1_000_000)
}

// run fills a fresh store with keys, reads every key back, removes every
// other key, and destroys the store.
func run(ctx context.Context, name string, h keyedstore.HashFunc, capacity int, keys []string) (result, error) {
	r := result{name: name}

	store, err := keyedstore.New(capacity, func(int) { r.released++ }, keyedstore.WithHashFunc(h))
	if err != nil {
		return r, err
	}
	defer store.Destroy()

	start := time.Now()
	for i, k := range keys {
		if _, ok := store.Put(k, i+1); ok {
			r.accepted++
		} else {
			r.rejected++
		}
	}
	r.put = time.Since(start)
	r.stats = store.Stats()

	if err := ctx.Err(); err != nil {
		return r, err
	}

	start = time.Now()
	for _, k := range keys {
		_, _ = store.Get(k)
	}
	r.get = time.Since(start)

	start = time.Now()
	for i := 0; i < len(keys); i += 2 {
		store.Remove(keys[i])
	}
	r.remove = time.Since(start)

	store.Destroy()
	if want := r.accepted + r.rejected; r.released != want {
		return r, fmt.Errorf("released %d values, handed over %d", r.released, want)
	}
	return r, nil
}

// generateKeys creates n random keys of keyLen bytes. Duplicates are
// possible for short keys and show up as overwrites.
func generateKeys(n, keyLen int) []string {
	keys := make([]string, n)
	buf := make([]byte, keyLen)
	for i := range keys {
		for j := range buf {
			buf[j] = keyAlphabet[mrand.IntN(len(keyAlphabet))]
		}
		keys[i] = string(buf)
	}
	return keys
}

// storeMax raises v to x if x is larger.
func storeMax(v *atomic.Uint64, x uint64) {
	for {
		old := v.Load()
		if x <= old || v.CompareAndSwap(old, x) {
			return
		}
	}
}

func rate(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds() / 1_000_000
}
