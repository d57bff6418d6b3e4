// chainstat loads a newline-delimited key file into a keyedstore and reports
// how the keys spread across buckets, which is the quickest way to see how a
// hash function behaves on real key sets before fixing a capacity.
//
// Usage:
//
//	go run ./cmd/chainstat -capacity 4096 -hash djb2 keys.txt
//	go run ./cmd/chainstat -capacity 4096 -hash xxh3 -dump keys.txt
//
// Each non-empty line is a key; its value is the 1-based line number, so a
// repeated key keeps the line of its last occurrence. The file is
// memory-mapped read-only.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/tamirms/keyedstore"
	storeerrors "github.com/tamirms/keyedstore/errors"
)

// loadResult counts what happened to each key line.
type loadResult struct {
	lines       int
	accepted    int
	overwritten int
	rejected    int
}

func main() {
	capacityFlag := flag.Int("capacity", 1024, "store capacity (bucket count and key limit)")
	hashFlag := flag.String("hash", "djb2", "hash function: djb2, xxhash, xxh3, or murmur3")
	seedFlag := flag.Uint64("seed", 0, "if non-zero, use seeded xxh3 with this seed instead of -hash")
	dumpFlag := flag.Bool("dump", false, "print every stored key and line number")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: chainstat [flags] FILE\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	h, err := keyedstore.HashFuncByName(*hashFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	hashName := *hashFlag
	if *seedFlag != 0 {
		h = keyedstore.SeededXXH3(*seedFlag)
		hashName = fmt.Sprintf("xxh3 (seed %#x)", *seedFlag)
	}

	released := 0
	store, err := keyedstore.New(*capacityFlag, func(int) { released++ }, keyedstore.WithHashFunc(h))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer store.Destroy()

	res, err := loadFile(flag.Arg(0), store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	if *dumpFlag {
		dump(os.Stdout, store)
	}
	report(os.Stdout, hashName, res, store.Stats(), released)
}

// loadFile memory-maps path and feeds its lines to store.
func loadFile(path string, store *keyedstore.Store[int]) (loadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return loadResult{}, fmt.Errorf("open key file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return loadResult{}, fmt.Errorf("stat key file: %w", err)
	}
	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return loadResult{}, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return loadResult{}, fmt.Errorf("mmap key file: %w", err)
	}
	adviseSequential(mm)

	res, err := loadLines(mm, store)
	return res, errors.Join(err, mm.Unmap())
}

// loadLines puts every non-empty line of data into store. Keys are copied out
// of data, so data may be unmapped once loadLines returns.
func loadLines(data []byte, store *keyedstore.Store[int]) (loadResult, error) {
	var res loadResult
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		res.lines++
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}

		key := string(line)
		existed := store.Contains(key)
		_, err := store.TryPut(key, res.lines)
		switch {
		case err == nil && existed:
			res.overwritten++
		case err == nil:
			res.accepted++
		case errors.Is(err, storeerrors.ErrStoreFull):
			res.rejected++
		default:
			return res, fmt.Errorf("line %d: %w", res.lines, err)
		}
	}
	return res, nil
}

func dump(w io.Writer, store *keyedstore.Store[int]) {
	store.Iterate(func(key string, line int) {
		fmt.Fprintf(w, "%s\t%d\n", key, line)
	})
}

func report(w io.Writer, hashName string, res loadResult, st keyedstore.Stats, released int) {
	avgChain := 0.0
	if st.UsedBuckets > 0 {
		avgChain = float64(st.Len) / float64(st.UsedBuckets)
	}
	fmt.Fprintf(w, "Hash:          %s\n", hashName)
	fmt.Fprintf(w, "Lines:         %d\n", res.lines)
	fmt.Fprintf(w, "  accepted:    %d\n", res.accepted)
	fmt.Fprintf(w, "  overwritten: %d\n", res.overwritten)
	fmt.Fprintf(w, "  rejected:    %d (store full)\n", res.rejected)
	fmt.Fprintf(w, "  released:    %d\n", released)
	fmt.Fprintf(w, "Keys:          %d / %d (load %.2f)\n", st.Len, st.Capacity, st.LoadFactor)
	fmt.Fprintf(w, "Buckets used:  %d (%.1f%%)\n", st.UsedBuckets, 100*float64(st.UsedBuckets)/float64(st.Capacity))
	fmt.Fprintf(w, "Chain length:  avg %.2f, longest %d\n", avgChain, st.LongestChain)
}
