package keyedstore_test

import (
	"errors"
	"fmt"

	"github.com/tamirms/keyedstore"
	storeerrors "github.com/tamirms/keyedstore/errors"
)

func Example() {
	release := func(v *string) {
		fmt.Println("released", *v)
	}
	val := func(s string) *string { return &s }

	store, err := keyedstore.New(100, release)
	if err != nil {
		panic(err)
	}

	store.Put("asd", val("asd_val"))
	store.Put("qwe", val("qwe_val"))
	store.Put("zxc", val("zxc_val"))
	fmt.Println("len", store.Len())

	store.Put("asd", val("PogChamp"))
	fmt.Println("len", store.Len())

	if v, ok := store.Get("asd"); ok {
		fmt.Println("asd =", *v)
	}

	store.Remove("qwe")
	fmt.Println("len", store.Len())

	store.Iterate(func(key string, v *string) {
		fmt.Printf("key[%s] value[%s]\n", key, *v)
	})

	store.Destroy()

	// Output:
	// len 3
	// released asd_val
	// len 3
	// asd = PogChamp
	// released qwe_val
	// len 2
	// key[zxc] value[zxc_val]
	// key[asd] value[PogChamp]
	// released zxc_val
	// released PogChamp
}

func ExampleStore_TryPut() {
	store, _ := keyedstore.New(1, func(v []byte) {
		fmt.Printf("released %q\n", v)
	})
	defer store.Destroy()

	store.Put("only", []byte("first"))

	_, err := store.TryPut("another", []byte("second"))
	fmt.Println(errors.Is(err, storeerrors.ErrStoreFull))
	fmt.Println(errors.Is(err, storeerrors.ErrRejected))

	_, err = store.TryPut("only", []byte("third"))
	fmt.Println(err)

	// Output:
	// released "second"
	// true
	// true
	// released "first"
	// <nil>
	// released "third"
}

func ExampleStore_All() {
	store, _ := keyedstore.New(8, func(int) {}, keyedstore.WithHashFunc(keyedstore.XXH3))
	defer store.Destroy()

	for i, k := range []string{"a", "b", "c"} {
		store.Put(k, i+1)
	}

	sum := 0
	for _, v := range store.All() {
		sum += v
	}
	fmt.Println(sum)

	// Output:
	// 6
}
