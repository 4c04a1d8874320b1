package lshgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/lshgo"
)

// Example demonstrates indexing and querying with default options.
func Example() {
	ctx := context.Background()

	idx, err := lshgo.New(4)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	if _, err := idx.Insert(ctx, []byte("hello"), []float32{0, 1, 0, 0}); err != nil {
		log.Fatal(err)
	}

	// Querying with an indexed embedding always hits its own bucket.
	results, err := idx.Query(ctx, []float32{0, 1, 0, 0}, func(o *lshgo.QueryOptions) {
		o.TopN = 1
	})
	if err != nil {
		log.Fatal(err)
	}

	best := results.Results[0]
	fmt.Printf("%s scored %.1f\n", best.Entry.Text, best.Score)
	// Output: hello scored 1.0
}

// Example_search demonstrates the fluent query builder.
func Example_search() {
	ctx := context.Background()

	idx, err := lshgo.New(4)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	if _, err := idx.Insert(ctx, []byte("north"), []float32{0, 2, 0, 0}); err != nil {
		log.Fatal(err)
	}

	best, err := idx.Search([]float32{0, 2, 0, 0}).
		TopN(1).
		Threshold(0.9).
		First(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(best.Entry.Text))
	// Output: north
}

// Example_derivedParameters shows how the signature length follows the
// expected dataset size when not set explicitly.
func Example_derivedParameters() {
	idx, err := lshgo.New(8, func(o *lshgo.Options) {
		o.MaxEntriesHint = 1_000_000
	})
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	fmt.Println(idx.Stats().HashBits)
	// Output: 13
}
