package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/catalogit"
)

// Built-in seed data, one "category<TAB>name" pair per line.
var products = []string{
	"books\tThe Left Hand of Darkness",
	"books\tA Wizard of Earthsea",
	"books\tThe Dispossessed",
	"books\tNeuromancer",
	"books\tSnow Crash",
	"books\tThe Diamond Age",
	"books\tHyperion",
	"books\tThe Fall of Hyperion",
	"books\tA Fire Upon the Deep",
	"books\tA Deepness in the Sky",
	"music\tKind of Blue",
	"music\tA Love Supreme",
	"music\tMingus Ah Um",
	"music\tTime Out",
	"music\tHead Hunters",
	"music\tThe Shape of Jazz to Come",
	"music\tBitches Brew",
	"music\tMoanin'",
	"coffee\tEthiopia Yirgacheffe",
	"coffee\tColombia Huila",
	"coffee\tKenya AA",
	"coffee\tSumatra Mandheling",
	"coffee\tGuatemala Antigua",
	"coffee\tCosta Rica Tarrazu",
	"tools\tBlock Plane No. 4",
	"tools\tDovetail Saw",
	"tools\tMarking Gauge",
	"tools\tCabinet Scraper",
	"tools\tBench Chisel Set",
	"tools\tSpokeshave",
	"plants\tMonstera Deliciosa",
	"plants\tFiddle Leaf Fig",
	"plants\tSnake Plant",
	"plants\tPothos Golden",
	"plants\tZZ Plant",
	"plants\tString of Pearls",
	"games\tGo Board 19x19",
	"games\tStaunton Chess Set",
	"games\tBackgammon Case",
	"games\tMahjong Tiles",
}

var (
	dbPath       = flag.String("db", "./catalog_db", "path to BadgerDB database directory")
	seedFileName = flag.String("src", "", "file of tab-separated category/name pairs")
	workers      = flag.Int("workers", 0, "number of concurrent writers (0 = NumCPU/2)")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedAll splits each line into a category/name pair and inserts it through
// the worker pool. Malformed lines are logged and skipped.
func seedAll(ctx context.Context, catalog *catalogit.Catalog, pool *ants.Pool, source iter.Seq[string]) error {
	var wg sync.WaitGroup
	for line := range source {
		category, name, ok := strings.Cut(line, "\t")
		if !ok {
			slog.Warn("skipping malformed seed line", "line", line)
			continue
		}

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			product, err := catalog.Create(ctx, category, name)
			if err != nil {
				slog.Error("error creating product", "category", category, "name", name, "err", err)
				return
			}
			slog.Info("seeded product", "id", product.Id, "category", product.Category)
		})
		if err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()
	return nil
}

func main() {
	catalog, err := catalogit.NewCatalog(*dbPath)
	if err != nil {
		panic(err)
	}
	defer catalog.Close()

	poolSize := *workers
	if poolSize <= 0 {
		poolSize = runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		panic(err)
	}
	defer pool.Release()

	ctx := context.Background()

	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(products)
	}

	if err := seedAll(ctx, catalog, pool, source); err != nil {
		panic(err)
	}
}
