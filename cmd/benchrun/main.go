// benchrun 以 workload 檔案比較 skip list、double hash 表與內建 map
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipvault/container/doublehash"
	"github.com/Hakuto4838/skipvault/datastream"
	"github.com/Hakuto4838/skipvault/logutil"
)

func main() {
	var (
		file, dir, out string
		n, k           int
		s, v           float64
		seed           int64
		impls          string
		runs           int
		table          doublehash.Config
		logLevel       string
		printSL        bool
		printLevels    int
		printNodes     int
		csvDir         string
	)
	flag.StringVar(&file, "file", "", "existing workload file (SLBENCH2 format)")
	flag.StringVar(&dir, "dir", "", "directory containing workload files (will test all .bin files)")
	flag.StringVar(&out, "out", "", "output path to write a generated workload")
	flag.IntVar(&n, "n", 0, "number of keys for the generator")
	flag.IntVar(&k, "k", 0, "number of operations to generate")
	flag.Float64Var(&s, "s", 1.07, "Zipf parameter s (0 = uniform)")
	flag.Float64Var(&v, "v", 1.0, "Zipf parameter v")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators and skip list promotion")
	flag.StringVar(&impls, "impl", "all", "implementations to run: all or comma list (skiplist,doublehash,gomap)")
	flag.IntVar(&runs, "runs", 5, "how many times to repeat each benchmark")
	flag.IntVar(&table.Capacity, "table.capacity", 0, "double hash capacity (0 = derived from key count)")
	flag.IntVar(&table.Multiplier, "table.multiplier", 1, "double hash multiplier")
	flag.IntVar(&table.Modulus, "table.modulus", 0, "double hash modulus")
	flag.IntVar(&table.SecondaryModulus, "table.secondary", 0, "double hash secondary modulus")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.BoolVar(&printSL, "print", false, "print the skip list structure, level counts and per-key steps")
	flag.IntVar(&printLevels, "print.levels", 8, "highest level shown by -print")
	flag.IntVar(&printNodes, "print.nodes", 32, "number of keys shown by -print")
	flag.StringVar(&csvDir, "csv", "", "directory to write per-level keys as CSV (one file per workload)")
	flag.Parse()

	lcfg := logutil.DefaultConfig()
	lcfg.Level = logLevel
	logger, err := logutil.NewLogger(lcfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if runs < 1 {
		logger.Fatal("runs must be positive", zap.Int("runs", runs))
	}
	if table.Capacity != 0 {
		if err := table.Validate(); err != nil {
			logger.Fatal("invalid table parameters", zap.Error(err))
		}
	}

	if csvDir != "" {
		if err := os.MkdirAll(csvDir, 0o755); err != nil {
			logger.Fatal("create csv directory", zap.Error(err))
		}
	}

	var benchPaths []string
	switch {
	case dir != "":
		benchPaths, err = collectBenchFiles(dir)
		if err != nil {
			logger.Fatal("scan directory", zap.String("dir", dir), zap.Error(err))
		}
		if len(benchPaths) == 0 {
			logger.Fatal("no .bin files found", zap.String("dir", dir))
		}
	case file != "":
		benchPaths = []string{file}
	default:
		if out == "" {
			logger.Fatal("either -file, -dir, or -out with generation params (-n,-k,-s,-v,-seed) must be provided")
		}
		wl, err := datastream.Generate(datastream.GenParams{N: n, K: k, S: s, V: v, Seed: uint64(seed), RemoveRatio: 0.1, UpdateRatio: 0.1})
		if err != nil {
			logger.Fatal("generate workload", zap.Error(err))
		}
		if err := datastream.WriteFile(out, wl); err != nil {
			logger.Fatal("write workload", zap.Error(err))
		}
		logger.Info("workload generated", zap.String("file", out))
		benchPaths = []string{out}
	}

	opt := benchOptions{impls: parseImpls(impls), runs: runs, seed: seed, table: table}
	logger.Info("benchmark start", zap.Strings("impls", opt.impls), zap.Int("files", len(benchPaths)), zap.Int("runs", runs))

	for idx, path := range benchPaths {
		fmt.Printf("[%d/%d] %s\n", idx+1, len(benchPaths), filepath.Base(path))
		wl, err := datastream.ReadFile(path)
		if err != nil {
			logger.Error("read workload", zap.String("file", path), zap.Error(err))
			continue
		}
		results, err := runBenchmark(wl, opt)
		if err != nil {
			logger.Error("benchmark failed", zap.String("file", path), zap.Error(err))
			continue
		}
		report(os.Stdout, wl, results)

		if printSL || csvDir != "" {
			csvPath := ""
			if csvDir != "" {
				csvPath = filepath.Join(csvDir, strings.TrimSuffix(filepath.Base(path), ".bin")+".levels.csv")
			}
			out := io.Discard
			if printSL {
				out = os.Stdout
			}
			if err := dumpSkipList(out, wl, seed, printLevels, printNodes, csvPath); err != nil {
				logger.Error("dump skip list", zap.String("file", path), zap.Error(err))
			}
		}
	}
	logger.Info("benchmark finished")
}

// collectBenchFiles 收集 dir 底下所有 .bin 檔案並依名稱排序
func collectBenchFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func runBenchmark(wl *datastream.Workload, opt benchOptions) ([]benchStats, error) {
	results := make([]benchStats, 0, len(opt.impls))
	for _, impl := range opt.impls {
		st, err := benchmarkImpl(wl, impl, opt)
		if err != nil {
			return nil, errors.Wrapf(err, "impl %s", impl)
		}
		results = append(results, st)
	}
	return results, nil
}

func report(w io.Writer, wl *datastream.Workload, results []benchStats) {
	counts := wl.Count()
	fmt.Fprintf(w, "ops: %d (get %d, put %d, remove %d), keys: %d, entropy: %.6f\n",
		len(wl.Ops), counts[datastream.OpGet], counts[datastream.OpPut], counts[datastream.OpRemove],
		len(wl.Dist), wl.Entropy())

	rows := make([][]string, 0, len(results))
	for _, st := range results {
		thr := float64(len(wl.Ops)) / (st.avgMs / 1000.0)
		steps := "N/A"
		if !math.IsNaN(st.avgSteps) {
			steps = fmt.Sprintf("%.6f", st.avgSteps)
		}
		rows = append(rows, []string{
			st.impl,
			fmt.Sprintf("%.3f", st.avgMs),
			fmt.Sprintf("%.3f", st.minMs),
			fmt.Sprintf("%.3f", st.maxMs),
			fmt.Sprintf("%.2f", thr),
			steps,
			strconv.Itoa(st.failures),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Impl", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "AvgSteps", "Failures"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	for _, st := range results {
		if len(st.levels) > 0 {
			fmt.Fprintf(w, "%s height: %d\n", st.impl, st.height)
			levelTable(w, st.levels)
		}
		if st.hash != nil {
			hashTable(w, st.impl, *st.hash)
		}
	}
}

func levelTable(w io.Writer, levels []int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Nodes"})
	for i, c := range levels {
		table.Append([]string{strconv.Itoa(i), strconv.Itoa(c)})
	}
	table.Render()
}

func hashTable(w io.Writer, impl string, st doublehash.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Table", "Capacity", "Size", "Put Collisions", "Total Collisions", "Max Chain", "Put Failures"})
	table.Append([]string{
		impl,
		strconv.Itoa(st.Capacity),
		strconv.Itoa(st.Size),
		strconv.Itoa(st.PutCollisions),
		strconv.Itoa(st.TotalCollisions),
		strconv.Itoa(st.MaxCollisions),
		strconv.Itoa(st.PutFailures),
	})
	table.Render()
	fmt.Fprintln(w, strings.Repeat("-", 40))
}
