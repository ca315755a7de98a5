// tunehash 以模擬退火尋找讓一組 app 名稱碰撞最少的 double hash 參數
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipvault/config"
	"github.com/Hakuto4838/skipvault/container/doublehash"
	"github.com/Hakuto4838/skipvault/container/doublehash/tune"
	"github.com/Hakuto4838/skipvault/logutil"
	"github.com/Hakuto4838/skipvault/saalgo"
)

func main() {
	var (
		cfgPath, keysPath string
		maxMul, maxMod    int
		maxSec            int
		iterations        int
		seed              int64
		verbose           bool
	)
	flag.StringVar(&cfgPath, "config", "", "TOML config whose [store.apps] is the starting point")
	flag.StringVar(&keysPath, "keys", "", "file with one key per line (留空則從 stdin 讀取)")
	flag.IntVar(&maxMul, "max-multiplier", 64, "upper bound for multiplier")
	flag.IntVar(&maxMod, "max-modulus", 0, "upper bound for modulus (0 = 4x capacity)")
	flag.IntVar(&maxSec, "max-secondary", 0, "upper bound for secondary modulus (0 = capacity)")
	flag.IntVar(&iterations, "iterations", 20000, "maximum annealing iterations")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "annealing seed")
	flag.BoolVar(&verbose, "v", false, "report annealing progress")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	logger, err := logutil.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	in := io.Reader(os.Stdin)
	if keysPath != "" {
		f, err := os.Open(keysPath)
		if err != nil {
			logger.Fatal("open keys", zap.Error(err))
		}
		defer f.Close()
		in = f
	}
	keys, err := readKeys(in)
	if err != nil {
		logger.Fatal("read keys", zap.Error(err))
	}

	start := cfg.Store.Apps
	bounds := defaultBounds(start, tune.Bounds{MaxMultiplier: maxMul, MaxModulus: maxMod, MaxSecondaryModulus: maxSec})
	sa := saalgo.DefaultConfig(seed)
	sa.MaxIterations = iterations
	if verbose {
		sa.ProgressInterval = iterations / 10
		sa.Progress = func(iteration, maxIterations int, temperature, bestCost, currentCost float64) {
			logger.Info("annealing", zap.Int("iteration", iteration), zap.Float64("temperature", temperature),
				zap.Float64("best", bestCost), zap.Float64("current", currentCost))
		}
	}

	logger.Info("tuning start", zap.Int("keys", len(keys)), zap.Int("capacity", start.Capacity), zap.Int64("seed", seed))
	before, after, err := tuneKeys(start, keys, bounds, sa)
	if err != nil {
		logger.Fatal("tuning failed", zap.Error(err))
	}
	printResults(os.Stdout, before, after)
	logger.Info("tuning finished", zap.Float64("cost", after.Cost))
}

// readKeys 讀取每行一個 key，忽略空行與重複
func readKeys(r io.Reader) ([]string, error) {
	var keys []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		k := strings.TrimSpace(sc.Text())
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan keys")
	}
	if len(keys) == 0 {
		return nil, errors.New("no keys given")
	}
	return keys, nil
}

func defaultBounds(start doublehash.Config, b tune.Bounds) tune.Bounds {
	if b.MaxMultiplier < start.Multiplier {
		b.MaxMultiplier = start.Multiplier
	}
	if b.MaxModulus == 0 {
		b.MaxModulus = 4 * start.Capacity
	}
	if b.MaxModulus < start.Modulus {
		b.MaxModulus = start.Modulus
	}
	if b.MaxSecondaryModulus == 0 {
		b.MaxSecondaryModulus = start.Capacity
	}
	if b.MaxSecondaryModulus < start.SecondaryModulus {
		b.MaxSecondaryModulus = start.SecondaryModulus
	}
	return b
}

func tuneKeys(start doublehash.Config, keys []string, b tune.Bounds, sa saalgo.Config) (tune.Result, tune.Result, error) {
	before, err := tune.Evaluate(start, keys)
	if err != nil {
		return tune.Result{}, tune.Result{}, err
	}
	after, err := tune.Search(start, keys, b, sa)
	if err != nil {
		return tune.Result{}, tune.Result{}, err
	}
	return before, after, nil
}

func printResults(w io.Writer, results ...tune.Result) {
	names := []string{"start", "best"}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Params", "Multiplier", "Modulus", "Secondary", "Size", "Total Collisions", "Max Chain", "Put Failures"})
	table.SetAutoWrapText(false)
	for i, r := range results {
		name := strconv.Itoa(i)
		if i < len(names) {
			name = names[i]
		}
		table.Append([]string{
			name,
			strconv.Itoa(r.Config.Multiplier),
			strconv.Itoa(r.Config.Modulus),
			strconv.Itoa(r.Config.SecondaryModulus),
			strconv.Itoa(r.Stats.Size),
			strconv.Itoa(r.Stats.TotalCollisions),
			strconv.Itoa(r.Stats.MaxCollisions),
			strconv.Itoa(r.Stats.PutFailures),
		})
	}
	table.Render()
}
