package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Hakuto4838/skipvault/container"
	"github.com/Hakuto4838/skipvault/container/analyTool"
	"github.com/Hakuto4838/skipvault/container/doublehash"
	"github.com/Hakuto4838/skipvault/container/skiplist"
	"github.com/Hakuto4838/skipvault/datastream"
)

var allImpls = []string{"skiplist", "doublehash", "gomap"}

// goMap 是以內建 map 實作的對照組
type goMap map[int64]float64

func (m goMap) Put(key int64, value float64) (float64, bool, error) {
	old, ok := m[key]
	m[key] = value
	return old, ok, nil
}

func (m goMap) Get(key int64) (float64, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m goMap) Remove(key int64) (float64, bool, error) {
	v, ok := m[key]
	delete(m, key)
	return v, ok, nil
}

func (m goMap) ContainsKey(key int64) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

func (m goMap) Size() int { return len(m) }

func (m goMap) Keys() []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type benchOptions struct {
	impls []string
	runs  int
	seed  int64
	table doublehash.Config // Capacity 為 0 時依 key 數量自動決定
}

type benchStats struct {
	impl     string
	avgMs    float64
	minMs    float64
	maxMs    float64
	avgSteps float64 // 只有 skip list 有意義，其餘為 NaN
	height   int
	levels   []int
	hash     *doublehash.Stats
	failures int // 因容量不足而失敗的 Put
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// autoTable 以不小於兩倍 key 數的質數作為容量，步長模數取比容量小的質數
func autoTable(keys int) doublehash.Config {
	capacity := 2*keys + 1
	for !isPrime(capacity) {
		capacity++
	}
	sm := capacity - 1
	for sm > 2 && !isPrime(sm) {
		sm--
	}
	return doublehash.Config{Capacity: capacity, Multiplier: 1, Modulus: capacity, SecondaryModulus: sm}
}

func newImpl(impl string, opt benchOptions, wl *datastream.Workload) (container.Map[int64, float64], error) {
	switch impl {
	case "skiplist":
		return skiplist.New[int64, float64](opt.seed), nil
	case "doublehash":
		cfg := opt.table
		if cfg.Capacity == 0 {
			cfg = autoTable(len(wl.Dist))
		}
		return doublehash.New[int64, float64](cfg, doublehash.Int64Hash)
	case "gomap":
		return goMap{}, nil
	}
	return nil, errors.Newf("unknown impl %q", impl)
}

// replay 依序執行 workload，回傳耗時與容量不足的次數
func replay(m container.Map[int64, float64], wl *datastream.Workload) (time.Duration, int, error) {
	failures := 0
	start := time.Now()
	for _, op := range wl.Ops {
		var err error
		switch op.Type {
		case datastream.OpGet:
			_, _, err = m.Get(op.Key)
		case datastream.OpPut:
			_, _, err = m.Put(op.Key, wl.Dist[op.Key])
		case datastream.OpRemove:
			_, _, err = m.Remove(op.Key)
		}
		if err != nil {
			if !errors.Is(err, container.ErrCapacityExhausted) {
				return 0, failures, err
			}
			failures++
		}
	}
	return time.Since(start), failures, nil
}

func benchmarkImpl(wl *datastream.Workload, impl string, opt benchOptions) (benchStats, error) {
	stats := benchStats{impl: impl, avgSteps: math.NaN()}
	durations := make([]float64, 0, opt.runs)
	for i := 0; i < opt.runs; i++ {
		m, err := newImpl(impl, opt, wl)
		if err != nil {
			return stats, err
		}
		elapsed, failures, err := replay(m, wl)
		if err != nil {
			return stats, err
		}
		durations = append(durations, float64(elapsed.Microseconds())/1000.0)
		if i > 0 {
			continue
		}

		stats.failures = failures
		switch c := m.(type) {
		case *skiplist.SkipList[int64, float64]:
			if err := analyTool.CheckStruct[int64](c); err != nil {
				return stats, err
			}
			stats.avgSteps, _ = analyTool.AnalyzeStep[int64](c, wl.Dist)
			stats.height = c.Height()
			stats.levels = analyTool.CountLevel[int64](c)
		case *doublehash.Table[int64, float64]:
			if err := c.CheckInvariants(); err != nil {
				return stats, err
			}
			st := c.Stats()
			stats.hash = &st
		}
	}
	sort.Float64s(durations)
	stats.avgMs = average(durations)
	stats.minMs = durations[0]
	stats.maxMs = durations[len(durations)-1]
	return stats, nil
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func parseImpls(s string) []string {
	if s == "" || s == "all" {
		return allImpls
	}
	out := make([]string, 0, len(allImpls))
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		t := strings.TrimSpace(strings.ToLower(p))
		if seen[t] {
			continue
		}
		for _, impl := range allImpls {
			if t == impl {
				out = append(out, t)
				seen[t] = true
			}
		}
	}
	if len(out) == 0 {
		return allImpls
	}
	return out
}

// dumpSkipList 重播 workload 後印出 skip list 的結構、每層節點數與每個 key 的搜尋步數。
// csvPath 非空時另外將各層的 key 寫成 CSV。
func dumpSkipList(w io.Writer, wl *datastream.Workload, seed int64, maxLevel, maxNodes int, csvPath string) (err error) {
	sl := skiplist.New[int64, float64](seed)
	if _, _, err := replay(sl, wl); err != nil {
		return err
	}

	fmt.Fprintf(w, "skiplist structure (size %d, height %d)\n", sl.Size(), sl.Height())
	analyTool.PrintSkipList[int64](w, sl, maxLevel, maxNodes)
	analyTool.PrintLevelCounts[int64](w, sl)
	_, steps := analyTool.AnalyzeStep[int64](sl, wl.Dist)
	steps.Print(w)

	if csvPath == "" {
		return nil
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return errors.Wrap(err, "create csv")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return analyTool.LevelsToCSV[int64](csv.NewWriter(f), sl)
}
