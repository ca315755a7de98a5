// genbench 產生 benchrun 使用的 workload 檔案
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Hakuto4838/skipvault/datastream"
	"github.com/Hakuto4838/skipvault/logutil"
)

func main() {
	var (
		out, path, nStr, kStr string
		s, v                  float64
		removeRatio           float64
		updateRatio           float64
		seed                  int64
		nums                  int
		simple                bool
		logLevel              string
	)
	flag.StringVar(&nStr, "n", "1e4", "number of distinct keys (支援科學記號，如 1e5)")
	flag.StringVar(&kStr, "k", "1e5", "number of operations (支援科學記號，如 1e6)")
	flag.Float64Var(&s, "s", 1.07, "Zipf parameter s (設為 0 時使用均勻分布)")
	flag.Float64Var(&v, "v", 1.0, "Zipf parameter v")
	flag.Float64Var(&removeRatio, "removeRatio", 0.1, "probability that an existing key is removed")
	flag.Float64Var(&updateRatio, "updateRatio", 0.1, "probability that an existing key is overwritten")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "generator seed")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (留空則自動生成)")
	flag.StringVar(&path, "path", ".", "output directory")
	flag.BoolVar(&simple, "simple", false, "使用 0..n-1 作為 key")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	lcfg := logutil.DefaultConfig()
	lcfg.Level = logLevel
	logger, err := logutil.NewLogger(lcfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, path, out, nStr, kStr, s, v, removeRatio, updateRatio, seed, nums, simple); err != nil {
		logger.Error("generate failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, path, out, nStr, kStr string, s, v, removeRatio, updateRatio float64,
	seed int64, nums int, simple bool) error {
	n, err := parseCount(nStr)
	if err != nil {
		return err
	}
	k, err := parseCount(kStr)
	if err != nil {
		return err
	}
	if out == "" {
		out = defaultPrefix(n, k, s, v, removeRatio, updateRatio)
	}
	if path != "." && path != "" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return err
		}
	}

	logger.Info("generating workloads",
		zap.Int("keys", n), zap.Int("ops", k),
		zap.Float64("s", s), zap.Float64("v", v),
		zap.Float64("removeRatio", removeRatio), zap.Float64("updateRatio", updateRatio),
		zap.Int64("seed", seed), zap.Int("files", nums))

	for i := 0; i < nums; i++ {
		filename := out + ".bin"
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)

		wl, err := datastream.Generate(datastream.GenParams{
			N:           n,
			S:           s,
			V:           v,
			Seed:        uint64(seed + int64(i)),
			K:           k,
			RemoveRatio: removeRatio,
			UpdateRatio: updateRatio,
			SimpleKey:   simple,
		})
		if err != nil {
			return err
		}
		if err := datastream.WriteFile(outfile, wl); err != nil {
			return err
		}
		logger.Info("workload written", zap.String("file", outfile), zap.Float64("entropy", wl.Entropy()))
	}
	return nil
}
