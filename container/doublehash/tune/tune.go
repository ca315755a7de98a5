// Package tune searches double-hash parameters for a fixed key set with
// simulated annealing.
package tune

import (
	"math/rand"

	"github.com/Hakuto4838/skipvault/container/doublehash"
	"github.com/Hakuto4838/skipvault/saalgo"
)

// failurePenalty 讓任何一次插入失敗都比所有碰撞加總更糟
const failurePenalty = 1 << 20

// Result 是一組參數在 key set 上的表現
type Result struct {
	Config doublehash.Config
	Stats  doublehash.Stats
	Cost   float64
}

// Evaluate 將 keys 依序放入以 cfg 建立的表並回傳碰撞統計
func Evaluate(cfg doublehash.Config, keys []string) (Result, error) {
	tbl, err := doublehash.New[string, struct{}](cfg, doublehash.StringHash)
	if err != nil {
		return Result{}, err
	}
	for _, k := range keys {
		// 容量不足只計入 PutFailures
		_, _, _ = tbl.Put(k, struct{}{})
	}
	st := tbl.Stats()
	return Result{
		Config: cfg,
		Stats:  st,
		Cost:   float64(st.TotalCollisions + st.PutFailures*failurePenalty),
	}, nil
}

// Bounds 限制搜尋範圍，容量固定不變
type Bounds struct {
	MaxMultiplier       int
	MaxModulus          int
	MaxSecondaryModulus int
}

type candidate struct {
	cfg    doublehash.Config
	keys   []string
	bounds Bounds
	cost   float64
}

func newCandidate(cfg doublehash.Config, keys []string, b Bounds) *candidate {
	c := &candidate{cfg: cfg, keys: keys, bounds: b}
	res, err := Evaluate(cfg, keys)
	if err != nil {
		c.cost = float64(len(keys)+1) * failurePenalty
	} else {
		c.cost = res.Cost
	}
	return c
}

func (c *candidate) Clone() saalgo.Solution {
	cp := *c
	return &cp
}

func (c *candidate) Cost() float64 {
	return c.cost
}

// Neighbor 隨機調整三個參數其中之一
func (c *candidate) Neighbor(rng *rand.Rand) saalgo.Solution {
	cfg := c.cfg
	delta := rng.Intn(7) - 3
	if delta == 0 {
		delta = 1
	}
	switch rng.Intn(3) {
	case 0:
		cfg.Multiplier = clamp(cfg.Multiplier+delta, 1, c.bounds.MaxMultiplier)
	case 1:
		cfg.Modulus = clamp(cfg.Modulus+delta, 1, c.bounds.MaxModulus)
	default:
		cfg.SecondaryModulus = clamp(cfg.SecondaryModulus+delta, 1, c.bounds.MaxSecondaryModulus)
	}
	return newCandidate(cfg, c.keys, c.bounds)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Search 從 start 開始以模擬退火尋找碰撞最少的參數
func Search(start doublehash.Config, keys []string, b Bounds, sa saalgo.Config) (Result, error) {
	if _, err := Evaluate(start, keys); err != nil {
		return Result{}, err
	}
	best, _ := saalgo.New(sa).Run(newCandidate(start, keys, b))
	return Evaluate(best.(*candidate).cfg, keys)
}
