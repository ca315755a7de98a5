package datastream

import (
	"math"
	randv2 "math/rand/v2"

	"github.com/cockroachdb/errors"
)

// GenParams 描述 workload 的產生方式
type GenParams struct {
	N           int     // key 數量
	S, V        float64 // Zipf 參數；S = 0 時使用均勻分布，否則需 S > 1、V >= 1
	Seed        uint64
	K           int     // 操作數量
	RemoveRatio float64 // 已存在的 key 被刪除的機率
	UpdateRatio float64 // 已存在的 key 被覆寫的機率
	SimpleKey   bool    // true 時 key 為 0..N-1，否則為隨機的 uint32
}

// Generate 依 Zipf（或均勻）分布產生操作序列。
// 規則：
//   - key 不在容器中時一律產生 Put
//   - key 已存在時依 RemoveRatio 產生 Remove、依 UpdateRatio 產生 Put，其餘為 Get
func Generate(p GenParams) (*Workload, error) {
	if p.N <= 0 {
		return nil, errors.Newf("invalid n: %d", p.N)
	}
	if p.K < 0 {
		return nil, errors.Newf("invalid k: %d", p.K)
	}
	if p.S != 0 && (p.S <= 1.0 || p.V < 1.0) {
		return nil, errors.Newf("invalid zipf params: s=%v must >1, v=%v must >=1", p.S, p.V)
	}
	if p.RemoveRatio < 0 || p.UpdateRatio < 0 || p.RemoveRatio+p.UpdateRatio > 1 {
		return nil, errors.Newf("remove ratio %v and update ratio %v must be in [0,1] and sum to at most 1",
			p.RemoveRatio, p.UpdateRatio)
	}

	r := randv2.New(randv2.NewPCG(p.Seed, 0))

	// rank -> key 的隨機對應（不重複）
	rankToKey := make([]int64, p.N)
	if p.SimpleKey {
		for i := range rankToKey {
			rankToKey[i] = int64(i)
		}
		r.Shuffle(len(rankToKey), func(i, j int) { rankToKey[i], rankToKey[j] = rankToKey[j], rankToKey[i] })
	} else {
		used := make(map[int64]struct{}, p.N)
		for i := range rankToKey {
			k := int64(r.Uint32())
			for _, dup := used[k]; dup; _, dup = used[k] {
				k = int64(r.Uint32())
			}
			used[k] = struct{}{}
			rankToKey[i] = k
		}
	}

	// 每個 rank 的理論機率
	weights := make([]float64, p.N)
	var sum float64
	for i := range weights {
		w := 1.0
		if p.S != 0 {
			w = 1.0 / math.Pow(p.V+float64(i), p.S)
		}
		weights[i] = w
		sum += w
	}

	wl := &Workload{
		Dist: make(map[int64]float64, p.N),
		Ops:  make([]Operation, 0, p.K),
	}
	for i, k := range rankToKey {
		wl.Dist[k] = weights[i] / sum
	}

	var nextRank func() int
	if p.S == 0 {
		nextRank = func() int { return r.IntN(p.N) }
	} else {
		zipf := randv2.NewZipf(r, p.S, p.V, uint64(p.N-1))
		nextRank = func() int { return int(zipf.Uint64()) }
	}

	present := make(map[int64]bool, p.N)
	for i := 0; i < p.K; i++ {
		key := rankToKey[nextRank()]
		op := OpPut
		if present[key] {
			switch x := r.Float64(); {
			case x < p.RemoveRatio:
				op = OpRemove
			case x < p.RemoveRatio+p.UpdateRatio:
				op = OpPut
			default:
				op = OpGet
			}
		}
		present[key] = op != OpRemove
		wl.Ops = append(wl.Ops, Operation{Type: op, Key: key})
	}
	return wl, nil
}
