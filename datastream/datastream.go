package datastream

import (
	"math"
	"sort"
)

// OperationType 表示操作種類
type OperationType uint8

const (
	OpGet OperationType = iota
	OpPut
	OpRemove
)

func (t OperationType) String() string {
	switch t {
	case OpGet:
		return "Get"
	case OpPut:
		return "Put"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Operation 表示一筆對容器的操作
type Operation struct {
	Type OperationType
	Key  int64
}

// Workload 是 key 的機率分布加上依序重播的操作
type Workload struct {
	Dist map[int64]float64
	Ops  []Operation
}

// Keys 依升冪回傳分布中的所有 key
func (w *Workload) Keys() []int64 {
	keys := make([]int64, 0, len(w.Dist))
	for k := range w.Dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Count 回傳各種操作的數量
func (w *Workload) Count() map[OperationType]int {
	out := make(map[OperationType]int, 3)
	for _, op := range w.Ops {
		out[op.Type]++
	}
	return out
}

// Entropy 計算分布的熵（單位：bit），忽略 <= 0 的機率
func (w *Workload) Entropy() float64 {
	h := 0.0
	for _, p := range w.Dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
