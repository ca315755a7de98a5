package saalgo

import (
	"math"
	"math/rand"
)

// Solution 表示一個解
type Solution interface {
	// Clone 創建當前解的深拷貝
	Clone() Solution

	// Cost 返回當前解的成本，越小越好
	Cost() float64

	// Neighbor 以 rng 產生鄰居解，不可修改原本的解
	Neighbor(rng *rand.Rand) Solution
}

// ProgressCallback 進度回報
type ProgressCallback func(iteration, maxIterations int, temperature, bestCost, currentCost float64)

// Config 模擬退火配置
type Config struct {
	InitialTemp      float64
	FinalTemp        float64
	CoolingRate      float64
	Iterations       int // 每個溫度的迭代次數
	MaxIterations    int
	Seed             int64
	Progress         ProgressCallback // 可選
	ProgressInterval int              // 每 N 次迭代回報一次，0 表示不回報
}

// DefaultConfig 返回默認配置
func DefaultConfig(seed int64) Config {
	return Config{
		InitialTemp:   1000.0,
		FinalTemp:     0.1,
		CoolingRate:   0.95,
		Iterations:    100,
		MaxIterations: 10000,
		Seed:          seed,
	}
}

// Annealer 模擬退火主結構，亂數來源只屬於這個實例
type Annealer struct {
	cfg        Config
	rng        *rand.Rand
	best       Solution
	bestCost   float64
	iterations int
}

func New(cfg Config) *Annealer {
	return &Annealer{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Run 執行模擬退火，回傳過程中最好的解
func (sa *Annealer) Run(initial Solution) (Solution, float64) {
	current := initial.Clone()
	currentCost := current.Cost()
	sa.best, sa.bestCost = current.Clone(), currentCost

	temperature := sa.cfg.InitialTemp
	for temperature > sa.cfg.FinalTemp && sa.iterations < sa.cfg.MaxIterations {
		for i := 0; i < sa.cfg.Iterations && sa.iterations < sa.cfg.MaxIterations; i++ {
			neighbor := current.Neighbor(sa.rng)
			neighborCost := neighbor.Cost()

			if sa.accept(neighborCost-currentCost, temperature) {
				current, currentCost = neighbor, neighborCost
				if currentCost < sa.bestCost {
					sa.best, sa.bestCost = current.Clone(), currentCost
				}
			}
			sa.iterations++

			if sa.cfg.Progress != nil && sa.cfg.ProgressInterval > 0 && sa.iterations%sa.cfg.ProgressInterval == 0 {
				sa.cfg.Progress(sa.iterations, sa.cfg.MaxIterations, temperature, sa.bestCost, currentCost)
			}
		}
		// 冷卻
		temperature *= sa.cfg.CoolingRate
	}
	return sa.best, sa.bestCost
}

// accept 以 Metropolis 準則決定是否接受新解
func (sa *Annealer) accept(delta, temperature float64) bool {
	if delta < 0 {
		return true
	}
	return sa.rng.Float64() < math.Exp(-delta/temperature)
}

func (sa *Annealer) Best() (Solution, float64) {
	return sa.best, sa.bestCost
}

func (sa *Annealer) Iterations() int {
	return sa.iterations
}

// Reset 重置狀態，亂數來源不會重設
func (sa *Annealer) Reset() {
	sa.best = nil
	sa.bestCost = 0
	sa.iterations = 0
}
