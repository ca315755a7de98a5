package saalgo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// parabola 的最小值在 x = 3
type parabola struct{ x float64 }

func (p parabola) Clone() Solution { return p }
func (p parabola) Cost() float64   { return (p.x - 3) * (p.x - 3) }
func (p parabola) Neighbor(rng *rand.Rand) Solution {
	return parabola{x: p.x + rng.Float64()*2 - 1}
}

func TestAnnealerFindsMinimum(t *testing.T) {
	cfg := DefaultConfig(42)
	calls := 0
	cfg.ProgressInterval = 1000
	cfg.Progress = func(iteration, maxIterations int, temperature, bestCost, currentCost float64) {
		calls++
		require.LessOrEqual(t, bestCost, currentCost)
	}

	sa := New(cfg)
	best, cost := sa.Run(parabola{x: -20})
	require.InDelta(t, 3.0, best.(parabola).x, 0.5)
	require.Less(t, cost, 0.25)
	require.LessOrEqual(t, sa.Iterations(), cfg.MaxIterations)
	require.Positive(t, calls)

	b, c := sa.Best()
	require.Equal(t, best, b)
	require.Equal(t, cost, c)

	sa.Reset()
	require.Zero(t, sa.Iterations())
}

func TestAnnealerDeterministic(t *testing.T) {
	cfg := DefaultConfig(7)
	cfg.MaxIterations = 500
	_, a := New(cfg).Run(parabola{x: 10})
	_, b := New(cfg).Run(parabola{x: 10})
	require.Equal(t, a, b)
	require.False(t, math.IsNaN(a))
}
