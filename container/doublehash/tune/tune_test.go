package tune

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hakuto4838/skipvault/container/doublehash"
	"github.com/Hakuto4838/skipvault/saalgo"
)

func appNames(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("app-%02d", i)
	}
	return keys
}

func TestEvaluate(t *testing.T) {
	cfg := doublehash.Config{Capacity: 20, Multiplier: 1, Modulus: 23, SecondaryModulus: 11}
	res, err := Evaluate(cfg, []string{"mail", "bank"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Stats.Size)
	require.Zero(t, res.Cost)

	_, err = Evaluate(doublehash.Config{}, nil)
	require.Error(t, err)
}

func TestSearchNeverWorse(t *testing.T) {
	keys := appNames(15)
	start := doublehash.Config{Capacity: 20, Multiplier: 1, Modulus: 23, SecondaryModulus: 11}
	before, err := Evaluate(start, keys)
	require.NoError(t, err)

	sa := saalgo.DefaultConfig(1)
	sa.MaxIterations = 2000
	after, err := Search(start, keys, Bounds{MaxMultiplier: 64, MaxModulus: 97, MaxSecondaryModulus: 19}, sa)
	require.NoError(t, err)
	require.LessOrEqual(t, after.Cost, before.Cost)
	require.Equal(t, 20, after.Config.Capacity)
	require.LessOrEqual(t, after.Stats.PutFailures, before.Stats.PutFailures)
}
