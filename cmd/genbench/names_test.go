package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	n, err := parseCount("1e5")
	require.NoError(t, err)
	assert.Equal(t, 100000, n)

	n, err = parseCount("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = parseCount("lots")
	require.Error(t, err)
	_, err = parseCount("-3")
	require.Error(t, err)
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "0", formatScientific(0))
	assert.Equal(t, "7e0", formatScientific(7))
	assert.Equal(t, "1e5", formatScientific(100000))
	assert.Equal(t, "1.5e5", formatScientific(150000))

	assert.Equal(t, "1", formatDecimal(1))
	assert.Equal(t, "1_5", formatDecimal(1.5))
	assert.Equal(t, "0_25", formatDecimal(0.25))
	assert.Equal(t, "1_07", formatDecimal(1.07))

	assert.Equal(t, "bench_n1e3_k1e4_s1_1_v1_rr0_1_ur0_2", defaultPrefix(1000, 10000, 1.1, 1, 0.1, 0.2))
}
