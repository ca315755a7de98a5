package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hakuto4838/skipvault/config"
	"github.com/Hakuto4838/skipvault/container/doublehash/tune"
	"github.com/Hakuto4838/skipvault/saalgo"
)

func TestReadKeys(t *testing.T) {
	keys, err := readKeys(strings.NewReader("mail\n\n bank \nmail\nchat\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"mail", "bank", "chat"}, keys)

	_, err = readKeys(strings.NewReader("\n  \n"))
	require.Error(t, err)
}

func TestDefaultBounds(t *testing.T) {
	start := config.DefaultAppTable
	b := defaultBounds(start, tune.Bounds{})
	assert.Equal(t, tune.Bounds{MaxMultiplier: 1, MaxModulus: 80, MaxSecondaryModulus: 20}, b)

	b = defaultBounds(start, tune.Bounds{MaxMultiplier: 9, MaxModulus: 5, MaxSecondaryModulus: 3})
	assert.Equal(t, tune.Bounds{MaxMultiplier: 9, MaxModulus: 23, MaxSecondaryModulus: 11}, b)
}

func TestTuneKeys(t *testing.T) {
	keys := []string{"mail", "bank", "chat", "code", "news", "shop", "maps", "docs"}
	sa := saalgo.DefaultConfig(11)
	sa.MaxIterations = 500
	start := config.DefaultAppTable
	before, after, err := tuneKeys(start, keys, defaultBounds(start, tune.Bounds{MaxMultiplier: 16}), sa)
	require.NoError(t, err)
	assert.LessOrEqual(t, after.Cost, before.Cost)

	var buf bytes.Buffer
	printResults(&buf, before, after)
	assert.Contains(t, buf.String(), "start")
	assert.Contains(t, buf.String(), "best")
	assert.Contains(t, buf.String(), "PUT FAILURES")
}
