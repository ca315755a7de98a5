package analyTool

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hakuto4838/skipvault/container/skiplist"
)

func buildList(t *testing.T, n int) *skiplist.SkipList[int64, float64] {
	t.Helper()
	sl := skiplist.New[int64, float64](42)
	for i := int64(0); i < int64(n); i++ {
		_, _, err := sl.Put(i, float64(i))
		require.NoError(t, err)
	}
	return sl
}

func TestPrintSkipList(t *testing.T) {
	var buf bytes.Buffer
	PrintSkipList[int64](&buf, skiplist.New[int64, float64](1), 5, 10)
	require.Contains(t, buf.String(), "為空")

	buf.Reset()
	sl := buildList(t, 30)
	PrintSkipList[int64](&buf, sl, 5, 10)
	out := buf.String()
	require.Contains(t, out, "level 0")
	require.Contains(t, out, " 9 ")
	require.NotContains(t, out, " 10 ")
	t.Log("\n" + out)
}

func TestCheckStructAndCountLevel(t *testing.T) {
	sl := buildList(t, 500)
	require.NoError(t, CheckStruct[int64](sl))

	counts := CountLevel[int64](sl)
	require.Len(t, counts, sl.Height())
	require.Equal(t, 500, counts[0])
	for i := 1; i < len(counts); i++ {
		require.LessOrEqual(t, counts[i], counts[i-1])
	}
	require.Positive(t, counts[len(counts)-1])

	var buf bytes.Buffer
	PrintLevelCounts[int64](&buf, sl)
	require.Contains(t, buf.String(), "NODES")
}

func TestAnalyzeStep(t *testing.T) {
	sl := buildList(t, 100)
	dist := map[int64]float64{}
	for i := int64(0); i < 100; i++ {
		dist[i] = 0.01
	}
	dist[1000] = 0.5 // 不在 list 中，會被忽略

	avg, steps := AnalyzeStep[int64](sl, dist)
	require.Len(t, steps, 100)
	require.Greater(t, avg, 1.0)
	require.Equal(t, FindStep[int64](sl, 50), steps[50])

	var buf bytes.Buffer
	steps.Print(&buf)
	require.Contains(t, buf.String(), "STEPS")

	avg, steps = AnalyzeStep[int64](sl, nil)
	require.Zero(t, avg)
	require.Nil(t, steps)
}

func TestLevelsToCSV(t *testing.T) {
	sl := buildList(t, 20)
	var buf bytes.Buffer
	require.NoError(t, LevelsToCSV[int64](csv.NewWriter(&buf), sl))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, sl.Height())
	last := rows[len(rows)-1]
	require.Equal(t, "level 0", last[0])
	require.Equal(t, "19", last[20])
}
