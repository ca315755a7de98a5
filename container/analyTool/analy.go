package analyTool

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/exp/constraints"

	"github.com/Hakuto4838/skipvault/container"
)

type StepMap[K constraints.Ordered] map[K]int

// FindStep 計算找到指定 key 的總步數
func FindStep[K constraints.Ordered](sl container.Analyable[K], key K) int {
	return sl.SearchSteps(key)
}

// AnalyzeStep 根據 key 出現機率計算平均搜尋步數
func AnalyzeStep[K constraints.Ordered](sl container.Analyable[K], keys map[K]float64) (float64, StepMap[K]) {
	if len(keys) == 0 {
		return 0.0, nil
	}
	present := make(map[K]bool, sl.Size())
	for _, k := range sl.LevelKeys(0) {
		present[k] = true
	}

	step := StepMap[K]{}
	var totalExpectedSteps, totalProbability float64
	for k, p := range keys {
		if !present[k] {
			continue
		}
		s := sl.SearchSteps(k)
		step[k] = s
		totalExpectedSteps += float64(s) * p
		totalProbability += p
	}
	if totalProbability > 0 {
		return totalExpectedSteps / totalProbability, step
	}
	return 0.0, step
}

// PrintSkipList 以表格印出 skip list 的結構，最多 maxLevel+1 層、maxNodes 個 key
func PrintSkipList[K constraints.Ordered](w io.Writer, sl container.Analyable[K], maxLevel, maxNodes int) {
	if sl.Size() == 0 {
		fmt.Fprintln(w, "Skip list 為空")
		return
	}
	maxLevel = min(maxLevel, sl.Height()-1)

	bottom := sl.LevelKeys(0)
	if len(bottom) > maxNodes {
		bottom = bottom[:maxNodes]
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i := maxLevel; i >= 0; i-- {
		onLevel := make(map[K]bool)
		for _, k := range sl.LevelKeys(i) {
			onLevel[k] = true
		}
		row := make([]string, 0, len(bottom)+1)
		row = append(row, fmt.Sprintf("level %d", i))
		for _, k := range bottom {
			if onLevel[k] {
				row = append(row, fmt.Sprintf("%v", k))
			} else {
				row = append(row, "")
			}
		}
		table.Append(row)
	}
	table.Render()
}

// LevelsToCSV 將每一層的 key 對齊第 0 層輸出到 CSV
func LevelsToCSV[K constraints.Ordered](writer *csv.Writer, sl container.Analyable[K]) error {
	bottom := sl.LevelKeys(0)
	for i := sl.Height() - 1; i >= 0; i-- {
		onLevel := make(map[K]bool)
		for _, k := range sl.LevelKeys(i) {
			onLevel[k] = true
		}
		row := make([]string, len(bottom)+1)
		row[0] = fmt.Sprintf("level %d", i)
		for j, k := range bottom {
			if onLevel[k] {
				row[j+1] = fmt.Sprintf("%v", k)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// CheckStruct 檢查每一層皆為嚴格遞增，且為下一層的子序列
func CheckStruct[K constraints.Ordered](sl container.Analyable[K]) error {
	var lower []K
	for level := 0; level < sl.Height(); level++ {
		keys := sl.LevelKeys(level)
		for i := 1; i < len(keys); i++ {
			if !(keys[i-1] < keys[i]) {
				return errors.AssertionFailedf("level %d: %v is not below %v", level, keys[i-1], keys[i])
			}
		}
		if level == 0 {
			if len(keys) != sl.Size() {
				return errors.AssertionFailedf("level 0 holds %d keys, size is %d", len(keys), sl.Size())
			}
		} else {
			// keys 與 lower 都已排序，以雙指標確認子序列
			j := 0
			for _, k := range keys {
				for j < len(lower) && lower[j] < k {
					j++
				}
				if j == len(lower) || lower[j] != k {
					return errors.AssertionFailedf("level %d: key %v missing from level %d", level, k, level-1)
				}
			}
			if len(keys) == 0 && level == sl.Height()-1 {
				return errors.AssertionFailedf("top level %d is empty", level)
			}
		}
		lower = keys
	}
	return nil
}

// CountLevel 回傳每一層的節點數量，index 0 為最底層
func CountLevel[K constraints.Ordered](sl container.Analyable[K]) []int {
	counts := make([]int, sl.Height())
	for i := range counts {
		counts[i] = len(sl.LevelKeys(i))
	}
	return counts
}

// PrintLevelCounts 以表格印出每層的節點數量
func PrintLevelCounts[K constraints.Ordered](w io.Writer, sl container.Analyable[K]) {
	counts := CountLevel(sl)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Nodes"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	for i := len(counts) - 1; i >= 0; i-- {
		table.Append([]string{fmt.Sprintf("%d", i), fmt.Sprintf("%d", counts[i])})
	}
	table.Render()
}

// Print 依 key 排序印出每個 key 的搜尋步數
func (mp StepMap[K]) Print(w io.Writer) {
	keys := make([]K, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Steps"})
	for _, k := range keys {
		table.Append([]string{fmt.Sprintf("%v", k), fmt.Sprintf("%d", mp[k])})
	}
	table.Render()
}
