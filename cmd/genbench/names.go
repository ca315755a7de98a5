package main

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
)

// parseCount 解析可用科學記號表示的數量（如 "1e5"）
func parseCount(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, errors.Newf("negative count %q", s)
	}
	return int(f), nil
}

// formatScientific 將數量轉成檔名用的科學記號，如 150000 -> 1.5e5
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp, divisor := 0, 1
	for n/divisor >= 10 {
		divisor *= 10
		exp++
	}
	coefficient := float64(n) / float64(divisor)
	if coefficient == float64(int(coefficient)) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

// formatDecimal 將小數轉為不含小數點的字串：1 -> "1"，1.5 -> "1_5"，0.25 -> "0_25"
func formatDecimal(f float64) string {
	val := int(f*100 + 0.5)
	switch {
	case val%100 == 0:
		return fmt.Sprintf("%d", val/100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

func defaultPrefix(n, k int, s, v, removeRatio, updateRatio float64) string {
	return fmt.Sprintf("bench_n%s_k%s_s%s_v%s_rr%s_ur%s",
		formatScientific(n),
		formatScientific(k),
		formatDecimal(s),
		formatDecimal(v),
		formatDecimal(removeRatio),
		formatDecimal(updateRatio))
}
