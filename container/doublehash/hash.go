package doublehash

import "unicode/utf16"

// Hasher 將 key 映射到 32 位元的雜湊值，語意與 Java 的 hashCode 相同
type Hasher[K comparable] func(key K) int32

// StringHash 是 31 為底的多項式雜湊，以 UTF-16 code unit 計算，
// 與 Java String.hashCode 的結果一致。
func StringHash(s string) int32 {
	var h int32
	for _, r := range s {
		if r < 0x10000 {
			h = 31*h + int32(r)
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		h = 31*h + int32(hi)
		h = 31*h + int32(lo)
	}
	return h
}

// Int64Hash 與 Java Long.hashCode 相同：高低 32 位元 XOR
func Int64Hash(k int64) int32 {
	return int32(uint64(k) ^ uint64(k)>>32)
}

// IntHash 與 Int64Hash 相同，供 int key 使用
func IntHash(k int) int32 {
	return Int64Hash(int64(k))
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
