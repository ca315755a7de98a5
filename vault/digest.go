package vault

import "unicode/utf16"

const djb2Seed uint64 = 5381

// Digest 以 djb2 (h = h*33 + c) 計算密碼摘要，逐一走訪 UTF-16 code unit，
// 溢位時自然回繞。這不是密碼學雜湊。
func Digest(password string) uint64 {
	h := djb2Seed
	for _, c := range utf16.Encode([]rune(password)) {
		h = (h << 5) + h + uint64(c)
	}
	return h
}
