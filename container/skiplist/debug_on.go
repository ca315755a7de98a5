//go:build debug

package skiplist

// 以 -tags debug 建置時，每次修改後都會檢查結構
const debugChecks = true
