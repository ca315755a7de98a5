package container

import (
	"math"
	"reflect"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidArgument 代表傳入的 key 或建構參數不合法
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCapacityExhausted 代表固定容量的表在完整探測一輪後找不到可用位置
	ErrCapacityExhausted = errors.New("capacity exhausted")
)

// Map 是兩種容器共用的介面，行為與底層結構無關
type Map[K comparable, V any] interface {
	Put(key K, value V) (prev V, replaced bool, err error)
	Get(key K) (V, bool, error)
	Remove(key K) (V, bool, error)
	ContainsKey(key K) (bool, error)
	Size() int
	Keys() []K
}

// Analyable 提供分析功能的介面
type Analyable[K comparable] interface {
	Size() int
	// Height 回傳層數（至少為 1）
	Height() int
	// LevelKeys 依升冪回傳第 level 層的所有 key
	LevelKeys(level int) []K
	// SearchSteps 回傳搜尋 key 時水平移動加上往下的步數
	SearchSteps(key K) int
}

// IsAbsent reports whether key cannot be stored: nil interfaces, nil
// reference kinds and values that are not equal to themselves (NaN).
func IsAbsent[K comparable](key K) bool {
	if key != key {
		return true
	}
	switch v := any(key).(type) {
	case nil:
		return true
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return false
	case float32:
		return math.IsNaN(float64(v))
	case float64:
		return math.IsNaN(v)
	}
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// CheckKey 在 key 不可用時回傳包裝過的 ErrInvalidArgument
func CheckKey[K comparable](key K) error {
	if IsAbsent(key) {
		return errors.Wrapf(ErrInvalidArgument, "key %v", key)
	}
	return nil
}
