package skiplist

import (
	"iter"
	"math/rand"

	"golang.org/x/exp/constraints"

	"github.com/Hakuto4838/skipvault/container"
)

const (
	maxLevel    = 32
	probability = 0.5
)

// SkipList 是以四向鏈結節點組成的有序 map。
// 每一層左右各有一個哨兵，第 0 層保存所有 key。
// 不支援併發存取。
type SkipList[K constraints.Ordered, V any] struct {
	arena arena[K, V]

	begin  ref // 第 0 層左哨兵
	end    ref // 第 0 層右哨兵
	top    ref // 最上層左哨兵
	topEnd ref // 最上層右哨兵
	height int
	size   int

	coin func() bool
}

// New 建立以 seed 初始化亂數來源的 skip list，亂數來源只在建構時設定一次
func New[K constraints.Ordered, V any](seed int64) *SkipList[K, V] {
	rng := rand.New(rand.NewSource(seed))
	return NewWithCoin[K, V](func() bool {
		return rng.Float64() < probability
	})
}

// NewWithCoin 使用外部提供的擲硬幣函式決定是否升層，coin 回傳 true 代表升層
func NewWithCoin[K constraints.Ordered, V any](coin func() bool) *SkipList[K, V] {
	sl := &SkipList[K, V]{coin: coin}
	sl.begin = sl.arena.newSentinel()
	sl.end = sl.arena.newSentinel()
	sl.arena.at(sl.begin).next = sl.end
	sl.arena.at(sl.end).prev = sl.begin
	sl.top, sl.topEnd = sl.begin, sl.end
	sl.height = 1
	return sl
}

func (sl *SkipList[K, V]) n(r ref) *node[K, V] {
	return sl.arena.at(r)
}

// Size 回傳不同 key 的數量
func (sl *SkipList[K, V]) Size() int {
	return sl.size
}

func (sl *SkipList[K, V]) IsEmpty() bool {
	return sl.size == 0
}

// Height 回傳目前的層數
func (sl *SkipList[K, V]) Height() int {
	return sl.height
}

// search 由最上層左哨兵開始往右、往下找。
// 找到時回傳該 key 最高層的節點；找不到時回傳第 0 層中小於 key 的最右節點（可能是左哨兵）。
func (sl *SkipList[K, V]) search(key K) (ref, int) {
	steps := 0
	if sl.n(sl.begin).next == sl.end {
		return sl.begin, steps
	}
	cur := sl.top
	for {
		nd := sl.n(cur)
		next := sl.n(nd.next)
		if next.sentinel {
			if nd.below == nilRef {
				return cur, steps
			}
			cur = nd.below
			steps++
			continue
		}
		steps++
		switch {
		case next.key == key:
			return nd.next, steps
		case next.key < key:
			cur = nd.next
		default:
			if nd.below == nilRef {
				return cur, steps
			}
			cur = nd.below
			steps++
		}
	}
}

// lookup 回傳 key 所在最高層的節點，不存在時回傳 nilRef
func (sl *SkipList[K, V]) lookup(key K) ref {
	r, _ := sl.search(key)
	nd := sl.n(r)
	if nd.sentinel || nd.key != key {
		return nilRef
	}
	return r
}

// SearchSteps 回傳搜尋 key 的步數（比較次數加上往下的次數）
func (sl *SkipList[K, V]) SearchSteps(key K) int {
	_, steps := sl.search(key)
	return steps
}

// ContainsKey 判斷 key 是否存在
func (sl *SkipList[K, V]) ContainsKey(key K) (bool, error) {
	if err := container.CheckKey(key); err != nil {
		return false, err
	}
	return sl.lookup(key) != nilRef, nil
}

// Get 取得 key 對應的 value
func (sl *SkipList[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if err := container.CheckKey(key); err != nil {
		return zero, false, err
	}
	r := sl.lookup(key)
	if r == nilRef {
		return zero, false, nil
	}
	return sl.n(r).value, true, nil
}

// Put 插入或更新 key 對應的 value。
// 更新時回傳舊值且不改變結構；新 key 會在第 0 層插入後依擲硬幣結果逐層升層。
func (sl *SkipList[K, V]) Put(key K, value V) (V, bool, error) {
	var zero V
	if err := container.CheckKey(key); err != nil {
		return zero, false, err
	}

	pred, _ := sl.search(key)
	if nd := sl.n(pred); !nd.sentinel && nd.key == key {
		old := nd.value
		for r := pred; r != nilRef; r = sl.n(r).below {
			sl.n(r).value = value
		}
		return old, true, nil
	}

	lower := sl.splice(pred, key, value)
	sl.size++

	for level := 1; level < maxLevel && sl.coin(); level++ {
		// 往左找到第一個有上層投影的節點（或左哨兵）
		for nd := sl.n(pred); !nd.sentinel && nd.above == nilRef; nd = sl.n(pred) {
			pred = nd.prev
		}
		if sl.n(pred).above == nilRef {
			sl.grow()
		}
		pred = sl.n(pred).above

		up := sl.splice(pred, key, value)
		sl.n(up).below = lower
		sl.n(lower).above = up
		lower = up
	}

	if debugChecks {
		sl.mustHold()
	}
	return zero, false, nil
}

// splice 在 pred 右邊插入新節點
func (sl *SkipList[K, V]) splice(pred ref, key K, value V) ref {
	r := sl.arena.alloc(key, value, false)
	after := sl.n(pred).next
	nd := sl.n(r)
	nd.prev = pred
	nd.next = after
	sl.n(pred).next = r
	sl.n(after).prev = r
	return r
}

// grow 在最上層之上加一對新的哨兵，成為新的最上層
func (sl *SkipList[K, V]) grow() {
	left := sl.arena.newSentinel()
	right := sl.arena.newSentinel()
	sl.n(left).next = right
	sl.n(right).prev = left

	sl.n(left).below = sl.top
	sl.n(sl.top).above = left
	sl.n(right).below = sl.topEnd
	sl.n(sl.topEnd).above = right

	sl.top, sl.topEnd = left, right
	sl.height++
}

// compress 移除最上層的哨兵（grow 的反向操作）
func (sl *SkipList[K, V]) compress() {
	left, right := sl.top, sl.topEnd
	sl.top = sl.n(left).below
	sl.topEnd = sl.n(right).below
	sl.n(sl.top).above = nilRef
	sl.n(sl.topEnd).above = nilRef
	sl.arena.release(left)
	sl.arena.release(right)
	sl.height--
}

// Remove 刪除 key 的所有投影並回傳原本的 value
func (sl *SkipList[K, V]) Remove(key K) (V, bool, error) {
	var zero V
	if err := container.CheckKey(key); err != nil {
		return zero, false, err
	}
	r := sl.lookup(key)
	if r == nilRef {
		return zero, false, nil
	}

	for sl.n(r).below != nilRef {
		r = sl.n(r).below
	}
	value := sl.n(r).value

	// 由下往上逐層移除
	for r != nilRef {
		nd := sl.n(r)
		up := nd.above
		sl.n(nd.prev).next = nd.next
		sl.n(nd.next).prev = nd.prev
		if up != nilRef {
			sl.n(up).below = nilRef
		}
		sl.arena.release(r)
		r = up
	}
	sl.size--

	for sl.height > 1 && sl.n(sl.top).next == sl.topEnd {
		sl.compress()
	}

	if debugChecks {
		sl.mustHold()
	}
	return value, true, nil
}

// Keys 依升冪回傳所有 key，每次呼叫重新計算
func (sl *SkipList[K, V]) Keys() []K {
	keys := make([]K, 0, sl.size)
	for r := sl.n(sl.begin).next; r != sl.end; r = sl.n(r).next {
		keys = append(keys, sl.n(r).key)
	}
	return keys
}

// All 依升冪走訪所有 key/value，走訪期間不可修改
func (sl *SkipList[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for r := sl.n(sl.begin).next; r != sl.end; r = sl.n(r).next {
			nd := sl.n(r)
			if !yield(nd.key, nd.value) {
				return
			}
		}
	}
}

// LevelKeys 回傳第 level 層（0 為最底層）的所有 key
func (sl *SkipList[K, V]) LevelKeys(level int) []K {
	if level < 0 || level >= sl.height {
		return nil
	}
	left := sl.begin
	for i := 0; i < level; i++ {
		left = sl.n(left).above
	}
	var keys []K
	for r := sl.n(left).next; !sl.n(r).sentinel; r = sl.n(r).next {
		keys = append(keys, sl.n(r).key)
	}
	return keys
}
