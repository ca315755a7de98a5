package skiplist

import "golang.org/x/exp/constraints"

// ref 是節點在 arena 中的位置，nilRef 表示沒有鄰居
type ref int32

const nilRef ref = -1

// node 同時用來表示一般節點與哨兵節點。
// prev/next 串起同一層，above/below 串起同一個 key 在相鄰層的投影。
type node[K constraints.Ordered, V any] struct {
	key      K
	value    V
	sentinel bool

	prev  ref
	next  ref
	above ref
	below ref
}

// arena 擁有 skip list 建立的所有節點，釋放的位置會被重複使用
type arena[K constraints.Ordered, V any] struct {
	nodes []node[K, V]
	free  []ref
}

func (a *arena[K, V]) alloc(key K, value V, sentinel bool) ref {
	nd := node[K, V]{
		key:      key,
		value:    value,
		sentinel: sentinel,
		prev:     nilRef,
		next:     nilRef,
		above:    nilRef,
		below:    nilRef,
	}
	if n := len(a.free); n > 0 {
		r := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[r] = nd
		return r
	}
	a.nodes = append(a.nodes, nd)
	return ref(len(a.nodes) - 1)
}

func (a *arena[K, V]) newSentinel() ref {
	var (
		k K
		v V
	)
	return a.alloc(k, v, true)
}

// release 清空節點並放回 free list
func (a *arena[K, V]) release(r ref) {
	a.nodes[r] = node[K, V]{prev: nilRef, next: nilRef, above: nilRef, below: nilRef}
	a.free = append(a.free, r)
}

// at 回傳的指標在下一次 alloc 之前有效
func (a *arena[K, V]) at(r ref) *node[K, V] {
	return &a.nodes[r]
}

func (a *arena[K, V]) live() int {
	return len(a.nodes) - len(a.free)
}
