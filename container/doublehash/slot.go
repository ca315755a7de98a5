package doublehash

type slotState uint8

const (
	slotEmpty slotState = iota // 從未寫入
	slotLive
	slotTombstone // 已刪除，探測時需要跳過
)

type slot[K comparable, V any] struct {
	state slotState
	key   K
	value V
}

func (s *slot[K, V]) holds(key K) bool {
	return s.state == slotLive && s.key == key
}

// bury 清空 key/value 並留下墓碑
func (s *slot[K, V]) bury() {
	var (
		k K
		v V
	)
	s.state = slotTombstone
	s.key = k
	s.value = v
}
