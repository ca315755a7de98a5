package doublehash

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/Hakuto4838/skipvault/container"
)

// Config 描述固定容量與三個雜湊參數。
// 呼叫端必須保證 secondaryHash 的步長與 Capacity 互質，否則探測序列無法涵蓋整張表。
type Config struct {
	Capacity         int `toml:"capacity" json:"capacity"`
	Multiplier       int `toml:"multiplier" json:"multiplier"`
	Modulus          int `toml:"modulus" json:"modulus"`
	SecondaryModulus int `toml:"secondary_modulus" json:"secondary_modulus"`
}

// Validate 檢查所有參數皆為正數，且三個雜湊參數不超過 int32 範圍，
// 讓 |multiplier * hash| 在 int64 中不會溢位
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return errors.Wrapf(container.ErrInvalidArgument, "capacity must be positive, got %d", c.Capacity)
	case c.Multiplier <= 0:
		return errors.Wrapf(container.ErrInvalidArgument, "multiplier must be positive, got %d", c.Multiplier)
	case c.Modulus <= 0:
		return errors.Wrapf(container.ErrInvalidArgument, "modulus must be positive, got %d", c.Modulus)
	case c.SecondaryModulus <= 0:
		return errors.Wrapf(container.ErrInvalidArgument, "secondary modulus must be positive, got %d", c.SecondaryModulus)
	case c.Multiplier > math.MaxInt32:
		return errors.Wrapf(container.ErrInvalidArgument, "multiplier exceeds int32, got %d", c.Multiplier)
	case c.Modulus > math.MaxInt32:
		return errors.Wrapf(container.ErrInvalidArgument, "modulus exceeds int32, got %d", c.Modulus)
	case c.SecondaryModulus > math.MaxInt32:
		return errors.Wrapf(container.ErrInvalidArgument, "secondary modulus exceeds int32, got %d", c.SecondaryModulus)
	}
	return nil
}

// Stats 是碰撞統計的快照
type Stats struct {
	Capacity        int `json:"capacity"`
	Size            int `json:"size"`
	PutCollisions   int `json:"put_collisions"`
	TotalCollisions int `json:"total_collisions"`
	MaxCollisions   int `json:"max_collisions"`
	PutFailures     int `json:"put_failures"`
}

// Table 是使用 double hashing 與墓碑刪除的固定容量雜湊表。
// 容量在建構後不會改變，也不會自動 rehash。不支援併發存取。
type Table[K comparable, V any] struct {
	cfg    Config
	hasher Hasher[K]
	slots  []slot[K, V]
	count  int

	putCollisions   int
	totalCollisions int
	maxCollisions   int
	putFailures     int
}

// New 依 cfg 建立空表，步長與容量必須互質（見 Config）
func New[K comparable, V any](cfg Config, hasher Hasher[K]) (*Table[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hasher == nil {
		return nil, errors.Wrap(container.ErrInvalidArgument, "nil hasher")
	}
	return &Table[K, V]{
		cfg:    cfg,
		hasher: hasher,
		slots:  make([]slot[K, V], cfg.Capacity),
	}, nil
}

// primaryHash = |multiplier * hash(k)| mod modulus
func (t *Table[K, V]) primaryHash(key K) int {
	h := int64(t.hasher(key))
	return int(abs64(int64(t.cfg.Multiplier)*h) % int64(t.cfg.Modulus))
}

// secondaryHash = secondaryModulus - (|hash(k)| mod secondaryModulus)，範圍為 [1, secondaryModulus]
func (t *Table[K, V]) secondaryHash(key K) int {
	h := int64(t.hasher(key))
	return t.cfg.SecondaryModulus - int(abs64(h)%int64(t.cfg.SecondaryModulus))
}

// findCell 沿著探測序列尋找位置，找不到時回傳 -1。
//
// 查詢模式：遇到空位即不存在，墓碑跳過，key 相同即命中。
// 插入模式：記住第一個墓碑；在尚未遇到墓碑時遇到空位、或遇到相同 key 時停止。
// 遇到墓碑後再遇到空位，代表 key 不在表中，直接重用第一個墓碑。
// 繞回起點時若有墓碑則重用，否則插入失敗。
func (t *Table[K, V]) findCell(key K, insert bool) int {
	capacity := len(t.slots)
	step := t.secondaryHash(key) % capacity
	start := t.primaryHash(key) % capacity
	tomb := -1

	pos := start
	probes := 0
	for ; probes == 0 || pos != start; probes++ {
		s := &t.slots[pos]
		if !insert {
			switch {
			case s.state == slotEmpty:
				return -1
			case s.holds(key):
				return pos
			}
		} else {
			switch s.state {
			case slotTombstone:
				if tomb < 0 {
					tomb = pos
				}
			case slotEmpty:
				t.recordChain(probes)
				if tomb >= 0 {
					return tomb
				}
				return pos
			case slotLive:
				if s.key == key {
					t.recordChain(probes)
					return pos
				}
			}
			if probes == 0 {
				t.putCollisions++
			}
			t.totalCollisions++
		}
		pos = (pos + step) % capacity
	}

	if insert {
		if tomb >= 0 {
			t.recordChain(probes)
			return tomb
		}
		t.putFailures++
	}
	return -1
}

func (t *Table[K, V]) recordChain(probes int) {
	if probes > t.maxCollisions {
		t.maxCollisions = probes
	}
}

// ContainsKey 判斷 key 是否存在
func (t *Table[K, V]) ContainsKey(key K) (bool, error) {
	if err := container.CheckKey(key); err != nil {
		return false, err
	}
	return t.findCell(key, false) >= 0, nil
}

// Get 取得 key 對應的 value
func (t *Table[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if err := container.CheckKey(key); err != nil {
		return zero, false, err
	}
	pos := t.findCell(key, false)
	if pos < 0 {
		return zero, false, nil
	}
	return t.slots[pos].value, true, nil
}

// Put 插入或更新 key。找不到位置時回傳 ErrCapacityExhausted，不會覆寫其他 key。
func (t *Table[K, V]) Put(key K, value V) (V, bool, error) {
	var zero V
	if err := container.CheckKey(key); err != nil {
		return zero, false, err
	}
	pos := t.findCell(key, true)
	if pos < 0 {
		return zero, false, errors.Wrapf(container.ErrCapacityExhausted,
			"no free cell for key %v in table of capacity %d", key, len(t.slots))
	}

	s := &t.slots[pos]
	if s.state == slotLive {
		old := s.value
		s.value = value
		return old, true, nil
	}
	*s = slot[K, V]{state: slotLive, key: key, value: value}
	t.count++

	if debugChecks {
		t.mustHold()
	}
	return zero, false, nil
}

// Remove 將 key 所在位置標記為墓碑並回傳原本的 value
func (t *Table[K, V]) Remove(key K) (V, bool, error) {
	var zero V
	if err := container.CheckKey(key); err != nil {
		return zero, false, err
	}
	pos := t.findCell(key, false)
	if pos < 0 {
		return zero, false, nil
	}
	s := &t.slots[pos]
	value := s.value
	s.bury()
	t.count--

	if debugChecks {
		t.mustHold()
	}
	return value, true, nil
}

func (t *Table[K, V]) Size() int {
	return t.count
}

func (t *Table[K, V]) IsEmpty() bool {
	return t.count == 0
}

func (t *Table[K, V]) Capacity() int {
	return len(t.slots)
}

// Keys 依位置順序回傳所有存活的 key
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, t.count)
	for i := range t.slots {
		if t.slots[i].state == slotLive {
			keys = append(keys, t.slots[i].key)
		}
	}
	return keys
}

func (t *Table[K, V]) PutCollisions() int { return t.putCollisions }

// TotalCollisions 是插入時所有未停下的探測次數；遇到墓碑後的第一個空位即停止，不會探測到繞回起點
func (t *Table[K, V]) TotalCollisions() int { return t.totalCollisions }

func (t *Table[K, V]) MaxCollisions() int   { return t.maxCollisions }
func (t *Table[K, V]) PutFailures() int     { return t.putFailures }

// ResetStatistics 將所有碰撞統計歸零
func (t *Table[K, V]) ResetStatistics() {
	t.putCollisions = 0
	t.totalCollisions = 0
	t.maxCollisions = 0
	t.putFailures = 0
}

func (t *Table[K, V]) Stats() Stats {
	return Stats{
		Capacity:        len(t.slots),
		Size:            t.count,
		PutCollisions:   t.putCollisions,
		TotalCollisions: t.totalCollisions,
		MaxCollisions:   t.maxCollisions,
		PutFailures:     t.putFailures,
	}
}
