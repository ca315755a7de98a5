package doublehash

import "github.com/cockroachdb/errors"

// CheckInvariants 檢查存活數量與每個 key 是否能由探測序列找到
func (t *Table[K, V]) CheckInvariants() error {
	live := 0
	seen := make(map[K]int, t.count)
	for i := range t.slots {
		s := &t.slots[i]
		if s.state != slotLive {
			continue
		}
		live++
		if j, dup := seen[s.key]; dup {
			return errors.AssertionFailedf("key %v stored in slots %d and %d", s.key, j, i)
		}
		seen[s.key] = i
		if pos := t.findCell(s.key, false); pos != i {
			return errors.AssertionFailedf("key %v in slot %d is not reachable (probe found %d)", s.key, i, pos)
		}
	}
	if live != t.count {
		return errors.AssertionFailedf("count %d does not match %d live slots", t.count, live)
	}
	return nil
}

func (t *Table[K, V]) mustHold() {
	if err := t.CheckInvariants(); err != nil {
		panic(err)
	}
}
