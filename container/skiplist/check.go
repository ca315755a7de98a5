package skiplist

import "github.com/cockroachdb/errors"

// CheckInvariants 檢查所有層的鏈結、排序與垂直對應是否正確。
// 回傳的錯誤代表實作本身有缺陷。
func (sl *SkipList[K, V]) CheckInvariants() error {
	left, right := sl.begin, sl.end
	var lowerRow map[ref]bool
	total := 0

	for level := 0; level < sl.height; level++ {
		l, r := sl.n(left), sl.n(right)
		if !l.sentinel || !r.sentinel {
			return errors.AssertionFailedf("level %d: boundary is not a sentinel pair", level)
		}

		row := make(map[ref]bool)
		count := 0
		prev := left
		first := true
		var last K
		for cur := l.next; cur != right; cur = sl.n(cur).next {
			if cur == nilRef {
				return errors.AssertionFailedf("level %d: row ends before right sentinel", level)
			}
			nd := sl.n(cur)
			if nd.sentinel {
				return errors.AssertionFailedf("level %d: sentinel inside row", level)
			}
			if nd.prev != prev {
				return errors.AssertionFailedf("level %d: key %v has broken prev link", level, nd.key)
			}
			if !first && !(last < nd.key) {
				return errors.AssertionFailedf("level %d: key %v not above %v", level, nd.key, last)
			}
			if level == 0 {
				if nd.below != nilRef {
					return errors.AssertionFailedf("level 0: key %v has a node below", nd.key)
				}
			} else {
				if nd.below == nilRef || !lowerRow[nd.below] {
					return errors.AssertionFailedf("level %d: key %v has no projection below", level, nd.key)
				}
				below := sl.n(nd.below)
				if below.key != nd.key || below.above != cur {
					return errors.AssertionFailedf("level %d: key %v is linked to a different key below", level, nd.key)
				}
			}
			if nd.above != nilRef && sl.n(nd.above).below != cur {
				return errors.AssertionFailedf("level %d: key %v has a one-way above link", level, nd.key)
			}
			row[cur] = true
			last, first = nd.key, false
			prev = cur
			count++
		}
		total += count
		if r.prev != prev {
			return errors.AssertionFailedf("level %d: right sentinel has broken prev link", level)
		}
		if level == 0 && count != sl.size {
			return errors.AssertionFailedf("size %d does not match %d keys on level 0", sl.size, count)
		}
		if level > 0 && level == sl.height-1 && count == 0 {
			return errors.AssertionFailedf("top level %d is empty", level)
		}

		if level == sl.height-1 {
			if left != sl.top || right != sl.topEnd {
				return errors.AssertionFailedf("level %d: top sentinels out of sync", level)
			}
			if l.above != nilRef || r.above != nilRef {
				return errors.AssertionFailedf("top sentinels have a level above")
			}
			break
		}
		upLeft, upRight := l.above, r.above
		if upLeft == nilRef || upRight == nilRef ||
			sl.n(upLeft).below != left || sl.n(upRight).below != right {
			return errors.AssertionFailedf("level %d: sentinel pair not linked to level above", level)
		}
		left, right = upLeft, upRight
		lowerRow = row
	}

	// 每個存活節點都必須出現在某一層上
	if live := sl.arena.live(); live != 2*sl.height+total {
		return errors.AssertionFailedf("arena holds %d nodes, structure links %d", live, 2*sl.height+total)
	}
	return nil
}

func (sl *SkipList[K, V]) mustHold() {
	if err := sl.CheckInvariants(); err != nil {
		panic(err)
	}
}
