package skiplist

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hakuto4838/skipvault/container"
)

func TestSkipListInterface(t *testing.T) {
	var _ container.Map[int64, string] = (*SkipList[int64, string])(nil)
	var _ container.Analyable[int64] = (*SkipList[int64, string])(nil)
}

// sequenceCoin 依序回傳 flips，用完後一律不升層
func sequenceCoin(flips ...bool) func() bool {
	i := 0
	return func() bool {
		if i >= len(flips) {
			return false
		}
		f := flips[i]
		i++
		return f
	}
}

func TestSkipListBasic(t *testing.T) {
	sl := New[int, string](42)
	for _, k := range []int{10, 5, 20, 1, 15} {
		_, replaced, err := sl.Put(k, "v")
		require.NoError(t, err)
		require.False(t, replaced)
	}
	require.Equal(t, []int{1, 5, 10, 15, 20}, sl.Keys())

	v, ok, err := sl.Remove(5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
	require.Equal(t, []int{1, 10, 15, 20}, sl.Keys())
	require.Equal(t, 4, sl.Size())
	require.NoError(t, sl.CheckInvariants())
}

func TestSkipListEmpty(t *testing.T) {
	sl := New[string, int](1)
	require.True(t, sl.IsEmpty())
	require.Empty(t, sl.Keys())

	_, ok, err := sl.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = sl.Remove("missing")
	require.NoError(t, err)
	require.False(t, ok)

	found, err := sl.ContainsKey("missing")
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, 1, sl.Height())
}

func TestSkipListRoundTrip(t *testing.T) {
	sl := New[int64, float64](7)
	for i := int64(0); i < 200; i++ {
		_, _, err := sl.Put(i*3, float64(i))
		require.NoError(t, err)
	}
	for i := int64(0); i < 200; i++ {
		v, ok, err := sl.Get(i * 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, float64(i), v)

		_, ok, _ = sl.Get(i*3 + 1)
		require.False(t, ok)
	}

	for i := int64(0); i < 200; i += 2 {
		v, ok, err := sl.Remove(i * 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, float64(i), v)

		_, ok, _ = sl.Get(i * 3)
		require.False(t, ok)
		found, _ := sl.ContainsKey(i * 3)
		require.False(t, found)
	}
	require.Equal(t, 100, sl.Size())
	require.NoError(t, sl.CheckInvariants())
}

func TestSkipListUpdate(t *testing.T) {
	// 強制 key 2 升到第 2 層，確保所有投影都被更新
	sl := NewWithCoin[int, string](sequenceCoin(false, true, true, false))
	_, _, _ = sl.Put(1, "a")
	_, _, _ = sl.Put(2, "b")
	require.Equal(t, 3, sl.Height())

	old, replaced, err := sl.Put(2, "c")
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, "b", old)
	require.Equal(t, 2, sl.Size())
	require.Equal(t, 3, sl.Height())

	v, ok, _ := sl.Get(2)
	require.True(t, ok)
	require.Equal(t, "c", v)

	// 移除時回傳的是第 0 層的 value
	v, ok, _ = sl.Remove(2)
	require.True(t, ok)
	require.Equal(t, "c", v)
	require.Equal(t, 1, sl.Height())
	require.NoError(t, sl.CheckInvariants())
}

func TestSkipListPromotionLevels(t *testing.T) {
	sl := NewWithCoin[int, int](sequenceCoin(
		true, true, false, // 10 -> 第 2 層
		false,       // 5 -> 第 0 層
		true, false, // 20 -> 第 1 層
	))
	for _, k := range []int{10, 5, 20} {
		_, _, err := sl.Put(k, k)
		require.NoError(t, err)
	}
	require.Equal(t, 3, sl.Height())
	require.Equal(t, []int{5, 10, 20}, sl.LevelKeys(0))
	require.Equal(t, []int{10, 20}, sl.LevelKeys(1))
	require.Equal(t, []int{10}, sl.LevelKeys(2))
	require.Nil(t, sl.LevelKeys(3))
	require.NoError(t, sl.CheckInvariants())

	// 移除唯一在第 2 層的 key 後最上層被壓縮
	_, _, _ = sl.Remove(10)
	require.Equal(t, 2, sl.Height())
	require.Equal(t, []int{20}, sl.LevelKeys(1))
	require.NoError(t, sl.CheckInvariants())
}

func TestSkipListAlwaysPromoteIsBounded(t *testing.T) {
	sl := NewWithCoin[int, int](func() bool { return true })
	_, _, err := sl.Put(1, 1)
	require.NoError(t, err)
	require.Equal(t, maxLevel, sl.Height())

	_, _, err = sl.Put(2, 2)
	require.NoError(t, err)
	require.Equal(t, maxLevel, sl.Height())
	require.NoError(t, sl.CheckInvariants())
}

func TestSkipListRemoveAllPrunes(t *testing.T) {
	sl := New[int, int](99)
	r := rand.New(rand.NewSource(3))
	keys := r.Perm(500)
	for _, k := range keys {
		_, _, err := sl.Put(k, k*k)
		require.NoError(t, err)
	}
	require.Greater(t, sl.Height(), 1)
	require.NoError(t, sl.CheckInvariants())

	r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for i, k := range keys {
		v, ok, err := sl.Remove(k)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, k*k, v)
		if i%50 == 0 {
			require.NoError(t, sl.CheckInvariants())
		}
	}
	require.Equal(t, 0, sl.Size())
	require.Equal(t, 1, sl.Height())
	require.Equal(t, 2, sl.arena.live())
	require.NoError(t, sl.CheckInvariants())
}

func TestSkipListOrderingAgainstMap(t *testing.T) {
	sl := New[int, int](2024)
	oracle := map[int]int{}
	r := rand.New(rand.NewSource(11))

	for i := 0; i < 5000; i++ {
		k := r.Intn(300)
		switch r.Intn(3) {
		case 0, 1:
			prev, replaced, err := sl.Put(k, i)
			require.NoError(t, err)
			want, existed := oracle[k]
			require.Equal(t, existed, replaced)
			if existed {
				require.Equal(t, want, prev)
			}
			oracle[k] = i
		case 2:
			v, ok, err := sl.Remove(k)
			require.NoError(t, err)
			want, existed := oracle[k]
			require.Equal(t, existed, ok)
			if existed {
				require.Equal(t, want, v)
			}
			delete(oracle, k)
		}
	}

	want := make([]int, 0, len(oracle))
	for k := range oracle {
		want = append(want, k)
	}
	sort.Ints(want)
	require.Equal(t, want, sl.Keys())
	require.Equal(t, len(oracle), sl.Size())
	require.NoError(t, sl.CheckInvariants())

	for k, v := range sl.All() {
		assert.Equal(t, oracle[k], v)
	}
}

func TestSkipListSeededOnce(t *testing.T) {
	// 同一個 seed 產生相同結構
	a := New[int, int](5)
	b := New[int, int](5)
	for i := 0; i < 1000; i++ {
		_, _, _ = a.Put(i, i)
		_, _, _ = b.Put(i, i)
	}
	require.Equal(t, a.Height(), b.Height())
	for level := 0; level < a.Height(); level++ {
		require.Equal(t, a.LevelKeys(level), b.LevelKeys(level))
	}

	// 亂數來源不會在每次插入時重設，因此各 key 的高度不同
	promoted := len(a.LevelKeys(1))
	require.Greater(t, promoted, 300)
	require.Less(t, promoted, 700)
	require.Greater(t, a.Height(), 5)
}

func TestSkipListAllStopsEarly(t *testing.T) {
	sl := New[int, int](1)
	for i := 0; i < 10; i++ {
		_, _, _ = sl.Put(i, i)
	}
	var seen []int
	for k := range sl.All() {
		if k == 3 {
			break
		}
		seen = append(seen, k)
	}
	require.Equal(t, []int{0, 1, 2}, seen)
}

func TestSkipListInvalidKey(t *testing.T) {
	sl := New[float64, int](1)
	nan := math.NaN()

	_, _, err := sl.Put(nan, 1)
	require.True(t, errors.Is(err, container.ErrInvalidArgument))
	_, _, err = sl.Get(nan)
	require.True(t, errors.Is(err, container.ErrInvalidArgument))
	_, _, err = sl.Remove(nan)
	require.True(t, errors.Is(err, container.ErrInvalidArgument))
	_, err = sl.ContainsKey(nan)
	require.True(t, errors.Is(err, container.ErrInvalidArgument))
	require.Equal(t, 0, sl.Size())
}

func TestSkipListSearchSteps(t *testing.T) {
	sl := NewWithCoin[int, int](sequenceCoin())
	for i := 1; i <= 5; i++ {
		_, _, _ = sl.Put(i, i)
	}
	// 只有一層時為線性搜尋
	require.Equal(t, 1, sl.SearchSteps(1))
	require.Equal(t, 5, sl.SearchSteps(5))
}

func TestSkipListCheckDetectsCorruption(t *testing.T) {
	sl := New[int, int](1)
	for i := 0; i < 20; i++ {
		_, _, _ = sl.Put(i, i)
	}
	sl.size++
	require.Error(t, sl.CheckInvariants())
	sl.size--
	require.NoError(t, sl.CheckInvariants())

	first := sl.n(sl.begin).next
	sl.n(first).key = 100
	require.Error(t, sl.CheckInvariants())
}
