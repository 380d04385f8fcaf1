// rng.go

package battle

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// NewRand 创建带种子的随机数生成器，种子为 0 时取当前时间
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// newEntityID 从会话的随机数生成器取 UUID，同一种子得到同样的ID序列
func newEntityID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// between 返回 [lo, hi) 内的均匀随机数
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// chooseDrop 按权重从掉落表中选择。
// excludeNone 为 true 时排除不掉落条目，bonus 按比例放大其余条目的权重
func chooseDrop(rng *rand.Rand, entries []tables.DropEntry, excludeNone bool, bonus float64) string {
	total := 0.0
	for _, e := range entries {
		total += dropWeight(e, excludeNone, bonus)
	}
	if total <= 0 {
		return tables.NoDrop
	}

	r := rng.Float64() * total
	upto := 0.0
	last := tables.NoDrop
	for _, e := range entries {
		w := dropWeight(e, excludeNone, bonus)
		if w <= 0 {
			continue
		}
		if upto+w > r {
			return e.Type
		}
		upto += w
		last = e.Type
	}
	return last
}

func dropWeight(e tables.DropEntry, excludeNone bool, bonus float64) float64 {
	if e.Type == tables.NoDrop {
		if excludeNone {
			return 0
		}
		return float64(e.Weight)
	}
	return float64(e.Weight) * (1 + bonus)
}
