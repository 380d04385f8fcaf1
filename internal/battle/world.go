// world.go

package battle

import (
	"strconv"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// Input 每帧的输入快照，按住为 true
type Input struct {
	Up      bool `json:"up" msgpack:"up"`
	Down    bool `json:"down" msgpack:"down"`
	Left    bool `json:"left" msgpack:"left"`
	Right   bool `json:"right" msgpack:"right"`
	Special bool `json:"special" msgpack:"special"`
	Awaken  bool `json:"awaken" msgpack:"awaken"`
}

// World 一个会话的完整模拟状态。
// Tick 不会修改传入的 World，读者拿到的快照始终不可变
type World struct {
	Now  float64 // 局内经过时间(毫秒)
	Tick int64

	Player      *models.PlayerEntity
	Enemies     []models.EnemyEntity
	Projectiles []models.ProjectileEntity
	PowerUps    []models.PowerUpEntity
	Particles   []models.ParticleEntity

	Score         int64
	BossActive    bool
	BossClears    int
	NextBossScore int64

	Scheduler SchedulerState
	PrevInput Input

	// Seq 投射物与粒子的自增编号
	Seq uint64

	// Over 玩家生命归零后为 true，此后不再推进
	Over bool
}

// Clone 深拷贝，供下一帧修改
func (w *World) Clone() *World {
	c := *w
	c.Player = w.Player.Clone()
	c.Enemies = append([]models.EnemyEntity(nil), w.Enemies...)
	c.Projectiles = append([]models.ProjectileEntity(nil), w.Projectiles...)
	for i := range c.Projectiles {
		if len(c.Projectiles[i].HitEntities) > 0 {
			c.Projectiles[i].HitEntities = append([]string(nil), c.Projectiles[i].HitEntities...)
		}
	}
	c.PowerUps = append([]models.PowerUpEntity(nil), w.PowerUps...)
	c.Particles = append([]models.ParticleEntity(nil), w.Particles...)
	c.Scheduler = w.Scheduler.clone()
	return &c
}

// ActiveEnemies 已到出生时间的敌机数量
func (w *World) ActiveEnemies() int {
	n := 0
	for i := range w.Enemies {
		if w.Enemies[i].Active(w.Now) {
			n++
		}
	}
	return n
}

// FindEnemy 按ID查找敌机
func (w *World) FindEnemy(id string) (*models.EnemyEntity, bool) {
	for i := range w.Enemies {
		if w.Enemies[i].ID == id {
			return &w.Enemies[i], true
		}
	}
	return nil, false
}

// hasEnemy 敌机是否仍在场上
func (w *World) hasEnemy(id string) bool {
	_, ok := w.FindEnemy(id)
	return ok
}

// Boss 当前的首领
func (w *World) Boss() (*models.EnemyEntity, bool) {
	for i := range w.Enemies {
		if w.Enemies[i].IsBoss() {
			return &w.Enemies[i], true
		}
	}
	return nil, false
}

// nextID 生成局内唯一的短ID
func (w *World) nextID(prefix string) string {
	w.Seq++
	return prefix + strconv.FormatUint(w.Seq, 10)
}
