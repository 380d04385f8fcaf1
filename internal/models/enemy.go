// enemy.go

package models

// EnemyClass 敌机类别
type EnemyClass string

const (
	// ClassLight 轻型高速
	ClassLight EnemyClass = "light"
	// ClassMedium 中型射击
	ClassMedium EnemyClass = "medium"
	// ClassHeavy 重型坦克
	ClassHeavy EnemyClass = "heavy"
	// ClassBoss 首领
	ClassBoss EnemyClass = "boss"
)

// EnemyEntity 敌机
type EnemyEntity struct {
	BaseEntity

	Type       string     `json:"type"`
	Class      EnemyClass `json:"class"`
	Health     float64    `json:"health"`
	MaxHealth  float64    `json:"max_health"`
	ScoreValue int        `json:"score_value"`
	Speed      float64    `json:"speed"`

	// FireRate 为 0 表示不开火
	FireRate     float64 `json:"fire_rate"`
	BulletSpeed  float64 `json:"bullet_speed"`
	BulletDamage float64 `json:"bullet_damage"`
	LastFired    float64 `json:"-"`

	// 到达 SpawnTime 之前实体存在但不参与任何逻辑
	SpawnTime float64 `json:"spawn_time"`

	Formation   *Vector2D `json:"formation,omitempty"`
	InFormation bool      `json:"in_formation"`
	Motion      Motion    `json:"-"`

	// Entered 曾进入过场地，此后离开场地才会被移除
	Entered bool `json:"-"`
	// WaveMember 属于当前波次
	WaveMember bool `json:"-"`
}

// IsBoss 是否为首领
func (e *EnemyEntity) IsBoss() bool {
	return e.Class == ClassBoss
}

// Active 是否已到达出生时间
func (e *EnemyEntity) Active(now float64) bool {
	return now >= e.SpawnTime
}

// TakeDamage 扣除生命值并钳制到 [0, MaxHealth]
func (e *EnemyEntity) TakeDamage(amount float64) {
	e.Health = clamp(e.Health-amount, 0, e.MaxHealth)
}

// IsDead 生命值归零
func (e *EnemyEntity) IsDead() bool {
	return e.Health <= 0
}
