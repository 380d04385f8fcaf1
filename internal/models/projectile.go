// projectile.go

package models

// Owner 投射物归属
type Owner string

const (
	OwnerPlayer Owner = "player"
	OwnerEnemy  Owner = "enemy"
)

// WeaponPattern 投射物的武器形态
type WeaponPattern string

const (
	PatternSingle WeaponPattern = "single"
	PatternTriple WeaponPattern = "triple"
	PatternBeam   WeaponPattern = "beam"
	PatternWave   WeaponPattern = "wave"
	PatternBurst  WeaponPattern = "burst"
)

// ProjectileEntity 投射物
type ProjectileEntity struct {
	BaseEntity
	Owner   Owner         `json:"owner"`
	Pattern WeaponPattern `json:"pattern"`
	Damage  float64       `json:"damage"`
	Motion  Motion        `json:"-"`
	// HitEntities 穿透弹已命中的敌机，同一目标只结算一次
	HitEntities []string `json:"-"`
}

// Piercing 波动弹可穿透多个目标
func (p *ProjectileEntity) Piercing() bool {
	return p.Pattern == PatternWave
}

// HasHit 是否已命中过该实体
func (p *ProjectileEntity) HasHit(id string) bool {
	for _, h := range p.HitEntities {
		if h == id {
			return true
		}
	}
	return false
}

// EffectKind 道具效果类型
type EffectKind string

const (
	// EffectStatBoost 带时限的属性倍率
	EffectStatBoost EffectKind = "stat_boost"
	// EffectArmor 立即增加护甲
	EffectArmor EffectKind = "armor"
	// EffectWeaponChange 带时限的武器替换
	EffectWeaponChange EffectKind = "weapon_change"
	// EffectLevelUp 永久火力/射速等级
	EffectLevelUp EffectKind = "level_up"
)

// PowerUpEntity 掉落道具
type PowerUpEntity struct {
	BaseEntity
	Type      string     `json:"type"`
	Effect    EffectKind `json:"effect"`
	Velocity  Vector2D   `json:"velocity"`
	ExpiresAt float64    `json:"expires_at"`
}

// ParticleEntity 纯表现用粒子
type ParticleEntity struct {
	BaseEntity
	Velocity Vector2D `json:"velocity"`
	Life     float64  `json:"life"`
	MaxLife  float64  `json:"max_life"`
	Color    string   `json:"color"`
}
