// player.go

package models

// ModifierStat 可被道具临时修改的属性
type ModifierStat string

const (
	StatDamage   ModifierStat = "damage"
	StatSpeed    ModifierStat = "speed"
	StatFireRate ModifierStat = "fire_rate"
)

// Modifier 临时属性倍率，now >= ExpiresAt 时失效
type Modifier struct {
	Multiplier float64 `json:"multiplier"`
	ExpiresAt  float64 `json:"expires_at"`
}

// WeaponOverride 临时武器覆盖
type WeaponOverride struct {
	Weapon    string  `json:"weapon"`
	ExpiresAt float64 `json:"expires_at"`
}

// Loadout 出战前已解锁技能带来的永久加成，值为百分比增量
type Loadout struct {
	Skills          []string `json:"skills,omitempty"`
	Damage          float64  `json:"damage"`
	FireRate        float64  `json:"fire_rate"`
	Speed           float64  `json:"speed"`
	Health          float64  `json:"health"`
	Armor           float64  `json:"armor"`
	DropRate        float64  `json:"drop_rate"`
	ScoreMultiplier float64  `json:"score_multiplier"`
	DodgeChance     float64  `json:"dodge_chance"`
}

// PlayerEntity 玩家战机，每个会话唯一
type PlayerEntity struct {
	BaseEntity

	Ship   string `json:"ship"`
	Weapon string `json:"weapon"` // 默认武器

	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	Armor     float64 `json:"armor"`
	MaxArmor  float64 `json:"max_armor"`
	Speed     float64 `json:"speed"`

	// 战机基础火力
	FireInterval float64 `json:"fire_interval"` // ms
	BulletSpeed  float64 `json:"bullet_speed"`
	BulletDamage float64 `json:"bullet_damage"`
	LastFired    float64 `json:"-"`

	Modifiers map[ModifierStat]Modifier `json:"modifiers,omitempty"`
	Override  *WeaponOverride           `json:"override,omitempty"`

	// 永久等级强化（power/rate 道具）
	PowerLevel int `json:"power_level"`
	RateLevel  int `json:"rate_level"`

	Combo          int     `json:"combo"`
	ComboExpiresAt float64 `json:"combo_expires_at"`

	Form  int `json:"form"`
	Kills int `json:"kills"`

	Awakened      bool    `json:"awakened"`
	AwakenedUntil float64 `json:"awakened_until"`

	SpecialCooldown float64 `json:"special_cooldown"` // 剩余冷却 ms

	Loadout Loadout `json:"loadout"`
}

// ActiveWeapon 当前生效的武器
func (p *PlayerEntity) ActiveWeapon() string {
	if p.Override != nil {
		return p.Override.Weapon
	}
	return p.Weapon
}

// Multiplier 获取某属性当前倍率，没有修正时为 1.0
func (p *PlayerEntity) Multiplier(stat ModifierStat) float64 {
	if m, ok := p.Modifiers[stat]; ok {
		return m.Multiplier
	}
	return 1.0
}

// TakeDamage 护甲优先吸收伤害，溢出部分扣除生命值，返回实际扣除的生命值
func (p *PlayerEntity) TakeDamage(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if p.Armor > 0 {
		absorbed := amount
		if absorbed > p.Armor {
			absorbed = p.Armor
		}
		p.Armor -= absorbed
		amount -= absorbed
	}
	before := p.Health
	p.Health = clamp(p.Health-amount, 0, p.MaxHealth)
	return before - p.Health
}

// Heal 恢复生命值，不超过上限
func (p *PlayerEntity) Heal(amount float64) {
	p.Health = clamp(p.Health+amount, 0, p.MaxHealth)
}

// AddArmor 增加护甲，不超过上限
func (p *PlayerEntity) AddArmor(amount float64) {
	p.Armor = clamp(p.Armor+amount, 0, p.MaxArmor)
}

// IsDead 生命值归零
func (p *PlayerEntity) IsDead() bool {
	return p.Health <= 0
}

// Clone 深拷贝
func (p *PlayerEntity) Clone() *PlayerEntity {
	c := *p
	c.Modifiers = make(map[ModifierStat]Modifier, len(p.Modifiers))
	for k, v := range p.Modifiers {
		c.Modifiers[k] = v
	}
	if p.Override != nil {
		o := *p.Override
		c.Override = &o
	}
	c.Loadout.Skills = append([]string(nil), p.Loadout.Skills...)
	return &c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
