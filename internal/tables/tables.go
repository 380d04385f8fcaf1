// tables.go

package tables

import (
	"errors"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// 查表失败的哨兵错误
var (
	ErrUnknownShip    = errors.New("未知的战机")
	ErrUnknownEnemy   = errors.New("未知的敌机类型")
	ErrUnknownWeapon  = errors.New("未知的武器")
	ErrUnknownPowerUp = errors.New("未知的道具")
	ErrUnknownWave    = errors.New("未知的波次")
	ErrUnknownLevel   = errors.New("未知的关卡")
	ErrUnknownSkill   = errors.New("未知的技能")
	ErrMissingPrereq  = errors.New("前置技能未解锁")
)

// NoDrop 掉落表中表示不掉落的条目
const NoDrop = "none"

// DefaultEvolution 没有专属进化配置的战机使用的键
const DefaultEvolution = "default"

// Tables 运行时只读的静态数值表
type Tables struct {
	Playfield   Playfield                   `yaml:"playfield"`
	Rules       Rules                       `yaml:"rules"`
	DefaultShip string                      `yaml:"defaultShip"`
	Ships       map[string]ShipConfig       `yaml:"ships"`
	Enemies     map[string]EnemyConfig      `yaml:"enemies"`
	Weapons     map[string]WeaponConfig     `yaml:"weapons"`
	PowerUps    map[string]PowerUpConfig    `yaml:"powerUps"`
	Drops       []DropEntry                 `yaml:"drops"`
	Waves       map[string]WavePattern      `yaml:"waves"`
	Levels      []LevelConfig               `yaml:"levels"`
	Evolutions  map[string][]EvolutionStage `yaml:"evolutions"`
	Skills      map[string]SkillNode        `yaml:"skills"`
}

// Playfield 场地尺寸
type Playfield struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Margin 越界判定时场地向外扩展的距离
	Margin float64 `yaml:"margin"`
}

// Bounds 场地矩形
func (p Playfield) Bounds() models.Rect {
	return models.Rect{Width: p.Width, Height: p.Height}
}

// Rules 战斗规则常量，时间单位均为毫秒，速度单位为 px/s
type Rules struct {
	ComboMax     int     `yaml:"comboMax"`
	ComboTimeout float64 `yaml:"comboTimeout"`

	AwakeningComboTrigger   int     `yaml:"awakeningComboTrigger"`
	AwakeningDuration       float64 `yaml:"awakeningDuration"`
	AwakeningDamageFactor   float64 `yaml:"awakeningDamageFactor"`
	AwakeningFireRateFactor float64 `yaml:"awakeningFireRateFactor"`

	SpecialCooldown float64 `yaml:"specialCooldown"`
	SpecialDamage   float64 `yaml:"specialDamage"`

	CollisionDamage   float64 `yaml:"collisionDamage"`
	BodyCounterDamage float64 `yaml:"bodyCounterDamage"`
	BossCounterDamage float64 `yaml:"bossCounterDamage"`

	MaxForm       int     `yaml:"maxForm"`
	EvolutionHeal float64 `yaml:"evolutionHeal"`

	BossType            string  `yaml:"bossType"`
	BossSpawnScore      int64   `yaml:"bossSpawnScore"`
	BossHealthGrowth    float64 `yaml:"bossHealthGrowth"`
	BossSettleY         float64 `yaml:"bossSettleY"`
	BossHorizontalSpeed float64 `yaml:"bossHorizontalSpeed"`
	BossFanStep         float64 `yaml:"bossFanStep"`

	FirstWaveDelay         float64 `yaml:"firstWaveDelay"`
	FormationPause         float64 `yaml:"formationPause"`
	FormationTweenDuration float64 `yaml:"formationTweenDuration"`
	FormationFireStagger   float64 `yaml:"formationFireStagger"`
	LevelTransitionDelay   float64 `yaml:"levelTransitionDelay"`
	LoopDifficultyGrowth   float64 `yaml:"loopDifficultyGrowth"`

	SwirlDuration float64 `yaml:"swirlDuration"`
	SwirlOffsetX  float64 `yaml:"swirlOffsetX"`
	SwirlTargetY  float64 `yaml:"swirlTargetY"`

	EnemySineRate      float64 `yaml:"enemySineRate"`
	EnemySineAmplitude float64 `yaml:"enemySineAmplitude"`
	ZigzagRate         float64 `yaml:"zigzagRate"`
	ZigzagAmplitude    float64 `yaml:"zigzagAmplitude"`
	WaveShotRate       float64 `yaml:"waveShotRate"`
	WaveShotAmplitude  float64 `yaml:"waveShotAmplitude"`

	PowerUpSize      models.Size `yaml:"powerUpSize"`
	PowerUpFallSpeed float64     `yaml:"powerUpFallSpeed"`
	PowerUpLifetime  float64     `yaml:"powerUpLifetime"`

	PlayerShotSize   models.Size `yaml:"playerShotSize"`
	EnemyShotSize    models.Size `yaml:"enemyShotSize"`
	LaneSpacing      float64     `yaml:"laneSpacing"`
	MinFireInterval  float64     `yaml:"minFireInterval"`
	PowerLevelDamage float64     `yaml:"powerLevelDamage"`
	RateLevelBonus   float64     `yaml:"rateLevelBonus"`
	MaxStatLevel     int         `yaml:"maxStatLevel"`

	WeaponChoices []string `yaml:"weaponChoices"`
}

// ShipConfig 战机配置
type ShipConfig struct {
	Name         string      `yaml:"name" json:"name"`
	Description  string      `yaml:"description" json:"description"`
	MaxHealth    float64     `yaml:"maxHealth" json:"max_health"`
	MaxArmor     float64     `yaml:"maxArmor" json:"max_armor"`
	Speed        float64     `yaml:"speed" json:"speed"`
	FireRate     float64     `yaml:"fireRate" json:"fire_rate"`
	BulletSpeed  float64     `yaml:"bulletSpeed" json:"bullet_speed"`
	BulletDamage float64     `yaml:"bulletDamage" json:"bullet_damage"`
	Size         models.Size `yaml:"size" json:"size"`
	Weapon       string      `yaml:"weapon" json:"weapon"`
}

// EnemyConfig 敌机配置
type EnemyConfig struct {
	Name       string            `yaml:"name"`
	Class      models.EnemyClass `yaml:"class"`
	Health     float64           `yaml:"health"`
	Speed      float64           `yaml:"speed"`
	ScoreValue int               `yaml:"scoreValue"`
	Size       models.Size       `yaml:"size"`
	// FireRate 为 0 表示不开火
	FireRate     float64 `yaml:"fireRate"`
	BulletSpeed  float64 `yaml:"bulletSpeed"`
	BulletDamage float64 `yaml:"bulletDamage"`
}

// WeaponConfig 武器配置，数值均为相对战机基础值的倍率
type WeaponConfig struct {
	Name        string               `yaml:"name"`
	Pattern     models.WeaponPattern `yaml:"pattern"`
	FireRate    float64              `yaml:"fireRate"`
	Damage      float64              `yaml:"damage"`
	BulletSpeed float64              `yaml:"bulletSpeed"`
	BulletCount int                  `yaml:"bulletCount"`
	Spread      float64              `yaml:"spread"` // 度
}

// PowerUpConfig 道具配置
type PowerUpConfig struct {
	Name       string              `yaml:"name"`
	Effect     models.EffectKind   `yaml:"effect"`
	Stat       models.ModifierStat `yaml:"stat"`
	Multiplier float64             `yaml:"multiplier"`
	Value      float64             `yaml:"value"`
	Duration   float64             `yaml:"duration"`
}

// DropEntry 掉落权重
type DropEntry struct {
	Type   string `yaml:"type"`
	Weight int    `yaml:"weight"`
}

// EntryPattern 入场运动规则
type EntryPattern string

const (
	EntrySwirlLeft    EntryPattern = "swirl_left"
	EntrySwirlRight   EntryPattern = "swirl_right"
	EntryStraightDown EntryPattern = "straight_down"
	EntryZigzag       EntryPattern = "zigzag"
	EntrySineWave     EntryPattern = "sine_wave"
)

// FormationShape 编队形状
type FormationShape string

const (
	ShapeLineHorizontal FormationShape = "line_horizontal"
	ShapeLineVertical   FormationShape = "line_vertical"
	ShapeV              FormationShape = "v_formation"
	ShapeCircle         FormationShape = "circle"
	ShapeSquare         FormationShape = "square"
	ShapeDiamond        FormationShape = "diamond"
	ShapeStaggered      FormationShape = "staggered"
	ShapeScattered      FormationShape = "scattered"
)

// EnemyCount 波次构成
type EnemyCount struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// SideEntry 单侧入场配置
type SideEntry struct {
	Pattern EntryPattern `yaml:"pattern"`
	Count   int          `yaml:"count"`
}

// EntrySpec 左右两侧的入场配置
type EntrySpec struct {
	Left  SideEntry `yaml:"left"`
	Right SideEntry `yaml:"right"`
}

// FormationSpec 编队配置
type FormationSpec struct {
	Type      FormationShape `yaml:"type"`
	YPosition float64        `yaml:"yPosition"` // 屏幕高度比例
	Spacing   float64        `yaml:"spacing"`
	// Duration 为 0 表示保持到全部被消灭
	Duration float64 `yaml:"duration"`
}

// ScriptedSpawn 脚本波次中的单个敌机
type ScriptedSpawn struct {
	Type string `yaml:"type"`
	// X 为场地宽度比例，负数表示出生时随机
	X     float64 `yaml:"x"`
	Delay float64 `yaml:"delay"`
}

// WavePattern 波次定义
type WavePattern struct {
	Name       string          `yaml:"name"`
	Enemies    []EnemyCount    `yaml:"enemies"`
	Entry      EntrySpec       `yaml:"entry"`
	Formation  FormationSpec   `yaml:"formation"`
	SpawnDelay float64         `yaml:"spawnDelay"`
	WaveDelay  float64         `yaml:"waveDelay"`
	Script     []ScriptedSpawn `yaml:"script"`
}

// Scripted 是否为脚本波次
func (w *WavePattern) Scripted() bool {
	return len(w.Script) > 0
}

// Total 波次敌机总数
func (w *WavePattern) Total() int {
	if w.Scripted() {
		return len(w.Script)
	}
	n := 0
	for _, e := range w.Enemies {
		n += e.Count
	}
	return n
}

// LevelConfig 关卡配置
type LevelConfig struct {
	ID                   int      `yaml:"id"`
	Name                 string   `yaml:"name"`
	Waves                []string `yaml:"waves"`
	DifficultyMultiplier float64  `yaml:"difficultyMultiplier"`
	WaveDelay            float64  `yaml:"waveDelay"`
}

// Requirements 进化条件，零值表示不要求
type Requirements struct {
	Score int64 `yaml:"score"`
	Kills int   `yaml:"kills"`
	Level int   `yaml:"level"`
}

// StatBoosts 进化后的属性倍率
type StatBoosts struct {
	Health   float64 `yaml:"health"`
	Armor    float64 `yaml:"armor"`
	Speed    float64 `yaml:"speed"`
	FireRate float64 `yaml:"fireRate"`
	Damage   float64 `yaml:"damage"`
}

// EvolutionStage 进化阶段，Form 为达到后的形态
type EvolutionStage struct {
	Form         int          `yaml:"form"`
	Name         string       `yaml:"name"`
	Requirements Requirements `yaml:"requirements"`
	Boosts       StatBoosts   `yaml:"boosts"`
}

// Met 所有设置了的条件都满足
func (r Requirements) Met(score int64, kills, level int) bool {
	return score >= r.Score && kills >= r.Kills && level >= r.Level
}

// SkillEffect 技能效果
type SkillEffect struct {
	Stat  string  `yaml:"stat"`
	Value float64 `yaml:"value"`
}

// SkillNode 技能树节点
type SkillNode struct {
	Name          string        `yaml:"name" json:"name"`
	Branch        string        `yaml:"branch" json:"branch"`
	Type          string        `yaml:"type" json:"type"`
	Cost          int           `yaml:"cost" json:"cost"`
	Prerequisites []string      `yaml:"prerequisites" json:"prerequisites"`
	Effects       []SkillEffect `yaml:"effects" json:"-"`
}
