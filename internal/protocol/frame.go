package protocol

import (
	"github.com/jacl-coder/AstralSaints-Server/internal/battle"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// PlayerView 玩家状态快照
type PlayerView struct {
	ID              string                          `json:"id" msgpack:"id"`
	Ship            string                          `json:"ship" msgpack:"ship"`
	Weapon          string                          `json:"weapon" msgpack:"weapon"`
	X               float64                         `json:"x" msgpack:"x"`
	Y               float64                         `json:"y" msgpack:"y"`
	Width           float64                         `json:"width" msgpack:"w"`
	Height          float64                         `json:"height" msgpack:"h"`
	Health          float64                         `json:"health" msgpack:"hp"`
	MaxHealth       float64                         `json:"max_health" msgpack:"mhp"`
	Armor           float64                         `json:"armor" msgpack:"ar"`
	MaxArmor        float64                         `json:"max_armor" msgpack:"mar"`
	Combo           int                             `json:"combo" msgpack:"combo"`
	Form            int                             `json:"form" msgpack:"form"`
	Kills           int                             `json:"kills" msgpack:"kills"`
	PowerLevel      int                             `json:"power_level" msgpack:"pl"`
	RateLevel       int                             `json:"rate_level" msgpack:"rl"`
	Awakened        bool                            `json:"awakened" msgpack:"awk"`
	SpecialCooldown float64                         `json:"special_cooldown" msgpack:"sp"`
	Modifiers       map[models.ModifierStat]float64 `json:"modifiers,omitempty" msgpack:"mod,omitempty"`
}

// EnemyView 敌机快照
type EnemyView struct {
	ID          string  `json:"id" msgpack:"id"`
	Type        string  `json:"type" msgpack:"t"`
	X           float64 `json:"x" msgpack:"x"`
	Y           float64 `json:"y" msgpack:"y"`
	Width       float64 `json:"width" msgpack:"w"`
	Height      float64 `json:"height" msgpack:"h"`
	Health      float64 `json:"health" msgpack:"hp"`
	MaxHealth   float64 `json:"max_health" msgpack:"mhp"`
	Boss        bool    `json:"boss,omitempty" msgpack:"boss,omitempty"`
	InFormation bool    `json:"in_formation,omitempty" msgpack:"f,omitempty"`
}

// ProjectileView 投射物快照
type ProjectileView struct {
	ID      string               `json:"id" msgpack:"id"`
	Owner   models.Owner         `json:"owner" msgpack:"o"`
	Pattern models.WeaponPattern `json:"pattern" msgpack:"p"`
	X       float64              `json:"x" msgpack:"x"`
	Y       float64              `json:"y" msgpack:"y"`
	Width   float64              `json:"width" msgpack:"w"`
	Height  float64              `json:"height" msgpack:"h"`
}

// PowerUpView 道具快照
type PowerUpView struct {
	ID   string  `json:"id" msgpack:"id"`
	Type string  `json:"type" msgpack:"t"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
}

// ParticleView 粒子快照，Alpha 为剩余寿命比例
type ParticleView struct {
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Alpha float64 `json:"alpha" msgpack:"a"`
	Color string  `json:"color" msgpack:"c"`
}

// Frame 每帧推送给渲染端的只读快照
type Frame struct {
	Tick       int64   `json:"tick" msgpack:"tick"`
	Time       float64 `json:"time" msgpack:"time"`
	Score      int64   `json:"score" msgpack:"score"`
	BossActive bool    `json:"boss_active" msgpack:"boss"`
	Level      int     `json:"level" msgpack:"lvl"`
	Loop       int     `json:"loop" msgpack:"loop"`
	Wave       string  `json:"wave" msgpack:"wave"`
	Phase      string  `json:"phase" msgpack:"phase"`
	Over       bool    `json:"over" msgpack:"over"`

	Player      PlayerView       `json:"player" msgpack:"player"`
	Enemies     []EnemyView      `json:"enemies" msgpack:"enemies"`
	Projectiles []ProjectileView `json:"projectiles" msgpack:"proj"`
	PowerUps    []PowerUpView    `json:"powerups" msgpack:"pu"`
	Particles   []ParticleView   `json:"particles" msgpack:"fx"`
	Events      []battle.Event   `json:"events,omitempty" msgpack:"ev,omitempty"`
}

// ConvertPlayer 将玩家实体转换为快照
func ConvertPlayer(p *models.PlayerEntity) PlayerView {
	view := PlayerView{
		ID:              p.ID,
		Ship:            p.Ship,
		Weapon:          p.ActiveWeapon(),
		X:               p.Position.X,
		Y:               p.Position.Y,
		Width:           p.Size.Width,
		Height:          p.Size.Height,
		Health:          p.Health,
		MaxHealth:       p.MaxHealth,
		Armor:           p.Armor,
		MaxArmor:        p.MaxArmor,
		Combo:           p.Combo,
		Form:            p.Form,
		Kills:           p.Kills,
		PowerLevel:      p.PowerLevel,
		RateLevel:       p.RateLevel,
		Awakened:        p.Awakened,
		SpecialCooldown: p.SpecialCooldown,
	}
	if len(p.Modifiers) > 0 {
		view.Modifiers = make(map[models.ModifierStat]float64, len(p.Modifiers))
		for stat, m := range p.Modifiers {
			view.Modifiers[stat] = m.Multiplier
		}
	}
	return view
}

// ConvertEnemy 将敌机实体转换为快照
func ConvertEnemy(e *models.EnemyEntity) EnemyView {
	return EnemyView{
		ID:          e.ID,
		Type:        e.Type,
		X:           e.Position.X,
		Y:           e.Position.Y,
		Width:       e.Size.Width,
		Height:      e.Size.Height,
		Health:      e.Health,
		MaxHealth:   e.MaxHealth,
		Boss:        e.IsBoss(),
		InFormation: e.InFormation,
	}
}

// ConvertWorld 将世界状态转换为帧快照。尚未到出生时间的敌机不下发
func ConvertWorld(w *battle.World, events []battle.Event) *Frame {
	f := &Frame{
		Tick:        w.Tick,
		Time:        w.Now,
		Score:       w.Score,
		BossActive:  w.BossActive,
		Level:       w.Scheduler.Level,
		Loop:        w.Scheduler.Loop,
		Wave:        w.Scheduler.WaveID,
		Phase:       string(w.Scheduler.Phase),
		Over:        w.Over,
		Player:      ConvertPlayer(w.Player),
		Enemies:     make([]EnemyView, 0, len(w.Enemies)),
		Projectiles: make([]ProjectileView, 0, len(w.Projectiles)),
		PowerUps:    make([]PowerUpView, 0, len(w.PowerUps)),
		Particles:   make([]ParticleView, 0, len(w.Particles)),
		Events:      events,
	}

	for i := range w.Enemies {
		if w.Enemies[i].Active(w.Now) {
			f.Enemies = append(f.Enemies, ConvertEnemy(&w.Enemies[i]))
		}
	}
	for _, p := range w.Projectiles {
		f.Projectiles = append(f.Projectiles, ProjectileView{
			ID:      p.ID,
			Owner:   p.Owner,
			Pattern: p.Pattern,
			X:       p.Position.X,
			Y:       p.Position.Y,
			Width:   p.Size.Width,
			Height:  p.Size.Height,
		})
	}
	for _, u := range w.PowerUps {
		f.PowerUps = append(f.PowerUps, PowerUpView{ID: u.ID, Type: u.Type, X: u.Position.X, Y: u.Position.Y})
	}
	for _, p := range w.Particles {
		alpha := 0.0
		if p.MaxLife > 0 {
			alpha = p.Life / p.MaxLife
		}
		f.Particles = append(f.Particles, ParticleView{X: p.Position.X, Y: p.Position.Y, Alpha: alpha, Color: p.Color})
	}
	return f
}
