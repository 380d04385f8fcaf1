// progression.go

package battle

import (
	"math"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// runProgression 成长阶段：时效到期、连击衰减、进化与首领出场
func (s *Simulator) runProgression(f *frame) {
	s.expireEffects(f)
	s.checkEvolution(f)
	s.checkBoss(f)
}

// expireEffects 所有时效均按局内时间比较，now >= ExpiresAt 即失效
func (s *Simulator) expireEffects(f *frame) {
	p := f.w.Player

	for stat, m := range p.Modifiers {
		if f.now >= m.ExpiresAt {
			delete(p.Modifiers, stat)
		}
	}
	if p.Override != nil && f.now >= p.Override.ExpiresAt {
		p.Override = nil
	}

	if p.Awakened && f.now >= p.AwakenedUntil {
		p.Awakened = false
		p.Combo = 0
		f.emit(Event{Kind: EventAwakeningEnded, EntityID: p.ID})
		f.emit(Event{Kind: EventComboChanged, Value: 0})
	}

	if p.Combo > 0 && f.now >= p.ComboExpiresAt {
		p.Combo = 0
		f.emit(Event{Kind: EventComboChanged, Value: 0})
	}

	p.SpecialCooldown = math.Max(0, p.SpecialCooldown-f.dt)
}

// currentLevel 累计关卡数，从 1 开始，通关后继续累加
func (s *Simulator) currentLevel(w *World) int {
	return w.Scheduler.Level + 1 + w.Scheduler.Loop*len(s.tables.Levels)
}

// checkEvolution 每次最多进化一个形态，剩余的留到下一帧
func (s *Simulator) checkEvolution(f *frame) {
	w := f.w
	p := w.Player
	r := s.tables.Rules
	if p.Form >= r.MaxForm {
		return
	}

	stage, ok := s.tables.Evolution(p.Ship, p.Form+1)
	if !ok || !stage.Requirements.Met(w.Score, p.Kills, s.currentLevel(w)) {
		return
	}

	ship, ok := s.tables.Ship(p.Ship)
	if !ok {
		s.Logf("未知的战机 %s，无法进化", p.Ship)
		return
	}
	p.Form = stage.Form
	applyShipStats(p, ship, stage.Boosts)
	p.Heal(r.EvolutionHeal)

	c := p.Center()
	s.burst(f, c, evolveParticles, "#ffd700")
	f.emit(Event{Kind: EventEvolved, EntityID: p.ID, Label: stage.Name, Value: float64(p.Form), Position: c})
}

// checkBoss 分数越过阈值时清场并放出首领。生命随击败次数增长，生命与子弹伤害再按当前难度缩放
func (s *Simulator) checkBoss(f *frame) {
	w := f.w
	r := s.tables.Rules
	if w.BossActive || w.NextBossScore <= 0 || w.Score < w.NextBossScore {
		return
	}

	cfg, ok := s.tables.Enemy(r.BossType)
	if !ok {
		s.Logf("未知的首领类型 %s，推迟到下一个分数阈值", r.BossType)
		w.NextBossScore += r.BossSpawnScore
		return
	}

	w.Enemies = filter(w.Enemies, func(e *models.EnemyEntity) bool { return e.IsBoss() })

	difficulty := w.Scheduler.Difficulty
	if difficulty <= 0 {
		difficulty = 1
	}

	pf := s.tables.Playfield
	health := cfg.Health * math.Pow(r.BossHealthGrowth, float64(w.BossClears)) * difficulty
	boss := models.EnemyEntity{
		BaseEntity: models.BaseEntity{
			ID:       newEntityID(s.rng),
			Position: models.Vector2D{X: (pf.Width - cfg.Size.Width) / 2, Y: -cfg.Size.Height},
			Size:     cfg.Size,
		},
		Type:         r.BossType,
		Class:        models.ClassBoss,
		Health:       health,
		MaxHealth:    health,
		ScoreValue:   cfg.ScoreValue,
		Speed:        cfg.Speed,
		FireRate:     cfg.FireRate,
		BulletSpeed:  cfg.BulletSpeed,
		BulletDamage: cfg.BulletDamage * difficulty,
		LastFired:    f.now,
		SpawnTime:    f.now,
		Motion: models.PatrolMotion{
			SettleY:      r.BossSettleY,
			DescendSpeed: cfg.Speed,
			VX:           r.BossHorizontalSpeed,
		},
	}
	w.Enemies = append(w.Enemies, boss)
	w.BossActive = true
	w.Scheduler = s.scheduler.Interrupt(w.Scheduler)
	f.emit(Event{Kind: EventBossSpawned, EntityID: boss.ID, Label: boss.Type, Value: health, Position: boss.Center()})
}

// applyShipStats 按战机基础值、进化倍率与技能加成重新计算属性
func applyShipStats(p *models.PlayerEntity, ship tables.ShipConfig, b tables.StatBoosts) {
	lo := p.Loadout
	p.MaxHealth = ship.MaxHealth * orOne(b.Health) * (1 + lo.Health)
	p.MaxArmor = ship.MaxArmor * orOne(b.Armor) * (1 + lo.Armor)
	p.Speed = ship.Speed * orOne(b.Speed) * (1 + lo.Speed)
	p.FireInterval = ship.FireRate * orOne(b.FireRate) / (1 + lo.FireRate)
	p.BulletDamage = ship.BulletDamage * orOne(b.Damage) * (1 + lo.Damage)
	p.BulletSpeed = ship.BulletSpeed

	p.Health = math.Min(p.Health, p.MaxHealth)
	p.Armor = math.Min(p.Armor, p.MaxArmor)
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
