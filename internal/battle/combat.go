// combat.go

package battle

import (
	"math"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// 各类粒子爆发的数量
const (
	hitParticles       = 5
	explosionParticles = 30
	damageParticles    = 20
	pickupParticles    = 20
	evolveParticles    = 80
	specialParticles   = 50
)

// resolveCombat 碰撞结算，按优先级依次处理：
// 玩家子弹打敌机、敌方子弹打玩家、机体相撞、拾取道具
func (s *Simulator) resolveCombat(f *frame) {
	w := f.w
	killed := make(map[string]bool)

	// 必杀等在碰撞之前造成的击毁
	for i := range w.Enemies {
		e := &w.Enemies[i]
		if e.Active(f.now) && e.IsDead() {
			s.kill(f, e)
			killed[e.ID] = true
		}
	}

	s.playerShotsVsEnemies(f, killed)
	if s.enemyShotsVsPlayer(f) {
		s.dropKilled(w, killed)
		return
	}
	if s.bodyCollisions(f, killed) {
		s.dropKilled(w, killed)
		return
	}
	s.dropKilled(w, killed)
	s.collectPowerUps(f)
}

func (s *Simulator) dropKilled(w *World, killed map[string]bool) {
	if len(killed) == 0 {
		return
	}
	w.Enemies = filter(w.Enemies, func(e *models.EnemyEntity) bool { return !killed[e.ID] })
}

// playerShotsVsEnemies 普通子弹命中第一个敌机后消失，穿透弹对每个敌机只结算一次
func (s *Simulator) playerShotsVsEnemies(f *frame, killed map[string]bool) {
	w := f.w
	spent := make(map[int]bool)

	for pi := range w.Projectiles {
		p := &w.Projectiles[pi]
		if p.Owner != models.OwnerPlayer {
			continue
		}
		for ei := range w.Enemies {
			e := &w.Enemies[ei]
			if killed[e.ID] || !e.Active(f.now) {
				continue
			}
			if !p.Bounds().Overlaps(e.Bounds()) {
				continue
			}
			if p.Piercing() && p.HasHit(e.ID) {
				continue
			}

			e.TakeDamage(p.Damage)
			s.burst(f, p.Center(), hitParticles, "#ffff88")
			if e.IsDead() {
				s.kill(f, e)
				killed[e.ID] = true
			}

			if !p.Piercing() {
				spent[pi] = true
				break
			}
			p.HitEntities = append(p.HitEntities, e.ID)
		}
	}

	if len(spent) > 0 {
		out := w.Projectiles[:0]
		for i := range w.Projectiles {
			if !spent[i] {
				out = append(out, w.Projectiles[i])
			}
		}
		w.Projectiles = out
	}
}

// kill 结算击毁：得分、连击、爆炸与掉落。调用方负责从列表中移除
func (s *Simulator) kill(f *frame, e *models.EnemyEntity) {
	w := f.w
	p := w.Player
	r := s.tables.Rules

	gain := int64(math.Round(float64(e.ScoreValue) * float64(max(1, p.Combo)) * (1 + p.Loadout.ScoreMultiplier)))
	w.Score += gain
	p.Combo = min(r.ComboMax, p.Combo+1)
	p.ComboExpiresAt = f.now + r.ComboTimeout
	p.Kills++

	c := e.Center()
	s.burst(f, c, explosionParticles, "#ff8844")
	f.emit(Event{Kind: EventEnemyKilled, EntityID: e.ID, Label: e.Type, Value: float64(e.ScoreValue), Position: c})
	f.emit(Event{Kind: EventScoreGained, Value: float64(gain), Position: c})
	f.emit(Event{Kind: EventComboChanged, Value: float64(p.Combo)})

	s.rollDrop(f, c, e.IsBoss())

	if e.IsBoss() {
		w.BossActive = false
		w.BossClears++
		w.NextBossScore = w.Score + r.BossSpawnScore
		f.emit(Event{Kind: EventBossDefeated, EntityID: e.ID, Value: float64(w.BossClears), Position: c})
	}
}

// rollDrop 按权重掉落道具，首领必定掉落
func (s *Simulator) rollDrop(f *frame, at models.Vector2D, guaranteed bool) {
	kind := chooseDrop(s.rng, s.tables.Drops, guaranteed, f.w.Player.Loadout.DropRate)
	if kind == tables.NoDrop {
		return
	}
	cfg, ok := s.tables.PowerUp(kind)
	if !ok {
		s.Logf("掉落表中未知的道具 %s，已跳过", kind)
		return
	}

	r := s.tables.Rules
	size := r.PowerUpSize
	u := models.PowerUpEntity{
		BaseEntity: models.BaseEntity{
			ID:       f.w.nextID("u"),
			Position: models.Vector2D{X: at.X - size.Width/2, Y: at.Y - size.Height/2},
			Size:     size,
		},
		Type:      kind,
		Effect:    cfg.Effect,
		Velocity:  models.Vector2D{Y: r.PowerUpFallSpeed},
		ExpiresAt: f.now + r.PowerUpLifetime,
	}
	f.w.PowerUps = append(f.w.PowerUps, u)
	f.emit(Event{Kind: EventPowerUpDropped, EntityID: u.ID, Label: kind, Position: at})
}

// enemyShotsVsPlayer 敌方子弹命中后消失，觉醒期间不受伤害。返回玩家是否阵亡
func (s *Simulator) enemyShotsVsPlayer(f *frame) bool {
	w := f.w
	p := w.Player
	pb := p.Bounds()

	over := false
	w.Projectiles = filter(w.Projectiles, func(pr *models.ProjectileEntity) bool {
		if over || pr.Owner != models.OwnerEnemy || !pr.Bounds().Overlaps(pb) {
			return true
		}
		over = s.damagePlayer(f, pr.Damage)
		return false
	})
	return over
}

// bodyCollisions 机体相撞：玩家受固定伤害，敌机受反伤。返回玩家是否阵亡
func (s *Simulator) bodyCollisions(f *frame, killed map[string]bool) bool {
	w := f.w
	r := s.tables.Rules
	pb := w.Player.Bounds()

	for i := range w.Enemies {
		e := &w.Enemies[i]
		if killed[e.ID] || !e.Active(f.now) || !e.Bounds().Overlaps(pb) {
			continue
		}

		counter := r.BodyCounterDamage
		if e.IsBoss() {
			counter = r.BossCounterDamage
		}
		e.TakeDamage(counter)
		if e.IsDead() {
			s.kill(f, e)
			killed[e.ID] = true
		}

		if s.damagePlayer(f, r.CollisionDamage) {
			return true
		}
	}
	return false
}

// damagePlayer 对玩家造成伤害，返回玩家是否阵亡
func (s *Simulator) damagePlayer(f *frame, amount float64) bool {
	w := f.w
	p := w.Player
	if p.Awakened {
		return false
	}
	if dodge := p.Loadout.DodgeChance; dodge > 0 && s.rng.Float64() < dodge {
		return false
	}

	lost := p.TakeDamage(amount)
	c := p.Center()
	s.burst(f, c, damageParticles, "#ff2222")
	f.emit(Event{Kind: EventPlayerDamaged, EntityID: p.ID, Value: lost, Position: c})

	if !p.IsDead() {
		return false
	}
	w.Over = true
	f.emit(Event{Kind: EventSessionEnded, EntityID: p.ID, Value: float64(w.Score), Position: c})
	return true
}

// collectPowerUps 拾取道具并立即生效
func (s *Simulator) collectPowerUps(f *frame) {
	w := f.w
	pb := w.Player.Bounds()
	w.PowerUps = filter(w.PowerUps, func(u *models.PowerUpEntity) bool {
		if !u.Bounds().Overlaps(pb) {
			return true
		}
		s.applyPowerUp(f, u.Type)
		c := u.Center()
		s.burst(f, c, pickupParticles, "#44ddff")
		f.emit(Event{Kind: EventPowerUpCollected, EntityID: u.ID, Label: u.Type, Position: c})
		return false
	})
}

// applyPowerUp 道具效果。同类属性倍率与武器覆盖直接替换旧值
func (s *Simulator) applyPowerUp(f *frame, kind string) {
	cfg, ok := s.tables.PowerUp(kind)
	if !ok {
		s.Logf("未知的道具 %s，已跳过", kind)
		return
	}
	p := f.w.Player
	r := s.tables.Rules

	switch cfg.Effect {
	case models.EffectStatBoost:
		if p.Modifiers == nil {
			p.Modifiers = make(map[models.ModifierStat]models.Modifier)
		}
		p.Modifiers[cfg.Stat] = models.Modifier{Multiplier: cfg.Multiplier, ExpiresAt: f.now + cfg.Duration}

	case models.EffectArmor:
		p.AddArmor(cfg.Value)

	case models.EffectWeaponChange:
		if len(r.WeaponChoices) == 0 {
			return
		}
		weapon := r.WeaponChoices[s.rng.Intn(len(r.WeaponChoices))]
		p.Override = &models.WeaponOverride{Weapon: weapon, ExpiresAt: f.now + cfg.Duration}

	case models.EffectLevelUp:
		step := max(1, int(cfg.Value))
		if cfg.Stat == models.StatFireRate {
			p.RateLevel = min(r.MaxStatLevel, p.RateLevel+step)
		} else {
			p.PowerLevel = min(r.MaxStatLevel, p.PowerLevel+step)
		}

	default:
		s.Logf("道具 %s 的效果 %s 未知，已跳过", kind, cfg.Effect)
	}
}

// burst 以 at 为中心向四周散开的粒子
func (s *Simulator) burst(f *frame, at models.Vector2D, count int, color string) {
	for i := 0; i < count; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		speed := between(s.rng, 50, 200)
		f.w.Particles = append(f.w.Particles, models.ParticleEntity{
			BaseEntity: models.BaseEntity{
				ID:       f.w.nextID("x"),
				Position: models.Vector2D{X: at.X - 2, Y: at.Y - 2},
				Size:     models.Size{Width: 4, Height: 4},
			},
			Velocity: models.Vector2D{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
			Life:     between(s.rng, 500, 1000),
			MaxLife:  1000,
			Color:    color,
		})
	}
}
