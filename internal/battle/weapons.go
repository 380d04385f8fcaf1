// weapons.go

package battle

import (
	"math"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// runWeapons 开火阶段：玩家自动射击、敌机射击、必杀与觉醒
func (s *Simulator) runWeapons(f *frame, in Input) {
	s.playerFire(f)
	s.enemyFire(f)
	s.triggerSpecial(f, in)
	s.triggerAwakening(f, in)
}

// fireInterval 玩家当前射击间隔(毫秒)
func (s *Simulator) fireInterval(p *models.PlayerEntity, wc tables.WeaponConfig) float64 {
	r := s.tables.Rules
	interval := (p.FireInterval - float64(p.RateLevel)*r.RateLevelBonus) * wc.FireRate * p.Multiplier(models.StatFireRate)
	if p.Awakened {
		interval *= r.AwakeningFireRateFactor
	}
	return math.Max(r.MinFireInterval, interval)
}

// shotDamage 玩家单发伤害
func (s *Simulator) shotDamage(p *models.PlayerEntity, wc tables.WeaponConfig) float64 {
	r := s.tables.Rules
	dmg := (p.BulletDamage + float64(p.PowerLevel)*r.PowerLevelDamage) * wc.Damage * p.Multiplier(models.StatDamage)
	if p.Awakened {
		dmg *= r.AwakeningDamageFactor
	}
	return dmg
}

func (s *Simulator) playerFire(f *frame) {
	p := f.w.Player
	wc, ok := s.tables.Weapon(p.ActiveWeapon())
	if !ok {
		s.Logf("未知的武器 %s，本帧不开火", p.ActiveWeapon())
		return
	}
	if f.now-p.LastFired < s.fireInterval(p, wc) {
		return
	}
	p.LastFired = f.now

	r := s.tables.Rules
	dmg := s.shotDamage(p, wc)
	speed := p.BulletSpeed * wc.BulletSpeed
	size := r.PlayerShotSize
	cx := p.Center().X
	top := p.Position.Y - size.Height
	form := max(1, p.Form)
	if p.Awakened {
		// 觉醒期间至少按第二形态开火
		form = max(2, form)
	}

	shoot := func(x float64, sz models.Size, m models.Motion) {
		f.w.Projectiles = append(f.w.Projectiles, models.ProjectileEntity{
			BaseEntity: models.BaseEntity{
				ID:       f.w.nextID("b"),
				Position: models.Vector2D{X: x - sz.Width/2, Y: top},
				Size:     sz,
			},
			Owner:   models.OwnerPlayer,
			Pattern: wc.Pattern,
			Damage:  dmg,
			Motion:  m,
		})
	}

	switch wc.Pattern {
	case models.PatternTriple:
		n := max(1, wc.BulletCount+2*(form-1))
		for i := 0; i < n; i++ {
			angle := 0.0
			if n > 1 {
				angle = -wc.Spread + 2*wc.Spread*float64(i)/float64(n-1)
			}
			rad := angle * math.Pi / 180
			shoot(cx, size, models.LinearMotion{Velocity: models.Vector2D{X: speed * math.Sin(rad), Y: -speed * math.Cos(rad)}})
		}

	case models.PatternWave:
		for _, off := range laneOffsets(form, r.LaneSpacing*2) {
			shoot(cx+off, size, models.SineMotion{
				AnchorX:   cx + off - size.Width/2,
				Rate:      r.WaveShotRate,
				Amplitude: r.WaveShotAmplitude,
				VY:        -speed,
			})
		}

	case models.PatternBeam:
		beam := models.Size{Width: size.Width, Height: size.Height * 3}
		top -= beam.Height - size.Height
		for _, off := range laneOffsets(2*form-1, r.LaneSpacing) {
			shoot(cx+off, beam, models.LinearMotion{Velocity: models.Vector2D{Y: -speed}})
		}

	default:
		for _, off := range laneOffsets(2*form-1, r.LaneSpacing) {
			shoot(cx+off, size, models.LinearMotion{Velocity: models.Vector2D{Y: -speed}})
		}
	}
}

// laneOffsets 以 0 为中心、等距分布的 n 条弹道
func laneOffsets(n int, spacing float64) []float64 {
	offs := make([]float64, n)
	for i := range offs {
		offs[i] = (float64(i) - float64(n-1)/2) * spacing
	}
	return offs
}

func (s *Simulator) enemyFire(f *frame) {
	r := s.tables.Rules
	size := r.EnemyShotSize
	for i := range f.w.Enemies {
		e := &f.w.Enemies[i]
		if !e.Active(f.now) || !e.Entered || e.FireRate <= 0 || e.IsDead() {
			continue
		}
		if f.now-e.LastFired < e.FireRate {
			continue
		}
		e.LastFired = f.now

		c := e.Center()
		pos := models.Vector2D{X: c.X - size.Width/2, Y: e.Position.Y + e.Size.Height}
		spread := []float64{0}
		if e.IsBoss() {
			spread = []float64{-2, -1, 0, 1, 2}
		}
		for _, k := range spread {
			f.w.Projectiles = append(f.w.Projectiles, models.ProjectileEntity{
				BaseEntity: models.BaseEntity{ID: f.w.nextID("e"), Position: pos, Size: size},
				Owner:      models.OwnerEnemy,
				Pattern:    models.PatternSingle,
				Damage:     e.BulletDamage,
				Motion:     models.LinearMotion{Velocity: models.Vector2D{X: k * r.BossFanStep, Y: e.BulletSpeed}},
			})
		}
	}
}

// triggerSpecial 按下瞬间且冷却结束时对所有在场敌机造成固定伤害
func (s *Simulator) triggerSpecial(f *frame, in Input) {
	p := f.w.Player
	if !in.Special || f.w.PrevInput.Special || p.SpecialCooldown > 0 {
		return
	}
	r := s.tables.Rules
	hit := 0
	for i := range f.w.Enemies {
		e := &f.w.Enemies[i]
		if !e.Active(f.now) {
			continue
		}
		e.TakeDamage(r.SpecialDamage)
		hit++
	}
	p.SpecialCooldown = r.SpecialCooldown
	s.burst(f, p.Center(), specialParticles, "#ffffff")
	f.emit(Event{Kind: EventSpecialFired, EntityID: p.ID, Value: float64(hit), Position: p.Center()})
}

// triggerAwakening 连击达到阈值后按下瞬间进入觉醒
func (s *Simulator) triggerAwakening(f *frame, in Input) {
	p := f.w.Player
	r := s.tables.Rules
	if !in.Awaken || f.w.PrevInput.Awaken || p.Awakened || p.Combo < r.AwakeningComboTrigger {
		return
	}
	p.Awakened = true
	p.AwakenedUntil = f.now + r.AwakeningDuration
	f.emit(Event{Kind: EventAwakeningStarted, EntityID: p.ID, Value: p.AwakenedUntil, Position: p.Center()})
}
