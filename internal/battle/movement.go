// movement.go

package battle

import (
	"math"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// ease 缓动函数，t 取值 [0,1]
func ease(kind models.EaseKind, t float64) float64 {
	switch kind {
	case models.EaseOutCubic:
		return 1 - math.Pow(1-t, 3)
	case models.EaseInOutSine:
		return -(math.Cos(math.Pi*t) - 1) / 2
	default:
		return t
	}
}

// stepResult 单步运动的结果
type stepResult struct {
	Motion  models.Motion
	Arrived bool // 补间结束
	Settled bool // 补间结束且进入编队
}

// stepMotion 按运动规则推进一帧。step 为秒，dt 为毫秒。
// 正弦与折线的相位按帧递增，与 dt 无关
func stepMotion(pos *models.Vector2D, m models.Motion, step, dt float64, bounds models.Rect, width float64) stepResult {
	switch mv := m.(type) {
	case models.LinearMotion:
		*pos = pos.Add(mv.Velocity.Scale(step))

	case models.SineMotion:
		mv.Phase += mv.Rate
		pos.X = mv.AnchorX + math.Sin(mv.Phase)*mv.Amplitude
		pos.Y += mv.VY * step
		return stepResult{Motion: mv}

	case models.ZigzagMotion:
		mv.Phase += mv.Rate
		pos.X = mv.AnchorX + mv.Direction*mv.Amplitude*(1-math.Cos(mv.Phase))/2
		pos.Y += mv.VY * step
		return stepResult{Motion: mv}

	case models.TweenMotion:
		mv.Elapsed += dt
		t := 1.0
		if mv.Duration > 0 {
			t = math.Min(1, mv.Elapsed/mv.Duration)
		}
		*pos = tweenAt(mv, ease(mv.Ease, t))
		if t >= 1 {
			return stepResult{Motion: models.HoldMotion{}, Arrived: true, Settled: mv.Settles}
		}
		return stepResult{Motion: mv}

	case models.PatrolMotion:
		if pos.Y < mv.SettleY {
			pos.Y = math.Min(mv.SettleY, pos.Y+mv.DescendSpeed*step)
			return stepResult{Motion: mv}
		}
		pos.X += mv.VX * step
		maxX := bounds.X + bounds.Width - width
		if pos.X <= bounds.X {
			pos.X = bounds.X
			mv.VX = math.Abs(mv.VX)
		} else if pos.X >= maxX {
			pos.X = maxX
			mv.VX = -math.Abs(mv.VX)
		}
		return stepResult{Motion: mv}
	}
	return stepResult{Motion: m}
}

// tweenAt 补间在进度 p 处的位置，有控制点时走二次贝塞尔曲线
func tweenAt(mv models.TweenMotion, p float64) models.Vector2D {
	if mv.Via == nil {
		return mv.From.Add(mv.To.Add(mv.From.Scale(-1)).Scale(p))
	}
	a := (1 - p) * (1 - p)
	b := 2 * p * (1 - p)
	c := p * p
	return mv.From.Scale(a).Add(mv.Via.Scale(b)).Add(mv.To.Scale(c))
}

// runMovement 移动阶段：玩家、敌机、投射物、道具与粒子，随后移除越界实体
func (s *Simulator) runMovement(f *frame, in Input) {
	w := f.w
	step := f.dt / 1000
	pf := s.tables.Playfield
	field := pf.Bounds()

	s.movePlayer(w.Player, in, step)

	for i := range w.Enemies {
		e := &w.Enemies[i]
		if !e.Active(f.now) {
			continue
		}
		res := stepMotion(&e.Position, e.Motion, step, f.dt, field, e.Size.Width)
		e.Motion = res.Motion
		if res.Settled {
			e.InFormation = true
		}
		if !e.Entered && e.Bounds().Overlaps(field) {
			e.Entered = true
		}
	}

	for i := range w.Projectiles {
		p := &w.Projectiles[i]
		p.Motion = stepMotion(&p.Position, p.Motion, step, f.dt, field, p.Size.Width).Motion
	}

	for i := range w.PowerUps {
		u := &w.PowerUps[i]
		u.Position = u.Position.Add(u.Velocity.Scale(step))
	}

	for i := range w.Particles {
		p := &w.Particles[i]
		p.Position = p.Position.Add(p.Velocity.Scale(step))
		p.Life -= f.dt
	}

	s.cull(f)
}

// movePlayer 按住的方向键决定速度，位置限制在场地内
func (s *Simulator) movePlayer(p *models.PlayerEntity, in Input, step float64) {
	speed := p.Speed * p.Multiplier(models.StatSpeed)
	var v models.Vector2D
	if in.Left {
		v.X -= speed
	}
	if in.Right {
		v.X += speed
	}
	if in.Up {
		v.Y -= speed
	}
	if in.Down {
		v.Y += speed
	}
	pf := s.tables.Playfield
	p.Position = p.Position.Add(v.Scale(step))
	p.Position.X = math.Max(0, math.Min(pf.Width-p.Size.Width, p.Position.X))
	p.Position.Y = math.Max(0, math.Min(pf.Height-p.Size.Height, p.Position.Y))
}

// cull 移除越界或过期的实体，不产生得分与掉落
func (s *Simulator) cull(f *frame) {
	w := f.w
	pf := s.tables.Playfield
	outer := pf.Bounds().Expand(pf.Margin)

	w.Enemies = filter(w.Enemies, func(e *models.EnemyEntity) bool {
		if !e.Active(f.now) {
			return true
		}
		if e.Position.Y > pf.Height+pf.Margin {
			return false
		}
		return !e.Entered || e.Bounds().Overlaps(outer)
	})
	w.Projectiles = filter(w.Projectiles, func(p *models.ProjectileEntity) bool {
		return p.Bounds().Overlaps(outer)
	})
	w.PowerUps = filter(w.PowerUps, func(u *models.PowerUpEntity) bool {
		return f.now < u.ExpiresAt && u.Bounds().Overlaps(outer)
	})
	w.Particles = filter(w.Particles, func(p *models.ParticleEntity) bool {
		return p.Life > 0 && p.Bounds().Overlaps(outer)
	})
}

// filter 原地保留满足条件的元素
func filter[T any](items []T, keep func(*T) bool) []T {
	out := items[:0]
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
