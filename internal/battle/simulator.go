// simulator.go

package battle

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// Simulator 战斗模拟器。
// 数值表只读，随机数生成器为单个会话独占，因此一个 Simulator 只能服务一个会话
type Simulator struct {
	tables    *tables.Tables
	rng       *rand.Rand
	scheduler *Scheduler

	// Logf 非致命错误的日志输出，默认为 log.Printf
	Logf func(format string, args ...any)
}

// frame 单帧的工作上下文
type frame struct {
	w      *World
	now    float64
	dt     float64
	events []Event
}

func (f *frame) emit(e Event) {
	f.events = append(f.events, e)
}

// NewSimulator 创建模拟器
func NewSimulator(t *tables.Tables, rng *rand.Rand) *Simulator {
	s := &Simulator{tables: t, rng: rng, Logf: log.Printf}
	s.scheduler = NewScheduler(t, rng, func(format string, args ...any) {
		s.Logf(format, args...)
	})
	return s
}

// Tables 模拟器使用的数值表
func (s *Simulator) Tables() *tables.Tables {
	return s.tables
}

// NewWorld 创建新对局。ship 为空时使用默认战机，无效的技能被跳过并记录日志
func (s *Simulator) NewWorld(ship string, skills []string) (*World, error) {
	if ship == "" {
		ship = s.tables.DefaultShip
	}
	cfg, ok := s.tables.Ship(ship)
	if !ok {
		return nil, fmt.Errorf("%s: %w", ship, tables.ErrUnknownShip)
	}

	loadout, skipped := s.tables.Loadout(skills)
	for _, err := range skipped {
		s.Logf("技能加载跳过: %v", err)
	}

	pf := s.tables.Playfield
	p := &models.PlayerEntity{
		BaseEntity: models.BaseEntity{
			ID:       newEntityID(s.rng),
			Position: models.Vector2D{X: (pf.Width - cfg.Size.Width) / 2, Y: pf.Height - cfg.Size.Height - 50},
			Size:     cfg.Size,
		},
		Ship:      ship,
		Weapon:    cfg.Weapon,
		Modifiers: make(map[models.ModifierStat]models.Modifier),
		Form:      1,
		Loadout:   loadout,
	}
	base := tables.StatBoosts{}
	if stage, ok := s.tables.Evolution(ship, 1); ok {
		base = stage.Boosts
	}
	applyShipStats(p, cfg, base)
	p.Health = p.MaxHealth
	p.Armor = p.MaxArmor

	return &World{
		Player:        p,
		Scheduler:     s.scheduler.Start(),
		NextBossScore: s.tables.Rules.BossSpawnScore,
	}, nil
}

// Tick 推进一帧：调度 → 移动 → 开火 → 碰撞 → 成长。
// 返回新的 World 与本帧事件，传入的 World 保持不变。对局结束后原样返回
func (s *Simulator) Tick(w *World, in Input, dt float64) (*World, []Event) {
	if w.Over {
		return w, nil
	}
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	next := w.Clone()
	next.Now += dt
	next.Tick++

	f := &frame{w: next, now: next.Now, dt: dt}
	s.runScheduler(f)
	s.runMovement(f, in)
	s.runWeapons(f, in)
	s.resolveCombat(f)
	if !next.Over {
		s.runProgression(f)
	}

	next.PrevInput = in
	return next, f.events
}

// runScheduler 推进波次调度并把计划应用到世界中。首领在场时暂停
func (s *Simulator) runScheduler(f *frame) {
	w := f.w
	if w.BossActive {
		return
	}

	plan, st := s.scheduler.Advance(f.now, f.dt, w.Scheduler, w.hasEnemy)
	w.Scheduler = st
	f.events = append(f.events, plan.Events...)

	for _, sp := range plan.Spawns {
		e, ok := s.spawnEnemy(sp, st.Difficulty)
		if !ok {
			continue
		}
		w.Enemies = append(w.Enemies, e)
		f.emit(Event{Kind: EventEnemySpawned, EntityID: e.ID, Label: e.Type, Value: sp.SpawnTime, Position: e.Position})
	}

	r := s.tables.Rules
	for _, slot := range plan.Slots {
		e, ok := w.FindEnemy(slot.EnemyID)
		if !ok {
			continue
		}
		target := models.Vector2D{X: slot.Center.X - e.Size.Width/2, Y: slot.Center.Y - e.Size.Height/2}
		e.Formation = &target
		e.InFormation = false
		e.Motion = models.TweenMotion{
			From:     e.Position,
			To:       target,
			Duration: r.FormationTweenDuration,
			Ease:     models.EaseOutCubic,
			Settles:  true,
		}
		if e.FireRate > 0 {
			e.LastFired = f.now - e.FireRate + s.rng.Float64()*r.FormationFireStagger*e.FireRate
		}
	}

	for _, id := range plan.Release {
		e, ok := w.FindEnemy(id)
		if !ok {
			continue
		}
		e.Formation = nil
		e.InFormation = false
		e.Motion = models.LinearMotion{Velocity: models.Vector2D{Y: e.Speed}}
	}
}

// spawnEnemy 根据出生指令创建敌机，生命与子弹伤害按难度缩放
func (s *Simulator) spawnEnemy(sp SpawnEvent, difficulty float64) (models.EnemyEntity, bool) {
	cfg, ok := s.tables.Enemy(sp.Type)
	if !ok {
		s.Logf("未知的敌机类型 %s，已跳过", sp.Type)
		return models.EnemyEntity{}, false
	}
	if difficulty <= 0 {
		difficulty = 1
	}

	health := cfg.Health * difficulty
	return models.EnemyEntity{
		BaseEntity:   models.BaseEntity{ID: sp.ID, Position: sp.Position, Size: cfg.Size},
		Type:         sp.Type,
		Class:        cfg.Class,
		Health:       health,
		MaxHealth:    health,
		ScoreValue:   cfg.ScoreValue,
		Speed:        cfg.Speed,
		FireRate:     cfg.FireRate,
		BulletSpeed:  cfg.BulletSpeed,
		BulletDamage: cfg.BulletDamage * difficulty,
		LastFired:    sp.SpawnTime,
		SpawnTime:    sp.SpawnTime,
		Motion:       s.entryMotion(sp, cfg),
		WaveMember:   true,
	}, true
}

// entryMotion 入场运动，与之后的编队无关
func (s *Simulator) entryMotion(sp SpawnEvent, cfg tables.EnemyConfig) models.Motion {
	r := s.tables.Rules
	pf := s.tables.Playfield
	fall := models.Vector2D{Y: cfg.Speed}

	switch sp.Entry {
	case tables.EntrySwirlLeft, tables.EntrySwirlRight:
		cx := pf.Width/2 - r.SwirlOffsetX
		if sp.Entry == tables.EntrySwirlRight {
			cx = pf.Width/2 + r.SwirlOffsetX
		}
		to := models.Vector2D{X: cx - cfg.Size.Width/2, Y: r.SwirlTargetY - cfg.Size.Height/2}
		via := models.Vector2D{X: to.X, Y: to.Y + 2*r.SwirlTargetY}
		return models.TweenMotion{
			From:     sp.Position,
			To:       to,
			Via:      &via,
			Duration: r.SwirlDuration,
			Ease:     models.EaseInOutSine,
		}

	case tables.EntryZigzag:
		dir := 1.0
		if sp.Side == SideRight {
			dir = -1
		}
		return models.ZigzagMotion{
			AnchorX:   sp.Position.X,
			Rate:      r.ZigzagRate,
			Amplitude: r.ZigzagAmplitude,
			Direction: dir,
			VY:        cfg.Speed,
		}

	case tables.EntrySineWave:
		amp := r.EnemySineAmplitude
		anchor := math.Max(amp, math.Min(pf.Width-cfg.Size.Width-amp, sp.Position.X))
		return models.SineMotion{
			AnchorX:   anchor,
			Rate:      r.EnemySineRate,
			Amplitude: amp,
			VY:        cfg.Speed,
		}

	case tables.EntryStraightDown:
		return models.LinearMotion{Velocity: fall}
	}

	s.Logf("未知的入场方式 %s，改为直线下落", sp.Entry)
	return models.LinearMotion{Velocity: fall}
}
