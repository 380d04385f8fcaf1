// scheduler.go

package battle

import (
	"math"
	"math/rand"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// Phase 波次调度阶段
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseSpawning      Phase = "spawning"
	PhaseFormingUp     Phase = "forming_up"
	PhaseHolding       Phase = "holding"
	PhaseLevelComplete Phase = "level_complete"
)

// Side 入场方向
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideTop   Side = "top"
)

// SchedulerState 调度器状态，随 World 一起按值传递
type SchedulerState struct {
	Phase      Phase
	Level      int // 关卡下标
	Loop       int // 通关轮数
	Difficulty float64
	WaveIndex  int // 下一个波次在关卡中的下标
	WaveID     string
	Countdown  float64
	SpawnTimer float64

	Queue     []string // 打乱后待出生的敌机类型
	LeftLeft  int
	RightLeft int
	NextSide  Side

	// Members 本波次敌机ID，按出生顺序
	Members     []string
	HoldElapsed float64
	Released    bool
}

func (st SchedulerState) clone() SchedulerState {
	st.Queue = append([]string(nil), st.Queue...)
	st.Members = append([]string(nil), st.Members...)
	return st
}

// SpawnEvent 一个敌机的出生指令
type SpawnEvent struct {
	ID        string
	Type      string
	Side      Side
	Entry     tables.EntryPattern
	Position  models.Vector2D // 左上角
	SpawnTime float64
}

// SlotAssignment 编队槽位分配，Center 为槽位中心
type SlotAssignment struct {
	EnemyID string
	Center  models.Vector2D
}

// Plan 调度器单帧输出
type Plan struct {
	Spawns  []SpawnEvent
	Slots   []SlotAssignment
	Release []string
	Events  []Event
}

// Scheduler 波次调度器。状态全部在 SchedulerState 中，自身只持有只读数值表
type Scheduler struct {
	tables *tables.Tables
	rng    *rand.Rand
	logf   func(format string, args ...any)
}

// NewScheduler 创建波次调度器
func NewScheduler(t *tables.Tables, rng *rand.Rand, logf func(string, ...any)) *Scheduler {
	return &Scheduler{tables: t, rng: rng, logf: logf}
}

// Start 第一关的初始状态
func (s *Scheduler) Start() SchedulerState {
	st := SchedulerState{Phase: PhaseIdle, Countdown: s.tables.Rules.FirstWaveDelay}
	st.Difficulty = s.difficulty(st.Level, st.Loop)
	return st
}

// Interrupt 首领出现时中断当前波次，回到空闲等待
func (s *Scheduler) Interrupt(st SchedulerState) SchedulerState {
	st.Phase = PhaseIdle
	st.Countdown = s.levelWaveDelay(st.Level)
	st.Queue = nil
	st.Members = nil
	st.LeftLeft, st.RightLeft = 0, 0
	return st
}

// Advance 推进调度器。present 报告某个敌机是否仍在场上
func (s *Scheduler) Advance(now, dt float64, st SchedulerState, present func(id string) bool) (Plan, SchedulerState) {
	var plan Plan

	switch st.Phase {
	case PhaseIdle:
		st.Countdown -= dt
		if st.Countdown > 0 {
			break
		}
		s.startNextWave(now, &st, &plan)
		if st.Phase == PhaseSpawning {
			s.spawnDue(now, &st, &plan)
		}

	case PhaseSpawning:
		st.SpawnTimer += dt
		s.spawnDue(now, &st, &plan)

	case PhaseFormingUp:
		st.Countdown -= dt
		if st.Countdown > 0 {
			break
		}
		s.formUp(&st, &plan, present)

	case PhaseHolding:
		alive := aliveMembers(st.Members, present)
		if len(alive) == 0 {
			plan.Events = append(plan.Events, Event{Kind: EventWaveCleared, Label: st.WaveID})
			st.Phase = PhaseIdle
			st.Countdown = s.waveDelay(st)
			st.Members = nil
			break
		}
		wave, ok := s.tables.Wave(st.WaveID)
		if !ok || wave.Formation.Duration <= 0 || st.Released {
			break
		}
		st.HoldElapsed += dt
		if st.HoldElapsed >= wave.Formation.Duration {
			plan.Release = alive
			st.Released = true
		}

	case PhaseLevelComplete:
		st.Countdown -= dt
		if st.Countdown > 0 {
			break
		}
		st.Level++
		if st.Level >= len(s.tables.Levels) {
			st.Level = 0
			st.Loop++
		}
		st.WaveIndex = 0
		st.Difficulty = s.difficulty(st.Level, st.Loop)
		st.Phase = PhaseIdle
		st.Countdown = 0
	}

	return plan, st
}

// startNextWave 从关卡波次列表中取下一个有效波次，未知ID记录日志后跳过
func (s *Scheduler) startNextWave(now float64, st *SchedulerState, plan *Plan) {
	level, ok := s.tables.Level(st.Level)
	if !ok {
		s.logf("未知的关卡下标 %d，回到第一关", st.Level)
		st.Level = 0
		level, ok = s.tables.Level(0)
		if !ok {
			return
		}
	}

	for st.WaveIndex < len(level.Waves) {
		id := level.Waves[st.WaveIndex]
		st.WaveIndex++

		wave, ok := s.tables.Wave(id)
		if !ok {
			s.logf("关卡 %d 中未知的波次 %s，已跳过", level.ID, id)
			continue
		}

		st.WaveID = id
		st.Members = nil
		st.HoldElapsed = 0
		st.Released = false
		plan.Events = append(plan.Events, Event{Kind: EventWaveStarted, Label: id, Value: float64(level.ID)})

		if wave.Scripted() {
			s.spawnScript(now, wave, st, plan)
			st.Phase = PhaseHolding
			return
		}

		st.Queue = s.shuffledComposition(wave)
		st.LeftLeft = wave.Entry.Left.Count
		st.RightLeft = wave.Entry.Right.Count
		st.NextSide = SideLeft
		st.SpawnTimer = wave.SpawnDelay // 第一个立即出生
		st.Phase = PhaseSpawning
		return
	}

	plan.Events = append(plan.Events, Event{Kind: EventLevelComplete, Value: float64(level.ID)})
	st.Phase = PhaseLevelComplete
	st.Countdown = s.tables.Rules.LevelTransitionDelay
}

// shuffledComposition 展开并打乱波次构成
func (s *Scheduler) shuffledComposition(wave *tables.WavePattern) []string {
	queue := make([]string, 0, wave.Total())
	for _, e := range wave.Enemies {
		for i := 0; i < e.Count; i++ {
			queue = append(queue, e.Type)
		}
	}
	s.rng.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })
	return queue
}

// spawnDue 按固定间隔出生，左右交替直到两侧配额用完
func (s *Scheduler) spawnDue(now float64, st *SchedulerState, plan *Plan) {
	wave, ok := s.tables.Wave(st.WaveID)
	if !ok {
		st.Phase = PhaseIdle
		return
	}

	for st.LeftLeft+st.RightLeft > 0 && len(st.Queue) > 0 {
		if wave.SpawnDelay > 0 && st.SpawnTimer < wave.SpawnDelay {
			break
		}
		st.SpawnTimer -= wave.SpawnDelay

		side := st.NextSide
		if side == SideLeft && st.LeftLeft == 0 {
			side = SideRight
		} else if side == SideRight && st.RightLeft == 0 {
			side = SideLeft
		}

		entry := wave.Entry.Left.Pattern
		if side == SideLeft {
			st.LeftLeft--
			st.NextSide = SideRight
		} else {
			entry = wave.Entry.Right.Pattern
			st.RightLeft--
			st.NextSide = SideLeft
		}

		enemyType := st.Queue[0]
		st.Queue = st.Queue[1:]

		cfg, ok := s.tables.Enemy(enemyType)
		if !ok {
			s.logf("波次 %s 中未知的敌机类型 %s，已跳过", st.WaveID, enemyType)
			continue
		}

		ev := SpawnEvent{
			ID:        newEntityID(s.rng),
			Type:      enemyType,
			Side:      side,
			Entry:     entry,
			Position:  s.entryPosition(side, entry, cfg.Size),
			SpawnTime: now,
		}
		st.Members = append(st.Members, ev.ID)
		plan.Spawns = append(plan.Spawns, ev)
	}

	if st.LeftLeft+st.RightLeft == 0 || len(st.Queue) == 0 {
		st.Phase = PhaseFormingUp
		st.Countdown = s.tables.Rules.FormationPause
	}
}

// entryPosition 出生位置：盘旋入场从屏幕两侧外，其余从对应半场顶部外
func (s *Scheduler) entryPosition(side Side, entry tables.EntryPattern, size models.Size) models.Vector2D {
	pf := s.tables.Playfield
	y := between(s.rng, -100, -50) - size.Height/2

	switch entry {
	case tables.EntrySwirlLeft, tables.EntrySwirlRight:
		x := -50 - size.Width/2
		if side == SideRight {
			x = pf.Width + 50 - size.Width/2
		}
		return models.Vector2D{X: x, Y: y}
	}

	lo, hi := 0.0, pf.Width/2-size.Width
	if side == SideRight {
		lo, hi = pf.Width/2, pf.Width-size.Width
	}
	if hi < lo {
		hi = lo
	}
	return models.Vector2D{X: between(s.rng, lo, hi), Y: y}
}

// spawnScript 脚本波次一次性插入所有敌机，到达各自的出生时间前保持静止。
// 随机横坐标在此时决定，每局不同
func (s *Scheduler) spawnScript(now float64, wave *tables.WavePattern, st *SchedulerState, plan *Plan) {
	pf := s.tables.Playfield
	for _, sp := range wave.Script {
		cfg, ok := s.tables.Enemy(sp.Type)
		if !ok {
			s.logf("波次 %s 中未知的敌机类型 %s，已跳过", st.WaveID, sp.Type)
			continue
		}

		frac := sp.X
		if frac < 0 {
			frac = s.rng.Float64()
		}
		x := math.Max(0, math.Min(pf.Width-cfg.Size.Width, frac*pf.Width-cfg.Size.Width/2))

		ev := SpawnEvent{
			ID:        newEntityID(s.rng),
			Type:      sp.Type,
			Side:      SideTop,
			Entry:     tables.EntryStraightDown,
			Position:  models.Vector2D{X: x, Y: -cfg.Size.Height},
			SpawnTime: now + sp.Delay,
		}
		st.Members = append(st.Members, ev.ID)
		plan.Spawns = append(plan.Spawns, ev)
	}
}

// formUp 为仍在场上的成员计算编队槽位
func (s *Scheduler) formUp(st *SchedulerState, plan *Plan, present func(string) bool) {
	st.Phase = PhaseHolding
	st.HoldElapsed = 0

	wave, ok := s.tables.Wave(st.WaveID)
	if !ok {
		return
	}
	alive := aliveMembers(st.Members, present)
	st.Members = alive
	if len(alive) == 0 {
		return
	}

	pf := s.tables.Playfield
	slots := Layout(wave.Formation.Type, len(alive), pf.Width/2, pf.Height*wave.Formation.YPosition, wave.Formation.Spacing, s.rng)
	for i, id := range alive {
		if i >= len(slots) {
			break
		}
		plan.Slots = append(plan.Slots, SlotAssignment{EnemyID: id, Center: slots[i]})
	}
}

// waveDelay 波次间隔，波次未配置时使用关卡默认值
func (s *Scheduler) waveDelay(st SchedulerState) float64 {
	if wave, ok := s.tables.Wave(st.WaveID); ok && wave.WaveDelay > 0 {
		return wave.WaveDelay
	}
	return s.levelWaveDelay(st.Level)
}

func (s *Scheduler) levelWaveDelay(index int) float64 {
	if level, ok := s.tables.Level(index); ok {
		return level.WaveDelay
	}
	return 2000
}

// difficulty 关卡难度倍率，每轮通关后按规则递增
func (s *Scheduler) difficulty(index, loop int) float64 {
	d := 1.0
	if level, ok := s.tables.Level(index); ok {
		d = level.DifficultyMultiplier
	}
	growth := s.tables.Rules.LoopDifficultyGrowth
	if growth <= 0 {
		growth = 1
	}
	return d * math.Pow(growth, float64(loop))
}

func aliveMembers(members []string, present func(string) bool) []string {
	alive := make([]string, 0, len(members))
	for _, id := range members {
		if present(id) {
			alive = append(alive, id)
		}
	}
	return alive
}
