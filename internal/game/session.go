package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/AstralSaints-Server/internal/battle"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// Session 单人对局，持有模拟世界并按固定帧间隔推进
type Session struct {
	ID         string
	PlayerID   string
	PlayerName string
	Ship       string
	StartedAt  time.Time
	EndedAt    time.Time

	// 模拟状态
	sim        *battle.Simulator
	world      *battle.World
	worldMutex sync.RWMutex

	// 输入锁存：两帧之间按下又松开的技能键也要被下一帧看到
	input      battle.Input
	pending    battle.Input
	inputMutex sync.Mutex

	tickInterval time.Duration

	// OnFrame 每帧推进后调用，传入的世界只读
	OnFrame func(w *battle.World, events []battle.Event)
	// OnSessionEnd 玩家阵亡时调用，每局只调用一次
	OnSessionEnd func(rec *models.SessionRecord)
	endOnce      sync.Once

	// 控制通道
	shutdown     chan struct{}
	isRunning    bool
	runMutex     sync.Mutex
	ended        bool
	lastActivity time.Time
}

// NewSession 创建新对局，战机无效时返回错误
func NewSession(sim *battle.Simulator, playerID, playerName, ship string, skills []string, tickInterval time.Duration) (*Session, error) {
	w, err := sim.NewWorld(ship, skills)
	if err != nil {
		return nil, fmt.Errorf("创建对局失败: %w", err)
	}

	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		PlayerID:     playerID,
		PlayerName:   playerName,
		Ship:         w.Player.Ship,
		StartedAt:    now,
		sim:          sim,
		world:        w,
		tickInterval: tickInterval,
		shutdown:     make(chan struct{}),
		lastActivity: now,
	}, nil
}

// Start 启动对局循环
func (s *Session) Start() error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.isRunning {
		return fmt.Errorf("会话已经在运行")
	}
	if s.ended || s.world == nil {
		return fmt.Errorf("会话已经结束")
	}

	log.Printf("会话 %s 启动, 玩家: %s, 战机: %s", s.ID, s.PlayerID, s.Ship)
	s.isRunning = true

	go s.gameLoop()

	return nil
}

// Stop 停止对局并丢弃世界状态，不触发结算
func (s *Session) Stop() {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.isRunning {
		close(s.shutdown)
		s.isRunning = false
	}
	if !s.ended {
		s.ended = true
		s.EndedAt = time.Now()
		log.Printf("会话 %s 已停止", s.ID)
	}

	s.worldMutex.Lock()
	s.world = nil
	s.worldMutex.Unlock()
}

// SetInput 更新玩家输入
func (s *Session) SetInput(in battle.Input) {
	s.inputMutex.Lock()
	defer s.inputMutex.Unlock()

	s.input = in
	s.pending.Special = s.pending.Special || in.Special
	s.pending.Awaken = s.pending.Awaken || in.Awaken
	s.lastActivity = time.Now()
}

// takeInput 取出本帧输入并清空锁存
func (s *Session) takeInput() battle.Input {
	s.inputMutex.Lock()
	defer s.inputMutex.Unlock()

	in := s.input
	in.Special = in.Special || s.pending.Special
	in.Awaken = in.Awaken || s.pending.Awaken
	s.pending = battle.Input{}
	return in
}

// Step 同步推进一帧，dt 为毫秒。对局已结束时返回 nil
func (s *Session) Step(dt float64) []battle.Event {
	in := s.takeInput()

	s.worldMutex.Lock()
	if s.world == nil || s.world.Over {
		s.worldMutex.Unlock()
		return nil
	}
	next, events := s.sim.Tick(s.world, in, dt)
	s.world = next
	s.worldMutex.Unlock()

	if s.OnFrame != nil {
		s.OnFrame(next, events)
	}
	if next.Over {
		s.end(next)
	}
	return events
}

// Snapshot 返回最近一帧的只读世界，对局被丢弃后为 nil
func (s *Session) Snapshot() *battle.World {
	s.worldMutex.RLock()
	defer s.worldMutex.RUnlock()
	return s.world
}

// IsRunning 对局循环是否在运行
func (s *Session) IsRunning() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	return s.isRunning
}

// ShouldCleanup 检查会话是否应该被清理
func (s *Session) ShouldCleanup() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	// 结束超过2分钟
	if s.ended {
		return time.Since(s.EndedAt) > 2*time.Minute
	}

	s.inputMutex.Lock()
	defer s.inputMutex.Unlock()
	// 超过5分钟没有输入
	return time.Since(s.lastActivity) > 5*time.Minute
}

// end 生成战绩并通知结算，随后停止循环
func (s *Session) end(w *battle.World) {
	s.endOnce.Do(func() {
		s.runMutex.Lock()
		rec := s.record(w, time.Now())
		s.stopLocked()
		s.EndedAt = rec.EndedAt
		s.runMutex.Unlock()

		log.Printf("会话 %s 结束, 最终得分: %d", s.ID, rec.Score)
		if s.OnSessionEnd != nil {
			s.OnSessionEnd(rec)
		}
	})
}

// record 由最终世界生成战绩
func (s *Session) record(w *battle.World, endedAt time.Time) *models.SessionRecord {
	return &models.SessionRecord{
		ID:         s.ID,
		PlayerID:   s.PlayerID,
		PlayerName: s.PlayerName,
		Ship:       s.Ship,
		Score:      w.Score,
		Kills:      w.Player.Kills,
		Form:       w.Player.Form,
		Level:      w.Scheduler.Level + 1,
		Loop:       w.Scheduler.Loop,
		BossClears: w.BossClears,
		Duration:   int64(w.Now),
		StartedAt:  s.StartedAt,
		EndedAt:    endedAt,
	}
}

// gameLoop 对局主循环，使用固定步长保证可重放
func (s *Session) gameLoop() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	dt := float64(s.tickInterval) / float64(time.Millisecond)
	for {
		select {
		case <-ticker.C:
			s.Step(dt)
		case <-s.shutdown:
			return
		}
	}
}
