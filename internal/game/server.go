package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/AstralSaints-Server/config"
	"github.com/jacl-coder/AstralSaints-Server/internal/auth"
	"github.com/jacl-coder/AstralSaints-Server/internal/battle"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// ResultSink 对局结算的接收方，排行榜与战绩库都实现它
type ResultSink interface {
	SubmitRecord(ctx context.Context, rec *models.SessionRecord) error
}

// GameServer 游戏服务器
type GameServer struct {
	config *config.Config
	tables *tables.Tables
	tokens *auth.TokenManager
	sinks  []ResultSink

	sessions      map[string]*Session
	sessionsMutex sync.RWMutex
	httpServer    *http.Server
	connections   map[string]*PlayerConnection
	connMutex     sync.RWMutex

	// 关闭信号
	shutdown  chan struct{}
	isRunning bool
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config, t *tables.Tables, tokens *auth.TokenManager) *GameServer {
	return &GameServer{
		config:      cfg,
		tables:      t,
		tokens:      tokens,
		sessions:    make(map[string]*Session),
		connections: make(map[string]*PlayerConnection),
		shutdown:    make(chan struct{}),
	}
}

// AddSink 注册结算接收方，需在 Start 之前调用
func (s *GameServer) AddSink(sink ResultSink) {
	s.sinks = append(s.sinks, sink)
}

// Start 启动游戏服务器
func (s *GameServer) Start() error {
	if s.isRunning {
		return fmt.Errorf("服务器已经在运行")
	}

	// 初始化HTTP服务器
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.GamePort),
		Handler: s.createHandler(),
	}

	// 启动HTTP服务器
	go func() {
		log.Printf("游戏服务器启动，监听端口: %d", s.config.Server.GamePort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	// 启动会话管理
	go s.sessionManager()

	s.isRunning = true
	return nil
}

// Stop 停止游戏服务器
func (s *GameServer) Stop() error {
	if !s.isRunning {
		return nil
	}

	// 发送关闭信号
	close(s.shutdown)

	// 关闭所有连接，连带停止其会话
	for _, conn := range s.listConnections() {
		s.closeConnection(conn)
	}

	// 关闭HTTP服务器
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	s.isRunning = false
	log.Println("游戏服务器已停止")
	return nil
}

// createHandler 创建HTTP处理器
func (s *GameServer) createHandler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"sessions": s.SessionCount(),
		})
	})

	return mux
}

// sessionManager 会话管理器
func (s *GameServer) sessionManager() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupSessions()
		case <-s.shutdown:
			return
		}
	}
}

// cleanupSessions 清理空闲或已结束的会话
func (s *GameServer) cleanupSessions() {
	for _, conn := range s.listConnections() {
		if conn.Session != nil && conn.Session.ShouldCleanup() {
			log.Printf("清理空闲会话: %s", conn.Session.ID)
			s.closeConnection(conn)
		}
	}
}

// CreateSession 为玩家创建对局，每个会话使用独立的随机数生成器
func (s *GameServer) CreateSession(claims *auth.Claims, ship string, skills []string) (*Session, error) {
	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	if len(s.sessions) >= s.config.Server.MaxSessions {
		return nil, errSessionsFull
	}

	sim := battle.NewSimulator(s.tables, battle.NewRand(s.config.Game.Seed))
	session, err := NewSession(sim, claims.PlayerID, claims.Name, ship, skills, s.config.Server.TickInterval())
	if err != nil {
		return nil, err
	}

	s.sessions[session.ID] = session
	log.Printf("创建会话: %s, 玩家: %s, 战机: %s", session.ID, claims.PlayerID, session.Ship)
	return session, nil
}

// GetSession 获取会话
func (s *GameServer) GetSession(sessionID string) (*Session, bool) {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()

	session, exists := s.sessions[sessionID]
	return session, exists
}

// SessionCount 当前会话数
func (s *GameServer) SessionCount() int {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()
	return len(s.sessions)
}

// removeSession 停止并移除会话
func (s *GameServer) removeSession(session *Session) {
	session.Stop()

	s.sessionsMutex.Lock()
	delete(s.sessions, session.ID)
	s.sessionsMutex.Unlock()
}

// submitResult 把战绩交给所有接收方，单个失败只记录日志
func (s *GameServer) submitResult(rec *models.SessionRecord) {
	for _, sink := range s.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := sink.SubmitRecord(ctx, rec); err != nil {
			log.Printf("提交战绩失败: %v", err)
		}
		cancel()
	}
}

func (s *GameServer) listConnections() []*PlayerConnection {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()

	conns := make([]*PlayerConnection, 0, len(s.connections))
	for _, conn := range s.connections {
		conns = append(conns, conn)
	}
	return conns
}
