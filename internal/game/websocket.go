// websocket.go

package game

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jacl-coder/AstralSaints-Server/internal/battle"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/protocol"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 512 * 1024 // 512KB

	// 发送队列长度
	sendBufferSize = 256
)

var errSessionsFull = errors.New("会话数已达上限")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// outbound 待发送的一条消息
type outbound struct {
	frameType int
	data      []byte
}

// PlayerConnection 玩家连接
type PlayerConnection struct {
	ID       string
	PlayerID string
	Session  *Session

	codec protocol.Codec

	// 通信通道
	Send chan outbound

	closeMutex sync.Mutex
	closed     bool
}

// enqueue 非阻塞地放入发送队列，队列已满或连接已关闭时返回 false
func (p *PlayerConnection) enqueue(msg outbound) bool {
	p.closeMutex.Lock()
	defer p.closeMutex.Unlock()

	if p.closed {
		return false
	}
	select {
	case p.Send <- msg:
		return true
	default:
		return false
	}
}

// close 关闭发送通道，可重复调用
func (p *PlayerConnection) close() bool {
	p.closeMutex.Lock()
	defer p.closeMutex.Unlock()

	if p.closed {
		return false
	}
	p.closed = true
	close(p.Send)
	return true
}

// handleWSConnection 处理WebSocket连接
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// 验证令牌
	claims, err := s.tokens.Verify(query.Get("token"))
	if err != nil {
		http.Error(w, "未授权", http.StatusUnauthorized)
		return
	}

	format := query.Get("format")
	if format == "" {
		format = s.config.Game.SnapshotFormat
	}
	codec, err := protocol.CodecFor(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var skills []string
	if raw := query.Get("skills"); raw != "" {
		skills = strings.Split(raw, ",")
	}

	session, err := s.CreateSession(claims, query.Get("ship"), skills)
	if err != nil {
		switch {
		case errors.Is(err, errSessionsFull):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case errors.Is(err, tables.ErrUnknownShip):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// 升级HTTP连接为WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		s.removeSession(session)
		return
	}

	// 创建玩家连接
	playerConn := &PlayerConnection{
		ID:       uuid.New().String(),
		PlayerID: claims.PlayerID,
		Session:  session,
		codec:    codec,
		Send:     make(chan outbound, sendBufferSize),
	}

	// 添加到连接列表
	s.connMutex.Lock()
	s.connections[playerConn.ID] = playerConn
	s.connMutex.Unlock()

	log.Printf("玩家 %s 已连接, 会话: %s, 格式: %s", claims.PlayerID, session.ID, codec.Name())

	s.sendMessage(playerConn, &protocol.ServerMessage{
		Type: protocol.MsgWelcome,
		Welcome: &protocol.Welcome{
			SessionID: session.ID,
			Ship:      session.Ship,
			Width:     s.tables.Playfield.Width,
			Height:    s.tables.Playfield.Height,
			TickMS:    s.config.Server.TickIntervalMS,
			Skipped:   skippedSkills(s.tables, skills),
		},
	})

	session.OnFrame = func(w *battle.World, events []battle.Event) {
		// 帧会被下一帧覆盖，队列满时直接丢弃
		s.trySend(playerConn, protocol.NewFrameMessage(protocol.ConvertWorld(w, events)))
	}
	session.OnSessionEnd = func(rec *models.SessionRecord) {
		s.sendMessage(playerConn, protocol.NewSessionEndMessage(rec))
		s.submitResult(rec)
	}

	// 启动读写协程
	go s.readPump(conn, playerConn)
	go s.writePump(conn, playerConn)

	if err := session.Start(); err != nil {
		log.Printf("启动会话失败: %v", err)
		s.closeConnection(playerConn)
	}
}

// skippedSkills 列出无法装配的技能
func skippedSkills(t *tables.Tables, skills []string) []string {
	_, errs := t.Loadout(skills)
	if len(errs) == 0 {
		return nil
	}
	skipped := make([]string, 0, len(errs))
	for _, err := range errs {
		skipped = append(skipped, err.Error())
	}
	return skipped
}

// readPump 从WebSocket读取数据
func (s *GameServer) readPump(conn *websocket.Conn, player *PlayerConnection) {
	defer func() {
		s.closeConnection(player)
		conn.Close()
	}()

	// 设置读取参数
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		frameType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			break
		}

		// 处理接收到的消息
		if quit := s.handleMessage(player, frameType, message); quit {
			break
		}
	}
}

// writePump 向WebSocket写入数据
func (s *GameServer) writePump(conn *websocket.Conn, player *PlayerConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-player.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(message.frameType, message.data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection 关闭玩家连接，并丢弃其会话
func (s *GameServer) closeConnection(player *PlayerConnection) {
	s.connMutex.Lock()
	if _, ok := s.connections[player.ID]; !ok {
		s.connMutex.Unlock()
		return
	}
	delete(s.connections, player.ID)
	s.connMutex.Unlock()

	if player.Session != nil {
		s.removeSession(player.Session)
	}

	// 关闭发送通道
	player.close()

	log.Printf("玩家 %s 已断开连接", player.PlayerID)
}

// handleMessage 处理接收到的消息，返回 true 表示客户端请求退出。
// 文本帧按 JSON 解析，二进制帧按 msgpack 解析
func (s *GameServer) handleMessage(player *PlayerConnection, frameType int, data []byte) bool {
	codec := protocol.JSON
	if frameType == websocket.BinaryMessage {
		codec = protocol.Msgpack
	}

	var msg protocol.ClientMessage
	if err := codec.Unmarshal(data, &msg); err != nil {
		log.Printf("解析消息失败: %v", err)
		s.sendMessage(player, protocol.NewErrorMessage("无效的消息格式", "bad_message"))
		return false
	}

	switch msg.Type {
	case protocol.MsgInput:
		if msg.Input != nil && player.Session != nil {
			player.Session.SetInput(*msg.Input)
		}
	case protocol.MsgPing:
		s.sendMessage(player, &protocol.ServerMessage{Type: protocol.MsgPong})
	case protocol.MsgQuit:
		log.Printf("玩家 %s 主动退出", player.PlayerID)
		return true
	default:
		log.Printf("未知消息类型: %s", msg.Type)
	}
	return false
}

// encode 按连接协商的格式编码
func (s *GameServer) encode(player *PlayerConnection, msg *protocol.ServerMessage) (outbound, bool) {
	data, err := player.codec.Marshal(msg)
	if err != nil {
		log.Printf("序列化消息失败: %v", err)
		return outbound{}, false
	}
	return outbound{frameType: player.codec.FrameType(), data: data}, true
}

// sendMessage 向玩家发送消息，队列已满时关闭连接
func (s *GameServer) sendMessage(player *PlayerConnection, msg *protocol.ServerMessage) {
	out, ok := s.encode(player, msg)
	if !ok {
		return
	}
	if !player.enqueue(out) {
		go s.closeConnection(player)
	}
}

// trySend 向玩家发送消息，队列已满时丢弃
func (s *GameServer) trySend(player *PlayerConnection, msg *protocol.ServerMessage) {
	out, ok := s.encode(player, msg)
	if !ok {
		return
	}
	player.enqueue(out)
}
