package protocol

import (
	"github.com/jacl-coder/AstralSaints-Server/internal/battle"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// MessageType 消息类型
type MessageType string

const (
	// 客户端 -> 服务器
	MsgInput MessageType = "input"
	MsgPing  MessageType = "ping"
	MsgQuit  MessageType = "quit"

	// 服务器 -> 客户端
	MsgWelcome    MessageType = "welcome"
	MsgFrame      MessageType = "frame"
	MsgSessionEnd MessageType = "session_end"
	MsgPong       MessageType = "pong"
	MsgError      MessageType = "error"
)

// ClientMessage 客户端消息
type ClientMessage struct {
	Type  MessageType   `json:"type" msgpack:"type"`
	Input *battle.Input `json:"input,omitempty" msgpack:"input,omitempty"`
}

// Welcome 连接建立后的会话信息
type Welcome struct {
	SessionID string   `json:"session_id" msgpack:"sid"`
	Ship      string   `json:"ship" msgpack:"ship"`
	Width     float64  `json:"width" msgpack:"w"`
	Height    float64  `json:"height" msgpack:"h"`
	TickMS    int      `json:"tick_ms" msgpack:"tick"`
	Skipped   []string `json:"skipped_skills,omitempty" msgpack:"skipped,omitempty"`
}

// ErrorInfo 错误信息
type ErrorInfo struct {
	Message   string `json:"message" msgpack:"msg"`
	ErrorCode string `json:"error_code" msgpack:"code"`
}

// ServerMessage 服务器消息，按 Type 只填充对应字段
type ServerMessage struct {
	Type    MessageType           `json:"type" msgpack:"type"`
	Welcome *Welcome              `json:"welcome,omitempty" msgpack:"welcome,omitempty"`
	Frame   *Frame                `json:"frame,omitempty" msgpack:"frame,omitempty"`
	Result  *models.SessionRecord `json:"result,omitempty" msgpack:"result,omitempty"`
	Error   *ErrorInfo            `json:"error,omitempty" msgpack:"error,omitempty"`
}

// NewFrameMessage 创建帧消息
func NewFrameMessage(frame *Frame) *ServerMessage {
	return &ServerMessage{Type: MsgFrame, Frame: frame}
}

// NewSessionEndMessage 创建结算消息
func NewSessionEndMessage(rec *models.SessionRecord) *ServerMessage {
	return &ServerMessage{Type: MsgSessionEnd, Result: rec}
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(message, errorCode string) *ServerMessage {
	return &ServerMessage{Type: MsgError, Error: &ErrorInfo{Message: message, ErrorCode: errorCode}}
}
