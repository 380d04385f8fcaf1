package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jacl-coder/AstralSaints-Server/internal/auth"
)

// 昵称最大长度(字符)
const maxNameLength = 16

// AuthHandler 认证处理器，只签发游客令牌
type AuthHandler struct {
	tokens *auth.TokenManager
}

// GuestRequest 游客登录请求
type GuestRequest struct {
	Name string `json:"name"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Token     string    `json:"token"`
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// RegisterHandlers 注册HTTP处理器
func (h *AuthHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/auth/guest", h.handleGuest)
	mux.HandleFunc("/auth/validate", h.handleValidate)
}

// handleGuest 处理游客登录
func (h *AuthHandler) handleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	var req GuestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "无效的请求格式", http.StatusBadRequest)
			return
		}
	}

	name, err := normalizeName(req.Name)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	playerID := uuid.New().String()
	if name == "" {
		name = "guest-" + playerID[:8]
	}

	token, expiresAt, err := h.tokens.Issue(playerID, name)
	if err != nil {
		sendError(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, "登录成功", AuthResponse{
		Token:     token,
		PlayerID:  playerID,
		Name:      name,
		ExpiresAt: expiresAt,
	})
}

// handleValidate 校验令牌
func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.Verify(bearerToken(r))
	if err != nil {
		sendError(w, "令牌无效或已过期", http.StatusUnauthorized)
		return
	}

	resp := AuthResponse{PlayerID: claims.PlayerID, Name: claims.Name}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	sendSuccess(w, "令牌有效", resp)
}

// normalizeName 去除首尾空白并检查长度
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("昵称不能超过 %d 个字符", maxNameLength)
	}
	return name, nil
}

// bearerToken 从 Authorization 头或 token 参数中取令牌
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
