// stats.go

package gateway

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// LeaderboardReader 排行榜数据源
type LeaderboardReader interface {
	GetLeaderboard(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)
}

// RecordReader 战绩数据源
type RecordReader interface {
	RecentRecords(ctx context.Context, playerID string, limit int) ([]models.SessionRecord, error)
	TopEntries(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)
}

// StatsHandler 战绩处理器。Redis 与数据库都是可选的
type StatsHandler struct {
	board   LeaderboardReader
	records RecordReader

	// refresh 从数据库重建 Redis 排行榜，两者都可用时才设置
	refresh func(ctx context.Context) error

	// 每次查询的超时时间
	queryTimeout time.Duration
}

// NewStatsHandler 创建战绩处理器，board 与 records 可以为 nil
func NewStatsHandler(board LeaderboardReader, records RecordReader) *StatsHandler {
	return &StatsHandler{
		board:        board,
		records:      records,
		queryTimeout: 3 * time.Second,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *StatsHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/stats/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/stats/leaderboard/refresh", h.handleRefreshLeaderboard)
	mux.HandleFunc("/stats/sessions", h.handleSessions)
}

// handleLeaderboard 处理排行榜查询，优先读 Redis，失败时回退到数据库
func (h *StatsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	scoreType, ok := models.ParseLeaderboardType(r.URL.Query().Get("type"))
	if !ok {
		sendError(w, "无效的排行榜类型", http.StatusBadRequest)
		return
	}
	limit := parseLimit(r, 50)

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	if h.board != nil {
		entries, err := h.board.GetLeaderboard(ctx, scoreType, limit)
		if err == nil {
			sendSuccess(w, "查询成功", entries)
			return
		}
		log.Printf("从Redis读取排行榜失败，回退到数据库: %v", err)
	}

	if h.records == nil {
		sendError(w, "排行榜不可用", http.StatusServiceUnavailable)
		return
	}

	entries, err := h.records.TopEntries(ctx, scoreType, limit)
	if err != nil {
		log.Printf("查询排行榜失败: %v", err)
		sendError(w, "查询排行榜失败", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, "查询成功", entries)
}

// handleRefreshLeaderboard 处理排行榜刷新
func (h *StatsHandler) handleRefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}
	if h.refresh == nil {
		sendError(w, "Redis或数据库未启用，无法刷新", http.StatusBadRequest)
		return
	}

	if err := h.refresh(r.Context()); err != nil {
		log.Printf("刷新排行榜失败: %v", err)
		sendError(w, "刷新排行榜失败", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, "排行榜刷新成功", nil)
}

// handleSessions 查询玩家最近的战绩
func (h *StatsHandler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		sendError(w, "缺少玩家ID", http.StatusBadRequest)
		return
	}
	if h.records == nil {
		sendError(w, "战绩服务不可用", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	records, err := h.records.RecentRecords(ctx, playerID, parseLimit(r, 10))
	if err != nil {
		log.Printf("查询战绩失败: %v", err)
		sendError(w, "查询战绩失败", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, "查询成功", records)
}

// parseLimit 解析 limit 参数，范围 1..100
func parseLimit(r *http.Request, def int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 100 {
			return l
		}
	}
	return def
}
